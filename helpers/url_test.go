package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveURL(t *testing.T) {
	testCases := []struct {
		href     string
		expected string
	}{
		{
			href:     "/search/hhh?s=120",
			expected: "https://denver.craigslist.org/search/hhh?s=120",
		},
		{
			href:     "//boulder.craigslist.org/search/hhh?s=120",
			expected: "https://boulder.craigslist.org/search/hhh?s=120",
		},
		{
			href:     "https://other.com/apa/123.html",
			expected: "https://other.com/apa/123.html",
		},
		{
			href:     "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		result, err := ResolveURL("https://denver.craigslist.org", tc.href)
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, result)
	}
}

func TestResolveURLInvalid(t *testing.T) {
	_, err := ResolveURL("https://denver.craigslist.org", "http://[::1")
	assert.Error(t, err)
}
