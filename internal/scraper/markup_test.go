package scraper

import (
	"testing"

	"sjsage522/listingscraper/config"
	scrapeerrors "sjsage522/listingscraper/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	for _, name := range config.SupportedParsers {
		p, err := NewParser(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	_, err := NewParser("lxml")
	assert.Error(t, err)
	assert.True(t, scrapeerrors.Is(err, scrapeerrors.ErrorTypeConfiguration))
}

func TestLookupSelector(t *testing.T) {
	assert.Equal(t, "a.button.next", Lookup{Tag: "a", Class: "button next"}.Selector())
	assert.Equal(t, "time", Lookup{Tag: "time"}.Selector())
	assert.Equal(t, "li.result-row", DefaultSelectors.Listing.Selector())
}

func TestDocumentFind(t *testing.T) {
	p, err := NewParser(config.ParserHTML)
	require.NoError(t, err)

	doc, err := p.Parse([]byte(`
		<ul>
			<li class="result-row">one</li>
			<li class="other">skip</li>
			<li class="result-row">two</li>
		</ul>
		<a class="button">prev</a>
		<a class="button next" href="/next">next</a>`), "text/html")
	require.NoError(t, err)

	rows := doc.FindAll(DefaultSelectors.Listing)
	require.Len(t, rows, 2)
	assert.Equal(t, "one", rows[0].Text())
	assert.Equal(t, "two", rows[1].Text())

	next := doc.FindFirst(DefaultSelectors.NextPage)
	require.NotNil(t, next)
	assert.Equal(t, "next", next.Text())

	assert.Nil(t, doc.FindFirst(Lookup{Tag: "span", Class: "absent"}))
	assert.Empty(t, doc.FindAll(Lookup{Tag: "span", Class: "absent"}))
}

func TestParseCharset(t *testing.T) {
	p, err := NewParser(config.ParserHTMLCharset)
	require.NoError(t, err)

	// "café" in ISO-8859-1
	body := []byte("<html><body><span class=\"result-hood\">caf\xe9</span></body></html>")
	doc, err := p.Parse(body, "text/html; charset=iso-8859-1")
	require.NoError(t, err)

	hood := doc.FindFirst(DefaultSelectors.Neighborhood)
	require.NotNil(t, hood)
	assert.Equal(t, "café", hood.Text())
}
