package helpers

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveURL resolves href against base. Absolute hrefs are returned as-is,
// protocol-relative ones take the base scheme.
func ResolveURL(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", href, err)
	}

	return baseURL.ResolveReference(ref).String(), nil
}
