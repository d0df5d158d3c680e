package scraper

import (
	"bytes"
	"fmt"
	"io"

	"sjsage522/listingscraper/config"
	scrapeerrors "sjsage522/listingscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Parser turns response bodies into navigable documents
type Parser struct {
	name string
}

// NewParser validates name against config.SupportedParsers
func NewParser(name string) (*Parser, error) {
	if !config.IsSupportedParser(name) {
		return nil, scrapeerrors.NewConfiguration(
			fmt.Sprintf("unsupported parser %q, supported parsers: %v", name, config.SupportedParsers), nil)
	}
	return &Parser{name: name}, nil
}

// Name returns the parser name
func (p *Parser) Name() string {
	return p.name
}

// Parse builds a document from body. The html-charset parser decodes the
// body to UTF-8 using contentType and any <meta> charset first.
func (p *Parser) Parse(body []byte, contentType string) (*Document, error) {
	var reader io.Reader = bytes.NewReader(body)

	if p.name == config.ParserHTMLCharset {
		utf8Reader, err := charset.NewReader(reader, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to decode body: %w", err)
		}
		reader = utf8Reader
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("HTML parsing error: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Document is a parsed page
type Document struct {
	doc *goquery.Document
}

// FindAll returns every element matching l, in document order
func (d *Document) FindAll(l Lookup) []*goquery.Selection {
	var out []*goquery.Selection
	d.doc.Find(l.Selector()).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// FindFirst returns the first element matching l, or nil
func (d *Document) FindFirst(l Lookup) *goquery.Selection {
	return findFirst(d.doc.Selection, l)
}

// findFirst returns the first descendant of s matching l, or nil
func findFirst(s *goquery.Selection, l Lookup) *goquery.Selection {
	match := s.Find(l.Selector()).First()
	if match.Length() == 0 {
		return nil
	}
	return match
}
