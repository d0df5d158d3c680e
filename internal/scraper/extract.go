package scraper

import (
	scrapeerrors "sjsage522/listingscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// Extractor pulls the seven listing fields out of a result entry
type Extractor struct {
	selectors Selectors
	region    string
}

// NewExtractor creates an extractor for one region
func NewExtractor(selectors Selectors, region string) *Extractor {
	return &Extractor{selectors: selectors, region: region}
}

// Extract builds a row from a listing fragment. Absent elements become
// Missing; an element lacking its required attribute is an error.
func (e *Extractor) Extract(fragment *goquery.Selection) (ListingRow, error) {
	titleSel := findFirst(fragment, e.selectors.Title)

	link, err := e.requiredAttr(titleSel, e.selectors.Title, "href")
	if err != nil {
		return ListingRow{}, err
	}

	postedAt, err := e.requiredAttr(findFirst(fragment, e.selectors.Time), e.selectors.Time, "title")
	if err != nil {
		return ListingRow{}, err
	}

	// home_size and bedrooms share one housing string
	housing := Resolve(ElementValue(findFirst(fragment, e.selectors.Housing)))

	return ListingRow{
		Title:        Resolve(ElementValue(titleSel)),
		Link:         Resolve(link),
		Time:         Resolve(postedAt),
		Price:        Resolve(ElementValue(findFirst(fragment, e.selectors.Price))),
		HomeSize:     HomeSize(housing),
		Bedrooms:     ExtractBedrooms(housing),
		Neighborhood: Resolve(ElementValue(findFirst(fragment, e.selectors.Neighborhood))),
	}, nil
}

func (e *Extractor) requiredAttr(sel *goquery.Selection, l Lookup, attr string) (Value, error) {
	if sel == nil {
		return AbsentValue(), nil
	}
	value, exists := sel.Attr(attr)
	if !exists {
		return Value{}, scrapeerrors.NewMalformedAttribute(e.region, l.Selector(), attr)
	}
	return TextValue(value), nil
}
