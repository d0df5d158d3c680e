package scraper

import (
	"fmt"
	"strings"
)

// Missing is the placeholder for any field that could not be extracted.
// Downstream consumers match on it verbatim.
const Missing = "missing"

// ListingRow is one extracted result entry
type ListingRow struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Time         string `json:"time"`
	Price        string `json:"price"`
	HomeSize     string `json:"home_size"`
	Bedrooms     string `json:"bedrooms"`
	Neighborhood string `json:"neighborhood"`
}

// Columns is the stable column order of an exported dataset
var Columns = []string{"title", "link", "time", "price", "home_size(ft2)", "bedrooms", "neighborhood"}

// Values returns the row's fields in Columns order
func (r ListingRow) Values() []string {
	return []string{r.Title, r.Link, r.Time, r.Price, r.HomeSize, r.Bedrooms, r.Neighborhood}
}

// RowFromValues builds a row from fields in Columns order
func RowFromValues(values []string) (ListingRow, error) {
	if len(values) != len(Columns) {
		return ListingRow{}, fmt.Errorf("expected %d fields, got %d", len(Columns), len(values))
	}
	return ListingRow{
		Title:        values[0],
		Link:         values[1],
		Time:         values[2],
		Price:        values[3],
		HomeSize:     values[4],
		Bedrooms:     values[5],
		Neighborhood: values[6],
	}, nil
}

// Dataset is the ordered rows of one region, in discovery order
type Dataset struct {
	Region string
	Rows   []ListingRow
}

// PageRequest is one page location plus the headers sent with it
type PageRequest struct {
	URL     string
	Headers map[string]string
}

// Lookup locates elements by tag name and class. Class may hold several
// space separated names, all of which must be present.
type Lookup struct {
	Tag   string
	Class string
}

// Selector returns the CSS selector for the lookup
func (l Lookup) Selector() string {
	var b strings.Builder
	b.WriteString(l.Tag)
	for _, class := range strings.Fields(l.Class) {
		b.WriteByte('.')
		b.WriteString(class)
	}
	return b.String()
}

// Selectors holds the lookups used for one site layout
type Selectors struct {
	Listing      Lookup
	Title        Lookup
	Time         Lookup
	Price        Lookup
	Housing      Lookup
	Neighborhood Lookup
	NextPage     Lookup
}

// DefaultSelectors matches the classified search results layout
var DefaultSelectors = Selectors{
	Listing:      Lookup{Tag: "li", Class: "result-row"},
	Title:        Lookup{Tag: "a", Class: "result-title"},
	Time:         Lookup{Tag: "time"},
	Price:        Lookup{Tag: "span", Class: "result-price"},
	Housing:      Lookup{Tag: "span", Class: "housing"},
	Neighborhood: Lookup{Tag: "span", Class: "result-hood"},
	NextPage:     Lookup{Tag: "a", Class: "button next"},
}
