package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// A newline, parenthesis, hyphen or dollar sign followed by a whitespace run
	noiseRunRegex = regexp.MustCompile(`[\n()\-$]\s{2,}`)
	// A leading hyphen or currency sign, or a trailing hyphen separator
	edgeRegex = regexp.MustCompile(`^[-$]\s*|\s+-$`)
	// Bedroom count at the start of the housing text
	bedroomPrefixRegex = regexp.MustCompile(`^\d+br`)
	// Bedroom count token followed by whitespace, anywhere in the housing text
	bedroomTokenRegex = regexp.MustCompile(`\d+br\s+`)
)

// Clean strips markup noise from extracted text: whitespace runs after a
// newline, parenthesis, hyphen or dollar sign and the "ft2" unit suffix.
// A leading "-" or "$" and a trailing " -" are dropped; interior text is
// left alone. The result is trimmed and a value wholly wrapped in
// parentheses is unwrapped.
func Clean(text string) string {
	text = noiseRunRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "ft2", "")
	return unwrapParens(trimEdges(text))
}

func trimEdges(text string) string {
	text = strings.TrimSpace(text)
	return strings.TrimSpace(edgeRegex.ReplaceAllString(text, ""))
}

func unwrapParens(text string) string {
	if len(text) < 2 || text[0] != '(' || text[len(text)-1] != ')' {
		return text
	}
	inner := text[1 : len(text)-1]
	if strings.ContainsAny(inner, "()") {
		return text
	}
	return strings.TrimSpace(inner)
}

// ExtractBedrooms reduces housing text to its bedroom count. A leading
// "<digits>br" token wins; otherwise any text mentioning "br" is kept whole.
func ExtractBedrooms(text string) string {
	if match := bedroomPrefixRegex.FindString(text); match != "" {
		return Clean(match)
	}
	if strings.Contains(strings.ToLower(text), "br") {
		return orMissing(Clean(text))
	}
	return Missing
}

// StripBedroomToken removes "<digits>br" tokens followed by whitespace
func StripBedroomToken(text string) string {
	return bedroomTokenRegex.ReplaceAllString(text, "")
}

// HomeSize derives the home size from resolved housing text
func HomeSize(housing string) string {
	if housing == Missing {
		return Missing
	}
	return orMissing(trimEdges(StripBedroomToken(housing)))
}

// ValueKind tags the variants of Value
type ValueKind int

const (
	// Absent means the lookup found nothing
	Absent ValueKind = iota
	// RawText is a string taken from an attribute
	RawText
	// Element is a matched element whose text content is used
	Element
)

// Value is the outcome of one field lookup
type Value struct {
	Kind ValueKind
	Text string
	Node *goquery.Selection
}

// AbsentValue returns a Value for a lookup that matched nothing
func AbsentValue() Value {
	return Value{Kind: Absent}
}

// TextValue returns a RawText value
func TextValue(text string) Value {
	return Value{Kind: RawText, Text: text}
}

// ElementValue returns an Element value, or an Absent one for a nil selection
func ElementValue(node *goquery.Selection) Value {
	if node == nil || node.Length() == 0 {
		return AbsentValue()
	}
	return Value{Kind: Element, Node: node}
}

// Resolve turns a lookup outcome into a cleaned field value
func Resolve(v Value) string {
	switch v.Kind {
	case Element:
		return orMissing(Clean(v.Node.Text()))
	case RawText:
		return orMissing(Clean(v.Text))
	default:
		return Missing
	}
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}
