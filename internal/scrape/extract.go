// Package scrape pulls numbers and labels out of loosely structured profile
// pages. Every helper reports a miss with ok=false instead of failing.
package scrape

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	digitRun     = regexp.MustCompile(`\d+`)
	bareNumber   = regexp.MustCompile(`^\s*[\d,]+\s*$`)
	thousandsSep = strings.NewReplacer(",", "")
)

// ParseDocument parses an HTML page into a queryable document
func ParseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ParseNumber returns the first run of digits in text after thousands
// separators are removed.
func ParseNumber(text string) (int, bool) {
	m := digitRun.FindString(thousandsSep.Replace(text))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractNumber tries each selector in priority order. The first selector
// that matches anything decides: its first element's text is parsed, and a
// text without digits is a miss.
func ExtractNumber(doc *goquery.Document, selectors ...string) (int, bool) {
	if doc == nil {
		return 0, false
	}
	for _, sel := range selectors {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		return ParseNumber(found.First().Text())
	}
	return 0, false
}

// ExtractText returns the first non-blank text among the selectors' matches
func ExtractText(doc *goquery.Document, selectors ...string) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, sel := range selectors {
		var text string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = collapse(s.Text())
			return text == ""
		})
		if text != "" {
			return text, true
		}
	}
	return "", false
}

// labelPattern matches "<label> (<n>)" case-insensitively
func labelPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*\(\s*(\d+)\s*\)`)
}

// ExtractLabeledNumber scans element texts for badge markup like "EASY (16)"
func ExtractLabeledNumber(doc *goquery.Document, label string) (int, bool) {
	if doc == nil || label == "" {
		return 0, false
	}
	re := labelPattern(label)
	var (
		n  int
		ok bool
	)
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n, ok = MatchLabeled(re, s.Text())
		return !ok
	})
	return n, ok
}

// MatchLabeled applies a label pattern to a single text
func MatchLabeled(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Candidate is a bare number seen on a page with the text around it.
// Label is the text of the element right before it, which on score cards
// is the number's caption.
type Candidate struct {
	Value   int
	Label   string
	Context string
}

// NumberCandidates collects every leaf element whose whole text is a number,
// paired with its preceding sibling's text and its parent's text.
func NumberCandidates(doc *goquery.Document) []Candidate {
	if doc == nil {
		return nil
	}
	var out []Candidate
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		text := s.Text()
		if !bareNumber.MatchString(text) {
			return
		}
		n, ok := ParseNumber(text)
		if !ok {
			return
		}
		out = append(out, Candidate{
			Value:   n,
			Label:   collapse(s.Prev().Text()),
			Context: collapse(s.Parent().Text()),
		})
	})
	return out
}

// FindNumberByRange returns the first candidate whose value lies in [lo, hi]
func FindNumberByRange(candidates []Candidate, lo, hi int) (int, bool) {
	for _, c := range candidates {
		if c.Value >= lo && c.Value <= hi {
			return c.Value, true
		}
	}
	return 0, false
}

// FindNumberLabeled is FindNumberByRange restricted to candidates whose
// label matches re.
func FindNumberLabeled(candidates []Candidate, re *regexp.Regexp, lo, hi int) (int, bool) {
	var labeled []Candidate
	for _, c := range candidates {
		if re.MatchString(c.Label) {
			labeled = append(labeled, c)
		}
	}
	return FindNumberByRange(labeled, lo, hi)
}

// PageText returns the page text with whitespace collapsed
func PageText(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return collapse(doc.Text())
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
