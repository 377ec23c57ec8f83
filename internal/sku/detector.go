// Package sku finds SKU tokens inside arbitrary text.
package sku

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mgodinho/skunav/internal/domain"
)

// contextRadius is the number of characters kept around a match for
// diagnostic display.
const contextRadius = 16

// DefaultPatterns recognises production SKU strings such as:
//   - LEGACY_SOFA_20230101_1234
//   - MOVIE_2023_TT1234567_M
//   - SHOW_NAME_2024_TT12345678_S001_E010
var DefaultPatterns = []string{
	`[A-Z0-9_]+_SOFA_\d{8}_\d{4}`,
	`[A-Z0-9]+_\d{4}_TT\d{7,8}_M`,
	`[A-Z0-9_]+_\d{4}_TT\d{7,8}_S\d{3}_E\d{3}`,
}

// Detector scans text blobs for SKU strings. Matching is case-insensitive;
// matched values are normalized to upper case. The zero value is not
// usable; construct with NewDetector.
type Detector struct {
	patterns []*regexp.Regexp
}

// NewDetector compiles the given identifier patterns. Patterns are applied
// case-insensitively regardless of how they are written. With no patterns
// the detector uses DefaultPatterns.
func NewDetector(patterns ...string) (*Detector, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Detector{patterns: compiled}, nil
}

// MustDetector is NewDetector for known-good patterns; panics on error.
func MustDetector(patterns ...string) *Detector {
	d, err := NewDetector(patterns...)
	if err != nil {
		panic(err)
	}
	return d
}

// Scan returns every SKU found in text as non-overlapping matches in
// left-to-right order. When candidate matches overlap, the one with the
// earlier start offset wins; among candidates at the same start, the
// earlier pattern wins.
func (d *Detector) Scan(text string) []domain.SkuMatch {
	if text == "" {
		return nil
	}

	type candidate struct {
		start, end int
		order      int
	}
	var cands []candidate
	for order, re := range d.patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			cands = append(cands, candidate{start: loc[0], end: loc[1], order: order})
		}
	}
	if len(cands) == 0 {
		return nil
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].order < cands[j].order
	})

	var matches []domain.SkuMatch
	lastEnd := 0
	for _, c := range cands {
		if len(matches) > 0 && c.start < lastEnd {
			continue
		}
		matches = append(matches, domain.SkuMatch{
			Value:   strings.ToUpper(text[c.start:c.end]),
			Start:   c.start,
			End:     c.end,
			Context: contextWindow(text, c.start, c.end),
		})
		lastEnd = c.end
	}
	return matches
}

// FirstMatch returns the lexically earliest SKU in text, or
// domain.ErrNoSKU when the text contains none.
func (d *Detector) FirstMatch(text string) (domain.SkuMatch, error) {
	matches := d.Scan(text)
	if len(matches) == 0 {
		return domain.SkuMatch{}, domain.ErrNoSKU
	}
	return matches[0], nil
}

func contextWindow(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}
