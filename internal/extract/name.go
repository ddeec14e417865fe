// Package extract implements the heuristic extractors: company names from
// free text, cities from addresses, and industries from search results. The
// pattern tables live in an embedded YAML file so they can be swapped without
// touching pipeline control flow.
package extract

import (
	_ "embed"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/timi233/enterprise-brain/internal/model"
)

//go:embed patterns.yaml
var defaultTableYAML []byte

// Table is the configurable pattern vocabulary for name extraction.
type Table struct {
	CompleteSuffixes []string `yaml:"complete_suffixes"`
	StripSuffixes    []string `yaml:"strip_suffixes"`
	BrandPrefixes    []string `yaml:"brand_prefixes"`
	KnownBrands      []string `yaml:"known_brands"`
	StopWords        []string `yaml:"stop_words"`
}

// DefaultTable parses the embedded pattern table.
func DefaultTable() (Table, error) {
	var t Table
	if err := yaml.Unmarshal(defaultTableYAML, &t); err != nil {
		return Table{}, eris.Wrap(err, "extract: parse pattern table")
	}
	return t, nil
}

// NameExtractor pulls candidate company names out of raw text using ordered
// pattern rules. Complete patterns (name + legal-entity suffix) win over
// curated brand names, which win over a generic CJK token heuristic.
type NameExtractor struct {
	table Table

	complete      *regexp.Regexp
	brandComplete *regexp.Regexp
	knownBrand    *regexp.Regexp
	generic       *regexp.Regexp
	stopWords     map[string]struct{}
}

// NewNameExtractor builds an extractor from the embedded default table.
func NewNameExtractor() (*NameExtractor, error) {
	t, err := DefaultTable()
	if err != nil {
		return nil, err
	}
	return NewNameExtractorFromTable(t)
}

// NewNameExtractorFromTable builds an extractor from a custom table.
func NewNameExtractorFromTable(t Table) (*NameExtractor, error) {
	if len(t.CompleteSuffixes) == 0 {
		return nil, eris.New("extract: pattern table has no complete suffixes")
	}

	suffixAlt := joinAlternation(t.CompleteSuffixes)

	complete, err := regexp.Compile(`([\x{4e00}-\x{9fa5}]{2,20}(?:` + suffixAlt + `))`)
	if err != nil {
		return nil, eris.Wrap(err, "extract: compile complete pattern")
	}

	var brandComplete *regexp.Regexp
	if len(t.BrandPrefixes) > 0 {
		brandComplete, err = regexp.Compile(`((?:` + joinAlternation(t.BrandPrefixes) + `)[\x{4e00}-\x{9fa5}]{0,10}(?:` + suffixAlt + `))`)
		if err != nil {
			return nil, eris.Wrap(err, "extract: compile brand pattern")
		}
	}

	var knownBrand *regexp.Regexp
	if len(t.KnownBrands) > 0 {
		knownBrand, err = regexp.Compile(`(` + joinAlternation(t.KnownBrands) + `)`)
		if err != nil {
			return nil, eris.Wrap(err, "extract: compile known-brand pattern")
		}
	}

	stop := make(map[string]struct{}, len(t.StopWords))
	for _, w := range t.StopWords {
		stop[w] = struct{}{}
	}

	return &NameExtractor{
		table:         t,
		complete:      complete,
		brandComplete: brandComplete,
		knownBrand:    knownBrand,
		generic:       regexp.MustCompile(`([\x{4e00}-\x{9fa5}]{2,10})`),
		stopWords:     stop,
	}, nil
}

// Extract returns the first candidate name found in text. ok is false when
// no pattern matched anything usable.
func (e *NameExtractor) Extract(text string) (model.ExtractedName, bool) {
	// Complete patterns: name plus legal-entity suffix.
	for _, re := range []*regexp.Regexp{e.complete, e.brandComplete} {
		if re == nil {
			continue
		}
		if m := re.FindStringSubmatch(text); m != nil {
			return model.ExtractedName{
				Name:       m[1],
				IsComplete: true,
				Confidence: model.ConfidenceHigh,
				Source:     model.SourceLocalPattern,
			}, true
		}
	}

	// Curated brand names: recognized but suffix-less, so incomplete.
	if e.knownBrand != nil {
		if m := e.knownBrand.FindStringSubmatch(text); m != nil {
			return model.ExtractedName{
				Name:       m[1],
				IsComplete: false,
				Confidence: model.ConfidenceMedium,
				Source:     model.SourceLocalPattern,
			}, true
		}
	}

	// Generic CJK token, rejected when it is a plain query word.
	if m := e.generic.FindStringSubmatch(text); m != nil {
		if _, isStop := e.stopWords[m[1]]; !isStop {
			return model.ExtractedName{
				Name:       m[1],
				IsComplete: false,
				Confidence: model.ConfidenceLow,
				Source:     model.SourceLocalPattern,
			}, true
		}
	}

	return model.ExtractedName{}, false
}

// FromSearchResults runs the complete-name patterns over search hit titles
// and snippets, accepting the first complete match. Used to infer a name the
// local patterns missed and to upgrade an incomplete local match.
func (e *NameExtractor) FromSearchResults(hits []SearchHit) (model.ExtractedName, bool) {
	const maxHits = 5
	for i, h := range hits {
		if i >= maxHits {
			break
		}
		for _, text := range []string{h.Title, h.Snippet} {
			if m := e.complete.FindStringSubmatch(text); m != nil {
				return model.ExtractedName{
					Name:       m[1],
					IsComplete: true,
					Confidence: model.ConfidenceHigh,
					Source:     model.SourceSearchInference,
				}, true
			}
		}
	}
	return model.ExtractedName{}, false
}

// SearchHit is the slice of a web-search result the extractors care about.
type SearchHit struct {
	Title   string
	URL     string
	Snippet string
}

// IsComplete reports whether name ends with a known legal-entity suffix.
func (e *NameExtractor) IsComplete(name string) bool {
	for _, s := range e.table.CompleteSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// StripSuffix removes the longest trailing legal-entity suffix from name, at
// most once. Returns the base and whether anything was stripped.
func (e *NameExtractor) StripSuffix(name string) (string, bool) {
	for _, s := range e.table.StripSuffixes {
		if strings.HasSuffix(name, s) && len(name) > len(s) {
			return name[:len(name)-len(s)], true
		}
	}
	return name, false
}

func joinAlternation(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(quoted, "|")
}
