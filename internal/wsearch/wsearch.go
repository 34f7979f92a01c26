// Package wsearch implements the Pattern Registry and its default
// search-pattern compiler. A pattern string is sniffed into one of four
// matcher kinds — glob, fuzzy, stemmed-token, or plain literal substring —
// and compiled once at parse_pattern time; search_pattern then just
// evaluates the stored matcher.
//
// Grounded on parse_pattern/drop_pattern/make_search_pattern_id in
// original_source's biome_service/src/workspace/server.rs for the registry
// contract, and on standardbeagle-lci/internal/semantic/fuzzy_matcher.go
// and internal/semantic/stemmer.go for which libraries back fuzzy and
// stemmed matching.
package wsearch

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	"github.com/standardbeagle/wspace/internal/wserrors"
	"github.com/standardbeagle/wspace/internal/wtypes"
)

// Matcher evaluates a compiled pattern against a line of text.
type Matcher interface {
	Match(text string) bool
}

type literalMatcher struct{ needle string }

func (m literalMatcher) Match(text string) bool { return strings.Contains(text, m.needle) }

type globMatcher struct{ pattern string }

func (m globMatcher) Match(text string) bool {
	ok, _ := doublestar.Match(m.pattern, text)
	return ok
}

type fuzzyMatcher struct {
	needle    string
	threshold float64
}

func (m fuzzyMatcher) Match(text string) bool {
	for _, word := range strings.Fields(text) {
		score, err := edlib.StringsSimilarity(m.needle, word, edlib.JaroWinkler)
		if err == nil && score >= m.threshold {
			return true
		}
	}
	return false
}

type stemMatcher struct{ stem string }

func (m stemMatcher) Match(text string) bool {
	for _, word := range strings.Fields(text) {
		if porter2.Stem(strings.ToLower(word)) == m.stem {
			return true
		}
	}
	return false
}

// Compile sniffs pattern's syntax and returns the matcher it compiles to.
// The prefixes are checked first, so "~a*" is fuzzy, not a glob.
//
//   - a pattern prefixed "~" compiles to a fuzzy (Jaro-Winkler) matcher
//   - a pattern prefixed "#" compiles to a stemmed-token matcher
//   - otherwise, a pattern containing glob metacharacters ("*", "?", "[")
//     compiles to a doublestar glob matcher
//   - anything else is a plain substring matcher
func Compile(pattern string) (Matcher, error) {
	switch {
	case strings.HasPrefix(pattern, "~"):
		return fuzzyMatcher{needle: pattern[1:], threshold: 0.80}, nil
	case strings.HasPrefix(pattern, "#"):
		return stemMatcher{stem: porter2.Stem(strings.ToLower(pattern[1:]))}, nil
	case strings.ContainsAny(pattern, "*?["):
		if _, err := doublestar.Match(pattern, ""); err != nil {
			return nil, err
		}
		return globMatcher{pattern: pattern}, nil
	default:
		return literalMatcher{needle: pattern}, nil
	}
}

// entry is one registered pattern: its source text, compiled matcher, and
// an xxhash of the source text. Parse always compiles afresh; nothing in
// this package reads Hash.
type entry struct {
	Source  string
	Matcher Matcher
	Hash    uint64
}

// Registry allocates PatternIDs and stores compiled patterns, mirroring
// the process-global "p<n>" counter in make_search_pattern_id: ids are
// never reused, starting at 1.
type Registry struct {
	counter atomic.Uint64
	byID    sync.Map // wtypes.PatternID -> *entry
}

// NewRegistry returns an empty pattern registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Parse compiles pattern and registers it under a freshly allocated id.
func (r *Registry) Parse(pattern string) (wtypes.PatternID, error) {
	matcher, err := Compile(pattern)
	if err != nil {
		return "", &wserrors.InvalidPatternError{Pattern: pattern, Cause: err}
	}
	n := r.counter.Add(1)
	id := wtypes.PatternID(fmt.Sprintf("p%d", n))
	r.byID.Store(id, &entry{Source: pattern, Matcher: matcher, Hash: xxhash.Sum64String(pattern)})
	return id, nil
}

// Lookup resolves id to its compiled matcher.
func (r *Registry) Lookup(id wtypes.PatternID) (Matcher, error) {
	v, ok := r.byID.Load(id)
	if !ok {
		return nil, &wserrors.InvalidPatternError{Pattern: string(id)}
	}
	return v.(*entry).Matcher, nil
}

// Drop removes id from the registry. Dropping an unknown id is a no-op,
// matching drop_pattern in the original implementation.
func (r *Registry) Drop(id wtypes.PatternID) {
	r.byID.Delete(id)
}

// Search evaluates the pattern registered under id against content,
// returning the line ranges that match.
func (r *Registry) Search(id wtypes.PatternID, content string) ([]wtypes.Range, error) {
	matcher, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	var ranges []wtypes.Range
	for i, line := range strings.Split(content, "\n") {
		if matcher.Match(line) {
			ranges = append(ranges, wtypes.Range{
				Start: wtypes.Position{Line: i, Column: 0},
				End:   wtypes.Position{Line: i, Column: len(line)},
			})
		}
	}
	return ranges, nil
}
