// Package jsrefine implements the "refined source" step the open_file
// sequence performs after parsing: a JS/JSX document's initially-guessed
// DocumentFileSource may need correcting once its content is known (for
// example, a bare ".jsx" guess becomes a confirmed JSX variant, and
// ES-module syntax upgrades a ".js" script guess to a module).
//
// Grounded on standardbeagle-lci's internal/analysis/javascript_gofast_analyzer.go,
// which uses go-fAST to parse JavaScript and explicitly falls back to a
// regex/heuristic analyzer when go-fAST can't handle the input because it
// "doesn't support ES6 modules or TypeScript": a go-fAST parse failure is
// itself evidence the content uses module or JSX syntax, and that is the
// signal this package keys off.
package jsrefine

import (
	"regexp"
	"strings"

	"github.com/t14raptor/go-fast/parser"

	"github.com/standardbeagle/wspace/internal/wtypes"
)

var jsxTagPattern = regexp.MustCompile(`<[A-Za-z][\w.]*[\s/>]`)

// Refine inspects content already guessed to be source and returns the
// DocumentFileSource it should actually be interned as. It only ever
// upgrades language-neutral or under-specified guesses (plain
// "javascript"/"typescript" with no variant); any other source is returned
// unchanged.
func Refine(guess wtypes.DocumentFileSource, content string) wtypes.DocumentFileSource {
	if guess.Language != "javascript" && guess.Language != "typescript" {
		return guess
	}
	if guess.Variant != "" {
		return guess
	}

	if _, err := parser.ParseFile(content); err == nil {
		return wtypes.DocumentFileSource{Language: guess.Language, Variant: "script"}
	}

	if strings.Contains(content, "export ") || strings.Contains(content, "import ") {
		if jsxTagPattern.MatchString(content) {
			return wtypes.DocumentFileSource{Language: guess.Language, Variant: "jsx-module"}
		}
		return wtypes.DocumentFileSource{Language: guess.Language, Variant: "module"}
	}
	if jsxTagPattern.MatchString(content) {
		return wtypes.DocumentFileSource{Language: guess.Language, Variant: "jsx"}
	}
	return guess
}
