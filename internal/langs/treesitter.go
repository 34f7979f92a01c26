// Package langs builds concrete capability.Set values: a generic
// tree-sitter-backed adapter instantiated once per grammar, a stdlib-JSON
// capability, and the go-fast-backed source refinement helper used to
// upgrade a bare JS guess to a confirmed JSX/module variant.
//
// The tree-sitter adapter is grounded on the CommunityParserAdapter
// factory and the per-grammar setupXxx functions in
// standardbeagle-lci/internal/parser/community_parser.go and
// internal/parser/parser_language_setup.go: one small struct wraps the
// parser+language pair and is instantiated per grammar instead of writing
// ten near-identical setup functions.
package langs

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/wspace/internal/capability"
	"github.com/standardbeagle/wspace/internal/wtypes"
)

// GrammarLanguage returns the raw tree-sitter language pointer for a
// grammar package, exactly what its Language()/LanguageXxx() export
// returns, unwrapped. Each binding package exposes this under a slightly
// different function name, so callers supply a small closure rather than
// this package depending on every grammar's exact export name.
type GrammarLanguage func() unsafe.Pointer

// TreeSitterAdapter builds a capability.Set for a single grammar.
type TreeSitterAdapter struct {
	LanguageName string
	Grammar      GrammarLanguage
	// LintPatterns are simple regex-based smells checked against the whole
	// content, independent of the grammar; each pattern that matches
	// anywhere yields one diagnostic. Real per-language lint rules are out of
	// scope for this server; this keeps the Lint capability exercised
	// without inventing a rule engine.
	LintPatterns []LintPattern
}

// LintPattern pairs a compiled-on-demand regex with the message to attach
// when it matches.
type LintPattern struct {
	Rule    string
	Pattern string
	Message string
}

// compiledLintCache caches compiled regexes across adapters, keyed by
// pattern text. Grounded on the simple/complex pattern cache in
// standardbeagle-lci/internal/regex_analyzer/cache.go, trimmed to the one
// cache tier this server needs.
var compiledLintCache sync.Map // string -> *regexp.Regexp

func compileLintPattern(pattern string) (*regexp.Regexp, error) {
	if v, ok := compiledLintCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	compiledLintCache.Store(pattern, re)
	return re, nil
}

// Build constructs the capability.Set for this grammar.
func (a TreeSitterAdapter) Build() capability.Set {
	language := tree_sitter.NewLanguage(a.Grammar())

	set := capability.Set{
		Language:         a.LanguageName,
		Parse:            a.parse(language),
		Lint:             a.lint(),
		Rename:           renameAtPosition,
		DebugSyntaxTree:  debugSyntaxTree,
		DebugControlFlow: debugControlFlow,
		DebugFormatterIR: debugFormatterIR,
	}
	if len(a.LintPatterns) > 0 {
		set.CodeActions = a.codeActions()
		set.FixAll = a.fixAll()
	}
	return set
}

func (a TreeSitterAdapter) parse(language *tree_sitter.Language) capability.ParseFunc {
	return func(content string, nodeCache any) (wtypes.ParseOutcome, any) {
		parser := tree_sitter.NewParser()
		defer parser.Close()
		if err := parser.SetLanguage(language); err != nil {
			return wtypes.ParseOutcome{
				Diagnostics: []wtypes.Diagnostic{{
					Severity: wtypes.SeverityError,
					Message:  err.Error(),
				}},
			}, nodeCache
		}

		var old *tree_sitter.Tree
		if nodeCache != nil {
			old, _ = nodeCache.(*tree_sitter.Tree)
		}
		tree := parser.Parse([]byte(content), old)

		var diags []wtypes.Diagnostic
		if tree != nil && tree.RootNode().HasError() {
			diags = append(diags, wtypes.Diagnostic{
				Severity: wtypes.SeverityError,
				Message:  "syntax error",
			})
		}
		return wtypes.ParseOutcome{Tree: tree, Diagnostics: diags}, tree
	}
}

func (a TreeSitterAdapter) lint() capability.LintFunc {
	if len(a.LintPatterns) == 0 {
		return nil
	}
	return func(content string, outcome wtypes.ParseOutcome) []wtypes.Diagnostic {
		var diags []wtypes.Diagnostic
		for _, lp := range a.LintPatterns {
			re, err := compileLintPattern(lp.Pattern)
			if err != nil {
				continue
			}
			if re.MatchString(content) {
				diags = append(diags, wtypes.Diagnostic{
					Severity: wtypes.SeverityWarning,
					Message:  lp.Message,
					Rule:     lp.Rule,
				})
			}
		}
		return diags
	}
}

// codeActions turns every LintPatterns match into a quick fix that deletes
// the matched text. Lint rules in this server are smells, not diagnoses, so
// "delete the offending text" is the only fix that applies uniformly across
// grammars. rng is not consulted: every match in the document is offered.
func (a TreeSitterAdapter) codeActions() capability.CodeActionsFunc {
	return func(content string, outcome wtypes.ParseOutcome, rng wtypes.Range) []wtypes.CodeAction {
		var actions []wtypes.CodeAction
		for _, lp := range a.LintPatterns {
			re, err := compileLintPattern(lp.Pattern)
			if err != nil {
				continue
			}
			for _, loc := range re.FindAllStringIndex(content, -1) {
				actions = append(actions, wtypes.CodeAction{
					Title: "Remove: " + lp.Message,
					Kind:  "quickfix." + lp.Rule,
					Edits: []wtypes.TextEdit{{
						Range:   byteOffsetsToRange(content, loc[0], loc[1]),
						NewText: "",
					}},
				})
			}
		}
		return actions
	}
}

// fixAll applies every LintPatterns match's delete-the-match fix at once.
func (a TreeSitterAdapter) fixAll() capability.FixAllFunc {
	return func(content string, outcome wtypes.ParseOutcome) (string, error) {
		fixed := content
		for _, lp := range a.LintPatterns {
			re, err := compileLintPattern(lp.Pattern)
			if err != nil {
				continue
			}
			fixed = re.ReplaceAllString(fixed, "")
		}
		return fixed, nil
	}
}

// byteOffsetsToRange converts a pair of byte offsets into content to the
// line/column Range the rest of this server works in.
func byteOffsetsToRange(content string, start, end int) wtypes.Range {
	return wtypes.Range{Start: byteOffsetToPosition(content, start), End: byteOffsetToPosition(content, end)}
}

func byteOffsetToPosition(content string, offset int) wtypes.Position {
	line, col := 0, 0
	for i := 0; i < offset && i < len(content); i++ {
		if content[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return wtypes.Position{Line: line, Column: col}
}

// identByte reports whether b can appear in a bare identifier, the
// lowest-common-denominator definition shared by every grammar this server
// registers.
func identByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// renameAtPosition renames the identifier under pos everywhere it appears
// in content. No grammar here exposes a node-at-position lookup, so this
// scans the identifier's boundaries as plain text and replaces every
// word-bounded occurrence; it has no notion of scope and will over-rename
// shadowed locals. That's a known limitation, not an oversight: a correct
// scope-aware rename needs the language's binding resolution, which none of
// the grammars wired into this server provide.
func renameAtPosition(content string, outcome wtypes.ParseOutcome, pos wtypes.Position, newName string) ([]wtypes.TextEdit, error) {
	lines := strings.Split(content, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return nil, fmt.Errorf("rename: line %d out of range", pos.Line)
	}
	line := lines[pos.Line]
	if pos.Column < 0 || pos.Column > len(line) {
		return nil, fmt.Errorf("rename: column %d out of range", pos.Column)
	}

	if pos.Column == len(line) || !identByte(line[pos.Column]) {
		return nil, fmt.Errorf("rename: no identifier at %d:%d", pos.Line, pos.Column)
	}

	start, end := pos.Column, pos.Column
	for start > 0 && identByte(line[start-1]) {
		start--
	}
	for end < len(line) && identByte(line[end]) {
		end++
	}
	oldName := line[start:end]

	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(oldName) + `\b`)
	if err != nil {
		return nil, err
	}
	var edits []wtypes.TextEdit
	for i, l := range lines {
		for _, loc := range re.FindAllStringIndex(l, -1) {
			edits = append(edits, wtypes.TextEdit{
				Range: wtypes.Range{
					Start: wtypes.Position{Line: i, Column: loc[0]},
					End:   wtypes.Position{Line: i, Column: loc[1]},
				},
				NewText: newName,
			})
		}
	}
	return edits, nil
}

// debugSyntaxTree renders outcome's tree-sitter tree as an indented
// S-expression-style dump, grounded on the recursive Kind()/ChildCount()/
// Child() walk in
// standardbeagle-lci/internal/parser/csharp_debug_test.go.
func debugSyntaxTree(content string, outcome wtypes.ParseOutcome) string {
	tree, ok := outcome.Tree.(*tree_sitter.Tree)
	if !ok || tree == nil {
		return ""
	}
	var b strings.Builder
	var walk func(node *tree_sitter.Node, depth int)
	walk = func(node *tree_sitter.Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		start, end := node.StartPosition(), node.EndPosition()
		fmt.Fprintf(&b, "(%s [%d:%d-%d:%d]\n", node.Kind(), start.Row, start.Column, end.Row, end.Column)
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(node.Child(i), depth+1)
		}
	}
	walk(tree.RootNode(), 0)
	return b.String()
}

// controlFlowKinds are the tree-sitter node kinds this server treats as
// control-flow constructs, spanning the grammars registered in
// register.go. There's no shared grammar-agnostic CFG library in this
// pack, so debug_control_flow reports a structural summary (a count of
// each construct found) rather than a true basic-block graph.
var controlFlowKinds = []string{
	"if_statement", "for_statement", "for_in_statement", "for_range_clause",
	"while_statement", "switch_statement", "switch_expression",
	"match_expression", "try_statement", "return_statement",
	"break_statement", "continue_statement",
}

// debugControlFlow walks outcome's tree counting occurrences of each kind
// in controlFlowKinds, producing a structural control-flow summary. See
// controlFlowKinds for why this isn't a true basic-block CFG.
func debugControlFlow(content string, outcome wtypes.ParseOutcome) string {
	tree, ok := outcome.Tree.(*tree_sitter.Tree)
	if !ok || tree == nil {
		return ""
	}
	wanted := make(map[string]bool, len(controlFlowKinds))
	for _, k := range controlFlowKinds {
		wanted[k] = true
	}
	counts := make(map[string]int)
	var walk func(node *tree_sitter.Node)
	walk = func(node *tree_sitter.Node) {
		if wanted[node.Kind()] {
			counts[node.Kind()]++
		}
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())

	if len(counts) == 0 {
		return "no control-flow constructs found"
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	var b strings.Builder
	for _, k := range kinds {
		fmt.Fprintf(&b, "%s: %d\n", k, counts[k])
	}
	return b.String()
}

// debugFormatterIR dumps outcome's leaf nodes in source order as
// "kind: text" lines, standing in for a real formatter intermediate
// representation. None of the tree-sitter grammars registered here have an
// actual formatter/printer in this server, so the leaves of the parse tree
// are the closest thing to an IR available; StartByte/EndByte slicing is
// grounded on the same pattern in
// standardbeagle-lci/internal/parser/parser.go.
func debugFormatterIR(content string, outcome wtypes.ParseOutcome) string {
	tree, ok := outcome.Tree.(*tree_sitter.Tree)
	if !ok || tree == nil {
		return ""
	}
	var b strings.Builder
	var walk func(node *tree_sitter.Node)
	walk = func(node *tree_sitter.Node) {
		count := node.ChildCount()
		if count == 0 {
			text := content[node.StartByte():node.EndByte()]
			fmt.Fprintf(&b, "%s: %q\n", node.Kind(), text)
			return
		}
		for i := uint(0); i < count; i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return b.String()
}
