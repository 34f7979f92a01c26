// Package capability implements the per-language capability table and its
// dispatcher. A capability table is a tagged record of optional function
// pointers, not a class hierarchy: languages that can't format simply leave
// Format nil, and callers check before dispatching. Grounded on the
// CommunityParserAdapter shape in
// standardbeagle-lci/internal/parser/community_parser.go and on
// get_file_capabilities/build_capability_error in the original
// implementation (see original_source).
package capability

import (
	"github.com/standardbeagle/wspace/internal/wtypes"
)

// ParseFunc parses content and returns the resulting tree/diagnostics.
// nodeCache is an opaque accelerator the caller took from the
// acceleration cache; implementations that support incremental reparse
// read/write through it.
type ParseFunc func(content string, nodeCache any) (wtypes.ParseOutcome, any)

// LintFunc runs lint rules against content and its already-parsed outcome.
type LintFunc func(content string, outcome wtypes.ParseOutcome) []wtypes.Diagnostic

// FormatFunc formats content given its parsed outcome, returning the new
// content.
type FormatFunc func(content string, outcome wtypes.ParseOutcome) (string, error)

// FormatRangeFunc formats only the given range of content, returning the
// edits needed to apply that formatting.
type FormatRangeFunc func(content string, outcome wtypes.ParseOutcome, rng wtypes.Range) ([]wtypes.TextEdit, error)

// FormatOnTypeFunc formats the single position a just-typed trigger
// character (closing brace, semicolon, newline, ...) landed at.
type FormatOnTypeFunc func(content string, outcome wtypes.ParseOutcome, pos wtypes.Position) ([]wtypes.TextEdit, error)

// CodeActionsFunc returns the quick fixes available at rng, typically one
// per lint diagnostic whose range intersects it.
type CodeActionsFunc func(content string, outcome wtypes.ParseOutcome, rng wtypes.Range) []wtypes.CodeAction

// FixAllFunc applies every available automatic fix to content, returning
// the fixed content.
type FixAllFunc func(content string, outcome wtypes.ParseOutcome) (string, error)

// RenameFunc renames the symbol at pos to newName, returning the edits
// needed across the document.
type RenameFunc func(content string, outcome wtypes.ParseOutcome, pos wtypes.Position, newName string) ([]wtypes.TextEdit, error)

// DebugSyntaxTreeFunc renders the parsed syntax tree as a human-readable
// string, for the debug_syntax_tree inspection endpoint.
type DebugSyntaxTreeFunc func(content string, outcome wtypes.ParseOutcome) string

// DebugControlFlowFunc renders a control-flow summary of content as a
// human-readable string, for the debug_control_flow inspection endpoint.
type DebugControlFlowFunc func(content string, outcome wtypes.ParseOutcome) string

// DebugFormatterIRFunc renders the formatter's intermediate representation
// of content as a human-readable string, for the debug_formatter_ir
// inspection endpoint.
type DebugFormatterIRFunc func(content string, outcome wtypes.ParseOutcome) string

// Set is one language's capability table. A nil field means the language
// does not support that operation — callers check before dispatching and
// surface a capability error otherwise. Search is deliberately not part of
// this table: search_pattern matches against a document's raw text, the
// same way for every language, so it is never gated by per-language
// capability lookup the way the other operations are.
type Set struct {
	Language string

	Parse  ParseFunc
	Lint   LintFunc
	Format FormatFunc

	FormatRange  FormatRangeFunc
	FormatOnType FormatOnTypeFunc
	CodeActions  CodeActionsFunc
	FixAll       FixAllFunc
	Rename       RenameFunc

	DebugSyntaxTree  DebugSyntaxTreeFunc
	DebugControlFlow DebugControlFlowFunc
	DebugFormatterIR DebugFormatterIRFunc
}

// Supports reports whether this set supports the named feature.
func (s Set) Supports(feature wtypes.FeatureName) bool {
	switch feature {
	case wtypes.FeatureFormat:
		return s.Format != nil
	case wtypes.FeatureLint:
		return s.Lint != nil
	default:
		return false
	}
}

// Dispatcher maps a DocumentFileSource's language to its capability Set.
// Registration happens once at startup; lookups are lock-free reads of a
// plain map, matching the teacher's CommunityParserRegistry.
type Dispatcher struct {
	sets map[string]Set
}

// NewDispatcher returns a dispatcher with no registered languages.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{sets: make(map[string]Set)}
}

// Register installs set under its own Language name, overwriting any
// previous registration for that language.
func (d *Dispatcher) Register(set Set) {
	d.sets[set.Language] = set
}

// Lookup returns the capability set for source, or false if none is
// registered for its language.
func (d *Dispatcher) Lookup(source wtypes.DocumentFileSource) (Set, bool) {
	s, ok := d.sets[source.Language]
	return s, ok
}
