// Package jsonlang implements the JSON capability on the standard library.
// No JSON grammar or parser library is a dependency of any complete example
// repository in this project's retrieval pack, so this one capability is
// implemented directly on encoding/json rather than reaching for a
// tree-sitter grammar the rest of the corpus never uses for JSON.
package jsonlang

import (
	"bytes"
	"encoding/json"

	"github.com/standardbeagle/wspace/internal/capability"
	"github.com/standardbeagle/wspace/internal/wtypes"
)

// Source is the DocumentFileSource this capability registers under.
var Source = wtypes.DocumentFileSource{Language: "json"}

// Build returns the JSON capability.Set: parse (validates + decodes),
// format (re-encodes with stable indentation), and the debug inspection
// endpoints. JSON has no lint rules, no renameable symbols, and no
// control-flow constructs, so CodeActions, FixAll, Rename, and
// DebugControlFlow are left nil rather than faked.
func Build() capability.Set {
	return capability.Set{
		Language: Source.Language,
		Parse:    parse,
		Format:   format,

		FormatRange:  formatRange,
		FormatOnType: formatOnType,

		DebugSyntaxTree:  debugSyntaxTree,
		DebugFormatterIR: debugFormatterIR,
	}
}

func parse(content string, nodeCache any) (wtypes.ParseOutcome, any) {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return wtypes.ParseOutcome{
			Diagnostics: []wtypes.Diagnostic{{
				Severity: wtypes.SeverityError,
				Message:  err.Error(),
			}},
		}, nil
	}
	return wtypes.ParseOutcome{Tree: v}, nil
}

func format(content string, outcome wtypes.ParseOutcome) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatRange and formatOnType both reformat the whole document rather
// than a true sub-range: JSON has no statement/block boundaries narrower
// than the whole value, so a partial reformat would need to re-parse
// whatever text surrounds the range anyway. Both return a single edit
// replacing the entire document with the stably-indented form.
func formatRange(content string, outcome wtypes.ParseOutcome, rng wtypes.Range) ([]wtypes.TextEdit, error) {
	formatted, err := format(content, outcome)
	if err != nil {
		return nil, err
	}
	return []wtypes.TextEdit{{Range: wtypes.Range{Start: wtypes.Position{}, End: endOfContent(content)}, NewText: formatted}}, nil
}

func formatOnType(content string, outcome wtypes.ParseOutcome, pos wtypes.Position) ([]wtypes.TextEdit, error) {
	formatted, err := format(content, outcome)
	if err != nil {
		return nil, err
	}
	return []wtypes.TextEdit{{Range: wtypes.Range{Start: wtypes.Position{}, End: endOfContent(content)}, NewText: formatted}}, nil
}

func endOfContent(content string) wtypes.Position {
	line, col := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return wtypes.Position{Line: line, Column: col}
}

// debugSyntaxTree renders the decoded JSON value as indented JSON, the
// closest thing to a "syntax tree" this capability has since it never
// builds a node tree of its own.
func debugSyntaxTree(content string, outcome wtypes.ParseOutcome) string {
	b, err := json.MarshalIndent(outcome.Tree, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// debugFormatterIR returns the stably-indented form of content: for this
// capability, formatting is a single encoding/json.Indent pass, so the
// output of that pass doubles as its own intermediate representation.
func debugFormatterIR(content string, outcome wtypes.ParseOutcome) string {
	formatted, err := format(content, outcome)
	if err != nil {
		return ""
	}
	return formatted
}

// Decode is a convenience used by the configuration loader: it unmarshals
// content into out in one step and returns encoding/json's error as is.
func Decode(content string, out any) error {
	return json.Unmarshal([]byte(content), out)
}
