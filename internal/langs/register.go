package langs

import (
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/wspace/internal/capability"
)

// RegisterTreeSitterLanguages installs one capability.Set per grammar this
// server bundles. Grammar selection mirrors the set of tree-sitter
// dependencies standardbeagle-lci already carries.
func RegisterTreeSitterLanguages(d *capability.Dispatcher) {
	adapters := []TreeSitterAdapter{
		{LanguageName: "go", Grammar: func() unsafe.Pointer { return tree_sitter_go.Language() }},
		{LanguageName: "javascript", Grammar: func() unsafe.Pointer { return tree_sitter_javascript.Language() },
			LintPatterns: []LintPattern{
				{Rule: "no-debugger", Pattern: `\bdebugger\b`, Message: "remove debugger statement"},
			}},
		{LanguageName: "typescript", Grammar: func() unsafe.Pointer { return tree_sitter_typescript.LanguageTypescript() }},
		{LanguageName: "tsx", Grammar: func() unsafe.Pointer { return tree_sitter_typescript.LanguageTSX() }},
		{LanguageName: "python", Grammar: func() unsafe.Pointer { return tree_sitter_python.Language() }},
		{LanguageName: "csharp", Grammar: func() unsafe.Pointer { return tree_sitter_csharp.Language() }},
		{LanguageName: "cpp", Grammar: func() unsafe.Pointer { return tree_sitter_cpp.Language() }},
		{LanguageName: "java", Grammar: func() unsafe.Pointer { return tree_sitter_java.Language() }},
		{LanguageName: "php", Grammar: func() unsafe.Pointer { return tree_sitter_php.LanguagePHP() }},
		{LanguageName: "rust", Grammar: func() unsafe.Pointer { return tree_sitter_rust.Language() }},
		{LanguageName: "zig", Grammar: func() unsafe.Pointer { return tree_sitter_zig.Language() }},
	}
	for _, a := range adapters {
		d.Register(a.Build())
	}
}
