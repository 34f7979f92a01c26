package workspace

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/wspace/internal/wtypes"
)

var extensionLanguage = map[string]string{
	".go":     "go",
	".js":     "javascript",
	".jsx":    "javascript",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".ts":     "typescript",
	".tsx":    "tsx",
	".py":     "python",
	".cs":     "csharp",
	".cpp":    "cpp",
	".cc":     "cpp",
	".hpp":    "cpp",
	".java":   "java",
	".php":    "php",
	".rs":     "rust",
	".zig":    "zig",
	".json":   "json",
	".jsonc":  "json",
}

// GuessFromPath maps a file extension to an initial DocumentFileSource
// guess, before any content-based refinement runs. Unrecognized
// extensions map to the unknown source.
func GuessFromPath(path string) wtypes.DocumentFileSource {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensionLanguage[ext]
	if !ok {
		return wtypes.UnknownSource
	}
	variant := ""
	if ext == ".mjs" {
		variant = "module"
	} else if ext == ".cjs" {
		variant = "script"
	}
	return wtypes.DocumentFileSource{Language: lang, Variant: variant}
}

// Extension returns the lowercase extension (with leading dot) of path.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// relativeToRoot converts an absolute path into one relative to root, the
// form every ignore/gitignore pattern in this project's settings is written
// against. Falls back to path itself when it isn't under root at all.
func relativeToRoot(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
