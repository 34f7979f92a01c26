// Package wsconfig implements settings decode/merge, root-config
// discovery, manifest parsing, gitignore matching, and build-artifact
// detection for the workspace server's project layer.
//
// Grounded on standardbeagle-lci/internal/config/config.go for the
// merge semantics (project settings override the base, exclusion globs are
// unioned and deduplicated) and on original_source's
// biome_service/src/workspace/server.rs for the exact root-discovery and
// ignore-predicate algorithms.
package wsconfig

const (
	// DefaultMaxFileSize mirrors standardbeagle-lci's documented default
	// (see internal/types/types.go) of 10MB per file before parsing is
	// skipped.
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// FormatterSettings controls the format_file/format_range/format_on_type
// operations.
type FormatterSettings struct {
	Enabled            bool
	IndentWidth        int
	FormatWithErrors   bool
	LineWidth          int
}

// LinterSettings controls the pull_diagnostics lint path.
type LinterSettings struct {
	Enabled bool
}

// FilesSettings controls which paths the top-level ignore check considers
// included, independent of any per-feature configuration.
type FilesSettings struct {
	Include []string
	Ignore  []string
}

// PartialSettings is the tolerant, partially-specified shape decoded off a
// root config document or an update_settings payload: every field is a
// pointer/nil-able so "absent" and "explicitly zero value" stay
// distinguishable through Merge, mirroring Biome's PartialConfiguration.
type PartialSettings struct {
	Root      *bool
	Files     *FilesSettings
	Formatter *FormatterSettings
	Linter    *LinterSettings
	// PerFeatureIgnore holds, for a subset of features, additional ignore
	// globs scoped to just that feature (e.g. files excluded from linting
	// but still formatted).
	PerFeatureIgnore map[string][]string
}

// Settings is the fully-resolved, merged configuration for one project.
type Settings struct {
	MaxFileSize      int
	Files            FilesSettings
	Formatter        FormatterSettings
	Linter           LinterSettings
	PerFeatureIgnore map[string][]string
}

// DefaultSettings returns the settings a project gets before any root
// config or update_settings call has been applied.
func DefaultSettings() Settings {
	return Settings{
		MaxFileSize: DefaultMaxFileSize,
		Formatter:   FormatterSettings{Enabled: true, IndentWidth: 2, LineWidth: 80},
		Linter:      LinterSettings{Enabled: true},
	}
}

// Merge applies partial on top of base, returning a new Settings. Only
// fields partial actually sets are overridden; Files.Ignore is the union of
// both sides, deduplicated, matching standardbeagle-lci's mergeConfigs
// (base exclusions survive a narrower project override).
func Merge(base Settings, partial PartialSettings) Settings {
	out := base

	if partial.Files != nil {
		if partial.Files.Include != nil {
			out.Files.Include = partial.Files.Include
		}
		out.Files.Ignore = dedup(append(append([]string{}, base.Files.Ignore...), partial.Files.Ignore...))
	}
	if partial.Formatter != nil {
		out.Formatter = *partial.Formatter
	}
	if partial.Linter != nil {
		out.Linter = *partial.Linter
	}
	if partial.PerFeatureIgnore != nil {
		merged := make(map[string][]string, len(out.PerFeatureIgnore)+len(partial.PerFeatureIgnore))
		for k, v := range out.PerFeatureIgnore {
			merged[k] = v
		}
		for k, v := range partial.PerFeatureIgnore {
			merged[k] = dedup(append(append([]string{}, merged[k]...), v...))
		}
		out.PerFeatureIgnore = merged
	}
	return out
}

func dedup(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
