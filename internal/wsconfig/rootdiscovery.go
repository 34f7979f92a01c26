package wsconfig

import (
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/standardbeagle/wspace/internal/fsabs"
	"github.com/standardbeagle/wspace/internal/langs/jsonlang"
	"github.com/standardbeagle/wspace/internal/wserrors"
)

var logger = hclog.New(&hclog.LoggerOptions{Name: "config", Level: hclog.Info})

// ConfigFileNames are the root-config file names root discovery probes
// for, in order, at each ancestor directory. They play the role
// biome.json/biome.jsonc play in the original implementation.
var ConfigFileNames = []string{"workspace.json", "workspace.jsonc"}

// IsRootConfigFileName reports whether name is one of the recognized root
// config file names. The "never ignore the workspace's own root config
// file" rule in IsIgnoredByTopLevel keys off this.
func IsRootConfigFileName(name string) bool {
	for _, n := range ConfigFileNames {
		if name == n {
			return true
		}
	}
	return false
}

// FindConfigFile returns the path of the first recognized config file
// present directly in dir, or "" if none exists.
func FindConfigFile(fs fsabs.FileSystem, dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if fs.PathExists(candidate) {
			return candidate
		}
	}
	return ""
}

// FindProjectRoot walks from path up through its ancestors looking for a
// directory containing a recognized config file whose "root" field is
// absent or true. It returns the discovered root directory and the parsed
// PartialSettings from that config file, an error if a found config file
// fails to parse, or a not_found error if no ancestor holds an accepting
// config file.
//
// Mirrors find_project_root/get_config_file in the original implementation
// (see original_source) exactly, including accepting the starting
// directory itself as a candidate.
func FindProjectRoot(fs fsabs.FileSystem, path string) (string, PartialSettings, error) {
	dir := path
	if !fs.IsDir(dir) {
		dir = filepath.Dir(dir)
	}

	for {
		if configPath := FindConfigFile(fs, dir); configPath != "" {
			content, err := fs.ReadFile(configPath)
			if err != nil {
				return "", PartialSettings{}, wserrors.WrapIO(configPath, err)
			}
			var doc rootConfigDoc
			if err := jsonlang.Decode(string(content), &doc); err != nil {
				return "", PartialSettings{}, &wserrors.InvalidConfigurationError{
					Message: "failed to parse " + configPath,
					Cause:   err,
				}
			}
			if doc.Root == nil || *doc.Root {
				logger.Debug("discovered project root", "root", dir, "config", configPath)
				return dir, doc.toPartialSettings(), nil
			}
			logger.Debug("config file declines root", "config", configPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root with no accepting config file.
			return "", PartialSettings{}, &wserrors.NotFoundError{Path: path}
		}
		dir = parent
	}
}

// rootConfigDoc is the on-disk JSON shape of a root config file.
type rootConfigDoc struct {
	Root      *bool               `json:"root"`
	Files     *filesDoc           `json:"files"`
	Formatter *FormatterSettings  `json:"formatter"`
	Linter    *LinterSettings     `json:"linter"`
}

type filesDoc struct {
	Include []string `json:"include"`
	Ignore  []string `json:"ignore"`
}

func (d rootConfigDoc) toPartialSettings() PartialSettings {
	p := PartialSettings{Root: d.Root, Formatter: d.Formatter, Linter: d.Linter}
	if d.Files != nil {
		p.Files = &FilesSettings{Include: d.Files.Include, Ignore: d.Files.Ignore}
	}
	return p
}

// IsIgnoredByTopLevel implements the project-wide (not per-feature) ignore
// predicate: a path is included only if the include list is empty, the
// path is a directory, or it matches an include pattern; it is then
// ignored if it's not included, matches an ignore pattern, or matches the
// project's gitignore.
//
// The root config file itself is never reported as ignored here — using
// conjunction against both recognized names, per the fix recorded in
// DESIGN.md for the disjunction bug in the original implementation, which
// was a tautology that protected nothing.
func IsIgnoredByTopLevel(settings Settings, gitignore *GitMatcher, path string, isDir bool) bool {
	name := filepath.Base(path)
	if IsRootConfigFileName(name) {
		return false
	}

	included := len(settings.Files.Include) == 0 || isDir || matchesAny(settings.Files.Include, path)
	if !included {
		return true
	}
	if matchesAny(settings.Files.Ignore, path) {
		return true
	}
	if gitignore != nil && gitignore.ShouldIgnore(path, isDir) {
		return true
	}
	return false
}

// ProtectedPathPatterns are lockfile names IsProtectedPath reports as
// protected regardless of the project's own ignore settings: files a
// formatter or fixer could silently corrupt. Grounded on
// is_protected_file/set_protected_for_all_features referenced around
// original_source's server.rs:564-569; the original's own pattern table
// lives outside the crates included in this project's retrieval pack, so
// this list is the common lockfile set rather than a byte-for-byte port.
var ProtectedPathPatterns = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"composer.lock",
	"Cargo.lock",
}

// IsProtectedPath reports whether path matches one of ProtectedPathPatterns,
// or falls inside a .git directory.
func IsProtectedPath(path string) bool {
	if matchesAny(ProtectedPathPatterns, path) {
		return true
	}
	path = filepath.ToSlash(path)
	return path == ".git" || strings.HasPrefix(path, ".git/") || strings.Contains(path, "/.git/")
}

func matchesAny(patterns []string, path string) bool {
	path = filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if strings.HasSuffix(path, "/"+pattern) || path == pattern {
			return true
		}
	}
	return false
}

// IsIgnoredByFeatures implements the per-feature ignore predicate. An empty
// feature slice is never treated as "ignored": it returns false before any
// feature is checked, and otherwise the path is ignored only if every
// requested feature's ignore list matches it. This corrects the
// original implementation's bitwise-AND accumulator seeded true, which
// made an empty feature set vacuously "ignored by every (zero) feature" —
// see the Open Question decision recorded in DESIGN.md.
func IsIgnoredByFeatures(settings Settings, path string, features []string) bool {
	if len(features) == 0 {
		return false
	}
	ignoredByAll := true
	for _, feature := range features {
		ignored := matchesAny(settings.PerFeatureIgnore[feature], path)
		if !ignored {
			ignoredByAll = false
		}
	}
	return ignoredByAll
}
