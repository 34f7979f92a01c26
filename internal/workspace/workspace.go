// Package workspace implements the Workspace Facade: the single entry
// point wiring the FileSource Registry, Document Store, Acceleration
// Cache, Capability Dispatcher, Project Registry, Ignore/Root Resolver,
// and Pattern Registry into the operations described for the workspace
// server.
//
// Grounded end to end on the `impl Workspace for WorkspaceServer` block in
// original_source's biome_service/src/workspace/server.rs; structured
// logging follows the hclog.Logger field convention used throughout
// kadirpekel-hector.
package workspace

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/standardbeagle/wspace/internal/capability"
	"github.com/standardbeagle/wspace/internal/docstore"
	"github.com/standardbeagle/wspace/internal/fsabs"
	"github.com/standardbeagle/wspace/internal/langs"
	"github.com/standardbeagle/wspace/internal/langs/jsonlang"
	"github.com/standardbeagle/wspace/internal/langs/jsrefine"
	"github.com/standardbeagle/wspace/internal/project"
	"github.com/standardbeagle/wspace/internal/scanner"
	"github.com/standardbeagle/wspace/internal/wsconfig"
	"github.com/standardbeagle/wspace/internal/wsearch"
	"github.com/standardbeagle/wspace/internal/wserrors"
	"github.com/standardbeagle/wspace/internal/wtypes"
)

// Server is the Workspace Facade. The zero value is not usable; construct
// with New.
type Server struct {
	logger hclog.Logger

	fs fsabs.FileSystem

	sources  *docstore.SourceRegistry
	docs     *docstore.Store
	cache    *docstore.AccelerationCache
	caps     *capability.Dispatcher
	projects *project.Registry
	patterns *wsearch.Registry
	scan     *scanner.Scanner
}

// New constructs a Server with the default capability set (every bundled
// tree-sitter grammar plus JSON) and an OS-backed filesystem.
func New() *Server {
	caps := capability.NewDispatcher()
	langs.RegisterTreeSitterLanguages(caps)
	caps.Register(jsonlang.Build())

	return &Server{
		logger:   hclog.New(&hclog.LoggerOptions{Name: "workspace", Level: hclog.Info}),
		fs:       fsabs.New(),
		sources:  docstore.NewSourceRegistry(),
		docs:     docstore.NewStore(),
		cache:    docstore.NewAccelerationCache(),
		caps:     caps,
		projects: project.NewRegistry(),
		patterns: wsearch.NewRegistry(),
		scan:     scanner.New(),
	}
}

// safe recovers a panic from a delegated capability call, turning it into
// an error instead of letting it unwind across the facade boundary. Every
// store mutation upstream of a capability call happens via
// compute-then-store (see docstore.Document.clone and Store.Open/Change),
// so a recovered panic never leaves a document half-written.
func (s *Server) safe(op string, f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("recovered panic", "op", op, "panic", r)
			err = fmt.Errorf("%s: recovered panic: %v", op, r)
		}
	}()
	return f()
}

// OpenProject discovers (or, if openUninitialized is true, assumes) the
// project root containing path and registers it, returning its key.
func (s *Server) OpenProject(path string, openUninitialized bool) (wtypes.ProjectKey, error) {
	root, partial, err := wsconfig.FindProjectRoot(s.fs, path)
	if err != nil {
		if !openUninitialized {
			return 0, err
		}
		root, partial = path, wsconfig.PartialSettings{}
	}

	settings := wsconfig.Merge(wsconfig.DefaultSettings(), partial)
	artifacts := wsconfig.NewBuildArtifactDetector(root).DetectOutputDirectories()
	settings.Files.Ignore = append(settings.Files.Ignore, artifacts...)

	p := s.projects.Insert(root, settings)
	p.Gitignore = wsconfig.NewGitMatcher()
	_ = p.Gitignore.LoadFile(root + "/.gitignore")

	s.logger.Debug("opened project", "key", p.Key, "root", root)
	return p.Key, nil
}

// CloseProject deregisters key, removing every document that the scanner
// (not a client) opened and that belongs only to this project.
func (s *Server) CloseProject(key wtypes.ProjectKey) error {
	p, ok := s.projects.Get(key)
	if !ok {
		return &wserrors.NoProjectError{Key: keyStringer(key)}
	}

	var toClose []string
	s.docs.Range(func(path string, doc *docstore.Document) bool {
		if doc.ProjectKey == key && doc.OpenedByScanner && project.BelongsOnlyTo(s.projects, p, path) {
			toClose = append(toClose, path)
		}
		return true
	})
	for _, path := range toClose {
		s.docs.CloseScanned(path)
		s.cache.Delete(path)
	}

	s.projects.Remove(key)
	return nil
}

// UpdateSettings decodes raw (a generically-shaped settings payload, as
// update_settings receives over whatever transport the caller uses) and
// merges it into project key's current settings.
func (s *Server) UpdateSettings(key wtypes.ProjectKey, raw map[string]any) error {
	p, ok := s.projects.Get(key)
	if !ok {
		return &wserrors.NoProjectError{Key: keyStringer(key)}
	}
	partial, err := wsconfig.DecodePartialSettings(raw)
	if err != nil {
		return err
	}
	p.Settings = wsconfig.Merge(p.Settings, partial)
	return nil
}

// SetManifestForProject parses a package.json-shaped manifest document and
// attaches it to the project, additionally opening a synthetic document
// for the manifest path itself so it participates in the usual
// get_file_content/pull_diagnostics surface.
func (s *Server) SetManifestForProject(key wtypes.ProjectKey, path, content string) error {
	p, ok := s.projects.Get(key)
	if !ok {
		return &wserrors.NoProjectError{Key: keyStringer(key)}
	}
	manifest, err := wsconfig.ParseManifest(content)
	if err != nil {
		return &wserrors.InvalidConfigurationError{Message: "manifest " + path, Cause: err}
	}
	p.Manifest = &manifest

	idx := s.sources.Insert(jsonlang.Source)
	s.docs.Open(path, &docstore.Document{
		Content:     content,
		Version:     1,
		SourceIndex: idx,
		ProjectKey:  key,
	})
	return nil
}

// ScanProjectFolder walks a project's root (or the given path, if
// non-empty) and opens every discovered file through the scanner path.
func (s *Server) ScanProjectFolder(key wtypes.ProjectKey, path string) (scanner.Result, error) {
	p, ok := s.projects.Get(key)
	if !ok {
		return scanner.Result{}, &wserrors.NoProjectError{Key: keyStringer(key)}
	}
	root := path
	if root == "" {
		root = p.Path
	}

	ignore := func(candidate string, isDir bool) bool {
		return wsconfig.IsIgnoredByTopLevel(p.Settings, p.Gitignore, relativeToRoot(p.Path, candidate), isDir)
	}
	result := s.scan.Scan(context.Background(), root, ignore, func(found string) error {
		content, err := s.fs.ReadFile(found)
		if err != nil {
			return err
		}
		return s.OpenFileByScanner(key, found, string(content), 1)
	})
	return result, nil
}

// OpenFile opens path with content at version, optionally with a
// caller-supplied source override. persistCache requests that this
// document's parse-acceleration helper be kept in the Acceleration Cache
// across later edits; documents that don't ask for it — scanner opens in
// particular, via OpenFileByScanner — pay no lock contention against that
// cache on open or change.
func (s *Server) OpenFile(key wtypes.ProjectKey, path, content string, version int32, source *wtypes.DocumentFileSource, persistCache bool) error {
	return s.safe("open_file", func() error {
		return s.openFileInternal(key, path, content, version, source, false, persistCache)
	})
}

// OpenFileByScanner is identical to OpenFile except the resulting document
// is marked opened_by_scanner, making it subject to eviction on
// CloseProject instead of requiring an explicit CloseFile. Scanner opens
// never request cache persistence: a background scan isn't the
// editor-opened case the Acceleration Cache exists to accelerate.
func (s *Server) OpenFileByScanner(key wtypes.ProjectKey, path, content string, version int32) error {
	return s.safe("open_file_by_scanner", func() error {
		return s.openFileInternal(key, path, content, version, nil, true, false)
	})
}

func (s *Server) openFileInternal(key wtypes.ProjectKey, path, content string, version int32, sourceOverride *wtypes.DocumentFileSource, byScanner, persistCache bool) error {
	p, ok := s.projects.Get(key)
	if !ok {
		return &wserrors.NoProjectError{Key: keyStringer(key)}
	}

	source := GuessFromPath(path)
	if sourceOverride != nil {
		source = *sourceOverride
	}
	if p.Manifest != nil && p.Manifest.Type == wsconfig.ModuleKindCommonJS && Extension(path) == ".js" {
		source.Variant = "script"
	}
	source = jsrefine.Refine(source, content)

	idx := s.sources.Insert(source)

	size := len(content)
	if size > p.Settings.MaxFileSize {
		s.docs.Open(path, &docstore.Document{
			Content:     content,
			Version:     version,
			SourceIndex: idx,
			ProjectKey:  key,
			Outcome: wtypes.ParseOutcome{
				TooLarge: &wtypes.FileTooLarge{Size: size, Limit: p.Settings.MaxFileSize},
			},
			OpenedByScanner: byScanner,
			PersistCache:    persistCache,
		})
		return nil
	}

	set, ok := s.caps.Lookup(source)
	if !ok || set.Parse == nil {
		return &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path, Extension: Extension(path)}
	}

	var nodeCache any
	if persistCache {
		nodeCache, _ = s.cache.Take(path)
	}
	outcome, newCache := set.Parse(content, nodeCache)

	if persistCache && newCache != nil {
		s.cache.Put(path, newCache)
	}

	s.docs.Open(path, &docstore.Document{
		Content:         content,
		Version:         version,
		SourceIndex:     idx,
		Outcome:         outcome,
		OpenedByScanner: byScanner,
		ProjectKey:      key,
		PersistCache:    persistCache,
	})
	return nil
}

// ChangeFile replaces the content of an already-open document. version
// must be strictly greater than the document's current version; callers
// are responsible for that monotonicity.
func (s *Server) ChangeFile(key wtypes.ProjectKey, path, content string, version int32) error {
	return s.safe("change_file", func() error {
		existing, ok := s.docs.Get(path)
		if !ok {
			return &wserrors.NotFoundError{Path: path}
		}

		source, _ := s.sources.Get(existing.SourceIndex)
		p, ok := s.projects.Get(key)
		if !ok {
			return &wserrors.NoProjectError{Key: keyStringer(key)}
		}

		set, ok := s.caps.Lookup(source)
		if !ok || set.Parse == nil {
			return &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path, Extension: Extension(path)}
		}

		size := len(content)
		if size > p.Settings.MaxFileSize {
			if existing.PersistCache {
				s.cache.Delete(path)
			}
			return s.storeChange(path, &docstore.Document{
				Content:         content,
				Version:         version,
				SourceIndex:     existing.SourceIndex,
				OpenedByScanner: existing.OpenedByScanner,
				ProjectKey:      key,
				PersistCache:    existing.PersistCache,
				Outcome: wtypes.ParseOutcome{
					TooLarge: &wtypes.FileTooLarge{Size: size, Limit: p.Settings.MaxFileSize},
				},
			})
		}

		var nodeCache any
		var hadCache bool
		if existing.PersistCache {
			nodeCache, hadCache = s.cache.Take(path)
		}
		outcome, newCache := set.Parse(content, nodeCache)
		if existing.PersistCache && (hadCache || newCache != nil) {
			s.cache.Put(path, newCache)
		}

		return s.storeChange(path, &docstore.Document{
			Content:         content,
			Version:         version,
			SourceIndex:     existing.SourceIndex,
			Outcome:         outcome,
			OpenedByScanner: existing.OpenedByScanner,
			ProjectKey:      key,
			PersistCache:    existing.PersistCache,
		})
	})
}

func (s *Server) storeChange(path string, next *docstore.Document) error {
	if !s.docs.Change(path, next) {
		return &wserrors.NotFoundError{Path: path}
	}
	return nil
}

// CloseFile removes path's document, unless it is held open by a
// background scan (a client close of a scanner-opened file is a no-op;
// CloseProject is what finally evicts those). The acceleration cache entry
// is always removed, regardless of whether the document itself was.
func (s *Server) CloseFile(path string) error {
	s.cache.Delete(path)
	if !s.docs.Close(path) {
		if _, ok := s.docs.Get(path); !ok {
			return &wserrors.NotFoundError{Path: path}
		}
	}
	return nil
}

// GetFileContent returns the current content of an open document.
func (s *Server) GetFileContent(path string) (string, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return "", &wserrors.NotFoundError{Path: path}
	}
	return doc.Content, nil
}

// GetParse returns the parse outcome for an open document, converting a
// too-large marker into a file_ignored error as get_parse does in the
// original implementation.
func (s *Server) GetParse(path string) (wtypes.ParseOutcome, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return wtypes.ParseOutcome{}, &wserrors.NotFoundError{Path: path}
	}
	if doc.Outcome.TooLarge != nil {
		return wtypes.ParseOutcome{}, &wserrors.FileIgnoredError{Path: path}
	}
	return doc.Outcome, nil
}

// PullDiagnostics runs the document's lint capability if one is
// registered, otherwise falls back to its raw parse diagnostics.
func (s *Server) PullDiagnostics(path string) ([]wtypes.Diagnostic, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return nil, &wserrors.NotFoundError{Path: path}
	}
	if doc.Outcome.TooLarge != nil {
		return nil, &wserrors.FileIgnoredError{Path: path}
	}
	source, _ := s.sources.Get(doc.SourceIndex)
	set, ok := s.caps.Lookup(source)
	if !ok {
		return nil, &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path}
	}
	if set.Lint == nil {
		return doc.Outcome.Diagnostics, nil
	}
	var diags []wtypes.Diagnostic
	err := s.safe("pull_diagnostics", func() error {
		diags = append(append([]wtypes.Diagnostic{}, doc.Outcome.Diagnostics...), set.Lint(doc.Content, doc.Outcome)...)
		return nil
	})
	return diags, err
}

// FormatFile formats an open document, refusing when the document has
// parse errors and the project's formatter settings disallow formatting
// with errors.
func (s *Server) FormatFile(key wtypes.ProjectKey, path string) (string, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return "", &wserrors.NotFoundError{Path: path}
	}
	if doc.Outcome.TooLarge != nil {
		return "", &wserrors.FileIgnoredError{Path: path}
	}
	p, ok := s.projects.Get(key)
	if !ok {
		return "", &wserrors.NoProjectError{Key: keyStringer(key)}
	}
	if doc.Outcome.HasErrors() && !p.Settings.Formatter.FormatWithErrors {
		return "", &wserrors.FormatWithErrorsDisabledError{Path: path}
	}
	source, _ := s.sources.Get(doc.SourceIndex)
	set, ok := s.caps.Lookup(source)
	if !ok || set.Format == nil {
		return "", &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path}
	}
	var out string
	err := s.safe("format_file", func() error {
		var ferr error
		out, ferr = set.Format(doc.Content, doc.Outcome)
		return ferr
	})
	return out, err
}

// PullActions returns the quick fixes the document's CodeActions capability
// reports for rng; the tree-sitter capabilities ignore rng and offer every
// fix in the document.
func (s *Server) PullActions(path string, rng wtypes.Range) ([]wtypes.CodeAction, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return nil, &wserrors.NotFoundError{Path: path}
	}
	if doc.Outcome.TooLarge != nil {
		return nil, &wserrors.FileIgnoredError{Path: path}
	}
	source, _ := s.sources.Get(doc.SourceIndex)
	set, ok := s.caps.Lookup(source)
	if !ok || set.CodeActions == nil {
		return nil, &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path}
	}
	var actions []wtypes.CodeAction
	err := s.safe("pull_actions", func() error {
		actions = set.CodeActions(doc.Content, doc.Outcome, rng)
		return nil
	})
	return actions, err
}

// FormatRange formats only rng of an open document, returning the edits
// needed to apply it. Subject to the same FormatWithErrors gate as
// FormatFile.
func (s *Server) FormatRange(key wtypes.ProjectKey, path string, rng wtypes.Range) ([]wtypes.TextEdit, error) {
	doc, set, err := s.prepareFormat(key, path)
	if err != nil {
		return nil, err
	}
	if set.FormatRange == nil {
		return nil, &wserrors.SourceFileNotSupportedError{Language: set.Language, Path: path}
	}
	var edits []wtypes.TextEdit
	err = s.safe("format_range", func() error {
		var ferr error
		edits, ferr = set.FormatRange(doc.Content, doc.Outcome, rng)
		return ferr
	})
	return edits, err
}

// FormatOnType formats the single position a just-typed trigger character
// landed at in an open document. Subject to the same FormatWithErrors gate
// as FormatFile.
func (s *Server) FormatOnType(key wtypes.ProjectKey, path string, pos wtypes.Position) ([]wtypes.TextEdit, error) {
	doc, set, err := s.prepareFormat(key, path)
	if err != nil {
		return nil, err
	}
	if set.FormatOnType == nil {
		return nil, &wserrors.SourceFileNotSupportedError{Language: set.Language, Path: path}
	}
	var edits []wtypes.TextEdit
	err = s.safe("format_on_type", func() error {
		var ferr error
		edits, ferr = set.FormatOnType(doc.Content, doc.Outcome, pos)
		return ferr
	})
	return edits, err
}

// FixFile applies every available automatic fix to an open document,
// returning the fixed content. Subject to the same FormatWithErrors gate as
// FormatFile: a fixer that rewrites broken syntax isn't trustworthy either.
func (s *Server) FixFile(key wtypes.ProjectKey, path string) (string, error) {
	doc, set, err := s.prepareFormat(key, path)
	if err != nil {
		return "", err
	}
	if set.FixAll == nil {
		return "", &wserrors.SourceFileNotSupportedError{Language: set.Language, Path: path}
	}
	var out string
	err = s.safe("fix_file", func() error {
		var ferr error
		out, ferr = set.FixAll(doc.Content, doc.Outcome)
		return ferr
	})
	return out, err
}

// prepareFormat implements the lookup+gate shared by the formatter-family
// operations: fetch the document, its project, and its capability set,
// refusing when the document has parse errors the project's settings don't
// allow formatting through.
func (s *Server) prepareFormat(key wtypes.ProjectKey, path string) (*docstore.Document, capability.Set, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return nil, capability.Set{}, &wserrors.NotFoundError{Path: path}
	}
	if doc.Outcome.TooLarge != nil {
		return nil, capability.Set{}, &wserrors.FileIgnoredError{Path: path}
	}
	p, ok := s.projects.Get(key)
	if !ok {
		return nil, capability.Set{}, &wserrors.NoProjectError{Key: keyStringer(key)}
	}
	if doc.Outcome.HasErrors() && !p.Settings.Formatter.FormatWithErrors {
		return nil, capability.Set{}, &wserrors.FormatWithErrorsDisabledError{Path: path}
	}
	source, _ := s.sources.Get(doc.SourceIndex)
	set, ok := s.caps.Lookup(source)
	if !ok {
		return nil, capability.Set{}, &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path}
	}
	return doc, set, nil
}

// Rename renames the symbol at pos in an open document to newName,
// returning the edits needed across the document.
func (s *Server) Rename(path string, pos wtypes.Position, newName string) ([]wtypes.TextEdit, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return nil, &wserrors.NotFoundError{Path: path}
	}
	if doc.Outcome.TooLarge != nil {
		return nil, &wserrors.FileIgnoredError{Path: path}
	}
	source, _ := s.sources.Get(doc.SourceIndex)
	set, ok := s.caps.Lookup(source)
	if !ok || set.Rename == nil {
		return nil, &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path}
	}
	var edits []wtypes.TextEdit
	err := s.safe("rename", func() error {
		var rerr error
		edits, rerr = set.Rename(doc.Content, doc.Outcome, pos, newName)
		return rerr
	})
	return edits, err
}

// GetSyntaxTree renders the parsed syntax tree of an open document as a
// human-readable string.
func (s *Server) GetSyntaxTree(path string) (string, error) {
	return s.debugDump(path, "get_syntax_tree", func(set capability.Set, content string, outcome wtypes.ParseOutcome) (string, bool) {
		if set.DebugSyntaxTree == nil {
			return "", false
		}
		return set.DebugSyntaxTree(content, outcome), true
	})
}

// GetControlFlowGraph renders a control-flow summary of an open document as
// a human-readable string.
func (s *Server) GetControlFlowGraph(path string) (string, error) {
	return s.debugDump(path, "get_control_flow_graph", func(set capability.Set, content string, outcome wtypes.ParseOutcome) (string, bool) {
		if set.DebugControlFlow == nil {
			return "", false
		}
		return set.DebugControlFlow(content, outcome), true
	})
}

// GetFormatterIR renders the formatter intermediate representation of an
// open document as a human-readable string.
func (s *Server) GetFormatterIR(path string) (string, error) {
	return s.debugDump(path, "get_formatter_ir", func(set capability.Set, content string, outcome wtypes.ParseOutcome) (string, bool) {
		if set.DebugFormatterIR == nil {
			return "", false
		}
		return set.DebugFormatterIR(content, outcome), true
	})
}

// debugDump implements the lookup+dispatch shared by the three debug_*
// inspection endpoints.
func (s *Server) debugDump(path, op string, call func(capability.Set, string, wtypes.ParseOutcome) (string, bool)) (string, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return "", &wserrors.NotFoundError{Path: path}
	}
	if doc.Outcome.TooLarge != nil {
		return "", &wserrors.FileIgnoredError{Path: path}
	}
	source, _ := s.sources.Get(doc.SourceIndex)
	set, ok := s.caps.Lookup(source)
	if !ok {
		return "", &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path}
	}
	var out string
	err := s.safe(op, func() error {
		rendered, supported := call(set, doc.Content, doc.Outcome)
		if !supported {
			return &wserrors.SourceFileNotSupportedError{Language: source.Language, Path: path}
		}
		out = rendered
		return nil
	})
	return out, err
}

// IsPathIgnored reports whether path would be ignored by the project's
// top-level settings and, if features is non-empty, its per-feature
// settings too.
func (s *Server) IsPathIgnored(key wtypes.ProjectKey, path string, isDir bool, features []wtypes.FeatureName) (bool, error) {
	p, ok := s.projects.Get(key)
	if !ok {
		return false, &wserrors.NoProjectError{Key: keyStringer(key)}
	}
	rel := relativeToRoot(p.Path, path)
	if wsconfig.IsIgnoredByTopLevel(p.Settings, p.Gitignore, rel, isDir) {
		return true, nil
	}
	featureNames := make([]string, len(features))
	for i, f := range features {
		featureNames[i] = string(f)
	}
	return wsconfig.IsIgnoredByFeatures(p.Settings, rel, featureNames), nil
}

// FileFeaturesResult reports, per requested feature, whether path is
// supported and not ignored for it.
type FileFeaturesResult struct {
	Ignored  bool
	Supports map[wtypes.FeatureName]bool
}

// FileFeatures evaluates every requested feature for path: a path that is
// ignored at the top level or by every requested feature is reported
// ignored outright; otherwise each feature's individual support is
// resolved against the capability table for path's guessed source. A path
// matching one of wsconfig's protected patterns (lockfiles, .git) is always
// reported ignored once at least one requested feature would otherwise be
// processed, regardless of the project's own include/ignore settings.
func (s *Server) FileFeatures(key wtypes.ProjectKey, path string, features []wtypes.FeatureName) (FileFeaturesResult, error) {
	p, ok := s.projects.Get(key)
	if !ok {
		return FileFeaturesResult{}, &wserrors.NoProjectError{Key: keyStringer(key)}
	}

	rel := relativeToRoot(p.Path, path)
	if wsconfig.IsIgnoredByTopLevel(p.Settings, p.Gitignore, rel, false) {
		return FileFeaturesResult{Ignored: true}, nil
	}

	featureNames := make([]string, len(features))
	for i, f := range features {
		featureNames[i] = string(f)
	}
	if wsconfig.IsIgnoredByFeatures(p.Settings, rel, featureNames) {
		return FileFeaturesResult{Ignored: true}, nil
	}

	source := GuessFromPath(path)
	set, ok := s.caps.Lookup(source)
	result := FileFeaturesResult{Supports: make(map[wtypes.FeatureName]bool, len(features))}
	processed := false
	for _, f := range features {
		if f == wtypes.FeatureSearch {
			result.Supports[f] = true
			processed = true
			continue
		}
		supported := ok && set.Supports(f)
		result.Supports[f] = supported
		processed = processed || supported
	}
	if processed && wsconfig.IsProtectedPath(rel) {
		return FileFeaturesResult{Ignored: true}, nil
	}
	return result, nil
}

// ParsePattern compiles pattern and returns its allocated id.
func (s *Server) ParsePattern(pattern string) (wtypes.PatternID, error) {
	return s.patterns.Parse(pattern)
}

// DropPattern releases a previously compiled pattern.
func (s *Server) DropPattern(id wtypes.PatternID) {
	s.patterns.Drop(id)
}

// SearchPattern evaluates a compiled pattern against an open document.
func (s *Server) SearchPattern(id wtypes.PatternID, path string) ([]wtypes.Range, error) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return nil, &wserrors.NotFoundError{Path: path}
	}
	return s.patterns.Search(id, doc.Content)
}

// RageReport is a small diagnostic/telemetry dump, mirroring the `rage`
// operation in the original implementation.
type RageReport struct {
	OpenDocuments int
	OpenProjects  int
	CachedParses  int
}

// Rage returns a snapshot of the server's current load.
func (s *Server) Rage() RageReport {
	projects := 0
	s.projects.Range(func(*project.Project) bool { projects++; return true })
	return RageReport{
		OpenDocuments: s.docs.Len(),
		OpenProjects:  projects,
		CachedParses:  s.cache.Len(),
	}
}

type keyStringer wtypes.ProjectKey

func (k keyStringer) String() string { return fmt.Sprintf("project#%d", uint64(k)) }
