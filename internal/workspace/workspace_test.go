package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/wspace/internal/wserrors"
	"github.com/standardbeagle/wspace/internal/wtypes"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestOpenProjectDiscoversRootConfig(t *testing.T) {
	root := writeProject(t, map[string]string{
		"workspace.json": `{"formatter":{"enabled":true,"indentWidth":4,"lineWidth":100}}`,
		"src/a.go":       "package a\n",
	})

	s := New()
	key, err := s.OpenProject(filepath.Join(root, "src", "a.go"), false)
	require.NoError(t, err)
	assert.NotZero(t, key)

	p, ok := s.projects.Get(key)
	require.True(t, ok)
	assert.Equal(t, root, p.Path)
	assert.Equal(t, 4, p.Settings.Formatter.IndentWidth)
}

func TestOpenProjectFallsBackWhenUninitialized(t *testing.T) {
	root := writeProject(t, map[string]string{"a.go": "package a\n"})

	s := New()
	key, err := s.OpenProject(root, true)
	require.NoError(t, err)
	assert.NotZero(t, key)
}

func TestOpenFileParsesAndTracksContent(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": "{}"})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, false))

	content, err := s.GetFileContent(path)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", content)

	outcome, err := s.GetParse(path)
	require.NoError(t, err)
	assert.Nil(t, outcome.TooLarge)
	assert.False(t, outcome.HasErrors())
}

func TestOpenFileTooLargeSkipsParsing(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	p, _ := s.projects.Get(key)
	p.Settings.MaxFileSize = 4

	path := filepath.Join(root, "big.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, false))

	_, err = s.GetParse(path)
	require.Error(t, err)
	assert.Equal(t, wserrors.KindFileIgnored, wserrors.KindOf(err))
}

func TestOpenFileUnsupportedExtensionErrors(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	err = s.OpenFile(key, filepath.Join(root, "notes.txt"), "hello", 1, nil, false)
	require.Error(t, err)
}

func TestChangeFileReparsesAndBumpsVersion(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, false))
	require.NoError(t, s.ChangeFile(key, path, "package main\n\nfunc main() {}\n", 2))

	content, err := s.GetFileContent(path)
	require.NoError(t, err)
	assert.Contains(t, content, "func main")
}

func TestChangeFileOnUnopenedPathFails(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	err = s.ChangeFile(key, filepath.Join(root, "ghost.go"), "package a\n", 1)
	require.Error(t, err)
}

func TestCloseFileRemovesDocumentAndCache(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, false))
	require.NoError(t, s.CloseFile(path))

	_, err = s.GetFileContent(path)
	require.Error(t, err)
	assert.Zero(t, s.cache.Len())
}

func TestCloseProjectEvictsOnlyScannerOpenedDocuments(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	client := filepath.Join(root, "client.go")
	scanned := filepath.Join(root, "scanned.go")
	require.NoError(t, s.OpenFile(key, client, "package main\n", 1, nil, false))
	require.NoError(t, s.OpenFileByScanner(key, scanned, "package main\n", 1))

	require.NoError(t, s.CloseProject(key))

	_, ok := s.docs.Get(scanned)
	assert.False(t, ok, "scanner-opened document should be evicted on close_project")
	_, ok = s.docs.Get(client)
	assert.True(t, ok, "client-opened document should survive close_project")
}

func TestFormatFileRefusesWhenDisabledAndHasErrors(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	p, _ := s.projects.Get(key)
	p.Settings.Formatter.FormatWithErrors = false

	path := filepath.Join(root, "manifest.json")
	require.NoError(t, s.OpenFile(key, path, `{"broken":`, 1, nil, false))

	_, err = s.FormatFile(key, path)
	require.Error(t, err)
}

func TestFormatFileFormatsJSON(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "data.json")
	require.NoError(t, s.OpenFile(key, path, `{"a":1}`, 1, nil, false))

	out, err := s.FormatFile(key, path)
	require.NoError(t, err)
	assert.Contains(t, out, "\n")
}

func TestPullDiagnosticsFallsBackToParseDiagnostics(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "manifest.json")
	require.NoError(t, s.OpenFile(key, path, `{"broken":`, 1, nil, false))

	diags, err := s.PullDiagnostics(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, wtypes.SeverityError, diags[0].Severity)
}

func TestPullDiagnosticsRunsLintCapability(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.js")
	require.NoError(t, s.OpenFile(key, path, "function f() { debugger; }\n", 1, nil, false))

	diags, err := s.PullDiagnostics(path)
	require.NoError(t, err)
	found := false
	for _, d := range diags {
		if d.Rule == "no-debugger" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestIsPathIgnoredHonorsFilesIgnore(t *testing.T) {
	root := writeProject(t, map[string]string{
		"workspace.json": `{"files":{"ignore":["*.log"]}}`,
	})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	ignored, err := s.IsPathIgnored(key, filepath.Join(root, "debug.log"), false, nil)
	require.NoError(t, err)
	assert.True(t, ignored)

	ignored, err = s.IsPathIgnored(key, filepath.Join(root, "main.go"), false, nil)
	require.NoError(t, err)
	assert.False(t, ignored)
}

func TestFileFeaturesReportsIgnoredAndSupported(t *testing.T) {
	root := writeProject(t, map[string]string{
		"workspace.json": `{"files":{"ignore":["*.log"]}}`,
	})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	res, err := s.FileFeatures(key, filepath.Join(root, "debug.log"), wtypes.AllFeatures)
	require.NoError(t, err)
	assert.True(t, res.Ignored)

	res, err = s.FileFeatures(key, filepath.Join(root, "main.js"), wtypes.AllFeatures)
	require.NoError(t, err)
	assert.False(t, res.Ignored)
	assert.True(t, res.Supports[wtypes.FeatureLint], "javascript grammar registers a lint pattern")
	assert.True(t, res.Supports[wtypes.FeatureSearch], "search is available for every open document")
	assert.False(t, res.Supports[wtypes.FeatureFormat], "no formatter is wired for the tree-sitter grammars")
}

func TestSearchPatternFindsMatchingLines(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n// TODO fix this\n", 1, nil, false))

	id, err := s.ParsePattern("TODO")
	require.NoError(t, err)
	defer s.DropPattern(id)

	ranges, err := s.SearchPattern(id, path)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, 1, ranges[0].Start.Line)
}

func TestUpdateSettingsDecodesGenericPayload(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	err = s.UpdateSettings(key, map[string]any{
		"formatter": map[string]any{"enabled": true, "indentWidth": "8", "lineWidth": 120},
	})
	require.NoError(t, err)

	p, _ := s.projects.Get(key)
	assert.Equal(t, 8, p.Settings.Formatter.IndentWidth)
}

func TestScanProjectFolderOpensFilesAndSkipsIgnored(t *testing.T) {
	root := writeProject(t, map[string]string{
		"workspace.json": `{"files":{"ignore":["vendor/**"]}}`,
		"main.go":        "package main\n",
		"vendor/dep.go":  "package dep\n",
	})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	result, err := s.ScanProjectFolder(key, "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesOpened, "workspace.json and main.go")

	_, ok := s.docs.Get(filepath.Join(root, "vendor", "dep.go"))
	assert.False(t, ok)
}

func TestOpenFileOnlyPersistsCacheWhenRequested(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	unpersisted := filepath.Join(root, "unpersisted.go")
	require.NoError(t, s.OpenFile(key, unpersisted, "package main\n", 1, nil, false))
	assert.Zero(t, s.cache.Len(), "an open without persist_cache must not populate the acceleration cache")

	persisted := filepath.Join(root, "persisted.go")
	require.NoError(t, s.OpenFile(key, persisted, "package main\n", 1, nil, true))
	assert.Equal(t, 1, s.cache.Len(), "an open with persist_cache must populate the acceleration cache")
}

func TestOpenFileByScannerNeverPersistsCache(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "scanned.go")
	require.NoError(t, s.OpenFileByScanner(key, path, "package main\n", 1))
	assert.Zero(t, s.cache.Len(), "scanner opens must never request cache persistence")
}

func TestChangeFileOnlyUpdatesCacheWhenPersisted(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, true))
	require.Equal(t, 1, s.cache.Len())

	require.NoError(t, s.ChangeFile(key, path, "package main\n\nfunc main() {}\n", 2))
	assert.Equal(t, 1, s.cache.Len(), "persist_cache carries forward across change_file")
}

func TestPullActionsOffersDeleteFixForLintMatch(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.js")
	require.NoError(t, s.OpenFile(key, path, "function f() { debugger; }\n", 1, nil, false))

	actions, err := s.PullActions(path, wtypes.Range{})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "quickfix.no-debugger", actions[0].Kind)
}

func TestFixFileRemovesLintedText(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.js")
	require.NoError(t, s.OpenFile(key, path, "function f() { debugger; }\n", 1, nil, false))

	fixed, err := s.FixFile(key, path)
	require.NoError(t, err)
	assert.NotContains(t, fixed, "debugger")
}

func TestRenameReplacesEveryOccurrence(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	content := "package main\n\nfunc helper() {}\n\nfunc main() { helper() }\n"
	require.NoError(t, s.OpenFile(key, path, content, 1, nil, false))

	edits, err := s.Rename(path, wtypes.Position{Line: 2, Column: 6}, "doStuff")
	require.NoError(t, err)
	require.Len(t, edits, 2)
	for _, e := range edits {
		assert.Equal(t, "doStuff", e.NewText)
	}
}

func TestRenameErrorsWhenNoIdentifierAtPosition(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, false))

	_, err = s.Rename(path, wtypes.Position{Line: 0, Column: 7}, "x")
	require.Error(t, err)
}

func TestGetSyntaxTreeRendersParsedTree(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, false))

	tree, err := s.GetSyntaxTree(path)
	require.NoError(t, err)
	assert.Contains(t, tree, "source_file")
}

func TestGetControlFlowGraphCountsConstructs(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	content := "package main\n\nfunc main() {\n\tif true {\n\t\treturn\n\t}\n}\n"
	require.NoError(t, s.OpenFile(key, path, content, 1, nil, false))

	summary, err := s.GetControlFlowGraph(path)
	require.NoError(t, err)
	assert.Contains(t, summary, "if_statement")
	assert.Contains(t, summary, "return_statement")
}

func TestGetFormatterIRDumpsLeafTokens(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, false))

	ir, err := s.GetFormatterIR(path)
	require.NoError(t, err)
	assert.Contains(t, ir, "package")
}

func TestFixFileUnsupportedWithoutLintCapabilityErrors(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "main.go")
	require.NoError(t, s.OpenFile(key, path, "package main\n", 1, nil, false))

	_, err = s.FixFile(key, path)
	require.Error(t, err)
	assert.Equal(t, wserrors.KindSourceFileNotSupported, wserrors.KindOf(err))
}

func TestFileFeaturesReportsProtectedLockfileAsIgnored(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)

	res, err := s.FileFeatures(key, filepath.Join(root, "package-lock.json"), wtypes.AllFeatures)
	require.NoError(t, err)
	assert.True(t, res.Ignored, "lockfiles are always protected once a feature would otherwise process them")
}

func TestRageReportsLoad(t *testing.T) {
	root := writeProject(t, map[string]string{"workspace.json": `{}`})
	s := New()
	key, err := s.OpenProject(root, false)
	require.NoError(t, err)
	require.NoError(t, s.OpenFile(key, filepath.Join(root, "main.go"), "package main\n", 1, nil, false))

	report := s.Rage()
	assert.Equal(t, 1, report.OpenProjects)
	assert.Equal(t, 1, report.OpenDocuments)
}
