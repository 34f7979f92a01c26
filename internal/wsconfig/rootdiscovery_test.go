package wsconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFS is an in-memory fsabs.FileSystem for exercising root discovery
// without touching the real filesystem.
type fakeFS struct {
	files map[string][]byte
	dirs  map[string]bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (f *fakeFS) PathExists(path string) bool {
	_, isFile := f.files[path]
	return isFile || f.dirs[path]
}

func (f *fakeFS) IsDir(path string) bool { return f.dirs[path] }

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, &fileNotFound{path}
	}
	return data, nil
}

type fileNotFound struct{ path string }

func (e *fileNotFound) Error() string { return "not found: " + e.path }

func TestFindProjectRootAcceptsImplicitRoot(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/repo"] = true
	fs.dirs["/repo/src"] = true
	fs.files[filepath.Join("/repo", "workspace.json")] = []byte(`{}`)

	root, settings, err := FindProjectRoot(fs, "/repo/src")
	require.NoError(t, err)
	assert.Equal(t, "/repo", root)
	assert.Nil(t, settings.Root)
}

func TestFindProjectRootRejectsExplicitFalse(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/repo"] = true
	fs.dirs["/repo/nested"] = true
	fs.files[filepath.Join("/repo", "workspace.json")] = []byte(`{}`)
	fs.files[filepath.Join("/repo/nested", "workspace.json")] = []byte(`{"root": false}`)

	root, _, err := FindProjectRoot(fs, "/repo/nested")
	require.NoError(t, err)
	assert.Equal(t, "/repo", root, "the nested config explicitly opts out of being a root, so discovery must keep walking up")
}

func TestFindProjectRootPropagatesInvalidConfiguration(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/repo"] = true
	fs.files[filepath.Join("/repo", "workspace.json")] = []byte(`not json`)

	_, _, err := FindProjectRoot(fs, "/repo")
	require.Error(t, err)
}

func TestIsRootConfigFileNameProtectedFromIgnore(t *testing.T) {
	settings := DefaultSettings()
	settings.Files.Ignore = []string{"*.json"}

	assert.False(t, IsIgnoredByTopLevel(settings, nil, "/repo/workspace.json", false))
	assert.True(t, IsIgnoredByTopLevel(settings, nil, "/repo/other.json", false))
}

func TestIsIgnoredByFeaturesEmptySetIsNotIgnored(t *testing.T) {
	settings := DefaultSettings()
	settings.PerFeatureIgnore = map[string][]string{"lint": {"*.go"}}

	assert.False(t, IsIgnoredByFeatures(settings, "main.go", nil))
}

func TestIsIgnoredByFeaturesRequiresAllToAgree(t *testing.T) {
	settings := DefaultSettings()
	settings.PerFeatureIgnore = map[string][]string{
		"lint":   {"*.go"},
		"format": {"*.md"},
	}

	assert.False(t, IsIgnoredByFeatures(settings, "main.go", []string{"lint", "format"}))
	assert.True(t, IsIgnoredByFeatures(settings, "main.go", []string{"lint"}))
}
