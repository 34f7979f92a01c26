// Package scanner implements the default Folder Scanner collaborator: a
// concurrent directory walk that opens every non-ignored file through a
// caller-supplied callback, plus optional fsnotify-based watch
// registration that reports later written or created files to a
// caller-supplied callback.
//
// Grounded on the worker-pool-over-errgroup and doublestar include/exclude
// matching pattern in standardbeagle-lci/internal/indexing/watcher.go; the
// scanner/watcher split itself follows the responsibility carve-out noted
// against scan_project_folder in original_source's
// biome_service/src/workspace/server.rs ("any file watcher registration is
// a scanner concern").
package scanner

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// IgnoreFunc reports whether path should be skipped by the scan.
type IgnoreFunc func(path string, isDir bool) bool

// OpenFunc is called once per non-ignored regular file the scan visits.
type OpenFunc func(path string) error

// Result summarizes one completed scan.
type Result struct {
	FilesOpened int
	Errors      []error
	Duration    time.Duration
}

// Scanner walks a project root concurrently and can register a live
// filesystem watch over it.
type Scanner struct {
	// Concurrency bounds how many OpenFunc calls run at once.
	Concurrency int

	logger hclog.Logger
}

// New returns a Scanner with a modest default concurrency.
func New() *Scanner {
	return &Scanner{
		Concurrency: 8,
		logger:      hclog.New(&hclog.LoggerOptions{Name: "scanner", Level: hclog.Info}),
	}
}

// Scan walks root, calling open for every regular file ignore reports as
// not ignored. Opens run on an errgroup whose context the walk checks, so
// cancelling ctx stops the walk promptly. An error returned by open is
// recorded in Result.Errors and does not stop the scan.
func (s *Scanner) Scan(ctx context.Context, root string, ignore IgnoreFunc, open OpenFunc) Result {
	start := time.Now()
	var result Result
	var mu sync.Mutex

	concurrency := s.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			mu.Lock()
			result.Errors = append(result.Errors, err)
			mu.Unlock()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		isDir := d.IsDir()
		if ignore != nil && ignore(path, isDir) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}
		if isDir {
			return nil
		}

		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			err := open(path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return nil
			}
			result.FilesOpened++
			return nil
		})
		return nil
	})
	if walkErr != nil {
		result.Errors = append(result.Errors, walkErr)
	}
	_ = g.Wait()

	result.Duration = time.Since(start)
	s.logger.Debug("scan complete", "root", root, "opened", result.FilesOpened, "errors", len(result.Errors), "duration", result.Duration)
	return result
}

// Watch registers an fsnotify watch over root and every subdirectory not
// excluded by ignore, invoking onChange with the changed path whenever a
// write or create event fires. The returned closer stops the watch.
func (s *Scanner) Watch(root string, ignore IgnoreFunc, onChange func(path string)) (io.Closer, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if ignore != nil && ignore(path, true) {
			return fs.SkipDir
		}
		return w.Add(path)
	})
	if err != nil {
		w.Close()
		return nil, err
	}
	s.logger.Debug("watch registered", "root", root)

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if ignore == nil || !ignore(event.Name, true) {
						w.Add(event.Name)
					}
					continue
				}
				if ignore != nil && ignore(event.Name, false) {
					continue
				}
				onChange(event.Name)
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w, nil
}

// MatchAny reports whether path matches any of the given doublestar glob
// patterns, used by callers building an IgnoreFunc from settings.
func MatchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
