package wsconfig

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// GitMatcher parses .gitignore-style pattern files and answers
// ShouldIgnore queries against them. Adapted from the pattern
// classification/optimization scheme in
// standardbeagle-lci/internal/config/gitignore.go: patterns are classified
// once at load time (exact/prefix/suffix/complex-regex) so the hot
// ShouldIgnore path avoids compiling or re-parsing anything.
type GitMatcher struct {
	patterns []gitPattern

	regexCache sync.Map
}

type gitPattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	patternType patternType
	compiled    *regexp.Regexp
	prefix      string
	suffix      string
}

type patternType int

const (
	patternExact patternType = iota
	patternPrefix
	patternSuffix
	patternWildcard
	patternComplex
)

// NewGitMatcher returns an empty matcher.
func NewGitMatcher() *GitMatcher {
	return &GitMatcher{}
}

// LoadFile reads and appends patterns from a gitignore-style file at path.
// A missing file is not an error.
func (m *GitMatcher) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()
	return m.scan(file)
}

func (m *GitMatcher) scan(r *os.File) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern parses and appends one pattern line.
func (m *GitMatcher) AddPattern(line string) {
	p := gitPattern{}

	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}
	p.Pattern = line
	p.patternType, p.prefix, p.suffix, p.compiled = m.analyze(line)

	m.patterns = append(m.patterns, p)
}

func (m *GitMatcher) analyze(pattern string) (patternType, string, string, *regexp.Regexp) {
	if !strings.ContainsAny(pattern, "*?[") {
		return patternExact, pattern, pattern, nil
	}
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "?") && !strings.Contains(pattern, "[") {
		if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
			return patternSuffix, "", pattern[1:], nil
		}
		if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
			return patternPrefix, pattern[:len(pattern)-1], "", nil
		}
	}
	return m.compileComplex(pattern)
}

func (m *GitMatcher) compileComplex(pattern string) (patternType, string, string, *regexp.Regexp) {
	regexPattern := globToRegex(pattern)
	if cached, ok := m.regexCache.Load(regexPattern); ok {
		return patternComplex, "", "", cached.(*regexp.Regexp)
	}
	compiled, err := regexp.Compile(regexPattern)
	if err != nil {
		return patternWildcard, "", "", nil
	}
	m.regexCache.Store(regexPattern, compiled)
	return patternComplex, "", "", compiled
}

func globToRegex(pattern string) string {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `.*`)
	regex = strings.ReplaceAll(regex, `\?`, `.`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	return "^" + regex + "$"
}

// ShouldIgnore reports whether path is ignored, applying patterns in order
// so a later negation pattern can un-ignore an earlier match.
func (m *GitMatcher) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	ignored := false
	for _, p := range m.patterns {
		if m.matches(p, path, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (m *GitMatcher) matches(p gitPattern, path string, isDir bool) bool {
	if p.Directory {
		if isDir {
			return m.matchesDirectory(p, path)
		}
		return m.matchesInsideDirectory(p, path)
	}

	if p.Absolute {
		return m.fastMatch(p, path)
	}

	if m.fastMatch(p, path) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := range parts {
		if m.fastMatch(p, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func (m *GitMatcher) fastMatch(p gitPattern, path string) bool {
	switch p.patternType {
	case patternExact:
		return p.Pattern == path
	case patternPrefix:
		return strings.HasPrefix(path, p.prefix)
	case patternSuffix:
		return strings.HasSuffix(path, p.suffix)
	case patternComplex:
		return p.compiled.MatchString(path)
	case patternWildcard:
		matched, _ := filepath.Match(p.Pattern, path)
		return matched
	default:
		return p.Pattern == path
	}
}

func (m *GitMatcher) matchesDirectory(p gitPattern, path string) bool {
	if m.fastMatch(p, path) {
		return true
	}
	if strings.HasSuffix(p.Pattern, "/**") {
		base := strings.TrimSuffix(p.Pattern, "/**")
		if path == base || strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

func (m *GitMatcher) matchesInsideDirectory(p gitPattern, path string) bool {
	if strings.HasPrefix(path, p.Pattern+"/") {
		return true
	}
	return m.fastMatch(p, path)
}
