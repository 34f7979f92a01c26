package wsconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGitMatcherExactAndWildcard(t *testing.T) {
	m := NewGitMatcher()
	m.AddPattern("*.log")
	m.AddPattern("build/")

	assert.True(t, m.ShouldIgnore("app.log", false))
	assert.False(t, m.ShouldIgnore("app.txt", false))
	assert.True(t, m.ShouldIgnore("build", true))
	assert.True(t, m.ShouldIgnore("build/output.bin", false))
}

func TestGitMatcherNegationUnignores(t *testing.T) {
	m := NewGitMatcher()
	m.AddPattern("*.log")
	m.AddPattern("!important.log")

	assert.True(t, m.ShouldIgnore("debug.log", false))
	assert.False(t, m.ShouldIgnore("important.log", false))
}

func TestGitMatcherAbsoluteVsRelative(t *testing.T) {
	m := NewGitMatcher()
	m.AddPattern("/root-only.txt")

	assert.True(t, m.ShouldIgnore("root-only.txt", false))
	assert.False(t, m.ShouldIgnore("nested/root-only.txt", false))
}
