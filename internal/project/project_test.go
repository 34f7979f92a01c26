package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/wspace/internal/wsconfig"
)

func TestInsertAllocatesDistinctKeys(t *testing.T) {
	r := NewRegistry()
	a := r.Insert("/a", wsconfig.DefaultSettings())
	b := r.Insert("/b", wsconfig.DefaultSettings())

	assert.NotEqual(t, a.Key, b.Key)

	got, ok := r.Get(a.Key)
	require.True(t, ok)
	assert.Equal(t, "/a", got.Path)
}

func TestRemoveDeregisters(t *testing.T) {
	r := NewRegistry()
	p := r.Insert("/a", wsconfig.DefaultSettings())
	r.Remove(p.Key)

	_, ok := r.Get(p.Key)
	assert.False(t, ok)
}

func TestBelongsTo(t *testing.T) {
	p := &Project{Path: "/repo"}
	assert.True(t, BelongsTo(p, "/repo/src/main.go"))
	assert.True(t, BelongsTo(p, "/repo"))
	assert.False(t, BelongsTo(p, "/other/main.go"))
}

func TestBelongsOnlyToDetectsOverlap(t *testing.T) {
	r := NewRegistry()
	outer := r.Insert("/repo", wsconfig.DefaultSettings())
	inner := r.Insert("/repo/sub", wsconfig.DefaultSettings())

	assert.False(t, BelongsOnlyTo(r, outer, "/repo/sub/main.go"))
	assert.True(t, BelongsOnlyTo(r, inner, "/repo/sub/main.go"))
}
