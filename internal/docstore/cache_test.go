package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccelerationCacheTakePutRoundTrip(t *testing.T) {
	c := NewAccelerationCache()

	_, ok := c.Take("/a.go")
	assert.False(t, ok)

	c.Put("/a.go", "cached-tree")
	v, ok := c.Take("/a.go")
	assert.True(t, ok)
	assert.Equal(t, "cached-tree", v)

	// Take removed the entry.
	_, ok = c.Take("/a.go")
	assert.False(t, ok)
}

func TestAccelerationCacheDelete(t *testing.T) {
	c := NewAccelerationCache()
	c.Put("/a.go", 1)
	c.Put("/b.go", 2)

	c.Delete("/a.go")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Take("/b.go")
	assert.True(t, ok)
}
