package docstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/standardbeagle/wspace/internal/wtypes"
)

func TestSourceRegistryInternsEqualValues(t *testing.T) {
	r := NewSourceRegistry()
	js := wtypes.DocumentFileSource{Language: "javascript"}
	jsx := wtypes.DocumentFileSource{Language: "javascript", Variant: "jsx"}

	i1 := r.Insert(js)
	i2 := r.Insert(jsx)
	i3 := r.Insert(js)

	assert.Equal(t, i1, i3)
	assert.NotEqual(t, i1, i2)
	assert.Equal(t, 2, r.Len())
}

func TestSourceRegistryGetRoundTrips(t *testing.T) {
	r := NewSourceRegistry()
	src := wtypes.DocumentFileSource{Language: "typescript", Variant: "tsx"}
	idx := r.Insert(src)

	got, ok := r.Get(idx)
	assert.True(t, ok)
	assert.Equal(t, src, got)

	_, ok = r.Get(wtypes.SourceIndex(999))
	assert.False(t, ok)
}

func TestSourceRegistryConcurrentInsertStableIndices(t *testing.T) {
	r := NewSourceRegistry()
	const n = 64
	indices := make([]wtypes.SourceIndex, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			indices[i] = r.Insert(wtypes.DocumentFileSource{Language: "go"})
		}(i)
	}
	wg.Wait()

	first := indices[0]
	for _, idx := range indices {
		assert.Equal(t, first, idx)
	}
	assert.Equal(t, 1, r.Len())
}
