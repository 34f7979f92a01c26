package docstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSimpleInsert(t *testing.T) {
	s := NewStore()
	doc := &Document{Content: "a", Version: 1}

	got := s.Open("/a.go", doc)
	assert.Same(t, doc, got)

	stored, ok := s.Get("/a.go")
	require.True(t, ok)
	assert.Equal(t, doc, stored)
}

func TestOpenPreservesScannerStickiness(t *testing.T) {
	s := NewStore()
	s.Open("/a.go", &Document{Content: "old", Version: 1, OpenedByScanner: true})

	got := s.Open("/a.go", &Document{Content: "new", Version: 1, OpenedByScanner: false})

	assert.True(t, got.OpenedByScanner)
}

func TestOpenNeverRegressesVersion(t *testing.T) {
	s := NewStore()
	s.Open("/a.go", &Document{Content: "v2", Version: 2})

	got := s.Open("/a.go", &Document{Content: "v1-late", Version: 1})

	assert.Equal(t, int32(2), got.Version)
}

func TestOpenRaceConverges(t *testing.T) {
	s := NewStore()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scanner := i%2 == 0
			s.Open("/race.go", &Document{Content: "x", Version: int32(i), OpenedByScanner: scanner})
		}(i)
	}
	wg.Wait()

	final, ok := s.Get("/race.go")
	require.True(t, ok)
	assert.Equal(t, int32(n-1), final.Version)
	assert.True(t, final.OpenedByScanner, "stickiness must survive the race since an even i set it")
}

func TestChangeRequiresExistingDocument(t *testing.T) {
	s := NewStore()
	ok := s.Change("/missing.go", &Document{Version: 2})
	assert.False(t, ok)

	s.Open("/a.go", &Document{Version: 1})
	ok = s.Change("/a.go", &Document{Version: 2})
	assert.True(t, ok)

	doc, _ := s.Get("/a.go")
	assert.Equal(t, int32(2), doc.Version)
}

func TestCloseRespectsScannerFlag(t *testing.T) {
	s := NewStore()
	s.Open("/scanned.go", &Document{OpenedByScanner: true})

	assert.False(t, s.Close("/scanned.go"))
	_, ok := s.Get("/scanned.go")
	assert.True(t, ok)

	s.CloseScanned("/scanned.go")
	_, ok = s.Get("/scanned.go")
	assert.False(t, ok)
}

func TestCloseRemovesClientOpenedDocument(t *testing.T) {
	s := NewStore()
	s.Open("/a.go", &Document{OpenedByScanner: false})

	assert.True(t, s.Close("/a.go"))
	_, ok := s.Get("/a.go")
	assert.False(t, ok)
}
