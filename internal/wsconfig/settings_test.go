package wsconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeUnionsIgnorePatterns(t *testing.T) {
	base := DefaultSettings()
	base.Files.Ignore = []string{"*.log"}

	merged := Merge(base, PartialSettings{
		Files: &FilesSettings{Ignore: []string{"*.tmp", "*.log"}},
	})

	assert.ElementsMatch(t, []string{"*.log", "*.tmp"}, merged.Files.Ignore)
}

func TestMergeOverridesFormatter(t *testing.T) {
	base := DefaultSettings()
	merged := Merge(base, PartialSettings{
		Formatter: &FormatterSettings{Enabled: false, IndentWidth: 4},
	})

	assert.False(t, merged.Formatter.Enabled)
	assert.Equal(t, 4, merged.Formatter.IndentWidth)
}

func TestMergeLeavesUnsetFieldsAlone(t *testing.T) {
	base := DefaultSettings()
	base.Linter.Enabled = true

	merged := Merge(base, PartialSettings{})

	assert.True(t, merged.Linter.Enabled)
	assert.Equal(t, base.MaxFileSize, merged.MaxFileSize)
}
