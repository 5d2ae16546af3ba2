package terminology

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/ragroute/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_NormalizesTerms(t *testing.T) {
	table, err := NewTable([]Entry{
		{Term: "  ACFT ", Definition: " Army Combat Fitness Test "},
		{Term: "MDMP", Definition: "Military Decision Making Process"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	def, ok := table.Lookup("acft")
	assert.True(t, ok)
	assert.Equal(t, "Army Combat Fitness Test", def)

	_, ok = table.Lookup("Mdmp")
	assert.True(t, ok, "lookup should be case-insensitive")
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	_, err := NewTable([]Entry{
		{Term: "acft", Definition: "one"},
		{Term: "ACFT", Definition: "two"},
	})
	require.Error(t, err)

	var cfgErr *model.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewTable_RejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"empty term", Entry{Term: " ", Definition: "x"}},
		{"empty definition", Entry{Term: "acft", Definition: ""}},
		{"leading punctuation", Entry{Term: "(acft", Definition: "x"}},
		{"trailing punctuation", Entry{Term: "acft.", Definition: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable([]Entry{tt.entry})
			assert.Error(t, err)
		})
	}
}

func TestEntries_ReturnsCopyInOrder(t *testing.T) {
	table := DefaultTable()
	entries := table.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "acft", entries[0].Term)

	entries[0].Term = "mutated"
	assert.Equal(t, "acft", table.Entries()[0].Term)
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.yaml")
	content := "terms:\n  - term: bde\n    definition: Brigade\n  - term: bn\n    definition: Battalion\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	def, ok := table.Lookup("bn")
	assert.True(t, ok)
	assert.Equal(t, "Battalion", def)
}

func TestLoadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTable(filepath.Join(dir, "missing.yaml"))
	var cfgErr *model.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("terms: []\n"), 0644))
	_, err = LoadTable(empty)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("terms: [\n"), 0644))
	_, err = LoadTable(broken)
	assert.Error(t, err)
}
