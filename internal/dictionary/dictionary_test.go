package dictionary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDictFile(t *testing.T, dir string, raw map[string]map[string]Entry) string {
	t.Helper()
	path := filepath.Join(dir, "dictionary.json")
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testDict(t *testing.T) *Store {
	t.Helper()
	path := writeDictFile(t, t.TempDir(), map[string]map[string]Entry{
		"words": {
			"hello": {Path: "media/words/hello.mp4", Type: "video"},
			"WATER": {Path: "media/words/water.mp4", Type: "video"},
			"eat":   {Path: "media/words/eat.mp4", Type: "video"},
		},
		"alphabets": {
			"A": {Path: "media/alphabets/a.jpg", Type: "image"},
		},
	})
	s, err := Open(path, "", zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "dictionary.json"), "", zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, s.Statistics().TotalSigns)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	s := testDict(t)

	for _, q := range []string{"hello", "HELLO", " Hello "} {
		entry, ok := s.Search(q)
		require.True(t, ok, "query %q", q)
		assert.Equal(t, "HELLO", entry.Word)
		assert.Equal(t, "words", entry.Category)
	}

	_, ok := s.Search("GOODBYE")
	assert.False(t, ok)
}

func TestWordsInCategorySorted(t *testing.T) {
	s := testDict(t)

	assert.Equal(t, []string{"EAT", "HELLO", "WATER"}, s.WordsInCategory("words"))
	assert.Equal(t, []string{"A"}, s.WordsInCategory("alphabets"))
	assert.Empty(t, s.WordsInCategory("numbers"))
}

func TestSuggestFindsNearMisses(t *testing.T) {
	s := testDict(t)

	suggestions := s.Suggest("helo", 3)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "HELLO", suggestions[0].Entry.Word)
	assert.Greater(t, suggestions[0].Score, 0.4)

	// Nothing resembles this.
	assert.Empty(t, s.Suggest("xyzzyq", 3))
}

func TestSuggestLimitsResults(t *testing.T) {
	s := testDict(t)

	suggestions := s.Suggest("ate", 1)
	assert.LessOrEqual(t, len(suggestions), 1)
}

func TestScanMediaRegistersNewSigns(t *testing.T) {
	dir := t.TempDir()
	mediaDir := filepath.Join(dir, "media")
	require.NoError(t, os.MkdirAll(filepath.Join(mediaDir, "words"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "words", "dance.mp4"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "words", "notes.txt"), []byte("x"), 0o644))

	path := filepath.Join(dir, "dictionary.json")
	s, err := Open(path, mediaDir, zerolog.Nop())
	require.NoError(t, err)

	entry, ok := s.Search("dance")
	require.True(t, ok)
	assert.Equal(t, "video", entry.Type)
	assert.Equal(t, "dance.mp4", entry.Filename)

	_, ok = s.Search("notes")
	assert.False(t, ok, "non-media files are ignored")

	// The scan result was saved, so a reload without the media dir still
	// knows the sign.
	reloaded, err := Open(path, "", zerolog.Nop())
	require.NoError(t, err)
	_, ok = reloaded.Search("DANCE")
	assert.True(t, ok)
}

func TestStatistics(t *testing.T) {
	s := testDict(t)

	stats := s.Statistics()
	assert.Equal(t, 4, stats.TotalSigns)
	assert.Equal(t, 3, stats.PerCategory["words"])
	assert.Equal(t, 1, stats.PerCategory["alphabets"])
	assert.Equal(t, 0, stats.PerCategory["numbers"])
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("HELLO", "HELLO"))
	assert.Zero(t, similarity("HELLO", ""))
	assert.InDelta(t, 8.0/9.0, similarity("HELO", "HELLO"), 1e-9)
}
