package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Categories recognized by the sign dictionary.
const (
	CategoryAlphabets = "alphabets"
	CategoryNumbers   = "numbers"
	CategoryWords     = "words"
)

var categories = []string{CategoryAlphabets, CategoryNumbers, CategoryWords}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".webm": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

// Entry describes one sign in the dictionary.
type Entry struct {
	Word        string `json:"word"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"` // "video" or "image"
}

// Suggestion pairs a fuzzy-matched entry with its similarity score.
type Suggestion struct {
	Entry Entry
	Score float64
}

// Stats summarizes dictionary contents per category.
type Stats struct {
	TotalSigns  int            `json:"total_signs"`
	PerCategory map[string]int `json:"per_category"`
}

// Store is a JSON-file-backed sign dictionary. The file maps category ->
// word -> entry. Media directories are scanned on load so dropping a new
// clip into data/media/words registers the word automatically.
type Store struct {
	mu      sync.RWMutex
	file    string
	entries map[string]map[string]Entry // category -> WORD -> entry
	logger  zerolog.Logger
}

// Open loads the dictionary file (creating an empty one if absent) and
// scans mediaDir/<category> for clips not yet registered.
func Open(file, mediaDir string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		file:    file,
		entries: make(map[string]map[string]Entry, len(categories)),
		logger:  logger.With().Str("component", "dictionary").Logger(),
	}
	for _, c := range categories {
		s.entries[c] = make(map[string]Entry)
	}

	if data, err := os.ReadFile(file); err == nil {
		var raw map[string]map[string]Entry
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse dictionary %s: %w", file, err)
		}
		for cat, items := range raw {
			if _, known := s.entries[cat]; !known {
				// Unknown categories are kept readable but not asked about.
				s.entries[cat] = make(map[string]Entry, len(items))
			}
			for word, e := range items {
				key := normalize(word)
				e.Word = key
				e.Category = cat
				s.entries[cat][key] = e
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read dictionary %s: %w", file, err)
	}

	if mediaDir != "" {
		if err := s.scanMedia(mediaDir); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Int("signs", s.stats().TotalSigns).Msg("dictionary loaded")
	return s, nil
}

func (s *Store) scanMedia(mediaDir string) error {
	added := 0
	for _, cat := range categories {
		dir := filepath.Join(mediaDir, cat)
		files, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("scan media %s: %w", dir, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(f.Name()))
			mediaType := ""
			switch {
			case videoExtensions[ext]:
				mediaType = "video"
			case imageExtensions[ext]:
				mediaType = "image"
			default:
				continue
			}
			word := normalize(strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())))
			if _, exists := s.entries[cat][word]; exists {
				continue
			}
			s.entries[cat][word] = Entry{
				Word:        word,
				Path:        filepath.Join(dir, f.Name()),
				Filename:    f.Name(),
				Description: "Sign for " + word,
				Category:    cat,
				Type:        mediaType,
			}
			added++
		}
	}
	if added > 0 {
		s.logger.Info().Int("added", added).Msg("registered new media files")
		return s.save()
	}
	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.file), 0o755); err != nil {
		return fmt.Errorf("create dictionary dir: %w", err)
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dictionary: %w", err)
	}
	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write dictionary: %w", err)
	}
	return os.Rename(tmp, s.file)
}

// Search finds a sign by exact word match across all categories.
func (s *Store) Search(word string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := normalize(word)
	for _, items := range s.entries {
		if e, ok := items[key]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// WordsInCategory returns the sorted words registered under a category.
func (s *Store) WordsInCategory(category string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.entries[category]
	words := make([]string, 0, len(items))
	for w := range items {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Suggest returns up to max entries whose words are similar to the query,
// best match first. Matches below the cutoff ratio are discarded.
func (s *Store) Suggest(query string, max int) []Suggestion {
	const cutoff = 0.4

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := normalize(query)
	var out []Suggestion
	for _, items := range s.entries {
		for word, e := range items {
			if score := similarity(key, word); score >= cutoff {
				out = append(out, Suggestion{Entry: e, Score: score})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Entry.Word < out[j].Entry.Word
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// Statistics reports sign counts per category.
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats()
}

func (s *Store) stats() Stats {
	st := Stats{PerCategory: make(map[string]int, len(s.entries))}
	for cat, items := range s.entries {
		st.PerCategory[cat] = len(items)
		st.TotalSigns += len(items)
	}
	return st
}

func normalize(word string) string {
	return strings.ToUpper(strings.TrimSpace(word))
}

// similarity is the Ratcliff/Obershelp ratio over the two words:
// 2*M / (len(a)+len(b)) where M is the total length of matching blocks.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	m := matchingBlocks(a, b)
	return 2 * float64(m) / float64(len(a)+len(b))
}

func matchingBlocks(a, b string) int {
	blk, j := longestCommonBlock(a, b)
	if blk.size == 0 {
		return 0
	}
	total := blk.size
	total += matchingBlocks(a[:blk.start], b[:j])
	total += matchingBlocks(a[blk.start+blk.size:], b[j+blk.size:])
	return total
}

type block struct {
	start int
	size  int
}

func longestCommonBlock(a, b string) (block, int) {
	best := block{}
	bStart := 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > best.size {
				best = block{start: i, size: k}
				bStart = j
			}
		}
	}
	return best, bStart
}
