package emoji

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_priors.yaml
var defaultPriorsYAML []byte

// variationSelector16 requests emoji presentation. Clients send "❤" and "❤️"
// interchangeably, so keys are compared without it.
const variationSelector16 = "\uFE0F"

// Table is an immutable emoji → polarity mapping.
type Table struct {
	scores  map[string]float64
	entries []domain.PriorEntry
}

var _ domain.PriorTable = (*Table)(nil)

type priorsFile struct {
	Priors map[string]float64 `yaml:"priors"`
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Parse(defaultPriorsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded emoji priors are invalid: %v", err))
	}
	return t
}

// LoadFile reads a YAML prior table from path. An empty path yields Default.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read emoji priors %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid emoji priors %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a YAML prior table.
func Parse(data []byte) (*Table, error) {
	var f priorsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode priors: %w", err)
	}
	if len(f.Priors) == 0 {
		return nil, errors.New("priors table is empty")
	}
	return New(f.Priors)
}

// New builds a table from a map, validating every entry. The map is copied.
func New(priors map[string]float64) (*Table, error) {
	t := &Table{
		scores:  make(map[string]float64, len(priors)),
		entries: make([]domain.PriorEntry, 0, len(priors)),
	}
	for raw, score := range priors {
		key := normalize(raw)
		if key == "" {
			return nil, fmt.Errorf("blank emoji key %q", raw)
		}
		if math.IsNaN(score) || score < -1 || score > 1 {
			return nil, fmt.Errorf("score for %q must be within [-1, 1], got %v", raw, score)
		}
		if prev, dup := t.scores[key]; dup && prev != score {
			return nil, fmt.Errorf("conflicting scores for %q", raw)
		}
		if _, dup := t.scores[key]; !dup {
			t.entries = append(t.entries, domain.PriorEntry{Emoji: strings.TrimSpace(raw), Score: score})
		}
		t.scores[key] = score
	}
	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].Emoji < t.entries[j].Emoji })
	return t, nil
}

// Lookup returns the polarity for emoji, or (0, false) when it is not in the table.
func (t *Table) Lookup(emoji string) (float64, bool) {
	score, ok := t.scores[normalize(emoji)]
	return score, ok
}

// Entries returns the table sorted by emoji.
func (t *Table) Entries() []domain.PriorEntry {
	out := make([]domain.PriorEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of distinct emoji.
func (t *Table) Len() int {
	return len(t.scores)
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), variationSelector16, "")
}
