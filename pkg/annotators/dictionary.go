package annotators

import (
	"embed"
	"fmt"
	"path"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/getzep/nlp-annotator-api/pkg/models"
)

//go:embed resources/*.yaml
var resources embed.FS

var _ EntitySource = &DictionaryEntityAnnotator{}

// Dictionary is the on-disk shape of an entity dictionary.
type Dictionary struct {
	Key         string   `yaml:"key"`
	Description string   `yaml:"description"`
	Entries     []string `yaml:"entries"`
}

type dictionaryEntry struct {
	canonical string
	folded    []rune
}

// DictionaryEntityAnnotator finds literal dictionary entries in a text, ignoring case.
// Matches are leftmost-longest and do not overlap.
type DictionaryEntityAnnotator struct {
	key         string
	description string
	// entries indexed by their first folded rune, longest first
	index map[rune][]dictionaryEntry
}

func NewDictionaryEntityAnnotator(d Dictionary) (*DictionaryEntityAnnotator, error) {
	if d.Key == "" {
		return nil, fmt.Errorf("dictionary has no key")
	}
	a := &DictionaryEntityAnnotator{
		key:         d.Key,
		description: d.Description,
		index:       map[rune][]dictionaryEntry{},
	}
	for _, entry := range d.Entries {
		folded := foldRunes([]rune(entry))
		if len(folded) == 0 {
			continue
		}
		first := folded[0]
		a.index[first] = insertByLength(a.index[first], dictionaryEntry{
			canonical: entry,
			folded:    folded,
		})
	}
	return a, nil
}

// LoadDictionary reads one of the embedded dictionaries by name, e.g. "cities".
func LoadDictionary(name string) (*DictionaryEntityAnnotator, error) {
	data, err := resources.ReadFile(path.Join("resources", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", name, err)
	}
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary %s: %w", name, err)
	}
	return NewDictionaryEntityAnnotator(d)
}

func (a *DictionaryEntityAnnotator) Key() string         { return a.key }
func (a *DictionaryEntityAnnotator) Description() string { return a.description }

func (a *DictionaryEntityAnnotator) AnnotateText(text string) ([]models.Entity, error) {
	runes := []rune(text)
	folded := foldRunes(runes)
	entities := []models.Entity{}

	for pos := 0; pos < len(folded); {
		entry, ok := a.longestAt(folded, pos)
		if !ok {
			pos++
			continue
		}
		end := pos + len(entry.folded)
		entities = append(entities, models.Entity{
			Type:     a.key,
			Match:    entry.canonical,
			Original: string(runes[pos:end]),
			Range:    [2]int{pos, end},
		})
		pos = end
	}

	return entities, nil
}

func (a *DictionaryEntityAnnotator) longestAt(folded []rune, pos int) (dictionaryEntry, bool) {
	for _, entry := range a.index[folded[pos]] {
		if hasPrefixAt(folded, pos, entry.folded) {
			return entry, true
		}
	}
	return dictionaryEntry{}, false
}

func hasPrefixAt(text []rune, pos int, prefix []rune) bool {
	if len(text)-pos < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if text[pos+i] != r {
			return false
		}
	}
	return true
}

// foldRunes lowercases rune by rune so offsets in the folded text match the original.
func foldRunes(runes []rune) []rune {
	folded := make([]rune, len(runes))
	for i, r := range runes {
		folded[i] = unicode.ToLower(r)
	}
	return folded
}

func insertByLength(entries []dictionaryEntry, entry dictionaryEntry) []dictionaryEntry {
	for _, e := range entries {
		if string(e.folded) == string(entry.folded) {
			return entries
		}
	}
	i := 0
	for i < len(entries) && len(entries[i].folded) >= len(entry.folded) {
		i++
	}
	entries = append(entries, dictionaryEntry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = entry
	return entries
}
