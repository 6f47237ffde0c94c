// Package alias resolves raw team text scraped from the federation pages to
// canonical team labels.
//
// The federation lists mixed-club doubles pairings under a single club's name, so a
// pairing like "X. Goldaracena - E. Astibia" has to be rewritten to the label the
// club actually uses for it. The table is loaded once per run and never modified.
package alias

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry maps a raw text fragment to a canonical team label
type Entry struct {
	Match string `yaml:"match" json:"match"`
	Value string `yaml:"value" json:"value"`
}

// Table is an immutable alias table
type Table struct {
	entries []Entry
	values  map[string]bool
}

// New builds a table from entries, skipping entries with an empty match
func New(entries []Entry) *Table {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		values:  make(map[string]bool, len(entries)),
	}
	for _, e := range entries {
		m := Clean(e.Match)
		if m == "" {
			continue
		}
		v := strings.TrimSpace(e.Value)
		t.entries = append(t.entries, Entry{Match: m, Value: v})
		t.values[v] = true
	}
	return t
}

// Load reads an alias table from a YAML or JSON file holding a list of
// {match, value} pairs
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias table: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON alias list
func Parse(data []byte) (*Table, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing alias table: %w", err)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Match) == "" || strings.TrimSpace(e.Value) == "" {
			return nil, fmt.Errorf("parsing alias table: entry %d needs both match and value", i)
		}
	}
	return New(entries), nil
}

// Len returns the number of entries
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the table entries
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Resolve returns the canonical label for raw team text.
//
// The text is whitespace-collapsed first. The entry with the longest match
// contained in the text wins; ties go to the earlier entry. Without a match the
// cleaned text is returned.
func (t *Table) Resolve(text string) string {
	cleaned := Clean(text)
	if t == nil || cleaned == "" {
		return cleaned
	}

	best := -1
	for i, e := range t.entries {
		if !strings.Contains(cleaned, e.Match) {
			continue
		}
		if best < 0 || len(e.Match) > len(t.entries[best].Match) {
			best = i
		}
	}
	if best < 0 {
		return cleaned
	}
	return t.entries[best].Value
}

// IsValue reports whether label is one of the table's canonical values
func (t *Table) IsValue(label string) bool {
	if t == nil {
		return false
	}
	return t.values[strings.TrimSpace(label)]
}

// ContainsTrackedClub reports whether a resolved team label belongs to club,
// either by a case-insensitive literal match or because the label is an alias value
func (t *Table) ContainsTrackedClub(label, club string) bool {
	club = strings.TrimSpace(club)
	if club != "" && strings.Contains(strings.ToUpper(label), strings.ToUpper(club)) {
		return true
	}
	return t.IsValue(label)
}

// Clean collapses runs of whitespace, including line breaks, into single spaces
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
