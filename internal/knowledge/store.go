// Package knowledge holds the read-only institution dataset the retrieval
// pipeline scores queries against. The store is built once at startup and
// shared by every request without locking.
package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"glinax/internal/models"

	"go.uber.org/zap"
)

//go:embed universities.json
var embeddedDataset []byte

// Entry pairs a knowledge record with its precomputed lowercased search
// text. Serialization happens once at load time; records are immutable so
// the cached text never goes stale.
type Entry struct {
	Record *models.KnowledgeRecord

	// SearchText is the record name plus its full JSON serialization,
	// lowercased, used for token-overlap scoring.
	SearchText string

	// ProgramTexts holds one lowercased "name + serialized data" string per
	// detailed program entry. Empty for name-only catalogs, which are
	// covered by the generic SearchText path.
	ProgramTexts []string
}

type aliasPair struct {
	alias     string
	canonical string
}

type Store struct {
	entries []*Entry
	byName  map[string]*Entry
	aliases []aliasPair
}

type dataset struct {
	Institutions []*models.KnowledgeRecord `json:"institutions"`
}

// Load builds a store from the JSON file at path, or from the embedded
// dataset when path is empty.
func Load(path string, logger *zap.Logger) (*Store, error) {
	data := embeddedDataset
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read knowledge file: %w", err)
		}
		data = fileData
	}

	var ds dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge data: %w", err)
	}

	store := &Store{byName: make(map[string]*Entry, len(ds.Institutions))}
	for _, record := range ds.Institutions {
		if record.Name == "" {
			return nil, fmt.Errorf("knowledge record without a name")
		}
		entry, err := newEntry(record)
		if err != nil {
			return nil, err
		}
		store.entries = append(store.entries, entry)
		store.byName[record.Name] = entry
		for _, alias := range record.Aliases {
			store.aliases = append(store.aliases, aliasPair{
				alias:     strings.ToLower(alias),
				canonical: record.Name,
			})
		}
	}

	logger.Info("Knowledge base loaded",
		zap.Int("institutions", len(store.entries)),
		zap.Int("aliases", len(store.aliases)),
	)

	return store, nil
}

func newEntry(record *models.KnowledgeRecord) (*Entry, error) {
	serialized, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize record %q: %w", record.Name, err)
	}

	entry := &Entry{
		Record:     record,
		SearchText: strings.ToLower(record.Name + " " + string(serialized)),
	}

	for name, program := range record.Programs.Detailed {
		programJSON, err := json.Marshal(program)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize program %q: %w", name, err)
		}
		entry.ProgramTexts = append(entry.ProgramTexts, strings.ToLower(name+" "+string(programJSON)))
	}

	return entry, nil
}

// Get returns the entry for a canonical institution name.
func (s *Store) Get(name string) (*Entry, bool) {
	entry, ok := s.byName[name]
	return entry, ok
}

// Entries returns all entries in load order.
func (s *Store) Entries() []*Entry {
	return s.entries
}

// Len returns the number of institutions in the store.
func (s *Store) Len() int {
	return len(s.entries)
}

// ResolveAlias scans the text for a known institution alias and returns the
// canonical name of the first match, in dataset order.
func (s *Store) ResolveAlias(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, pair := range s.aliases {
		if strings.Contains(lower, pair.alias) {
			return pair.canonical, true
		}
	}
	return "", false
}
