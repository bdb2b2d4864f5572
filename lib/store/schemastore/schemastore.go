package schemastore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Table describes one vendor table: its canonical name, its columns and the
// SQL-side names that map to it.
type Table struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []string `yaml:"columns" json:"columns"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// SchemaStore resolves SQL table names to vendor tables and answers column
// membership questions for unqualified column resolution. Safe for
// concurrent use; Replace swaps the whole schema atomically.
type SchemaStore struct {
	mu      sync.RWMutex
	tables  map[string]string
	columns map[string][]string
}

func New(tables []Table) (*SchemaStore, error) {
	s := &SchemaStore{}
	if err := s.Replace(tables); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SchemaStore) Replace(tables []Table) error {
	names, columns, err := normalizeTables(tables)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = names
	s.columns = columns
	return nil
}

func (s *SchemaStore) ResolveTable(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vendor, ok := s.tables[strings.ToLower(strings.TrimSpace(name))]
	return vendor, ok
}

func (s *SchemaStore) TableColumns(table string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cols, ok := s.columns[table]
	return cols, ok
}

func (s *SchemaStore) ListTables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns the schema as a definition list, sorted by table name.
func (s *SchemaStore) Tables() []Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Table, 0, len(s.columns))
	for name, cols := range s.columns {
		t := Table{Name: name, Columns: append([]string{}, cols...)}
		for alias, vendor := range s.tables {
			if vendor == name && alias != name {
				t.Aliases = append(t.Aliases, alias)
			}
		}
		sort.Strings(t.Aliases)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalizeTables(src []Table) (map[string]string, map[string][]string, error) {
	names := make(map[string]string, len(src))
	columns := make(map[string][]string, len(src))
	for _, t := range src {
		vendor := strings.TrimSpace(t.Name)
		if vendor == "" {
			return nil, nil, fmt.Errorf("schemastore: table name cannot be empty")
		}
		if _, exists := columns[vendor]; exists {
			return nil, nil, fmt.Errorf("schemastore: duplicate table %q", vendor)
		}
		columns[vendor] = append([]string{}, t.Columns...)
		keys := append([]string{vendor}, t.Aliases...)
		for _, key := range keys {
			key = strings.ToLower(strings.TrimSpace(key))
			if key == "" {
				return nil, nil, fmt.Errorf("schemastore: empty alias for table %q", vendor)
			}
			if existing, exists := names[key]; exists && existing != vendor {
				return nil, nil, fmt.Errorf("schemastore: name %q maps to both %q and %q", key, existing, vendor)
			}
			names[key] = vendor
		}
	}
	return names, columns, nil
}
