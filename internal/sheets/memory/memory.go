// Package memory provides an in-process row store used as the default
// backend and as a test double for the HTTP layer.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"kasku/internal/core"
	ports "kasku/internal/sheets"
)

type Store struct {
	mu         sync.Mutex
	tables     map[string][][]string
	categories map[string][]string
}

var _ ports.Store = (*Store)(nil)

func New(categories map[string][]string) *Store {
	cats := make(map[string][]string, len(categories))
	for kind, names := range categories {
		cats[kind] = dedupe(names)
	}
	return &Store{
		tables:     map[string][][]string{},
		categories: cats,
	}
}

// NewFromFiles seeds category lists from seed_<kind>.txt files under base,
// falling back to small defaults so the app is usable out of the box.
func NewFromFiles(base string) *Store {
	cats := map[string][]string{}
	for _, kind := range []string{"income", "expenses", "barang"} {
		cats[kind] = readLines(filepath.Join(base, "seed_"+kind+".txt"))
	}
	if len(cats["income"]) == 0 {
		cats["income"] = []string{"Salary", "Bonus", "Other"}
	}
	if len(cats["expenses"]) == 0 {
		cats["expenses"] = []string{"Food", "Transport", "Utilities"}
	}
	if len(cats["barang"]) == 0 {
		cats["barang"] = []string{"Elektronik", "ATK", "Lainnya"}
	}
	return New(cats)
}

func (s *Store) GetRows(_ context.Context, table string) ([][]string, error) {
	if !core.KnownTable(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (s *Store) AppendRow(_ context.Context, table string, row []string) (string, error) {
	if !core.KnownTable(table) {
		return "", fmt.Errorf("unknown table %q", table)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], append([]string(nil), row...))
	return fmt.Sprintf("mem:%s:%d", table, len(s.tables[table])), nil
}

func (s *Store) UpdateRow(_ context.Context, table string, rowIndex int, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row %d out of range for table %q", rowIndex, table)
	}
	rows[rowIndex] = append([]string(nil), row...)
	return nil
}

// DeleteRow blanks the row, mirroring the spreadsheet backend where a
// delete is a values.clear and later rows keep their indexes.
func (s *Store) DeleteRow(_ context.Context, table string, rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row %d out of range for table %q", rowIndex, table)
	}
	rows[rowIndex] = []string{}
	return nil
}

func (s *Store) GetCategories(_ context.Context, kind string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names, ok := s.categories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown category kind %q", kind)
	}
	return append([]string(nil), names...), nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
