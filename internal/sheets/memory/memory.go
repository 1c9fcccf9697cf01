// Package memory is an in-process RowExporter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"paymonth/internal/sheets"
)

var _ sheets.RowExporter = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	rows  map[string]sheets.Row
	order []string
}

func New() *Store {
	return &Store{rows: make(map[string]sheets.Row)}
}

// UpsertRow replaces an existing row in place or appends a new one.
func (s *Store) UpsertRow(_ context.Context, r sheets.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.rows[r.ID] = r
	return nil
}

func (s *Store) DeleteRow(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[id]; !exists {
		return nil
	}
	delete(s.rows, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns a snapshot in insertion order.
func (s *Store) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sheets.Row, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}

func (s *Store) Get(id string) (sheets.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	return r, ok
}
