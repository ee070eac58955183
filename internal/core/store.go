package core

// store.go holds the in-memory customer store.
//
// The store is copy-on-write: every mutation builds new record and column
// slices and swaps them in under the write lock. Snapshot hands out the
// current slices, which are never written again, so readers derive views
// without holding the lock.

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRecordNotFound is returned when deleting an id that is not in the store.
var ErrRecordNotFound = errors.New("customer not found")

// Snapshot is an immutable view of the store at one point in time.
type Snapshot struct {
	Records []Record
	Columns []Column
}

// CustomerStore is the Record Store plus Column Registry.
type CustomerStore struct {
	mu      sync.RWMutex
	records []Record
	columns []Column
	nextID  int64
}

// NewCustomerStore creates a store with the builtin columns, then registers
// customLabels and adds seed records in order.
func NewCustomerStore(customLabels []string, seed []NewRecord) (*CustomerStore, error) {
	s := &CustomerStore{
		columns: BuiltinColumns(),
		nextID:  1,
	}
	for _, label := range customLabels {
		if _, err := s.AddColumn(label); err != nil {
			return nil, fmt.Errorf("seed column %q: %w", label, err)
		}
	}
	for i, nr := range seed {
		if _, err := s.AddRecord(nr); err != nil {
			return nil, fmt.Errorf("seed customer %d: %w", i+1, err)
		}
	}
	return s, nil
}

// Snapshot returns the current records and columns.
func (s *CustomerStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Records: s.records, Columns: s.columns}
}

// Len returns the number of records.
func (s *CustomerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// AddRecord validates nr and appends it with the next id.
// Ids come from a counter that only grows, so a deleted id is never reissued.
func (s *CustomerStore) AddRecord(nr NewRecord) (Record, error) {
	nr = nr.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := nr.validate(s.columns); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:           s.nextID,
		Name:         nr.Name,
		Email:        nr.Email,
		Phone:        nr.Phone,
		Category:     nr.Category,
		Orders:       nr.Orders,
		CustomFields: nr.CustomFields,
	}
	s.nextID++

	next := make([]Record, len(s.records), len(s.records)+1)
	copy(next, s.records)
	s.records = append(next, rec)

	return rec.clone(), nil
}

// DeleteRecord removes the record with id, keeping the others in order.
func (s *CustomerStore) DeleteRecord(id int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Record{}, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}

	removed := s.records[idx]
	next := make([]Record, 0, len(s.records)-1)
	next = append(next, s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)
	s.records = next

	return removed.clone(), nil
}

// AddColumn registers a custom column derived from label.
func (s *CustomerStore) AddColumn(label string) (Column, error) {
	col, err := CustomColumn(label)
	if err != nil {
		return Column{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := appendColumn(s.columns, col)
	if err != nil {
		return Column{}, err
	}
	s.columns = next
	return col, nil
}
