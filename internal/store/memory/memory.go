// Package memory implements core.ProjectStore in process memory.
//
// It backs the project board when no database is configured and in tests.
// Nothing is persisted across restarts.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/erpdash/internal/core"
)

// ProjectStore is an in-memory project store.
type ProjectStore struct {
	mu       sync.RWMutex
	projects []core.Project
	columns  []core.ProjectColumn
	failWith error
}

// Compile-time check that ProjectStore implements core.ProjectStore.
var _ core.ProjectStore = (*ProjectStore)(nil)

// NewProjectStore returns a store holding copies of projects and columns.
// Entries without an id are given one.
func NewProjectStore(projects []core.Project, columns []core.ProjectColumn) *ProjectStore {
	s := &ProjectStore{
		projects: slices.Clone(projects),
		columns:  slices.Clone(columns),
	}
	for i := range s.projects {
		if s.projects[i].ID == uuid.Nil {
			s.projects[i].ID = uuid.New()
		}
	}
	for i := range s.columns {
		if s.columns[i].ID == uuid.Nil {
			s.columns[i].ID = uuid.New()
		}
	}
	return s
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *ProjectStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *ProjectStore) ListProjects(ctx context.Context) ([]core.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return slices.Clone(s.projects), nil
}

func (s *ProjectStore) ListColumns(ctx context.Context) ([]core.ProjectColumn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return slices.Clone(s.columns), nil
}

func (s *ProjectStore) InsertColumn(ctx context.Context, nc core.NewProjectColumn) (core.ProjectColumn, error) {
	if err := ctx.Err(); err != nil {
		return core.ProjectColumn{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return core.ProjectColumn{}, s.failWith
	}
	col := core.ProjectColumn{
		ID:      uuid.New(),
		Name:    nc.Name,
		Type:    nc.Type,
		Options: slices.Clone(nc.Options),
	}
	s.columns = append(s.columns, col)
	return col, nil
}

// DefaultColumns is the board layout used when nothing else is configured.
func DefaultColumns() []core.ProjectColumn {
	return []core.ProjectColumn{
		{Name: "name", Type: core.ColumnText},
		{Name: "status", Type: core.ColumnSelect, Options: []string{"backlog", "in_progress", "paused", "canceled", "completed"}},
		{Name: "priority", Type: core.ColumnSelect, Options: []string{"low", "medium", "high"}},
		{Name: "completion", Type: core.ColumnProgress},
		{Name: "due_date", Type: core.ColumnDate},
		{Name: "owner", Type: core.ColumnText},
	}
}

// DefaultProjects is a small demo board.
func DefaultProjects() []core.Project {
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return []core.Project{
		{Name: "Website Redesign", Description: "New storefront and checkout", Category: "Marketing",
			Status: core.StatusInProgress, Priority: core.PriorityHigh, Completion: 65, DueDate: date(2024, time.March, 15), Owner: "Maria Silva"},
		{Name: "Inventory Sync", Description: "Nightly stock sync with the warehouse", Category: "Operations",
			Status: core.StatusBacklog, Priority: core.PriorityMedium, Completion: 0, Owner: "Carlos Souza"},
		{Name: "Q2 Price Review", Description: "Review catalog pricing", Category: "Finance",
			Status: core.StatusPaused, Priority: core.PriorityLow, Completion: 30, DueDate: date(2024, time.June, 30), Owner: "Ana Lima"},
		{Name: "Legacy ERP Shutdown", Description: "Retire the old order system", Category: "IT",
			Status: core.StatusCompleted, Priority: core.PriorityHigh, Completion: 100, DueDate: date(2024, time.January, 31), Owner: "Joao Pereira"},
	}
}
