package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/erpdash/internal/core"
)

func TestProjectStore_Defaults(t *testing.T) {
	s := NewProjectStore(DefaultProjects(), DefaultColumns())
	ctx := context.Background()

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 4)
	for _, p := range projects {
		assert.NotEqual(t, uuid.Nil, p.ID)
	}

	cols, err := s.ListColumns(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 6)
	assert.Equal(t, "name", cols[0].Name)
	for _, c := range cols {
		assert.True(t, c.Type.Valid(), c.Name)
	}
}

func TestProjectStore_InsertColumn(t *testing.T) {
	s := NewProjectStore(nil, DefaultColumns())
	ctx := context.Background()

	opts := []string{"a", "b"}
	col, err := s.InsertColumn(ctx, core.NewProjectColumn{Name: "Stage", Type: core.ColumnSelect, Options: opts})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, col.ID)
	opts[0] = "changed"

	cols, err := s.ListColumns(ctx)
	require.NoError(t, err)
	last := cols[len(cols)-1]
	assert.Equal(t, "Stage", last.Name)
	assert.Equal(t, []string{"a", "b"}, last.Options, "store keeps its own copy")
}

func TestProjectStore_ReturnsCopies(t *testing.T) {
	s := NewProjectStore(DefaultProjects(), nil)
	ctx := context.Background()

	first, err := s.ListProjects(ctx)
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Website Redesign", second[0].Name)
}

func TestProjectStore_Failures(t *testing.T) {
	s := NewProjectStore(DefaultProjects(), DefaultColumns())
	boom := errors.New("store offline")
	s.FailWith(boom)

	_, err := s.ListProjects(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = s.ListColumns(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = s.InsertColumn(context.Background(), core.NewProjectColumn{Name: "x", Type: core.ColumnText})
	assert.ErrorIs(t, err, boom)

	s.FailWith(nil)
	_, err = s.ListProjects(context.Background())
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ListColumns(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
