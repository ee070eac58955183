package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/erpdash/internal/core"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var (
	projectCols = []string{"id", "name", "description", "category", "status", "priority", "completion", "due_date", "owner"}
	columnCols  = []string{"id", "name", "type", "options"}
)

func TestListProjects(t *testing.T) {
	db, mock := newMockDB(t)
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	id1, id2 := uuid.New(), uuid.New()

	rows := sqlmock.NewRows(projectCols).
		AddRow(id1.String(), "Website", "New storefront", "Marketing", "in_progress", "high", 65, due, "Maria").
		AddRow(id2.String(), "ERP", "", "IT", "backlog", "low", 0, nil, "")
	mock.ExpectQuery("SELECT .+ FROM projects ORDER BY created_at, id").WillReturnRows(rows)

	got, err := New(db).ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, core.StatusInProgress, got[0].Status)
	assert.Equal(t, core.PriorityHigh, got[0].Priority)
	assert.Equal(t, 65, got[0].Completion)
	require.NotNil(t, got[0].DueDate)
	assert.True(t, due.Equal(*got[0].DueDate))
	assert.Nil(t, got[1].DueDate)
}

func TestListProjects_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT .+ FROM projects").WillReturnError(errors.New("connection refused"))

		_, err := New(db).ListProjects(context.Background())
		assert.ErrorContains(t, err, "query projects")
	})

	t.Run("scan", func(t *testing.T) {
		db, mock := newMockDB(t)
		rows := sqlmock.NewRows(projectCols).
			AddRow(uuid.NewString(), "Bad", "", "", "backlog", "low", "not-a-number", nil, "")
		mock.ExpectQuery("SELECT .+ FROM projects").WillReturnRows(rows)

		_, err := New(db).ListProjects(context.Background())
		assert.ErrorContains(t, err, "scan project")
	})

	t.Run("iteration", func(t *testing.T) {
		db, mock := newMockDB(t)
		rows := sqlmock.NewRows(projectCols).
			AddRow(uuid.NewString(), "A", "", "", "backlog", "low", 1, nil, "").
			RowError(0, errors.New("connection reset"))
		mock.ExpectQuery("SELECT .+ FROM projects").WillReturnRows(rows)

		_, err := New(db).ListProjects(context.Background())
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestListColumns(t *testing.T) {
	db, mock := newMockDB(t)
	id1, id2 := uuid.New(), uuid.New()

	rows := sqlmock.NewRows(columnCols).
		AddRow(id1.String(), "name", "text", "{}").
		AddRow(id2.String(), "status", "select", "{backlog,in_progress}")
	mock.ExpectQuery("SELECT id, name, type, options FROM project_columns ORDER BY created_at, id").WillReturnRows(rows)

	got, err := New(db).ListColumns(context.Background())
	require.NoError(t, err)

	want := []core.ProjectColumn{
		{ID: id1, Name: "name", Type: core.ColumnText},
		{ID: id2, Name: "status", Type: core.ColumnSelect, Options: []string{"backlog", "in_progress"}},
	}
	assert.Equal(t, want, got)
}

func TestInsertColumn(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(`INSERT INTO project_columns \(name, type, options\) VALUES \(\$1, \$2, \$3\) RETURNING id, name, type, options`).
		WithArgs("Stage", "select", `{"a","b"}`).
		WillReturnRows(sqlmock.NewRows(columnCols).AddRow(id.String(), "Stage", "select", "{a,b}"))

	got, err := New(db).InsertColumn(context.Background(), core.NewProjectColumn{
		Name: "Stage", Type: core.ColumnSelect, Options: []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, core.ProjectColumn{ID: id, Name: "Stage", Type: core.ColumnSelect, Options: []string{"a", "b"}}, got)
}

func TestInsertColumn_NoOptions(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO project_columns").
		WithArgs("Budget", "number", "{}").
		WillReturnRows(sqlmock.NewRows(columnCols).AddRow(uuid.NewString(), "Budget", "number", "{}"))

	got, err := New(db).InsertColumn(context.Background(), core.NewProjectColumn{Name: "Budget", Type: core.ColumnNumber})
	require.NoError(t, err)
	assert.Nil(t, got.Options)
}

func TestInsertColumn_Error(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO project_columns").WillReturnError(errors.New(`violates check constraint "project_columns_type_check"`))

	_, err := New(db).InsertColumn(context.Background(), core.NewProjectColumn{Name: "X", Type: core.ColumnText})
	assert.ErrorContains(t, err, "insert project column")
}

func TestDatabaseName(t *testing.T) {
	assert.Equal(t, "erp", DatabaseName("postgres://u:p@localhost:5432/erp?sslmode=disable"))
	assert.Equal(t, "", DatabaseName("::bad"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	var ups, downs int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, 2, ups)
	assert.Equal(t, ups, downs, "every migration needs a down file")
}
