package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/JonMunkholm/erpdash/internal/core"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	projectColumns = `id, name, description, category, status, priority, completion, due_date, owner`
	columnColumns  = `id, name, type, options`
)

func queryListProjects(ctx context.Context, q querier) ([]core.Project, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func queryListColumns(ctx context.Context, q querier) ([]core.ProjectColumn, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+columnColumns+` FROM project_columns ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query project columns: %w", err)
	}
	defer rows.Close()

	var out []core.ProjectColumn
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project columns: %w", err)
	}
	return out, nil
}

func queryInsertColumn(ctx context.Context, q querier, nc core.NewProjectColumn) (core.ProjectColumn, error) {
	options := nc.Options
	if options == nil {
		options = []string{}
	}
	row := q.QueryRowContext(ctx,
		`INSERT INTO project_columns (name, type, options) VALUES ($1, $2, $3) RETURNING `+columnColumns,
		nc.Name, string(nc.Type), pq.Array(options))

	c, err := scanColumn(row)
	if err != nil {
		return core.ProjectColumn{}, fmt.Errorf("insert project column: %w", err)
	}
	return c, nil
}
