package postgres

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/JonMunkholm/erpdash/internal/core"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (core.Project, error) {
	var (
		p        core.Project
		status   string
		priority string
		due      sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Category,
		&status, &priority, &p.Completion, &due, &p.Owner); err != nil {
		return core.Project{}, fmt.Errorf("scan project: %w", err)
	}
	p.Status = core.ProjectStatus(status)
	p.Priority = core.ProjectPriority(priority)
	if due.Valid {
		d := due.Time
		p.DueDate = &d
	}
	return p, nil
}

func scanColumn(s scanner) (core.ProjectColumn, error) {
	var (
		c       core.ProjectColumn
		typ     string
		options pq.StringArray
	)
	if err := s.Scan(&c.ID, &c.Name, &typ, &options); err != nil {
		return core.ProjectColumn{}, fmt.Errorf("scan project column: %w", err)
	}
	c.Type = core.ColumnType(typ)
	if len(options) > 0 {
		c.Options = []string(options)
	}
	return c, nil
}
