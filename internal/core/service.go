package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/erpdash/internal/logging"
)

// StoreTimeout bounds one round trip to the project store.
var StoreTimeout = 10 * time.Second

// ExportTimeout bounds one snapshot export, including the upload.
var ExportTimeout = 2 * time.Minute

// Service is the entry point for everything the web layer and the CLI do:
// customer views and mutations, the project board, the catalog and exports.
type Service struct {
	customers *CustomerStore
	projects  ProjectStore
	catalog   Catalog
	events    Publisher
	snapshots SnapshotWriter
	exports   *ExportLimiter
	now       func() time.Time
}

// Options carries the optional collaborators of a Service. Zero values are
// replaced by working defaults.
type Options struct {
	Catalog   *Catalog
	Events    Publisher
	Snapshots SnapshotWriter
	Exports   *ExportLimiter
	Now       func() time.Time
}

// NewService wires a Service around a customer store and a project store.
func NewService(customers *CustomerStore, projects ProjectStore, opts Options) *Service {
	s := &Service{
		customers: customers,
		projects:  projects,
		catalog:   DefaultCatalog(),
		events:    opts.Events,
		snapshots: opts.Snapshots,
		exports:   opts.Exports,
		now:       opts.Now,
	}
	if opts.Catalog != nil {
		s.catalog = *opts.Catalog
	}
	if s.exports == nil {
		s.exports = NewExportLimiter(0, 0)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Exports exposes the export limiter for health reporting and shutdown.
func (s *Service) Exports() *ExportLimiter {
	return s.exports
}

// =============================================================================
// Customers
// =============================================================================

// CustomerView derives the visible customer list for q from the current
// snapshot. The store is never touched by the derivation.
func (s *Service) CustomerView(q ViewQuery) View {
	snap := s.customers.Snapshot()
	return View{
		Columns:    snap.Columns,
		Records:    Derive(snap.Records, snap.Columns, q),
		Total:      len(snap.Records),
		Categories: Categories(snap.Records),
		Query:      q,
	}
}

// CustomerCount is the number of stored customers.
func (s *Service) CustomerCount() int {
	return s.customers.Len()
}

// CustomerColumns returns the column registry in display order.
func (s *Service) CustomerColumns() []Column {
	return s.customers.Snapshot().Columns
}

// AddCustomer validates nr and appends it to the store.
func (s *Service) AddCustomer(ctx context.Context, nr NewRecord) (Record, error) {
	rec, err := s.customers.AddRecord(nr)
	if err != nil {
		return Record{}, err
	}
	requestLogger(ctx).Info("customer added", "customer_id", rec.ID)
	s.publish(ctx, TopicCustomerCreated, CustomerCreated{Customer: rec})
	return rec, nil
}

// DeleteCustomer removes the customer with id.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if _, err := s.customers.DeleteRecord(id); err != nil {
		return err
	}
	requestLogger(ctx).Info("customer deleted", "customer_id", id)
	s.publish(ctx, TopicCustomerDeleted, CustomerDeleted{CustomerID: id})
	return nil
}

// AddCustomerColumn registers a custom column derived from label.
func (s *Service) AddCustomerColumn(ctx context.Context, label string) (Column, error) {
	col, err := s.customers.AddColumn(label)
	if err != nil {
		return Column{}, err
	}
	requestLogger(ctx).Info("customer column added", "column", col.Key)
	s.publish(ctx, TopicCustomerColumnAdded, CustomerColumnAdded{Column: col})
	return col, nil
}

// =============================================================================
// Projects
// =============================================================================

// ListProjects reads every project from the project store.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	ctx, cancel := context.WithTimeout(ctx, StoreTimeout)
	defer cancel()

	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list projects: %w", ErrProjectStore, err)
	}
	return projects, nil
}

// ListProjectColumns reads every column definition from the project store.
func (s *Service) ListProjectColumns(ctx context.Context) ([]ProjectColumn, error) {
	ctx, cancel := context.WithTimeout(ctx, StoreTimeout)
	defer cancel()

	cols, err := s.projects.ListColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list columns: %w", ErrProjectStore, err)
	}
	return cols, nil
}

// AddProjectColumn validates nc locally and inserts it. A validation failure
// never reaches the store.
func (s *Service) AddProjectColumn(ctx context.Context, nc NewProjectColumn) (ProjectColumn, error) {
	nc = nc.Normalize()
	if err := nc.Validate(); err != nil {
		return ProjectColumn{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, StoreTimeout)
	defer cancel()

	col, err := s.projects.InsertColumn(ctx, nc)
	if err != nil {
		return ProjectColumn{}, fmt.Errorf("%w: insert column: %w", ErrProjectStore, err)
	}
	requestLogger(ctx).Info("project column added", "column", col.Name, "type", col.Type)
	s.publish(ctx, TopicProjectColumnAdded, ProjectColumnAdded{Column: col})
	return col, nil
}

// ProjectBoard is one load of the project page. Each read fails on its own.
type ProjectBoard struct {
	Projects    []Project
	Columns     []ProjectColumn
	ProjectsErr error
	ColumnsErr  error
}

// LoadProjectBoard fetches projects and columns concurrently. A failed read
// leaves its slice empty and records the error; the other read still completes.
func (s *Service) LoadProjectBoard(ctx context.Context) ProjectBoard {
	var (
		b ProjectBoard
		g errgroup.Group
	)
	g.Go(func() error {
		b.Projects, b.ProjectsErr = s.ListProjects(ctx)
		return nil
	})
	g.Go(func() error {
		b.Columns, b.ColumnsErr = s.ListProjectColumns(ctx)
		return nil
	})
	_ = g.Wait()

	if b.ProjectsErr != nil {
		logging.FromContext(ctx).Error("fetch projects failed", "error", b.ProjectsErr)
	}
	if b.ColumnsErr != nil {
		logging.FromContext(ctx).Error("fetch project columns failed", "error", b.ColumnsErr)
	}
	return b
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog returns the dashboard, product and catalog data.
func (s *Service) Catalog() Catalog {
	return s.catalog
}
