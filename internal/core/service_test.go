package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/JonMunkholm/erpdash/internal/events"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeProjects is a ProjectStore with switchable failures.
type fakeProjects struct {
	mu          sync.Mutex
	projects    []Project
	columns     []ProjectColumn
	projectsErr error
	columnsErr  error
	insertErr   error
	inserts     int
}

func (f *fakeProjects) ListProjects(context.Context) ([]Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects, f.projectsErr
}

func (f *fakeProjects) ListColumns(context.Context) ([]ProjectColumn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.columns, f.columnsErr
}

func (f *fakeProjects) InsertColumn(_ context.Context, nc NewProjectColumn) (ProjectColumn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return ProjectColumn{}, f.insertErr
	}
	col := ProjectColumn{ID: uuid.New(), Name: nc.Name, Type: nc.Type, Options: nc.Options}
	f.columns = append(f.columns, col)
	return col, nil
}

// memSnapshots collects written snapshots.
type memSnapshots struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (m *memSnapshots) WriteSnapshot(_ context.Context, name string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = append([]byte(nil), body...)
	return "mem://" + name, nil
}

func newTestService(t *testing.T) (*Service, *fakeProjects, *events.Recorder) {
	t.Helper()
	projects := &fakeProjects{
		projects: []Project{sampleProject()},
		columns:  []ProjectColumn{{ID: uuid.New(), Name: "name", Type: ColumnText}},
	}
	rec := &events.Recorder{}
	svc := NewService(seededStore(t), projects, Options{Events: rec})
	return svc, projects, rec
}

func TestService_CustomerMutationsPublishEvents(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := ContextWithIPAddress(context.Background(), "10.0.0.1")

	added, err := svc.AddCustomer(ctx, NewRecord{Name: "Ana", Email: "ana@example.com", Orders: 9})
	require.NoError(t, err)

	col, err := svc.AddCustomerColumn(ctx, "Customer Tier")
	require.NoError(t, err)
	assert.Equal(t, "customer_tier", col.Key)

	require.NoError(t, svc.DeleteCustomer(ctx, added.ID))

	assert.Equal(t, []string{TopicCustomerCreated, TopicCustomerColumnAdded, TopicCustomerDeleted}, rec.Topics())
	got := rec.Events()
	assert.Equal(t, CustomerCreated{Customer: added}, got[0].Event)
	assert.Equal(t, CustomerDeleted{CustomerID: added.ID}, got[2].Event)
}

func TestService_FailedMutationsPublishNothing(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, NewRecord{Name: "No Email"})
	assert.Error(t, err)
	_, err = svc.AddCustomerColumn(ctx, "tier")
	assert.ErrorIs(t, err, ErrDuplicateColumn)
	assert.ErrorIs(t, svc.DeleteCustomer(ctx, 999), ErrRecordNotFound)

	assert.Empty(t, rec.Topics())
}

func TestService_CustomerViewReflectsMutations(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	v := svc.CustomerView(ViewQuery{Volume: VolumeHigh})
	assert.Equal(t, []string{"Bob Johnson"}, names(v.Records))
	assert.Equal(t, 3, v.Total)

	_, err := svc.AddCustomer(ctx, NewRecord{Name: "Big Buyer", Email: "big@example.com", Orders: 20})
	require.NoError(t, err)

	v = svc.CustomerView(ViewQuery{Volume: VolumeHigh})
	assert.Equal(t, []string{"Bob Johnson", "Big Buyer"}, names(v.Records))
	assert.Equal(t, []string{"Retail", "Wholesale"}, v.Categories)
}

func TestService_CustomerCount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	assert.Equal(t, 3, svc.CustomerCount())

	added, err := svc.AddCustomer(ctx, NewRecord{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 4, svc.CustomerCount())

	require.NoError(t, svc.DeleteCustomer(ctx, added.ID))
	assert.Equal(t, 3, svc.CustomerCount())
}

func TestService_AddProjectColumn(t *testing.T) {
	svc, projects, rec := newTestService(t)
	ctx := context.Background()

	t.Run("validation never reaches the store", func(t *testing.T) {
		_, err := svc.AddProjectColumn(ctx, NewProjectColumn{Name: "  "})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, 0, projects.inserts)
	})

	t.Run("insert publishes", func(t *testing.T) {
		col, err := svc.AddProjectColumn(ctx, NewProjectColumn{Name: "Budget", Type: ColumnNumber})
		require.NoError(t, err)
		assert.Equal(t, "Budget", col.Name)
		assert.Equal(t, []string{TopicProjectColumnAdded}, rec.Topics())
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		projects.insertErr = errors.New("connection refused")
		_, err := svc.AddProjectColumn(ctx, NewProjectColumn{Name: "Owner2"})
		assert.ErrorIs(t, err, ErrProjectStore)
		assert.Equal(t, "PRJ001", MapError(err).Code)
	})
}

func TestService_LoadProjectBoard(t *testing.T) {
	tests := []struct {
		name        string
		projectsErr error
		columnsErr  error
	}{
		{"both succeed", nil, nil},
		{"projects fail", errors.New("boom"), nil},
		{"columns fail", nil, errors.New("boom")},
		{"both fail", errors.New("boom"), errors.New("bang")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, projects, _ := newTestService(t)
			projects.projectsErr = tt.projectsErr
			projects.columnsErr = tt.columnsErr

			b := svc.LoadProjectBoard(context.Background())

			if tt.projectsErr != nil {
				assert.ErrorIs(t, b.ProjectsErr, ErrProjectStore)
				assert.ErrorIs(t, b.ProjectsErr, tt.projectsErr)
				assert.Empty(t, b.Projects)
			} else {
				assert.NoError(t, b.ProjectsErr)
				assert.Len(t, b.Projects, 1)
			}
			if tt.columnsErr != nil {
				assert.ErrorIs(t, b.ColumnsErr, ErrProjectStore)
				assert.Empty(t, b.Columns)
			} else {
				assert.NoError(t, b.ColumnsErr)
				assert.Len(t, b.Columns, 1)
			}
		})
	}
}

func TestService_ExportSnapshot(t *testing.T) {
	t.Run("disabled without destination", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.ExportSnapshot(context.Background())
		assert.ErrorIs(t, err, ErrExportDisabled)
	})

	t.Run("writes csv of the full store", func(t *testing.T) {
		dest := &memSnapshots{}
		fixed := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
		svc := NewService(seededStore(t), &fakeProjects{}, Options{
			Snapshots: dest,
			Now:       func() time.Time { return fixed },
		})

		res, err := svc.ExportSnapshot(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "customers-20240601T123000Z.csv", res.Name)
		assert.Equal(t, "mem://customers-20240601T123000Z.csv", res.Location)
		assert.Equal(t, 3, res.Records)

		body := string(dest.files[res.Name])
		assert.Contains(t, body, "Name,Email,Phone,Category,Orders,Tier\n")
		assert.Contains(t, body, "Bob Johnson,bob@example.com,(11) 77777-7777,Retail,8,\n")
		assert.Equal(t, 0, svc.Exports().ActiveCount(), "slot released")
	})

	t.Run("busy limiter rejects", func(t *testing.T) {
		limiter := NewExportLimiter(1, 20*time.Millisecond)
		require.True(t, limiter.TryAcquire())
		defer limiter.Release()

		svc := NewService(seededStore(t), &fakeProjects{}, Options{Snapshots: &memSnapshots{}, Exports: limiter})
		_, err := svc.ExportSnapshot(context.Background())
		assert.ErrorIs(t, err, ErrTooManyExports)
	})

	t.Run("destination failure", func(t *testing.T) {
		svc := NewService(seededStore(t), &fakeProjects{}, Options{Snapshots: &memSnapshots{err: errors.New("access denied")}})
		_, err := svc.ExportSnapshot(context.Background())
		assert.ErrorContains(t, err, "access denied")
	})
}

func TestService_ExportSchedulerStops(t *testing.T) {
	dest := &memSnapshots{}
	svc := NewService(seededStore(t), &fakeProjects{}, Options{Snapshots: dest})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartExportScheduler(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		dest.mu.Lock()
		defer dest.mu.Unlock()
		return len(dest.files) > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestService_CatalogDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	c := svc.Catalog()
	assert.Len(t, c.Products, 3)
	assert.Equal(t, 4000, c.MaxRevenue())

	custom := Catalog{Products: []Product{{ID: 9, Name: "Solo"}}}
	svc = NewService(seededStore(t), &fakeProjects{}, Options{Catalog: &custom})
	assert.Equal(t, "Solo", svc.Catalog().Products[0].Name)
}
