// Package seed loads the initial dashboard data from a TOML file.
//
// A seed file may define any of these sections; sections left out keep the
// built-in data:
//
//	[[columns]]         custom customer columns, by label
//	[[customers]]       customer records
//	[[products]]        catalog products
//	[[stats]]           dashboard quick stats
//	[[revenue]]         revenue chart points
//	[[project_columns]] project board columns (in-memory store only)
//	[[projects]]        projects (in-memory store only)
//
// Unknown keys are rejected so a typo does not silently drop data.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/JonMunkholm/erpdash/internal/core"
	"github.com/JonMunkholm/erpdash/internal/store/memory"
)

// File is the on-disk layout of a seed file.
type File struct {
	Columns        []ColumnEntry        `toml:"columns"`
	Customers      []CustomerEntry      `toml:"customers"`
	Products       []core.Product       `toml:"products"`
	Stats          []core.Metric        `toml:"stats"`
	Revenue        []core.RevenuePoint  `toml:"revenue"`
	ProjectColumns []ProjectColumnEntry `toml:"project_columns"`
	Projects       []ProjectEntry       `toml:"projects"`
}

type ColumnEntry struct {
	Label string `toml:"label"`
}

type CustomerEntry struct {
	Name     string            `toml:"name"`
	Email    string            `toml:"email"`
	Phone    string            `toml:"phone,omitempty"`
	Category string            `toml:"category,omitempty"`
	Orders   int               `toml:"orders"`
	Custom   map[string]string `toml:"custom,omitempty"`
}

type ProjectColumnEntry struct {
	Name    string   `toml:"name"`
	Type    string   `toml:"type"`
	Options []string `toml:"options,omitempty"`
}

type ProjectEntry struct {
	Name        string `toml:"name"`
	Description string `toml:"description,omitempty"`
	Category    string `toml:"category,omitempty"`
	Status      string `toml:"status"`
	Priority    string `toml:"priority"`
	Completion  int    `toml:"completion"`
	DueDate     string `toml:"due_date,omitempty"` // YYYY-MM-DD
	Owner       string `toml:"owner,omitempty"`
}

// Data is a validated seed ready to build stores from.
type Data struct {
	CustomerColumns []string
	Customers       []core.NewRecord
	Catalog         core.Catalog
	ProjectColumns  []core.ProjectColumn
	Projects        []core.Project
}

// Default returns the built-in seed.
func Default() Data {
	return Data{
		Customers:      core.DefaultCustomers(),
		Catalog:        core.DefaultCatalog(),
		ProjectColumns: memory.DefaultColumns(),
		Projects:       memory.DefaultProjects(),
	}
}

// Load reads and validates the seed file at path. An empty path returns Default.
func Load(path string) (Data, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	d, err := Decode(f)
	if err != nil {
		return Data{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return d, nil
}

// Decode parses a seed file from r and validates it.
func Decode(r io.Reader) (Data, error) {
	var file File
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return Data{}, fmt.Errorf("parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Data{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return file.data()
}

// data converts the file into Data, filling omitted sections from Default.
func (f File) data() (Data, error) {
	d := Default()

	if len(f.Columns) > 0 {
		d.CustomerColumns = make([]string, len(f.Columns))
		for i, c := range f.Columns {
			d.CustomerColumns[i] = c.Label
		}
	}
	if len(f.Customers) > 0 {
		d.Customers = make([]core.NewRecord, len(f.Customers))
		for i, c := range f.Customers {
			d.Customers[i] = core.NewRecord{
				Name:         c.Name,
				Email:        c.Email,
				Phone:        c.Phone,
				Category:     c.Category,
				Orders:       c.Orders,
				CustomFields: c.Custom,
			}
		}
	}
	if len(f.Products) > 0 {
		d.Catalog.Products = f.Products
	}
	if len(f.Stats) > 0 {
		d.Catalog.Stats = f.Stats
	}
	if len(f.Revenue) > 0 {
		d.Catalog.Revenue = f.Revenue
	}

	var errs []error
	if len(f.ProjectColumns) > 0 {
		d.ProjectColumns = nil
		for i, e := range f.ProjectColumns {
			nc := core.NewProjectColumn{Name: e.Name, Type: core.ColumnType(e.Type), Options: e.Options}.Normalize()
			if err := nc.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("project_columns[%d]: %w", i, err))
				continue
			}
			d.ProjectColumns = append(d.ProjectColumns, core.ProjectColumn{Name: nc.Name, Type: nc.Type, Options: nc.Options})
		}
	}
	if len(f.Projects) > 0 {
		d.Projects = nil
		for i, e := range f.Projects {
			p, err := e.project()
			if err != nil {
				errs = append(errs, fmt.Errorf("projects[%d]: %w", i, err))
				continue
			}
			d.Projects = append(d.Projects, p)
		}
	}

	// Building a throwaway store runs the same validation the server will.
	if _, err := d.NewCustomerStore(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return Data{}, err
	}
	return d, nil
}

var (
	validStatuses   = []core.ProjectStatus{core.StatusBacklog, core.StatusInProgress, core.StatusPaused, core.StatusCanceled, core.StatusCompleted}
	validPriorities = []core.ProjectPriority{core.PriorityLow, core.PriorityMedium, core.PriorityHigh}
)

func (e ProjectEntry) project() (core.Project, error) {
	p := core.Project{
		Name:        strings.TrimSpace(e.Name),
		Description: e.Description,
		Category:    e.Category,
		Status:      core.ProjectStatus(e.Status),
		Priority:    core.ProjectPriority(e.Priority),
		Completion:  e.Completion,
		Owner:       e.Owner,
	}
	if p.Name == "" {
		return core.Project{}, errors.New("name is required")
	}
	if !slices.Contains(validStatuses, p.Status) {
		return core.Project{}, fmt.Errorf("invalid status %q", e.Status)
	}
	if !slices.Contains(validPriorities, p.Priority) {
		return core.Project{}, fmt.Errorf("invalid priority %q", e.Priority)
	}
	if p.Completion < 0 || p.Completion > 100 {
		return core.Project{}, fmt.Errorf("completion %d out of range 0-100", p.Completion)
	}
	if e.DueDate != "" {
		t, err := time.Parse(time.DateOnly, e.DueDate)
		if err != nil {
			return core.Project{}, fmt.Errorf("invalid due_date %q, want YYYY-MM-DD", e.DueDate)
		}
		p.DueDate = &t
	}
	return p, nil
}

// NewCustomerStore builds a customer store from the seed.
func (d Data) NewCustomerStore() (*core.CustomerStore, error) {
	return core.NewCustomerStore(d.CustomerColumns, d.Customers)
}

// NewProjectStore builds an in-memory project store from the seed.
func (d Data) NewProjectStore() *memory.ProjectStore {
	return memory.NewProjectStore(d.Projects, d.ProjectColumns)
}

// Encode writes d as a seed file. Decoding the output yields the same data.
func Encode(w io.Writer, d Data) error {
	var f File
	for _, label := range d.CustomerColumns {
		f.Columns = append(f.Columns, ColumnEntry{Label: label})
	}
	for _, c := range d.Customers {
		f.Customers = append(f.Customers, CustomerEntry{
			Name: c.Name, Email: c.Email, Phone: c.Phone,
			Category: c.Category, Orders: c.Orders, Custom: c.CustomFields,
		})
	}
	f.Products = d.Catalog.Products
	f.Stats = d.Catalog.Stats
	f.Revenue = d.Catalog.Revenue
	for _, c := range d.ProjectColumns {
		f.ProjectColumns = append(f.ProjectColumns, ProjectColumnEntry{Name: c.Name, Type: string(c.Type), Options: c.Options})
	}
	for _, p := range d.Projects {
		e := ProjectEntry{
			Name: p.Name, Description: p.Description, Category: p.Category,
			Status: string(p.Status), Priority: string(p.Priority),
			Completion: p.Completion, Owner: p.Owner,
		}
		if p.DueDate != nil {
			e.DueDate = p.DueDate.Format(time.DateOnly)
		}
		f.Projects = append(f.Projects, e)
	}
	return toml.NewEncoder(w).Encode(f)
}

// Summary is a one-line description of d for the CLI.
func (d Data) Summary() string {
	return fmt.Sprintf("%d customers, %d custom columns, %d products, %d projects, %d project columns",
		len(d.Customers), len(d.CustomerColumns), len(d.Catalog.Products), len(d.Projects), len(d.ProjectColumns))
}
