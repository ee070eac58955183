package templates

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/erpdash/internal/core"
	"github.com/JonMunkholm/erpdash/internal/notify"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayout(t *testing.T) {
	html := render(t, Layout(Page{
		Title:  "Customers",
		Active: "/customers",
		Toasts: []notify.Toast{notify.Failure("Error fetching projects", notify.RetryLater)},
	}, NotFound()))

	assert.Contains(t, html, "<title>Customers · ERP Dashboard</title>")
	assert.Contains(t, html, `<a href="/customers" class="active" aria-current="page">`)
	assert.Contains(t, html, `class="toast toast-destructive"`)
	assert.Contains(t, html, "Please try again later")
	assert.NotContains(t, html, "hx-swap-oob")
}

func TestToasts_OOB(t *testing.T) {
	html := render(t, Toasts([]notify.Toast{notify.CustomerAdded()}, true))
	assert.Contains(t, html, `hx-swap-oob="true"`)
	assert.Contains(t, html, `role="status"`)
}

func TestEscaping(t *testing.T) {
	html := render(t, ErrorAlert(`<script>alert(1)</script>`, "", "ERR000"))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func customersData(t *testing.T, q core.ViewQuery) CustomersData {
	t.Helper()
	store, err := core.NewCustomerStore([]string{"Customer Tier"}, []core.NewRecord{
		{Name: "Ana", Email: "ana@example.com", Category: "Retail", Orders: 8, CustomFields: map[string]string{"customer_tier": "Gold"}},
		{Name: "Rui", Email: "rui@example.com", Category: "Wholesale", Orders: 2},
	})
	require.NoError(t, err)
	svc := core.NewService(store, nil, core.Options{})
	return CustomersData{View: svc.CustomerView(q)}
}

func TestCustomers(t *testing.T) {
	q := core.ViewQuery{Sort: core.SortConfig{Column: "orders", Direction: core.SortAsc}}
	html := render(t, Customers(customersData(t, q)))

	assert.Contains(t, html, `<section id="customers">`)
	assert.Contains(t, html, "Orders ▲")
	// Activating the sorted column again moves to descending.
	assert.Contains(t, html, `href="/customers?dir=desc&amp;sort=orders"`)
	// A different column starts ascending.
	assert.Contains(t, html, `href="/customers?dir=asc&amp;sort=name"`)
	assert.Contains(t, html, `name="filter[customer_tier]"`)
	// Filter inputs live in the header row, outside the toolbar form.
	assert.Contains(t, html, `form="customer-filters" name="filter[customer_tier]"`)
	assert.Equal(t, strings.Count(html, `form="customer-filters" name="filter[`),
		strings.Count(html, `hx-include="#customer-filters" hx-trigger="input changed delay:300ms"`),
		"every filter input requests on its own")
	assert.Contains(t, html, `name="custom[customer_tier]"`)
	assert.Contains(t, html, "Showing 2 of 2 customers")
	assert.Less(t, strings.Index(html, ">Rui<"), strings.Index(html, ">Ana<"), "ascending orders puts Rui first")
}

func TestCustomers_FormErrors(t *testing.T) {
	d := customersData(t, core.ViewQuery{})
	var ve core.ValidationError
	ve.Add("email", "is not a valid address")
	d.Form = CustomerForm{Values: core.NewRecord{Name: "Zé", Email: "nope"}, Errors: &ve}
	d.ColumnError = "A column with this name already exists"

	html := render(t, Customers(d))
	assert.Contains(t, html, `value="nope" aria-invalid="true"`)
	assert.Contains(t, html, "is not a valid address")
	assert.Contains(t, html, "A column with this name already exists")
}

func TestCustomers_ImportResult(t *testing.T) {
	d := customersData(t, core.ViewQuery{})
	d.Import = &core.ImportResult{
		Added:          3,
		Failed:         []core.ImportRowError{{Line: 4, Message: "email: is required"}},
		IgnoredHeaders: []string{"Notes"},
	}
	html := render(t, Customers(d))
	assert.Contains(t, html, "Added 3 customers.")
	assert.Contains(t, html, "Line 4: email: is required")
	assert.Contains(t, html, "Ignored columns: Notes")
}

func TestProjects(t *testing.T) {
	due := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	html := render(t, Projects(ProjectsData{
		Projects: []core.Project{{Name: "Launch", Status: core.StatusInProgress, Completion: 40, DueDate: &due}},
		Columns: []core.ProjectColumn{
			{Name: "name", Type: core.ColumnText},
			{Name: "status", Type: core.ColumnSelect},
			{Name: "completion", Type: core.ColumnProgress},
			{Name: "due_date", Type: core.ColumnDate},
		},
	}))

	assert.Contains(t, html, "<th>Due date</th>")
	assert.Contains(t, html, `<span class="badge badge-blue">In progress</span>`)
	assert.Contains(t, html, `style="width:40%"`)
	assert.Contains(t, html, "Mar 5, 2024")
}

func TestProjects_Empty(t *testing.T) {
	html := render(t, Projects(ProjectsData{}))
	assert.Contains(t, html, "No projects found")
}

func TestDashboardAndCatalog(t *testing.T) {
	c := core.DefaultCatalog()
	html := render(t, Dashboard(c))
	for _, m := range c.Stats {
		assert.Contains(t, html, templ.EscapeString(m.Label))
	}
	assert.Contains(t, html, `style="height:100%"`)

	html = render(t, Catalog(c.Products))
	assert.Contains(t, html, `src="/static/placeholder.svg"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderReportsWriteError(t *testing.T) {
	err := ProductTable(core.DefaultCatalog().Products).Render(context.Background(), failingWriter{})
	assert.EqualError(t, err, "closed")
}

// countingWriter records every Write it receives.
type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestComponentSharesBuffer(t *testing.T) {
	inner := component(func(o *out) { o.raw("<b>", "inner", "</b>") })
	outer := component(func(o *out) {
		o.raw("<p>")
		o.child(inner)
		o.raw("</p>")
	})

	var w countingWriter
	require.NoError(t, outer.Render(context.Background(), &w))
	assert.Equal(t, "<p><b>inner</b></p>", w.String())
	assert.Equal(t, 1, w.writes, "nested output is flushed once")
}

func TestComponentCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := component(func(o *out) { o.raw("never") }).Render(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}

func TestHrefSanitizesScheme(t *testing.T) {
	html := render(t, component(func(o *out) {
		o.raw("<a")
		o.href(templ.URL("javascript:alert(1)"))
		o.raw("></a><a")
		o.href(templ.URL("/customers?sort=name&dir=asc"))
		o.raw("></a>")
	}))
	assert.Contains(t, html, `href="about:invalid#TemplFailedSanitizationURL"`)
	assert.Contains(t, html, `href="/customers?sort=name&amp;dir=asc"`)
}
