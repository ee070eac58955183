package templates

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/erpdash/internal/core"
)

// CustomerForm is the add-customer form state.
type CustomerForm struct {
	Values core.NewRecord
	Errors *core.ValidationError
}

func (f CustomerForm) errorFor(field string) string {
	if f.Errors == nil {
		return ""
	}
	return f.Errors.FieldMessage(field)
}

// CustomersData is everything the customer page shows.
type CustomersData struct {
	View             core.View
	Form             CustomerForm
	ColumnLabel      string
	ColumnError      string
	Import           *core.ImportResult
	SnapshotsEnabled bool
}

// viewParam carries the current view through form posts so the response
// can re-render the same view.
func viewParam(q core.ViewQuery) string {
	return q.Values().Encode()
}

func customersURL(q core.ViewQuery) string {
	if enc := viewParam(q); enc != "" {
		return "/customers?" + enc
	}
	return "/customers"
}

// Customers renders the customer section. It is both the page body and the
// HTMX swap target.
func Customers(d CustomersData) templ.Component {
	return component(func(o *out) {
		q := d.View.Query
		o.raw(`<section id="customers">`)
		customerToolbar(o, d)
		customerTable(o, d.View)
		o.raw(`<div class="panels">`)
		addCustomerForm(o, d)
		addColumnForm(o, d)
		importForm(o, d)
		o.raw(`</div>`)
		o.raw(`<p class="muted">Showing `, itoa(len(d.View.Records)), ` of `, itoa(d.View.Total), ` customers. <a`)
		o.href(templ.URL("/api/customers/export?" + viewParam(q)))
		o.raw(` hx-boost="false">Download CSV</a></p></section>`)
	})
}

func customerToolbar(o *out, d CustomersData) {
	q := d.View.Query
	o.raw(`<form id="customer-filters" class="toolbar" method="get" action="/customers" hx-get="/customers" hx-target="#customers" hx-swap="outerHTML" hx-push-url="true" hx-trigger="input changed delay:300ms, change, submit">`)
	o.raw(`<input type="search" name="search" placeholder="Search name, email or phone"`)
	o.attr("value", q.Search)
	o.raw(`><select name="category"><option value="all">All categories</option>`)
	for _, c := range d.View.Categories {
		o.raw(`<option`)
		o.attr("value", c)
		if c == q.Category {
			o.raw(` selected`)
		}
		o.raw(`>`)
		o.text(c)
		o.raw(`</option>`)
	}
	o.raw(`</select><select name="orders">`)
	for _, opt := range []struct {
		v     core.OrderVolume
		label string
	}{
		{core.VolumeAll, "All orders"},
		{core.VolumeHigh, "High volume (> " + itoa(core.HighVolumeThreshold) + ")"},
		{core.VolumeLow, "Low volume (≤ " + itoa(core.HighVolumeThreshold) + ")"},
	} {
		o.raw(`<option`)
		o.attr("value", string(opt.v))
		if opt.v == q.Volume || (opt.v == core.VolumeAll && q.Volume == "") {
			o.raw(` selected`)
		}
		o.raw(`>`)
		o.text(opt.label)
		o.raw(`</option>`)
	}
	o.raw(`</select>`)
	if q.Sort.Active() {
		o.raw(`<input type="hidden" name="sort"`)
		o.attr("value", q.Sort.Column)
		o.raw(`><input type="hidden" name="dir"`)
		o.attr("value", string(q.Sort.Direction))
		o.raw(`>`)
	}
	o.raw(`<noscript><button type="submit">Apply</button></noscript></form>`)
}

func sortIndicator(q core.ViewQuery, key string) string {
	if q.Sort.Column != key {
		return ""
	}
	switch q.Sort.Direction {
	case core.SortAsc:
		return " ▲"
	case core.SortDesc:
		return " ▼"
	}
	return ""
}

func customerTable(o *out, v core.View) {
	q := v.Query
	o.raw(`<table class="customers"><thead><tr>`)
	for _, c := range v.Columns {
		href := customersURL(q.WithSort(q.Sort.Next(c.Key)))
		o.raw(`<th><a`)
		o.href(templ.URL(href))
		o.attr("hx-get", href)
		o.raw(` hx-target="#customers" hx-swap="outerHTML" hx-push-url="true">`)
		o.text(c.Label + sortIndicator(q, c.Key))
		o.raw(`</a></th>`)
	}
	o.raw(`<th></th></tr><tr class="filters">`)
	for _, c := range v.Columns {
		o.raw(`<th><input type="text" form="customer-filters"`)
		o.attr("name", core.FilterParam(c.Key))
		o.attr("placeholder", "Filter "+c.Label)
		o.attr("value", q.ColumnFilters[c.Key])
		// Events on form= inputs do not bubble to the form, so each input requests on its own.
		o.raw(` hx-get="/customers" hx-include="#customer-filters" hx-trigger="input changed delay:300ms" hx-target="#customers" hx-swap="outerHTML" hx-push-url="true"></th>`)
	}
	o.raw(`<th></th></tr></thead><tbody>`)
	if len(v.Records) == 0 {
		o.raw(`<tr><td class="empty"`)
		o.attr("colspan", itoa(len(v.Columns)+1))
		o.raw(`>No customers found</td></tr>`)
	}
	for _, r := range v.Records {
		id := strconv.FormatInt(r.ID, 10)
		o.raw(`<tr`)
		o.attr("id", "customer-"+id)
		o.raw(`>`)
		for _, c := range v.Columns {
			o.raw(`<td>`)
			o.text(c.Display(r))
			o.raw(`</td>`)
		}
		o.raw(`<td><form method="post"`)
		o.attr("action", "/customers/"+id+"/delete")
		o.attr("hx-post", "/customers/"+id+"/delete")
		o.attr("hx-confirm", "Delete "+r.Name+"?")
		o.raw(` hx-target="#customers" hx-swap="outerHTML"><input type="hidden" name="view"`)
		o.attr("value", viewParam(q))
		o.raw(`><button type="submit" class="button danger">Delete</button></form></td></tr>`)
	}
	o.raw(`</tbody></table>`)
}

func field(o *out, label, name, typ, value, errMsg string) {
	o.raw(`<label>`)
	o.text(label)
	o.raw(`<input`)
	o.attr("type", typ)
	o.attr("name", name)
	o.attr("value", value)
	if errMsg != "" {
		o.raw(` aria-invalid="true"`)
	}
	o.raw(`>`)
	if errMsg != "" {
		o.raw(`<span class="field-error">`)
		o.text(errMsg)
		o.raw(`</span>`)
	}
	o.raw(`</label>`)
}

func mutationForm(o *out, action string, q core.ViewQuery, multipart bool) {
	o.raw(`<form method="post"`)
	o.attr("action", action)
	o.attr("hx-post", action)
	if multipart {
		o.raw(` enctype="multipart/form-data" hx-encoding="multipart/form-data"`)
	}
	o.raw(` hx-target="#customers" hx-swap="outerHTML"><input type="hidden" name="view"`)
	o.attr("value", viewParam(q))
	o.raw(`>`)
}

func addCustomerForm(o *out, d CustomersData) {
	f := d.Form
	o.raw(`<div class="card"><h2>Add customer</h2>`)
	mutationForm(o, "/customers", d.View.Query, false)
	field(o, "Name", "name", "text", f.Values.Name, f.errorFor("name"))
	field(o, "Email", "email", "email", f.Values.Email, f.errorFor("email"))
	field(o, "Phone", "phone", "tel", f.Values.Phone, f.errorFor("phone"))
	field(o, "Category", "category", "text", f.Values.Category, f.errorFor("category"))
	orders := ""
	if f.Values.Orders != 0 {
		orders = itoa(f.Values.Orders)
	}
	field(o, "Orders", "orders", "number", orders, f.errorFor("orders"))
	for _, c := range d.View.Columns {
		if !c.IsCustom() {
			continue
		}
		field(o, c.Label, "custom["+c.Key+"]", "text", f.Values.CustomFields[c.Key], f.errorFor(c.Key))
	}
	o.raw(`<button type="submit" class="button">Add customer</button></form></div>`)
}

func addColumnForm(o *out, d CustomersData) {
	o.raw(`<div class="card"><h2>Add column</h2>`)
	mutationForm(o, "/customers/columns", d.View.Query, false)
	field(o, "Label", "label", "text", d.ColumnLabel, d.ColumnError)
	o.raw(`<button type="submit" class="button">Add column</button></form></div>`)
}

func importForm(o *out, d CustomersData) {
	o.raw(`<div class="card"><h2>Import CSV</h2>`)
	mutationForm(o, "/customers/import", d.View.Query, true)
	o.raw(`<input type="file" name="file" accept=".csv,text/csv" required><button type="submit" class="button">Import</button></form>`)
	if res := d.Import; res != nil {
		o.raw(`<p>Added `, itoa(res.Added), ` customers.</p>`)
		if len(res.IgnoredHeaders) > 0 {
			o.raw(`<p class="muted">Ignored columns: `)
			for i, h := range res.IgnoredHeaders {
				if i > 0 {
					o.raw(", ")
				}
				o.text(h)
			}
			o.raw(`</p>`)
		}
		if len(res.Failed) > 0 {
			o.raw(`<ul class="import-errors">`)
			for _, fe := range res.Failed {
				o.raw(`<li>Line `, itoa(fe.Line), `: `)
				o.text(fe.Message)
				o.raw(`</li>`)
			}
			o.raw(`</ul>`)
		}
	}
	if d.SnapshotsEnabled {
		o.raw(`<form method="post" action="/customers/snapshot" hx-post="/customers/snapshot" hx-swap="none"><button type="submit" class="button secondary">Save snapshot</button></form>`)
	}
	o.raw(`</div>`)
}
