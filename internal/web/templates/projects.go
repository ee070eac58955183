package templates

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/erpdash/internal/core"
)

// ColumnForm is the add-project-column form state.
type ColumnForm struct {
	Name    string
	Type    core.ColumnType
	Options string // comma separated
	Errors  *core.ValidationError
}

// ProjectsData is everything the project page shows.
type ProjectsData struct {
	Projects []core.Project // already searched
	Columns  []core.ProjectColumn
	Search   string
	Form     ColumnForm
}

// Projects renders the project section; it is also the HTMX swap target.
func Projects(d ProjectsData) templ.Component {
	return component(func(o *out) {
		o.raw(`<section id="projects">`)
		o.raw(`<form class="toolbar" method="get" action="/projects" hx-get="/projects" hx-target="#projects" hx-swap="outerHTML" hx-push-url="true" hx-trigger="input changed delay:300ms, submit">`)
		o.raw(`<input type="search" name="search" placeholder="Search projects"`)
		o.attr("value", d.Search)
		o.raw(`></form>`)
		projectTable(o, d)
		projectColumnForm(o, d)
		o.raw(`</section>`)
	})
}

func projectTable(o *out, d ProjectsData) {
	o.raw(`<table class="projects"><thead><tr>`)
	for _, c := range d.Columns {
		o.raw(`<th>`)
		o.text(headerLabel(c.Name))
		o.raw(`</th>`)
	}
	o.raw(`</tr></thead><tbody>`)
	if len(d.Projects) == 0 || len(d.Columns) == 0 {
		o.raw(`<tr><td class="empty"`)
		o.attr("colspan", itoa(max(len(d.Columns), 1)))
		o.raw(`>No projects found</td></tr>`)
	} else {
		for _, p := range d.Projects {
			o.raw(`<tr>`)
			for _, c := range d.Columns {
				o.raw(`<td>`)
				projectCell(o, core.RenderProjectCell(p, c))
				o.raw(`</td>`)
			}
			o.raw(`</tr>`)
		}
	}
	o.raw(`</tbody></table>`)
}

func projectCell(o *out, cell core.ProjectCell) {
	switch cell.Type {
	case core.ColumnProgress:
		o.raw(`<div class="progress"><span class="progress-fill" style="width:`, itoa(cell.Percent), `%"></span></div><small>`)
		o.text(cell.Text)
		o.raw(`</small>`)
	case core.ColumnSelect:
		if cell.Text == "" {
			return
		}
		o.raw(`<span class="badge badge-`, string(cell.Tone), `">`)
		o.text(headerLabel(cell.Text))
		o.raw(`</span>`)
	default:
		o.text(cell.Text)
	}
}

// headerLabel turns "due_date" into "Due date".
func headerLabel(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func projectColumnForm(o *out, d ProjectsData) {
	f := d.Form
	errFor := func(field string) string {
		if f.Errors == nil {
			return ""
		}
		return f.Errors.FieldMessage(field)
	}
	o.raw(`<div class="card"><h2>Add column</h2><form method="post" action="/projects/columns" hx-post="/projects/columns" hx-target="#projects" hx-swap="outerHTML">`)
	field(o, "Name", "name", "text", f.Name, errFor("name"))
	o.raw(`<label>Type<select name="type">`)
	for _, t := range core.ColumnTypes {
		o.raw(`<option`)
		o.attr("value", string(t))
		if t == f.Type {
			o.raw(` selected`)
		}
		o.raw(`>`)
		o.text(headerLabel(string(t)))
		o.raw(`</option>`)
	}
	o.raw(`</select>`)
	if msg := errFor("type"); msg != "" {
		o.raw(`<span class="field-error">`)
		o.text(msg)
		o.raw(`</span>`)
	}
	o.raw(`</label>`)
	field(o, "Options (comma separated, select only)", "options", "text", f.Options, "")
	o.raw(`<button type="submit" class="button">Add column</button></form></div>`)
}
