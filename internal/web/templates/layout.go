package templates

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/erpdash/internal/notify"
)

// Page is the chrome around every full page.
type Page struct {
	Title  string
	Active string // nav href of the current page
	Toasts []notify.Toast
}

type navItem struct {
	Href  string
	Label string
}

var nav = []navItem{
	{"/", "Dashboard"},
	{"/products", "Products"},
	{"/catalog", "Catalog"},
	{"/customers", "Customers"},
	{"/projects", "Projects"},
}

// Layout wraps body in the document shell, sidebar and toast region.
func Layout(p Page, body templ.Component) templ.Component {
	return component(func(o *out) {
		o.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		o.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		o.raw(`<title>`)
		o.text(p.Title)
		o.raw(` · ERP Dashboard</title>`)
		o.raw(`<link rel="stylesheet" href="/static/app.css">`)
		o.raw(`<script src="https://unpkg.com/htmx.org@2.0.4" defer></script>`)
		o.raw(`<script src="/static/app.js" defer></script>`)
		o.raw(`</head><body hx-boost="true"><div class="shell"><aside class="sidebar"><div class="brand">ERP Dashboard</div><nav>`)
		for _, item := range nav {
			o.raw(`<a`)
			o.href(templ.URL(item.Href))
			if item.Href == p.Active {
				o.raw(` class="active" aria-current="page"`)
			}
			o.raw(`>`)
			o.text(item.Label)
			o.raw(`</a>`)
		}
		o.raw(`</nav></aside><main class="content"><h1>`)
		o.text(p.Title)
		o.raw(`</h1>`)
		o.child(body)
		o.raw(`</main></div>`)
		o.child(Toasts(p.Toasts, false))
		o.raw(`</body></html>`)
	})
}

// Toasts renders the toast region. With oob set it is marked for an HTMX
// out-of-band swap so partial responses can update it.
func Toasts(toasts []notify.Toast, oob bool) templ.Component {
	return component(func(o *out) {
		o.raw(`<div id="toasts" class="toasts" aria-live="polite"`)
		if oob {
			o.raw(` hx-swap-oob="true"`)
		}
		o.raw(`>`)
		for _, t := range toasts {
			o.raw(`<div class="toast toast-`, string(t.Variant), `"`)
			o.attr("id", t.ID)
			if t.Destructive() {
				o.raw(` role="alert"`)
			} else {
				o.raw(` role="status"`)
			}
			o.raw(`><strong>`)
			o.text(t.Title)
			o.raw(`</strong>`)
			if t.Description != "" {
				o.raw(`<p>`)
				o.text(t.Description)
				o.raw(`</p>`)
			}
			o.raw(`<button type="button" class="toast-close" aria-label="Dismiss">×</button></div>`)
		}
		o.raw(`</div>`)
	})
}

// ErrorAlert is the HTMX error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(o *out) {
		o.raw(`<div class="alert alert-error" role="alert"><strong>`)
		o.text(message)
		o.raw(`</strong>`)
		if action != "" {
			o.raw(`<p>`)
			o.text(action)
			o.raw(`</p>`)
		}
		o.raw(`<small>Error code: `)
		o.text(code)
		o.raw(`</small></div>`)
	})
}

// NotFound is the body of the 404 page.
func NotFound() templ.Component {
	return component(func(o *out) {
		o.raw(`<p class="muted">The page you are looking for does not exist.</p><a class="button" href="/">Back to dashboard</a>`)
	})
}
