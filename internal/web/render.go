package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/erpdash/internal/logging"
	"github.com/JonMunkholm/erpdash/internal/notify"
	"github.com/JonMunkholm/erpdash/internal/web/templates"
)

// render writes body as a full page, or as a fragment for HTMX partial
// requests. Fragments carry their toasts as an out-of-band swap and are
// always sent with 200 because htmx ignores the body of error responses.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page templates.Page, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var c templ.Component
	if isPartial(r) {
		w.Header().Set("Vary", "HX-Request")
		status = http.StatusOK
		c = fragment(body, page.Toasts)
	} else {
		c = templates.Layout(page, body)
	}

	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

func fragment(body templ.Component, toasts []notify.Toast) templ.Component {
	if len(toasts) == 0 {
		return body
	}
	return templ.Join(body, templates.Toasts(toasts, true))
}

// redirectWithFlash finishes a non-HTMX form post.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, to string, toasts ...notify.Toast) {
	setFlash(w, toasts)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
