package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/erpdash/internal/core"
	"github.com/JonMunkholm/erpdash/internal/notify"
	"github.com/JonMunkholm/erpdash/internal/web/templates"
)

// projectsPage loads the board and renders it. A failed read still renders
// the page, with a toast per failure.
func (s *Server) projectsPage(w http.ResponseWriter, r *http.Request, status int, search string, form templates.ColumnForm, toasts []notify.Toast) {
	board := s.service.LoadProjectBoard(r.Context())
	toasts = append(toasts, notify.Board(board)...)

	d := templates.ProjectsData{
		Projects: core.SearchProjects(board.Projects, search),
		Columns:  board.Columns,
		Search:   search,
		Form:     form,
	}
	page := templates.Page{Title: "Projects", Active: "/projects", Toasts: toasts}
	s.render(w, r, status, page, templates.Projects(d))
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	s.projectsPage(w, r, http.StatusOK, r.URL.Query().Get("search"), templates.ColumnForm{}, popFlash(w, r))
}

// splitOptions turns "a, b,,c" into [a b c].
func splitOptions(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (s *Server) handleCreateProjectColumn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}
	form := templates.ColumnForm{
		Name:    r.PostFormValue("name"),
		Type:    core.ColumnType(r.PostFormValue("type")),
		Options: r.PostFormValue("options"),
	}

	_, err := s.service.AddProjectColumn(r.Context(), core.NewProjectColumn{
		Name:    form.Name,
		Type:    form.Type,
		Options: splitOptions(form.Options),
	})
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			form.Errors = ve
			s.projectsPage(w, r, http.StatusUnprocessableEntity, "", form, []notify.Toast{notify.FromError("Invalid column", err)})
			return
		}
		// Store failure: keep the input so the user can retry.
		s.projectsPage(w, r, statusFor(err), "", form, []notify.Toast{notify.FromError("Error adding column", err)})
		return
	}

	toast := notify.ProjectColumnAdded()
	if isHTMX(r) {
		s.projectsPage(w, r, http.StatusOK, "", templates.ColumnForm{}, []notify.Toast{toast})
		return
	}
	redirectWithFlash(w, r, "/projects", toast)
}
