package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/erpdash/internal/core"
	"github.com/JonMunkholm/erpdash/internal/notify"
	"github.com/JonMunkholm/erpdash/internal/web/templates"
)

// maxImportSize bounds a CSV upload.
const maxImportSize = 10 << 20

// customersPage renders the customer section with d and toasts. d.View is
// filled from q.
func (s *Server) customersPage(w http.ResponseWriter, r *http.Request, status int, q core.ViewQuery, d templates.CustomersData, toasts []notify.Toast) {
	d.View = s.service.CustomerView(q)
	d.SnapshotsEnabled = s.service.SnapshotsEnabled()
	page := templates.Page{Title: "Customers", Active: "/customers", Toasts: toasts}
	s.render(w, r, status, page, templates.Customers(d))
}

// customersDone finishes a successful mutation: HTMX gets the refreshed
// section, plain forms get a redirect back to the same view.
func (s *Server) customersDone(w http.ResponseWriter, r *http.Request, q core.ViewQuery, d templates.CustomersData, toasts ...notify.Toast) {
	if isHTMX(r) {
		s.customersPage(w, r, http.StatusOK, q, d, toasts)
		return
	}
	redirectWithFlash(w, r, customersLocation(q), toasts...)
}

func customersLocation(q core.ViewQuery) string {
	if enc := q.Values().Encode(); enc != "" {
		return "/customers?" + enc
	}
	return "/customers"
}

// formView recovers the view a form was posted from.
func formView(r *http.Request) core.ViewQuery {
	v, err := url.ParseQuery(r.PostFormValue("view"))
	if err != nil {
		return core.ViewQuery{}
	}
	return core.ParseViewQuery(v)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	q := core.ParseViewQuery(r.URL.Query())
	s.customersPage(w, r, http.StatusOK, q, templates.CustomersData{}, popFlash(w, r))
}

// parseCustomerForm reads the add-customer form. Custom columns arrive as
// custom[key] fields.
func parseCustomerForm(form url.Values) (core.NewRecord, *core.ValidationError) {
	nr := core.NewRecord{
		Name:     form.Get("name"),
		Email:    form.Get("email"),
		Phone:    form.Get("phone"),
		Category: form.Get("category"),
	}
	ve := &core.ValidationError{}
	if raw := strings.TrimSpace(form.Get("orders")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			ve.Add("orders", "must be a whole number")
		}
		nr.Orders = n
	}
	for key, vals := range form {
		inner, ok := strings.CutPrefix(key, "custom[")
		if !ok || !strings.HasSuffix(inner, "]") || len(vals) == 0 {
			continue
		}
		if nr.CustomFields == nil {
			nr.CustomFields = make(map[string]string)
		}
		nr.CustomFields[strings.TrimSuffix(inner, "]")] = vals[0]
	}
	if ve.HasErrors() {
		return nr, ve
	}
	return nr, nil
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}
	q := formView(r)

	nr, ve := parseCustomerForm(r.PostForm)
	var err error
	if ve == nil {
		_, err = s.service.AddCustomer(r.Context(), nr)
	} else {
		err = ve
	}

	if err != nil {
		if !errors.As(err, &ve) {
			s.respondError(w, r, err)
			return
		}
		d := templates.CustomersData{Form: templates.CustomerForm{Values: nr, Errors: ve}}
		s.customersPage(w, r, http.StatusUnprocessableEntity, q, d, []notify.Toast{notify.FromError("Error adding customer", err)})
		return
	}
	s.customersDone(w, r, q, templates.CustomersData{}, notify.CustomerAdded())
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	q := formView(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondErrorStatus(w, r, core.ErrRecordNotFound, http.StatusNotFound)
		return
	}

	if err := s.service.DeleteCustomer(r.Context(), id); err != nil {
		// Already gone: refresh the view so the stale row disappears.
		if errors.Is(err, core.ErrRecordNotFound) {
			s.customersDone(w, r, q, templates.CustomersData{}, notify.FromError("Error deleting customer", err))
			return
		}
		s.respondError(w, r, err)
		return
	}
	s.customersDone(w, r, q, templates.CustomersData{}, notify.CustomerDeleted())
}

func (s *Server) handleCreateCustomerColumn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}
	q := formView(r)
	label := r.PostFormValue("label")

	col, err := s.service.AddCustomerColumn(r.Context(), label)
	if err != nil {
		var ve *core.ValidationError
		msg := ""
		switch {
		case errors.As(err, &ve):
			msg = ve.FieldMessage("label")
		case errors.Is(err, core.ErrDuplicateColumn):
			msg = "a column with this key already exists"
		default:
			s.respondError(w, r, err)
			return
		}
		d := templates.CustomersData{ColumnLabel: label, ColumnError: msg}
		s.customersPage(w, r, statusFor(err), q, d, []notify.Toast{notify.FromError("Error adding column", err)})
		return
	}
	s.customersDone(w, r, q, templates.CustomersData{}, notify.CustomerColumnAdded(col.Label))
}

// handleImportCustomers imports an uploaded CSV and shows the row report
// in place.
func (s *Server) handleImportCustomers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}
	q := formView(r)

	file, _, err := r.FormFile("file")
	if err != nil {
		ve := &core.ValidationError{}
		ve.Add("file", "is required")
		s.customersPage(w, r, http.StatusUnprocessableEntity, q, templates.CustomersData{}, []notify.Toast{notify.FromError("Import failed", ve)})
		return
	}
	defer file.Close()

	res, err := s.service.ImportCustomersCSV(r.Context(), file)
	if err != nil {
		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			s.respondError(w, r, err)
			return
		}
		s.customersPage(w, r, http.StatusUnprocessableEntity, q, templates.CustomersData{Import: &res}, []notify.Toast{notify.FromError("Import failed", err)})
		return
	}

	toast := notify.Success("Import finished", strconv.Itoa(res.Added)+" customers added")
	if len(res.Failed) > 0 {
		toast = notify.Failure("Import finished with errors", strconv.Itoa(res.Added)+" added, "+strconv.Itoa(len(res.Failed))+" rows rejected")
	}
	// The report is part of the page, so even plain forms render in place.
	s.customersPage(w, r, http.StatusOK, q, templates.CustomersData{Import: &res}, []notify.Toast{toast})
}

// handleSnapshotForm exports a snapshot from the customer page.
func (s *Server) handleSnapshotForm(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ExportSnapshot(r.Context())
	toast := notify.Success("Snapshot saved", res.Location)
	if err != nil {
		toast = notify.FromError("Snapshot failed", err)
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Toasts([]notify.Toast{toast}, true).Render(r.Context(), w); err != nil {
			s.respondError(w, r, err)
		}
		return
	}
	redirectWithFlash(w, r, "/customers", toast)
}
