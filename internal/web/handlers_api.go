package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/erpdash/internal/core"
	"github.com/JonMunkholm/erpdash/internal/logging"
)

// maxJSONBody bounds API request bodies.
const maxJSONBody = 1 << 20

// decodeJSON reads one JSON object from the request body. Unknown fields
// are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// apiDashboard returns the dashboard stats and revenue series.
func (s *Server) apiDashboard(w http.ResponseWriter, r *http.Request) {
	c := s.service.Catalog()
	writeJSON(w, map[string]any{
		"stats":   c.Stats,
		"revenue": c.Revenue,
	})
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Catalog().SearchProducts(r.URL.Query().Get("search")))
}

// apiListCustomers returns the derived view for the query string.
func (s *Server) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.CustomerView(core.ParseViewQuery(r.URL.Query())))
}

func (s *Server) apiCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var nr core.NewRecord
	if err := decodeJSON(w, r, &nr); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}
	rec, err := s.service.AddCustomer(r.Context(), nr)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, rec)
}

func (s *Server) apiDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondErrorStatus(w, r, core.ErrRecordNotFound, http.StatusNotFound)
		return
	}
	if err := s.service.DeleteCustomer(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiListCustomerColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.CustomerColumns())
}

type newColumnRequest struct {
	Label string `json:"label"`
}

func (s *Server) apiCreateCustomerColumn(w http.ResponseWriter, r *http.Request) {
	var req newColumnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}
	col, err := s.service.AddCustomerColumn(r.Context(), req.Label)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, col)
}

// apiExportCustomers streams the current view as a CSV download.
func (s *Server) apiExportCustomers(w http.ResponseWriter, r *http.Request) {
	q := core.ParseViewQuery(r.URL.Query())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="customers.csv"`)
	if err := s.service.ExportCustomersCSV(w, q); err != nil {
		// Headers are already sent.
		logging.FromContext(r.Context()).Error("customer export failed", "error", err)
	}
}

func (s *Server) apiImportCustomers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	var body io.Reader = r.Body
	if err := r.ParseMultipartForm(maxImportSize); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			s.respondErrorStatus(w, r, fmt.Errorf("missing file field: %w", err), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body = file
	} else if !errors.Is(err, http.ErrNotMultipart) {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.service.ImportCustomersCSV(r.Context(), body)
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			writeJSONStatus(w, http.StatusUnprocessableEntity, struct {
				ErrorResponse
				Result core.ImportResult `json:"result"`
			}{ErrorResponse{Error: ve.Error(), Message: ve.Error(), Code: core.MapError(err).Code, Fields: ve.Errors}, res})
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) apiSnapshot(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ExportSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrTooManyExports) {
			w.Header().Set("Retry-After", "30")
		}
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

func (s *Server) apiListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.service.ListProjects(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, core.SearchProjects(projects, r.URL.Query().Get("search")))
}

func (s *Server) apiListProjectColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := s.service.ListProjectColumns(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, cols)
}

func (s *Server) apiCreateProjectColumn(w http.ResponseWriter, r *http.Request) {
	var nc core.NewProjectColumn
	if err := decodeJSON(w, r, &nc); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}
	col, err := s.service.AddProjectColumn(r.Context(), nc)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, col)
}
