package web

import (
	"net/http"

	"github.com/JonMunkholm/erpdash/internal/web/templates"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	page := templates.Page{Title: "Dashboard", Active: "/", Toasts: popFlash(w, r)}
	s.render(w, r, http.StatusOK, page, templates.Dashboard(s.service.Catalog()))
}

// handleProducts serves the product page. Searches swap only the table.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	products := s.service.Catalog().SearchProducts(search)

	if isPartial(r) {
		s.render(w, r, http.StatusOK, templates.Page{}, templates.ProductTable(products))
		return
	}
	page := templates.Page{Title: "Products", Active: "/products", Toasts: popFlash(w, r)}
	s.render(w, r, http.StatusOK, page, templates.Products(products, search))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	page := templates.Page{Title: "Catalog", Active: "/catalog", Toasts: popFlash(w, r)}
	s.render(w, r, http.StatusOK, page, templates.Catalog(s.service.Catalog().Products))
}

// handleNotFound answers unknown paths. API clients get JSON.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSONStatus(w, http.StatusNotFound, ErrorResponse{
			Error:   "not found",
			Message: "The requested resource does not exist",
			Code:    "HTTP404",
		})
		return
	}
	s.render(w, r, http.StatusNotFound, templates.Page{Title: "Not found"}, templates.NotFound())
}
