package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/domain"
	"radiolink/catalog/internal/service"
	"radiolink/catalog/internal/taxonomy"
)

type listingQuery struct {
	Sort string `schema:"sort"`
	Page string `schema:"page"`
}

type projectsQuery struct {
	Status string `schema:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	source, fetchedAt := s.catalog.Source()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"source":    source,
		"fetchedAt": fetchedAt,
	})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	sort, page, ok := s.listingParams(w, r)
	if !ok {
		return
	}

	listing, err := s.catalog.ListAll(sort, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	sort, page, ok := s.listingParams(w, r)
	if !ok {
		return
	}

	var segments []string
	if path := strings.Trim(chi.URLParam(r, "*"), "/"); path != "" {
		segments = strings.Split(path, "/")
	}

	listing, err := s.catalog.ListCategory(segments, sort, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories())
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	detail, err := s.catalog.Product(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	var query projectsQuery
	if err := s.decoder.Decode(&query, r.URL.Query()); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	projects, err := s.catalog.Projects(domain.ProjectStatus(query.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// listingParams decodes sort and page. Unknown sort keys are rejected; a page
// that is not a number reads as the first page.
func (s *Server) listingParams(w http.ResponseWriter, r *http.Request) (domain.SortKey, int, bool) {
	var query listingQuery
	if err := s.decoder.Decode(&query, r.URL.Query()); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", 0, false
	}

	sort, err := domain.ParseSortKey(query.Sort)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", 0, false
	}

	page, err := strconv.Atoi(query.Page)
	if err != nil {
		page = 1
	}
	return sort, page, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		log.Errorf("❌ Failed to encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, taxonomy.ErrNotFound), errors.Is(err, service.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Errorf("❌ Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
