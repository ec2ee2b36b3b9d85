package http

import (
	"html/template"
	"net/http"
	"time"

	"unitrates/internal/export"
	"unitrates/internal/format"
	applog "unitrates/internal/log"
)

// indexData fills the search page template.
type indexData struct {
	Years     []string
	Months    []string
	Provinces []string
	Cities    []string
	MinScore  int
	Limit     int
}

// resultsData fills the results table partial.
type resultsData struct {
	Message   string
	Columns   []string
	Rows      [][]string
	Count     int
	Fuzzy     bool
	ExportURL string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	snap, err := s.catalog.Snapshot(r.Context(), s.storeID, s.source)
	if err != nil {
		s.logger.LogError(r.Context(), "Catalog load failed", err,
			applog.ComponentCatalog, applog.OpList, applog.NewFields())
		http.Error(w, "failed to load filter catalog", http.StatusInternalServerError)
		return
	}

	data := indexData{
		Years:     snap.Years,
		Months:    snap.Months,
		Provinces: snap.Provinces,
		Cities:    snap.Cities,
		MinScore:  s.defaults.MinScore,
		Limit:     s.defaults.Limit,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.LogError(r.Context(), "Index template execution failed", err,
			applog.ComponentTemplate, applog.OpRender, applog.NewFields())
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleSearch renders the results table partial for the given query
// and filters. An empty query is a prompt, not an error.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	req := ParseSearchRequest(r.URL.Query(), s.defaults)
	if req.Query == "" {
		s.renderResults(w, r, resultsData{Message: "Enter a search term to find unit rates."})
		return
	}

	snap, err := s.catalog.Snapshot(r.Context(), s.storeID, s.source)
	if err != nil {
		s.logger.LogError(r.Context(), "Catalog load failed", err,
			applog.ComponentCatalog, applog.OpList, applog.NewFields())
		http.Error(w, "failed to load filter catalog", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	rs, err := s.engine.Search(r.Context(), req, snap.MonthNumbers())
	if err != nil {
		s.logger.LogError(r.Context(), "Search failed", err,
			applog.ComponentSearch, applog.OpSearch,
			applog.NewFields().WithSearch(req.Query, searchMode(req.Fuzzy), 0))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	s.logger.LogSearch(r.Context(), req.Query, searchMode(req.Fuzzy),
		len(rs.Records), time.Since(start).Milliseconds())

	table := format.ResultTable(rs)
	data := resultsData{
		Columns: table.Columns,
		Rows:    table.Rows,
		Count:   len(table.Rows),
		Fuzzy:   rs.Fuzzy,
	}
	if data.Count == 0 {
		data.Message = "No matching records found."
	} else {
		data.ExportURL = "/export.csv?" + r.URL.RawQuery
	}
	s.renderResults(w, r, data)
}

func (s *Server) renderResults(w http.ResponseWriter, r *http.Request, data resultsData) {
	if s.templates == nil {
		if data.Message != "" {
			_, _ = w.Write([]byte(`<div id="results" class="placeholder">` + template.HTMLEscapeString(data.Message) + `</div>`))
			return
		}
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "results_table.html", data); err != nil {
		s.logger.LogError(r.Context(), "Results template execution failed", err,
			applog.ComponentTemplate, applog.OpRender, applog.NewFields())
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleExportCSV streams the current result set as a CSV attachment
// using the same parameters as the search endpoint.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req := ParseSearchRequest(r.URL.Query(), s.defaults)

	table := format.Table{Columns: format.Columns(req.Fuzzy)}
	if req.Query != "" {
		snap, err := s.catalog.Snapshot(r.Context(), s.storeID, s.source)
		if err != nil {
			s.logger.LogError(r.Context(), "Catalog load failed", err,
				applog.ComponentCatalog, applog.OpList, applog.NewFields())
			http.Error(w, "failed to load filter catalog", http.StatusInternalServerError)
			return
		}

		rs, err := s.engine.Search(r.Context(), req, snap.MonthNumbers())
		if err != nil {
			s.logger.LogError(r.Context(), "Export search failed", err,
				applog.ComponentSearch, applog.OpExport,
				applog.NewFields().WithSearch(req.Query, searchMode(req.Fuzzy), 0))
			http.Error(w, "search failed", http.StatusInternalServerError)
			return
		}
		table = format.ResultTable(rs)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="unit_rates.csv"`)
	if err := export.WriteCSV(w, table); err != nil {
		s.logger.LogError(r.Context(), "CSV write failed", err,
			applog.ComponentHTTP, applog.OpExport, applog.NewFields())
	}
}

// handleCatalogRefresh drops and reloads the cached filter catalog.
func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.catalog.Refresh(r.Context(), s.storeID, s.source)
	if err != nil {
		s.logger.LogError(r.Context(), "Catalog refresh failed", err,
			applog.ComponentCatalog, applog.OpRefresh, applog.NewFields())
		http.Error(w, "catalog refresh failed", http.StatusInternalServerError)
		return
	}

	s.logger.LogCatalogRefresh(r.Context(), s.storeID,
		len(snap.Years)-1, len(snap.Provinces)-1, len(snap.Cities)-1)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("catalog refreshed"))
}

func searchMode(fuzzy bool) string {
	if fuzzy {
		return "fuzzy"
	}
	return "exact"
}
