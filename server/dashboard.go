package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
)

type dashboardView struct {
	Error       string
	Hint        string
	FieldErrors []FieldError
	Stats       *models.Stats
	Query       filterQuery
	RawQuery    template.URL
	Report      *models.InsightReport
	Revenue     string
	AreaColors  map[string]string
}

var templateFuncs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.0f", v) },
	"num": func(f models.Float) string {
		if !f.Valid {
			return services.NotAvailable
		}
		return fmt.Sprintf("%.2f", f.Float64)
	},
	"pct":        func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"mulHundred": func(v float64) float64 { return v * 100 },
	"large":      services.FormatLargeNumber,
	"has": func(values []string, v string) bool {
		for _, x := range values {
			if x == v {
				return true
			}
		}
		return false
	},
	"areaColor": func(area string) string {
		if c, ok := services.AreaColor(area); ok {
			return c
		}
		return "#94a3b8"
	},
	"optFloat": func(p *float64) string {
		if p == nil {
			return ""
		}
		return strconv.FormatFloat(*p, 'f', -1, 64)
	},
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{AreaColors: services.AreaColors()}
	status := http.StatusOK

	ds, err := s.cache.GetFirst(s.cfg.DataPaths...)
	if err != nil {
		s.logger.Error("[server] Dataset unavailable: %v", err)
		view.Error = err.Error()
		view.Hint = services.DataFileHint
		s.renderDashboard(w, http.StatusServiceUnavailable, view)
		return
	}
	s.metrics.setDatasetSize(len(ds.Listings))
	view.Stats = ds.Stats

	fq, errs := parseFilterQuery(s.validate, r.URL.Query())
	switch {
	case len(errs) > 0:
		view.FieldErrors = errs
		status = http.StatusBadRequest
		fq = filterQuery{}
	case r.URL.RawQuery == "":
		var q url.Values
		fq, q = defaultFilterQuery(ds.Stats)
		view.RawQuery = template.URL(q.Encode())
	default:
		view.RawQuery = template.URL(r.URL.RawQuery)
	}
	view.Query = fq

	listings := services.FilterData(ds.Listings, fq.Options())
	s.metrics.observeSelection(len(listings))

	view.Report = s.insights.Generate(listings)
	view.Revenue = services.FormatLargeNumber(view.Report.Host.TotalRevenue)
	s.renderDashboard(w, status, view)
}

func (s *Server) renderDashboard(w http.ResponseWriter, status int, view dashboardView) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "dashboard.html", view); err != nil {
		s.logger.Error("[server] Render dashboard: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
