package server

import (
	"bytes"
	"net/http"

	"github.com/go-chi/render"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
)

const (
	csvExportName  = "airbnb_filtered_data.csv"
	xlsxExportName = "airbnb_filtered_data.xlsx"
)

type listingsResponse struct {
	Count int               `json:"count"`
	Data  []*models.Listing `json:"data"`
}

type lookupsResponse struct {
	RoomTypes       map[string]string             `json:"room_types"`
	CityCoordinates map[string]models.Coordinates `json:"city_coordinates"`
	CityAreas       map[string]string             `json:"city_areas"`
	AreaColors      map[string]string             `json:"area_colors"`
}

// dataset returns the cached dataset or answers 503.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*services.Dataset, bool) {
	ds, err := s.cache.GetFirst(s.cfg.DataPaths...)
	if err != nil {
		s.logger.Error("[server] Dataset unavailable: %v", err)
		renderError(w, r, ErrDataUnavailable(err))
		return nil, false
	}
	s.metrics.setDatasetSize(len(ds.Listings))
	return ds, true
}

// filtered loads the dataset and applies the request's filters, answering
// 503 or 400 itself when that is not possible.
func (s *Server) filtered(w http.ResponseWriter, r *http.Request) ([]*models.Listing, bool) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return nil, false
	}
	fq, errs := parseFilterQuery(s.validate, r.URL.Query())
	if len(errs) > 0 {
		renderError(w, r, ErrInvalidParameters(errs))
		return nil, false
	}
	out := services.FilterData(ds.Listings, fq.Options())
	s.metrics.observeSelection(len(out))
	return out, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, ds.Stats)
}

func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, lookupsResponse{
		RoomTypes:       services.RoomTypeLabels(),
		CityCoordinates: services.AllCityCoordinates(),
		CityAreas:       services.CityAreas(),
		AreaColors:      services.AreaColors(),
	})
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, listingsResponse{Count: len(listings), Data: listings})
}

func (s *Server) handleGuestMetrics(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, s.insights.GuestMetrics(listings))
}

func (s *Server) handleHostMetrics(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, s.insights.HostMetrics(listings))
}

func (s *Server) handleCityStats(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, s.insights.CityStats(listings))
}

func (s *Server) handleAreaStats(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, s.insights.AreaStats(listings))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	cw, err := storage.NewCSVWriter(&buf)
	if err == nil {
		err = cw.Write(listings)
	}
	if err == nil {
		err = cw.Close()
	}
	if err != nil {
		s.logger.Error("[server] CSV export failed: %v", err)
		renderError(w, r, ErrInternal(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvExportName+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	xw, err := storage.NewXLSXWriter(&buf)
	if err == nil {
		err = xw.Write(listings)
	}
	if err == nil {
		err = xw.WriteSummary(s.insights.CityStats(listings), s.insights.AreaStats(listings))
	}
	if xw != nil {
		if cerr := xw.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		s.logger.Error("[server] XLSX export failed: %v", err)
		renderError(w, r, ErrInternal(err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+xlsxExportName+`"`)
	_, _ = w.Write(buf.Bytes())
}
