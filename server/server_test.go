package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

const fixtureCSV = `id,host_id,city,area,room_type,price,bathrooms,consumer,host response rate,host acceptance rate,host since,host Certification,guest favourite,accommodates,bedrooms,beds,total reviewers number,sales
1,h1,Tokyo,Europe,2,"1,250","1,5","6,5","0,9","0,8",1200.7,1,0,4,2,2,10,100
2,h1,Tokyo,Asia,1,$80,,"5,0",,,800,0,1,2,,,5,50
3,h2,Sydney,Europe,9,"45,00",2,0,1,1,,,1,3,1,1,x,
4,h3,Berlin,Europe,3,"0,33","2,25","4,123",1,"0,5",33.3,1,1,1,1,1,2,0.1
`

func newTestServer(t *testing.T, paths ...string) *Server {
	t.Helper()
	if paths == nil {
		p := filepath.Join(t.TempDir(), "Airbnb_site_hotel_new.csv")
		require.NoError(t, os.WriteFile(p, []byte(fixtureCSV), 0o644))
		paths = []string{p}
	}

	logger := utils.NewDiscardLogger()
	cache := services.NewDatasetCache(services.NewLoader(logger), logger)
	srv, err := New(Config{Addr: ":0", DataPaths: paths}, cache, logger)
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	stats := decode[models.Stats](t, rec)
	assert.Equal(t, 4, stats.TotalListings)
	assert.Equal(t, []string{"Berlin", "Sydney", "Tokyo"}, stats.UniqueCities)
	assert.Equal(t, []string{"Asia", "Europe", "Oceania"}, stats.UniqueAreas)
	assert.True(t, stats.AvgPrice.Valid)
}

func TestListingsEndpointFilters(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"no filters", "", 4},
		{"city", "city=Tokyo", 2},
		{"two areas", "area=Asia&area=Oceania", 3},
		{"room type", "room_type=Private+Room", 1},
		{"price min only", "price_min=80", 2},
		{"price max only", "price_max=80", 3},
		{"inclusive range", "price_min=45&price_max=80", 2},
		{"min reviews", "min_reviews=5", 2},
		{"min rating", "min_rating=5", 2},
		{"guest favourites", "guest_favourites_only=true", 3},
		{"certified checkbox", "certified_hosts_only=on", 2},
		{"empty form values", "city=&price_min=&min_rating=", 4},
		{"no match", "city=Atlantis", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, "/api/listings?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var body struct {
				Count int               `json:"count"`
				Data  []json.RawMessage `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.count, body.Count)
			assert.Len(t, body.Data, tt.count)
		})
	}
}

func TestListingsEndpointMissingValuesAreNull(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/listings?city=Sydney")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Nil(t, body.Data[0]["consumer_clean"])
	assert.Nil(t, body.Data[0]["revenue_estimate"])
	assert.Equal(t, "Oceania", body.Data[0]["area"])
	assert.Equal(t, "Unknown", body.Data[0]["room_type_decoded"])
}

func TestInvalidFilterParameters(t *testing.T) {
	srv := newTestServer(t)

	for _, q := range []string{
		"price_min=cheap",
		"price_min=100&price_max=10",
		"min_rating=9",
		"min_reviews=-1",
		"min_reviews=lots",
		"guest_favourites_only=maybe",
		"price_max=NaN",
	} {
		t.Run(q, func(t *testing.T) {
			rec := get(t, srv, "/api/listings?"+q)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			apiErr := decode[APIError](t, rec)
			assert.Equal(t, "INVALID_PARAMETER", apiErr.ErrorCode)
			assert.NotNil(t, apiErr.Details)
		})
	}
}

func TestMetricsAndStatsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	guest := decode[models.GuestMetrics](t, get(t, srv, "/api/metrics/guest"))
	assert.Equal(t, 4, guest.TotalProperties)
	assert.Equal(t, "Tokyo", guest.MostPopularCity)

	host := decode[models.HostMetrics](t, get(t, srv, "/api/metrics/host"))
	assert.Equal(t, 3, host.TotalHosts)
	assert.Equal(t, "Tokyo", host.BestCity)

	empty := decode[models.GuestMetrics](t, get(t, srv, "/api/metrics/guest?city=Atlantis"))
	assert.Equal(t, services.NotAvailable, empty.MostPopularCity)

	cities := decode[[]models.CityStats](t, get(t, srv, "/api/stats/cities"))
	require.Len(t, cities, 3)
	assert.Equal(t, "Berlin", cities[0].City)

	areas := decode[[]models.AreaStats](t, get(t, srv, "/api/stats/areas?city=Tokyo"))
	require.Len(t, areas, 1)
	assert.Equal(t, "Asia", areas[0].Area)
	assert.Equal(t, 2, areas[0].ListingCount)
}

func TestLookupsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var body lookupsResponse
	rec := get(t, srv, "/api/lookups")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "#f97316", body.AreaColors["Europe"])
	assert.Equal(t, "Oceania", body.CityAreas["Sydney"])
	assert.Equal(t, "Hotel Room", body.RoomTypes["4"])
	assert.InDelta(t, 35.6762, body.CityCoordinates["Tokyo"].Lat, 1e-9)
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/export/csv?city=Tokyo")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "airbnb_filtered_data.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][0])
}

func TestExportXLSX(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/export/xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "airbnb_filtered_data.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Listings")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, []string{"Listings", "Cities", "Areas"}, f.GetSheetList())
}

func TestDataUnavailable(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"))

	for _, path := range []string{"/api/stats", "/api/listings", "/api/metrics/guest", "/api/export/csv"} {
		rec := get(t, srv, path)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, path)

		apiErr := decode[APIError](t, rec)
		assert.Equal(t, "DATA_UNAVAILABLE", apiErr.ErrorCode)
		assert.Contains(t, apiErr.Message, "no data")
		assert.Contains(t, apiErr.Message, "Airbnb_site_hotel_new.csv")
	}

	rec := get(t, srv, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error loading data")

	// Lookups and health do not need the dataset.
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/lookups").Code)
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestDataPathFallback(t *testing.T) {
	good := filepath.Join(t.TempDir(), "fallback.csv")
	require.NoError(t, os.WriteFile(good, []byte(fixtureCSV), 0o644))
	srv := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"), good)

	rec := get(t, srv, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[models.Stats](t, rec).TotalListings)
}

func TestDashboardPage(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/?city=Tokyo")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Guest view")
	assert.Contains(t, body, "Host view")
	assert.Contains(t, body, "$129.0K")
	assert.Contains(t, body, "/api/export/csv?city=Tokyo")
	assert.Contains(t, body, "#a855f7")

	rec = get(t, srv, "/?city=Atlantis")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No listings match")
	assert.NotContains(t, rec.Body.String(), "Download CSV")

	rec = get(t, srv, "/?min_rating=99")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Some filters were ignored")
}

func TestDashboardDefaultPriceRange(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="price_min" type="number" step="any" min="0" placeholder="min" value="0"`)
	assert.Contains(t, body, `placeholder="max" value="500"`)
	// The 1,250 listing is outside the preset, leaving 80*50 + 0.33*0.1.
	assert.Contains(t, body, "$4.0K")
	assert.Contains(t, body, "price_max=500")

	cheap := filepath.Join(t.TempDir(), "cheap.csv")
	rows := strings.Split(fixtureCSV, "\n")
	require.NoError(t, os.WriteFile(cheap, []byte(rows[0]+"\n"+rows[2]+"\n"+rows[3]+"\n"), 0o644))
	body = get(t, newTestServer(t, cheap), "/").Body.String()
	assert.Contains(t, body, `placeholder="max" value="80"`)
}

func TestNonFiniteValuesDoNotBreakAggregates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "inf.csv")
	rows := fixtureCSV +
		"5,h4,Paris,Europe,1,inf,1,5,1,1,10,0,0,2,1,1,3,7\n" +
		"6,h5,Paris,Europe,1,1e308,1,5,1,1,10,0,0,2,1,1,3,10\n"
	require.NoError(t, os.WriteFile(p, []byte(rows), 0o644))
	srv := newTestServer(t, p)

	for _, path := range []string{"/api/metrics/guest", "/api/metrics/host", "/api/stats/cities", "/api/stats/areas", "/api/stats"} {
		rec := get(t, srv, path)
		assert.Equal(t, http.StatusOK, rec.Code, "%s: %s", path, rec.Body.String())
	}

	host := decode[models.HostMetrics](t, get(t, srv, "/api/metrics/host"))
	assert.InDelta(t, 129000.033, host.TotalRevenue, 1e-6)

	listings := decode[struct {
		Data []models.Listing `json:"data"`
	}](t, get(t, srv, "/api/listings?city=Paris"))
	require.Len(t, listings.Data, 2)
	assert.False(t, listings.Data[0].PriceClean.Valid)
	assert.False(t, listings.Data[1].RevenueEstimate.Valid)
}

func TestRequestIDAndPrometheus(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = get(t, srv, "/healthz")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	get(t, srv, "/api/listings?city=Tokyo")

	metrics := get(t, srv, "/metrics").Body.String()
	assert.Contains(t, metrics, `dashboard_http_requests_total{method="GET",route="/healthz",status="200"} 2`)
	assert.Contains(t, metrics, `dashboard_dataset_loads_total{result="ok"} 1`)
	assert.Contains(t, metrics, "dashboard_filtered_listings_count 1")
	assert.Contains(t, metrics, "dashboard_dataset_listings 4")
}

func TestFilterQueryOptions(t *testing.T) {
	v := newValidator()

	fq, errs := parseFilterQuery(v, url.Values{"price_min": {"10"}})
	require.Empty(t, errs)
	opts := fq.Options()
	require.NotNil(t, opts.PriceRange)
	assert.Equal(t, 10.0, opts.PriceRange.Min)
	assert.True(t, math.IsInf(opts.PriceRange.Max, 1))

	fq, errs = parseFilterQuery(v, url.Values{"city": {" Tokyo ", ""}, "guest_favourites_only": {"on"}})
	require.Empty(t, errs)
	assert.Equal(t, []string{"Tokyo"}, fq.Cities)
	assert.True(t, fq.GuestFavouritesOnly)
	assert.Nil(t, fq.Options().PriceRange)

	_, errs = parseFilterQuery(v, url.Values{"min_rating": {"8"}})
	require.Len(t, errs, 1)
	assert.Equal(t, "min_rating", errs[0].Field)
	assert.True(t, strings.Contains(errs[0].Message, "at most 7"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
