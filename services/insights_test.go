package services

import (
	"testing"

	"airbnb-dashboard/models"
)

func insightFixture() []*models.Listing {
	l1 := listing("1", "h1", "Amsterdam", "Europe", 100, 5, 10, 10)
	l2 := listing("2", "h1", "Amsterdam", "Europe", 300, 6, 20, 20)
	l3 := listing("3", "h2", "Berlin", "Europe", 50, 5, 5, 30)
	l4 := listing("4", "h3", "Berlin", "Europe", 50, -1, -1, 10)
	l2.GuestFavourite = true
	l3.HostCertified = true
	return []*models.Listing{l1, l2, l3, l4}
}

func TestInsightsEmptySelection(t *testing.T) {
	s := NewInsightService(newTestLogger())

	g := s.GuestMetrics(nil)
	if g.TotalProperties != 0 || g.AvgPrice != 0 || g.AvgRating != 0 || g.PctFavourites != 0 {
		t.Errorf("guest metrics on empty set = %+v; want zeros", g)
	}
	if g.MostPopularCity != NotAvailable || g.BestValueCity != NotAvailable {
		t.Errorf("guest arg-max on empty set = %q/%q; want N/A", g.MostPopularCity, g.BestValueCity)
	}

	h := s.HostMetrics(nil)
	if h.TotalRevenue != 0 || h.TotalHosts != 0 || h.AvgListingsPerHost != 0 || h.BestCity != NotAvailable {
		t.Errorf("host metrics on empty set = %+v", h)
	}

	r := s.Generate(nil)
	if len(r.Cities) != 0 || len(r.Areas) != 0 || len(r.TopCities) != 0 || r.Selection.Listings != 0 {
		t.Errorf("report on empty set = %+v", r)
	}
}

func TestGuestMetrics(t *testing.T) {
	g := NewInsightService(newTestLogger()).GuestMetrics(insightFixture())

	if g.TotalProperties != 4 {
		t.Errorf("total = %d; want 4", g.TotalProperties)
	}
	if !approx(g.AvgPrice, 125) {
		t.Errorf("avg price = %.4f; want 125", g.AvgPrice)
	}
	if !approx(g.AvgRating, 16.0/3) {
		t.Errorf("avg rating = %.4f; want %.4f", g.AvgRating, 16.0/3)
	}
	if !approx(g.PctFavourites, 25) {
		t.Errorf("pct favourites = %.2f; want 25", g.PctFavourites)
	}
	if !approx(g.SatisfactionPct, 16.0/3/7*100) {
		t.Errorf("satisfaction = %.2f", g.SatisfactionPct)
	}
	// Amsterdam and Berlin both have two listings.
	if g.MostPopularCity != "Amsterdam" {
		t.Errorf("most popular = %q; want Amsterdam (alphabetical tie-break)", g.MostPopularCity)
	}
	if g.BestValueCity != "Berlin" {
		t.Errorf("best value = %q; want Berlin", g.BestValueCity)
	}
}

func TestBestValueCityEdgeCases(t *testing.T) {
	s := NewInsightService(newTestLogger())

	noRating := []*models.Listing{listing("1", "h1", "Dublin", "Europe", 80, -1, 1, 1)}
	if got := s.GuestMetrics(noRating).BestValueCity; got != NotAvailable {
		t.Errorf("best value with only unrated cities = %q; want N/A", got)
	}

	freeStay := []*models.Listing{
		listing("1", "h1", "Dublin", "Europe", 80, -1, 1, 1),
		listing("2", "h2", "Munich", "Europe", 0, -1, 1, 1),
	}
	if got := s.GuestMetrics(freeStay).BestValueCity; got != "Munich" {
		t.Errorf("best value with zero mean price = %q; want Munich", got)
	}
}

func TestHostMetrics(t *testing.T) {
	h := NewInsightService(newTestLogger()).HostMetrics(insightFixture())

	if !approx(h.TotalRevenue, 9000) {
		t.Errorf("total revenue = %.2f; want 9000", h.TotalRevenue)
	}
	if !approx(h.AvgOccupancy, 17.5/365*100) {
		t.Errorf("avg occupancy = %.4f; want %.4f", h.AvgOccupancy, 17.5/365*100)
	}
	if h.TotalHosts != 3 {
		t.Errorf("hosts = %d; want 3", h.TotalHosts)
	}
	if !approx(h.AvgListingsPerHost, 4.0/3) {
		t.Errorf("listings per host = %.4f; want %.4f", h.AvgListingsPerHost, 4.0/3)
	}
	if !approx(h.PctCertified, 25) {
		t.Errorf("pct certified = %.2f; want 25", h.PctCertified)
	}
	if h.BestCity != "Amsterdam" {
		t.Errorf("best city = %q; want Amsterdam", h.BestCity)
	}
}

func TestCityStats(t *testing.T) {
	rows := NewInsightService(newTestLogger()).CityStats(insightFixture())

	if len(rows) != 2 || rows[0].City != "Amsterdam" || rows[1].City != "Berlin" {
		t.Fatalf("cities = %+v; want Amsterdam, Berlin", rows)
	}

	ams := rows[0]
	if ams.AvgPrice.Float64 != 200 || ams.AvgRating.Float64 != 5.5 || ams.TotalReviews != 30 {
		t.Errorf("Amsterdam price/rating/reviews = %v/%v/%v", ams.AvgPrice, ams.AvgRating, ams.TotalReviews)
	}
	if ams.PctGuestFavourite != 0.5 || ams.TotalRevenue != 7000 || ams.AvgSales.Float64 != 15 || ams.ListingCount != 2 {
		t.Errorf("Amsterdam fav/revenue/sales/count = %v/%v/%v/%d",
			ams.PctGuestFavourite, ams.TotalRevenue, ams.AvgSales, ams.ListingCount)
	}

	ber := rows[1]
	if ber.AvgRating.Float64 != 5 || ber.TotalReviews != 5 || ber.TotalRevenue != 2000 {
		t.Errorf("Berlin rating/reviews/revenue = %v/%v/%v", ber.AvgRating, ber.TotalReviews, ber.TotalRevenue)
	}
}

func TestCityStatsMissingRatingStaysMissing(t *testing.T) {
	rows := NewInsightService(newTestLogger()).CityStats([]*models.Listing{
		listing("1", "h1", "Dublin", "Europe", 80, -1, 1, 1),
	})
	if rows[0].AvgRating.Valid {
		t.Errorf("avg rating = %v; want missing", rows[0].AvgRating)
	}
}

func TestAreaStatsSkipsMissingKeys(t *testing.T) {
	in := append(insightFixture(), listing("5", "h9", "", "", 999, 1, 1, 1))
	rows := NewInsightService(newTestLogger()).AreaStats(in)

	if len(rows) != 1 || rows[0].Area != "Europe" {
		t.Fatalf("areas = %+v; want only Europe", rows)
	}
	eu := rows[0]
	if eu.AvgPrice.Float64 != 125 || eu.TotalRevenue != 9000 || eu.TotalSales != 70 || eu.ListingCount != 4 {
		t.Errorf("Europe = %+v", eu)
	}
}

func TestTopCities(t *testing.T) {
	s := NewInsightService(newTestLogger())
	stats := s.CityStats(insightFixture())

	top := s.TopCities(stats, 1)
	if len(top) != 1 || top[0].City != "Amsterdam" {
		t.Fatalf("top 1 = %+v; want Amsterdam", top)
	}
	a := top[0]
	if a.Price != 100 || !approx(a.Rating, 5.5/7*100) || a.Reviews != 100 || a.Bedrooms != 100 || a.GuestFavouritePct != 50 {
		t.Errorf("Amsterdam comparison = %+v", a)
	}

	all := s.TopCities(stats, 5)
	if len(all) != 2 {
		t.Fatalf("top 5 of 2 cities = %d rows", len(all))
	}
	if all[1].Price != 25 || !approx(all[1].Reviews, 5.0/30*100) {
		t.Errorf("Berlin comparison = %+v", all[1])
	}
}

func TestFormatLargeNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999, "$999"},
		{1500, "$1.5K"},
		{2_500_000, "$2.5M"},
		{3_400_000_000, "$3.4B"},
	}

	for _, tt := range tests {
		if got := FormatLargeNumber(tt.in); got != tt.want {
			t.Errorf("FormatLargeNumber(%.0f) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelection(t *testing.T) {
	sel := NewInsightService(newTestLogger()).Selection(insightFixture())
	if sel.Listings != 4 || !approx(sel.AvgPrice, 125) || sel.Cities != 2 {
		t.Errorf("selection = %+v; want 4 listings, $125, 2 cities", sel)
	}
}

func TestAggregatesSkipMissingValuesPerGroup(t *testing.T) {
	s := NewInsightService(newTestLogger())
	listings := []*models.Listing{
		listing("1", "h1", "Oslo", "Europe", -1, -1, -1, -1),
		listing("2", "h2", "Oslo", "Europe", 40, -1, 3, 2),
		listing("3", "h3", "", "Europe", 60, 4, 1, 1),
	}

	cities := s.CityStats(listings)
	if len(cities) != 1 || cities[0].City != "Oslo" {
		t.Fatalf("cities = %+v; want only Oslo", cities)
	}
	oslo := cities[0]
	if !oslo.AvgPrice.Valid || oslo.AvgPrice.Float64 != 40 {
		t.Errorf("Oslo avg price = %v; want 40", oslo.AvgPrice)
	}
	if oslo.AvgRating.Valid {
		t.Errorf("Oslo avg rating = %v; want missing", oslo.AvgRating)
	}
	if oslo.TotalReviews != 3 || oslo.TotalRevenue != 80 || oslo.ListingCount != 2 {
		t.Errorf("Oslo totals = %+v", oslo)
	}

	areas := s.AreaStats(listings)
	if len(areas) != 1 || areas[0].ListingCount != 3 || areas[0].TotalSales != 3 {
		t.Errorf("areas = %+v; want one Europe row with 3 listings and 3 sales", areas)
	}
	if !approx(areas[0].AvgPrice.Float64, 50) {
		t.Errorf("Europe avg price = %v; want 50", areas[0].AvgPrice)
	}
}
