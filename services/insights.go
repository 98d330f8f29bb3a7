package services

import (
	"fmt"
	"sort"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// NotAvailable is reported for arg-max metrics over an empty selection.
const NotAvailable = "N/A"

// RatingScale is the top of the consumer rating scale.
const RatingScale = 7.0

// DefaultTopCities is the number of cities in the comparison panel.
const DefaultTopCities = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes every metric and table over listings.
func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	cities := s.CityStats(listings)
	report := &models.InsightReport{
		Selection: s.Selection(listings),
		Guest:     s.GuestMetrics(listings),
		Host:      s.HostMetrics(listings),
		Cities:    cities,
		Areas:     s.AreaStats(listings),
		TopCities: s.TopCities(cities, DefaultTopCities),
	}
	s.logger.Debug("[insights] Report over %d listings, %d cities", len(listings), len(cities))
	return report
}

// Selection summarises the filtered subset shown in the sidebar.
func (s *InsightService) Selection(listings []*models.Listing) models.Selection {
	f := newListingFrame(listings)
	return models.Selection{
		Listings: len(listings),
		AvgPrice: f.column(colPrice).mean().Or(0),
		Cities:   len(f.distinct(colCity)),
	}
}

func (s *InsightService) GuestMetrics(listings []*models.Listing) models.GuestMetrics {
	m := models.GuestMetrics{
		MostPopularCity: NotAvailable,
		BestValueCity:   NotAvailable,
	}
	if len(listings) == 0 {
		return m
	}

	f := newListingFrame(listings)
	m.TotalProperties = len(listings)
	m.AvgPrice = f.column(colPrice).mean().Or(0)
	m.AvgRating = f.column(colRating).mean().Or(0)
	m.PctFavourites = f.column(colFavourite).sum() / float64(len(listings)) * 100
	m.SatisfactionPct = m.AvgRating / RatingScale * 100

	groups := f.groupBy(colCity)

	m.MostPopularCity = argMax(groups, func(g listingFrame) (float64, bool) {
		return float64(g.rows()), true
	})

	m.BestValueCity = argMax(groups, func(g listingFrame) (float64, bool) {
		meanPrice := g.column(colPrice).mean()
		if !meanPrice.Valid || meanPrice.Float64 <= 0 {
			return 0, true
		}
		meanRating := g.column(colRating).mean()
		if !meanRating.Valid {
			return 0, false
		}
		return meanRating.Float64 / meanPrice.Float64, true
	})

	return m
}

func (s *InsightService) HostMetrics(listings []*models.Listing) models.HostMetrics {
	m := models.HostMetrics{BestCity: NotAvailable}
	if len(listings) == 0 {
		return m
	}

	f := newListingFrame(listings)
	m.TotalRevenue = f.column(colRevenue).sum()
	m.AvgOccupancy = f.column(colSales).mean().Or(0) / 365 * 100
	m.TotalHosts = len(f.distinct(colHost))
	if m.TotalHosts > 0 {
		m.AvgListingsPerHost = float64(len(f.keys(colHost))) / float64(m.TotalHosts)
	}
	m.PctCertified = f.column(colCertified).sum() / float64(len(listings)) * 100

	m.BestCity = argMax(f.groupBy(colCity), func(g listingFrame) (float64, bool) {
		return g.column(colRevenue).sum(), true
	})

	return m
}

// CityStats aggregates listings per city, ordered by city name.
func (s *InsightService) CityStats(listings []*models.Listing) []models.CityStats {
	groups := newListingFrame(listings).groupBy(colCity)

	out := make([]models.CityStats, 0, len(groups))
	for _, city := range sortedKeys(groups) {
		g := groups[city]
		out = append(out, models.CityStats{
			City:              city,
			AvgPrice:          g.column(colPrice).mean(),
			AvgRating:         g.column(colRating).mean(),
			AvgBedrooms:       g.column(colBedrooms).mean(),
			AvgBathrooms:      g.column(colBathrooms).mean(),
			TotalReviews:      g.column(colReviews).sum(),
			PctGuestFavourite: g.column(colFavourite).sum() / float64(g.rows()),
			TotalRevenue:      g.column(colRevenue).sum(),
			AvgSales:          g.column(colSales).mean(),
			ListingCount:      len(g.keys(colID)),
		})
	}
	return out
}

// AreaStats aggregates listings per area, ordered by area name.
func (s *InsightService) AreaStats(listings []*models.Listing) []models.AreaStats {
	groups := newListingFrame(listings).groupBy(colArea)

	out := make([]models.AreaStats, 0, len(groups))
	for _, area := range sortedKeys(groups) {
		g := groups[area]
		out = append(out, models.AreaStats{
			Area:         area,
			AvgPrice:     g.column(colPrice).mean(),
			AvgRating:    g.column(colRating).mean(),
			TotalRevenue: g.column(colRevenue).sum(),
			TotalSales:   g.column(colSales).sum(),
			ListingCount: len(g.keys(colID)),
		})
	}
	return out
}

// TopCities picks the n cities with the most listings and normalises their
// figures to 0..100 against the maxima over all of cityStats. Ties keep the
// input order.
func (s *InsightService) TopCities(cityStats []models.CityStats, n int) []models.CityComparison {
	if n <= 0 || len(cityStats) == 0 {
		return []models.CityComparison{}
	}

	prices := make([]models.Float, len(cityStats))
	reviews := make([]models.Float, len(cityStats))
	bedrooms := make([]models.Float, len(cityStats))
	bathrooms := make([]models.Float, len(cityStats))
	for i, c := range cityStats {
		prices[i] = c.AvgPrice
		reviews[i] = models.NewFloat(c.TotalReviews)
		bedrooms[i] = c.AvgBedrooms
		bathrooms[i] = c.AvgBathrooms
	}
	maxPrice := floatSeries(prices).maximum()
	maxReviews := floatSeries(reviews).maximum()
	maxBedrooms := floatSeries(bedrooms).maximum()
	maxBathrooms := floatSeries(bathrooms).maximum()

	ranked := make([]models.CityStats, len(cityStats))
	copy(ranked, cityStats)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ListingCount > ranked[j].ListingCount
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]models.CityComparison, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, models.CityComparison{
			City:              c.City,
			Price:             percentOf(c.AvgPrice, maxPrice),
			Rating:            percentOf(c.AvgRating, models.NewFloat(RatingScale)),
			Reviews:           percentOf(models.NewFloat(c.TotalReviews), maxReviews),
			Bedrooms:          percentOf(c.AvgBedrooms, maxBedrooms),
			Bathrooms:         percentOf(c.AvgBathrooms, maxBathrooms),
			GuestFavouritePct: c.PctGuestFavourite * 100,
		})
	}
	return out
}

// FormatLargeNumber renders a currency amount with a K/M/B suffix.
func FormatLargeNumber(num float64) string {
	switch {
	case num >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", num/1_000_000_000)
	case num >= 1_000_000:
		return fmt.Sprintf("$%.1fM", num/1_000_000)
	case num >= 1_000:
		return fmt.Sprintf("$%.1fK", num/1_000)
	default:
		return fmt.Sprintf("$%.0f", num)
	}
}

// argMax visits groups in ascending key order and returns the first key with
// the strictly largest score. Groups whose score is not ok are skipped.
func argMax(groups map[string]listingFrame, score func(listingFrame) (float64, bool)) string {
	best := NotAvailable
	var bestScore float64
	found := false
	for _, k := range sortedKeys(groups) {
		v, ok := score(groups[k])
		if !ok {
			continue
		}
		if !found || v > bestScore {
			best, bestScore, found = k, v, true
		}
	}
	return best
}

func percentOf(v, limit models.Float) float64 {
	if !v.Valid || !limit.Valid || limit.Float64 == 0 {
		return 0
	}
	return v.Float64 / limit.Float64 * 100
}
