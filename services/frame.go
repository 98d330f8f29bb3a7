package services

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airbnb-dashboard/models"
)

// Columns of a listing frame.
const (
	colID        = "id"
	colHost      = "host_id"
	colCity      = "city"
	colArea      = "area"
	colRoomType  = "room_type"
	colPrice     = "price"
	colRating    = "rating"
	colBedrooms  = "bedrooms"
	colBathrooms = "bathrooms"
	colReviews   = "reviews"
	colSales     = "sales"
	colRevenue   = "revenue"
	colHostSince = "host_since"
	colFavourite = "guest_favourite"
	colCertified = "host_certified"
)

// listingFrame is the columnar form of a record set that every aggregate is
// computed from. Missing numeric values are NA elements and string columns
// hold "" for a missing key.
type listingFrame struct {
	df dataframe.DataFrame
}

func newListingFrame(listings []*models.Listing) listingFrame {
	n := len(listings)
	ids, hosts, cities := make([]string, n), make([]string, n), make([]string, n)
	areas, roomTypes := make([]string, n), make([]string, n)

	price, rating := make([]interface{}, n), make([]interface{}, n)
	bedrooms, baths := make([]interface{}, n), make([]interface{}, n)
	reviews, sales := make([]interface{}, n), make([]interface{}, n)
	revenue, hostSince := make([]interface{}, n), make([]interface{}, n)
	favourite, certified := make([]float64, n), make([]float64, n)

	for i, l := range listings {
		ids[i], hosts[i], cities[i] = l.ID, l.HostID, l.City
		areas[i], roomTypes[i] = l.Area, l.RoomTypeDecoded

		price[i] = naOr(l.PriceClean)
		rating[i] = naOr(l.ConsumerClean)
		bedrooms[i] = naOr(l.Bedrooms)
		baths[i] = naOr(l.BathroomsClean)
		reviews[i] = naOr(l.TotalReviews)
		sales[i] = naOr(l.Sales)
		revenue[i] = naOr(l.RevenueEstimate)
		if l.HostSinceClean.Valid {
			hostSince[i] = float64(l.HostSinceClean.Int64)
		}
		if l.GuestFavourite {
			favourite[i] = 1
		}
		if l.HostCertified {
			certified[i] = 1
		}
	}

	return listingFrame{df: dataframe.New(
		series.New(ids, series.String, colID),
		series.New(hosts, series.String, colHost),
		series.New(cities, series.String, colCity),
		series.New(areas, series.String, colArea),
		series.New(roomTypes, series.String, colRoomType),
		series.New(price, series.Float, colPrice),
		series.New(rating, series.Float, colRating),
		series.New(bedrooms, series.Float, colBedrooms),
		series.New(baths, series.Float, colBathrooms),
		series.New(reviews, series.Float, colReviews),
		series.New(sales, series.Float, colSales),
		series.New(revenue, series.Float, colRevenue),
		series.New(hostSince, series.Float, colHostSince),
		series.New(favourite, series.Float, colFavourite),
		series.New(certified, series.Float, colCertified),
	)}
}

// naOr maps a missing value to nil, which gota stores as NA.
func naOr(f models.Float) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

func (f listingFrame) rows() int { return f.df.Nrow() }

// column returns the non-NA values of a numeric column.
func (f listingFrame) column(name string) numericColumn {
	if f.rows() == 0 {
		return numericColumn{}
	}
	return validValues(f.df.Col(name))
}

// keys returns the non-empty values of a string column in row order.
func (f listingFrame) keys(name string) []string {
	if f.rows() == 0 {
		return nil
	}
	var out []string
	for _, k := range f.df.Col(name).Records() {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// distinct returns the sorted set of non-empty values of a string column.
func (f listingFrame) distinct(name string) []string {
	seen := make(map[string]struct{})
	for _, k := range f.keys(name) {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// groupBy splits the frame on a string column. Rows with an empty key are
// dropped. Groups are keyed by the column value read back from each group,
// so the result does not depend on how the frame library names its groups.
func (f listingFrame) groupBy(name string) map[string]listingFrame {
	groups := make(map[string]listingFrame)
	if f.rows() == 0 {
		return groups
	}

	var idx []int
	for i, k := range f.df.Col(name).Records() {
		if k != "" {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return groups
	}

	for _, g := range f.df.Subset(idx).GroupBy(name).GetGroups() {
		if g.Nrow() == 0 {
			continue
		}
		groups[g.Col(name).Elem(0).String()] = listingFrame{df: g}
	}
	return groups
}

// numericColumn holds the valid values of one column. Its zero value has no
// values, so every statistic on it is missing.
type numericColumn struct {
	s series.Series
	n int
}

func validValues(s series.Series) numericColumn {
	floats := s.Float()
	var idx []int
	for i, na := range s.IsNaN() {
		if !na && !math.IsNaN(floats[i]) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return numericColumn{}
	}
	return numericColumn{s: s.Subset(idx), n: len(idx)}
}

// floatSeries builds a column from already aggregated values.
func floatSeries(values []models.Float) numericColumn {
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = naOr(v)
	}
	return validValues(series.New(vals, series.Float, ""))
}

func (c numericColumn) mean() models.Float {
	if c.n == 0 {
		return models.Float{}
	}
	return models.NewFloat(c.s.Mean())
}

func (c numericColumn) minimum() models.Float {
	if c.n == 0 {
		return models.Float{}
	}
	return models.NewFloat(c.s.Min())
}

func (c numericColumn) maximum() models.Float {
	if c.n == 0 {
		return models.Float{}
	}
	return models.NewFloat(c.s.Max())
}

// sum adds the valid values. An overflowing total saturates at the largest
// finite float so report fields stay encodable.
func (c numericColumn) sum() float64 {
	if c.n == 0 {
		return 0
	}
	var total float64
	for _, v := range c.s.Float() {
		total += v
	}
	switch {
	case math.IsInf(total, 1):
		return math.MaxFloat64
	case math.IsInf(total, -1):
		return -math.MaxFloat64
	}
	return total
}
