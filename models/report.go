package models

// FloatRange is the min/max of a numeric column over its valid values.
type FloatRange struct {
	Min Float `json:"min"`
	Max Float `json:"max"`
}

// IntRange is the min/max of an integer column over its valid values.
type IntRange struct {
	Min Int `json:"min"`
	Max Int `json:"max"`
}

// Stats summarises a freshly loaded dataset.
type Stats struct {
	TotalListings   int        `json:"total_listings"`
	OriginalCount   int        `json:"original_count"`
	Cities          int        `json:"cities"`
	Areas           int        `json:"areas"`
	UniqueCities    []string   `json:"unique_cities"`
	UniqueAreas     []string   `json:"unique_areas"`
	UniqueRoomTypes []string   `json:"unique_room_types"`
	AvgPrice        Float      `json:"avg_price"`
	AvgRating       Float      `json:"avg_rating"`
	TotalHosts      int        `json:"total_hosts"`
	DateRange       IntRange   `json:"date_range"`
	PriceRange      FloatRange `json:"price_range"`
	RatingRange     FloatRange `json:"rating_range"`
}

// GuestMetrics are the headline numbers of the guest view.
type GuestMetrics struct {
	TotalProperties int     `json:"total_properties"`
	AvgPrice        float64 `json:"avg_price"`
	AvgRating       float64 `json:"avg_rating"`
	PctFavourites   float64 `json:"pct_favourites"`
	MostPopularCity string  `json:"most_popular_city"`
	BestValueCity   string  `json:"best_value_city"`
	SatisfactionPct float64 `json:"satisfaction_pct"`
}

// HostMetrics are the headline numbers of the host view.
type HostMetrics struct {
	TotalRevenue       float64 `json:"total_revenue"`
	AvgOccupancy       float64 `json:"avg_occupancy"`
	TotalHosts         int     `json:"total_hosts"`
	AvgListingsPerHost float64 `json:"avg_listings_per_host"`
	PctCertified       float64 `json:"pct_certified"`
	BestCity           string  `json:"best_city"`
}

// CityStats is one row of the per-city aggregation table.
type CityStats struct {
	City              string  `json:"city"`
	AvgPrice          Float   `json:"avg_price"`
	AvgRating         Float   `json:"avg_rating"`
	TotalReviews      float64 `json:"total_reviews"`
	AvgBedrooms       Float   `json:"avg_bedrooms"`
	AvgBathrooms      Float   `json:"avg_bathrooms"`
	PctGuestFavourite float64 `json:"pct_guest_favourite"`
	TotalRevenue      float64 `json:"total_revenue"`
	AvgSales          Float   `json:"avg_sales"`
	ListingCount      int     `json:"listing_count"`
}

// AreaStats is one row of the per-area aggregation table.
type AreaStats struct {
	Area         string  `json:"area"`
	AvgPrice     Float   `json:"avg_price"`
	AvgRating    Float   `json:"avg_rating"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalSales   float64 `json:"total_sales"`
	ListingCount int     `json:"listing_count"`
}

// CityComparison holds one city's values normalised to 0..100 for the
// top-cities comparison panel.
type CityComparison struct {
	City              string  `json:"city"`
	Price             float64 `json:"price"`
	Rating            float64 `json:"rating"`
	Reviews           float64 `json:"reviews"`
	Bedrooms          float64 `json:"bedrooms"`
	Bathrooms         float64 `json:"bathrooms"`
	GuestFavouritePct float64 `json:"guest_favourite_pct"`
}

// Selection summarises the currently filtered subset.
type Selection struct {
	Listings int     `json:"listings"`
	AvgPrice float64 `json:"avg_price"`
	Cities   int     `json:"cities"`
}

// InsightReport bundles every aggregate computed over a record set.
type InsightReport struct {
	Selection Selection        `json:"selection"`
	Guest     GuestMetrics     `json:"guest"`
	Host      HostMetrics      `json:"host"`
	Cities    []CityStats      `json:"cities"`
	Areas     []AreaStats      `json:"areas"`
	TopCities []CityComparison `json:"top_cities"`
}
