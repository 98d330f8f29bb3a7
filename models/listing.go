package models

// RawListing holds one unprocessed row of the listings CSV.
// Every field is kept as text; the cleaner decides how each one is parsed.
type RawListing struct {
	ID                 string `csv:"id"`
	HostID             string `csv:"host_id"`
	City               string `csv:"city"`
	Area               string `csv:"area"`
	RoomType           string `csv:"room_type"`
	Price              string `csv:"price"`
	Bathrooms          string `csv:"bathrooms"`
	Consumer           string `csv:"consumer"`
	HostResponseRate   string `csv:"host response rate"`
	HostAcceptanceRate string `csv:"host acceptance rate"`
	HostSince          string `csv:"host since"`
	HostCertification  string `csv:"host Certification"`
	GuestFavourite     string `csv:"guest favourite"`
	Accommodates       string `csv:"accommodates"`
	Bedrooms           string `csv:"bedrooms"`
	Beds               string `csv:"beds"`
	TotalReviews       string `csv:"total reviewers number"`
	Sales              string `csv:"sales"`
}

// Listing is a cleaned record. It is built once by the cleaner and never
// modified afterwards; filters share the same pointers.
//
// Field order is the column order of the CSV export.
type Listing struct {
	ID       string `json:"id" csv:"id"`
	HostID   string `json:"host_id" csv:"host_id"`
	City     string `json:"city" csv:"city"`
	Area     string `json:"area" csv:"area"`
	RoomType string `json:"room_type" csv:"room_type"`

	Price              string `json:"price" csv:"price"`
	Bathrooms          string `json:"bathrooms" csv:"bathrooms"`
	Consumer           string `json:"consumer" csv:"consumer"`
	HostResponseRate   string `json:"host_response_rate" csv:"host response rate"`
	HostAcceptanceRate string `json:"host_acceptance_rate" csv:"host acceptance rate"`
	HostSince          string `json:"host_since" csv:"host since"`
	HostCertification  string `json:"host_certification" csv:"host Certification"`
	GuestFavouriteRaw  string `json:"guest_favourite_raw" csv:"guest favourite"`

	Accommodates Float `json:"accommodates" csv:"accommodates"`
	Bedrooms     Float `json:"bedrooms" csv:"bedrooms"`
	Beds         Float `json:"beds" csv:"beds"`
	TotalReviews Float `json:"total_reviews" csv:"total reviewers number"`
	Sales        Float `json:"sales" csv:"sales"`

	PriceClean              Float  `json:"price_clean" csv:"price_clean"`
	BathroomsClean          Float  `json:"bathrooms_clean" csv:"bathrooms_clean"`
	ConsumerClean           Float  `json:"consumer_clean" csv:"consumer_clean"`
	HostResponseRateClean   Float  `json:"host_response_rate_clean" csv:"host_response_rate_clean"`
	HostAcceptanceRateClean Float  `json:"host_acceptance_rate_clean" csv:"host_acceptance_rate_clean"`
	RoomTypeDecoded         string `json:"room_type_decoded" csv:"room_type_decoded"`
	RevenueEstimate         Float  `json:"revenue_estimate" csv:"revenue_estimate"`
	HostSinceClean          Int    `json:"host_since_clean" csv:"host_since_clean"`
	CityLat                 Float  `json:"city_lat" csv:"city_lat"`
	CityLon                 Float  `json:"city_lon" csv:"city_lon"`
	HostCertified           bool   `json:"host_certified" csv:"host_certified"`
	GuestFavourite          bool   `json:"guest_favourite" csv:"guest_favourite"`
}

// PriceRange is an inclusive [Min, Max] bound on the cleaned price.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterOptions holds the optional predicates applied by the filter engine.
// Empty slices, a nil PriceRange, zero minimums and false flags mean
// "no constraint".
type FilterOptions struct {
	Cities              []string    `json:"cities,omitempty"`
	Areas               []string    `json:"areas,omitempty"`
	RoomTypes           []string    `json:"room_types,omitempty"`
	PriceRange          *PriceRange `json:"price_range,omitempty"`
	MinReviews          int         `json:"min_reviews,omitempty"`
	MinRating           float64     `json:"min_rating,omitempty"`
	GuestFavouritesOnly bool        `json:"guest_favourites_only,omitempty"`
	CertifiedHostsOnly  bool        `json:"certified_hosts_only,omitempty"`
}

// Coordinates is a city's latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
