package storage

import "airbnb-dashboard/models"

// ListingWriter is the interface every export sink must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// SummaryWriter is implemented by sinks that also carry the per-city and
// per-area tables alongside the records.
type SummaryWriter interface {
	WriteSummary(cities []models.CityStats, areas []models.AreaStats) error
}
