package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"airbnb-dashboard/models"
)

const (
	SheetListings = "Listings"
	SheetCities   = "Cities"
	SheetAreas    = "Areas"
)

// XLSXWriter builds a workbook with the listings and the aggregate tables.
// Nothing is written to the destination until Close.
type XLSXWriter struct {
	file   *excelize.File
	out    io.Writer
	closer io.Closer
}

// NewXLSXWriter prepares an empty workbook that Close writes to out.
func NewXLSXWriter(out io.Writer) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetListings); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	for _, name := range []string{SheetCities, SheetAreas} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx: add sheet %s: %w", name, err)
		}
	}

	x := &XLSXWriter{file: f, out: out}
	if err := x.setRow(SheetListings, 1, toCells(ListingColumns())); err != nil {
		return nil, err
	}
	return x, nil
}

// CreateXLSXFile creates (or truncates) the workbook file at path.
func CreateXLSXFile(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: create file %q: %w", path, err)
	}
	x, err := NewXLSXWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	x.closer = f
	return x, nil
}

// Write fills the Listings sheet below the header row.
func (x *XLSXWriter) Write(listings []*models.Listing) error {
	for i, l := range listings {
		if err := x.setRow(SheetListings, i+2, listingCells(l)); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary fills the Cities and Areas sheets.
func (x *XLSXWriter) WriteSummary(cities []models.CityStats, areas []models.AreaStats) error {
	if err := x.setRow(SheetCities, 1, toCells([]string{
		"city", "avg_price", "avg_rating", "total_reviews", "avg_bedrooms", "avg_bathrooms",
		"pct_guest_favourite", "total_revenue", "avg_sales", "listing_count",
	})); err != nil {
		return err
	}
	for i, c := range cities {
		row := []any{
			c.City, floatCell(c.AvgPrice), floatCell(c.AvgRating), c.TotalReviews,
			floatCell(c.AvgBedrooms), floatCell(c.AvgBathrooms), c.PctGuestFavourite,
			c.TotalRevenue, floatCell(c.AvgSales), c.ListingCount,
		}
		if err := x.setRow(SheetCities, i+2, row); err != nil {
			return err
		}
	}

	if err := x.setRow(SheetAreas, 1, toCells([]string{
		"area", "avg_price", "avg_rating", "total_revenue", "total_sales", "listing_count",
	})); err != nil {
		return err
	}
	for i, a := range areas {
		row := []any{
			a.Area, floatCell(a.AvgPrice), floatCell(a.AvgRating),
			a.TotalRevenue, a.TotalSales, a.ListingCount,
		}
		if err := x.setRow(SheetAreas, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// Close writes the workbook to its destination and releases it.
func (x *XLSXWriter) Close() error {
	werr := x.file.Write(x.out)
	cerr := x.file.Close()
	if x.closer != nil {
		if err := x.closer.Close(); err != nil && werr == nil {
			werr = err
		}
	}
	if werr != nil {
		return fmt.Errorf("xlsx: write workbook: %w", werr)
	}
	return cerr
}

func (x *XLSXWriter) setRow(sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := x.file.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("xlsx: %s row %d: %w", sheet, row, err)
	}
	return nil
}

// listingCells follows the field order of models.Listing, the same order as
// ListingColumns. Missing values become empty cells.
func listingCells(l *models.Listing) []any {
	return []any{
		l.ID, l.HostID, l.City, l.Area, l.RoomType,
		l.Price, l.Bathrooms, l.Consumer, l.HostResponseRate, l.HostAcceptanceRate,
		l.HostSince, l.HostCertification, l.GuestFavouriteRaw,
		floatCell(l.Accommodates), floatCell(l.Bedrooms), floatCell(l.Beds),
		floatCell(l.TotalReviews), floatCell(l.Sales),
		floatCell(l.PriceClean), floatCell(l.BathroomsClean), floatCell(l.ConsumerClean),
		floatCell(l.HostResponseRateClean), floatCell(l.HostAcceptanceRateClean),
		l.RoomTypeDecoded, floatCell(l.RevenueEstimate), intCell(l.HostSinceClean),
		floatCell(l.CityLat), floatCell(l.CityLon),
		l.HostCertified, l.GuestFavourite,
	}
}

func floatCell(f models.Float) any {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

func intCell(i models.Int) any {
	if !i.Valid {
		return nil
	}
	return i.Int64
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
