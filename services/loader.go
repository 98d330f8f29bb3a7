package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// ErrNoData is wrapped by every load failure: missing or unreadable file,
// malformed CSV, missing required columns, or zero data rows.
var ErrNoData = errors.New("no data")

// DataFileHint tells the operator where the dataset is expected.
const DataFileHint = "place the CSV file in the data/ directory as Airbnb_site_hotel_new.csv"

// Loader reads a listings CSV and runs it through the Cleaner.
type Loader struct {
	logger  *utils.Logger
	cleaner *Cleaner
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger, cleaner: NewCleaner(logger)}
}

// Load reads, cleans and summarises the file at path. On any failure it
// returns an error wrapping ErrNoData and no partial result.
func (l *Loader) Load(path string) ([]*models.Listing, *models.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	defer f.Close()

	raw, err := ReadRaw(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrNoData, path, err)
	}
	l.logger.Info("[loader] Read %d rows from %s", len(raw), path)

	listings := l.cleaner.Clean(raw)
	stats := ComputeStats(listings, len(raw))

	l.logger.Info("[loader] %d listings across %d cities and %d areas",
		stats.TotalListings, stats.Cities, stats.Areas)
	return listings, stats, nil
}

// LoadFirst tries each path in order and returns the first successful load
// together with the path it came from. Only a missing file moves on to the
// next path; any other failure is returned as is. If every file is missing
// the last error is returned.
func (l *Loader) LoadFirst(paths ...string) ([]*models.Listing, *models.Stats, string, error) {
	lastErr := fmt.Errorf("%w: no data path configured", ErrNoData)
	for _, p := range paths {
		if p == "" {
			continue
		}
		listings, stats, err := l.Load(p)
		if err == nil {
			return listings, stats, p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, "", err
		}
		l.logger.Warn("[loader] %v", err)
		lastErr = err
	}
	return nil, nil, "", lastErr
}

// ReadRaw decodes CSV rows into RawListings. Header names are trimmed before
// matching, extra columns are ignored and every required column must exist.
func ReadRaw(r io.Reader) ([]*models.RawListing, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	dec.DisallowMissingColumns = true

	var rows []*models.RawListing
	for {
		var rec models.RawListing
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, &rec)
	}

	if len(rows) == 0 {
		return nil, errors.New("file has no data rows")
	}
	return rows, nil
}

// ComputeStats summarises a cleaned set. Missing values are skipped
// everywhere; a mean or range with no valid inputs stays missing.
func ComputeStats(listings []*models.Listing, originalCount int) *models.Stats {
	f := newListingFrame(listings)
	cities := f.distinct(colCity)
	areas := f.distinct(colArea)
	price := f.column(colPrice)
	rating := f.column(colRating)
	hostSince := f.column(colHostSince)

	return &models.Stats{
		TotalListings:   len(listings),
		OriginalCount:   originalCount,
		Cities:          len(cities),
		Areas:           len(areas),
		UniqueCities:    cities,
		UniqueAreas:     areas,
		UniqueRoomTypes: f.distinct(colRoomType),
		AvgPrice:        price.mean(),
		AvgRating:       rating.mean(),
		TotalHosts:      len(f.distinct(colHost)),
		DateRange:       models.IntRange{Min: toInt(hostSince.minimum()), Max: toInt(hostSince.maximum())},
		PriceRange:      models.FloatRange{Min: price.minimum(), Max: price.maximum()},
		RatingRange:     models.FloatRange{Min: rating.minimum(), Max: rating.maximum()},
	}
}

func toInt(f models.Float) models.Int {
	if !f.Valid {
		return models.Int{}
	}
	return models.NewInt(int64(f.Float64))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
