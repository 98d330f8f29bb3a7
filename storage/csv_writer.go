package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jszwec/csvutil"

	"airbnb-dashboard/models"
)

// CSVWriter writes cleaned listings, raw and derived columns, as CSV.
// Missing values are empty cells. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
	enc    *csvutil.Encoder
}

// NewCSVWriter writes to w and emits the header row immediately, so an empty
// export still has its columns.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	enc.AutoHeader = false

	if err := enc.EncodeHeader(models.Listing{}); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	return &CSVWriter{writer: cw, enc: enc}, nil
}

// CreateCSVFile creates (or truncates) the CSV file at path. Intermediate
// directories are created automatically.
func CreateCSVFile(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w, err := NewCSVWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Write appends one row per listing.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		if err := c.enc.Encode(l); err != nil {
			return fmt.Errorf("csv: write row %s: %w", l.ID, err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and, for file-backed writers, closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// ListingColumns returns the export column names in order.
func ListingColumns() []string {
	cols, err := csvutil.Header(models.Listing{}, "csv")
	if err != nil {
		panic(fmt.Sprintf("csv: listing header: %v", err))
	}
	return cols
}
