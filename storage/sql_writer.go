package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

const insertBatchSize = 50

// dialect captures what differs between the supported SQL backends.
type dialect struct {
	name        string
	driver      string
	realType    string
	intType     string
	boolType    string
	placeholder func(n int) string
}

var (
	postgresDialect = dialect{
		name:        "postgres",
		driver:      "postgres",
		realType:    "DOUBLE PRECISION",
		intType:     "BIGINT",
		boolType:    "BOOLEAN",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
	sqliteDialect = dialect{
		name:        "sqlite",
		driver:      "sqlite",
		realType:    "REAL",
		intType:     "INTEGER",
		boolType:    "INTEGER",
		placeholder: func(int) string { return "?" },
	}
)

type sqlColumn struct {
	name  string
	kind  string // text, real, int, bool
	value func(row int, l *models.Listing) any
}

var listingTableColumns = []sqlColumn{
	{"row_index", "int", func(row int, _ *models.Listing) any { return row }},
	{"id", "text", func(_ int, l *models.Listing) any { return nullString(l.ID) }},
	{"host_id", "text", func(_ int, l *models.Listing) any { return nullString(l.HostID) }},
	{"city", "text", func(_ int, l *models.Listing) any { return nullString(l.City) }},
	{"area", "text", func(_ int, l *models.Listing) any { return nullString(l.Area) }},
	{"room_type", "text", func(_ int, l *models.Listing) any { return nullString(l.RoomType) }},
	{"room_type_decoded", "text", func(_ int, l *models.Listing) any { return l.RoomTypeDecoded }},
	{"price_clean", "real", func(_ int, l *models.Listing) any { return l.PriceClean }},
	{"bathrooms_clean", "real", func(_ int, l *models.Listing) any { return l.BathroomsClean }},
	{"consumer_clean", "real", func(_ int, l *models.Listing) any { return l.ConsumerClean }},
	{"host_response_rate_clean", "real", func(_ int, l *models.Listing) any { return l.HostResponseRateClean }},
	{"host_acceptance_rate_clean", "real", func(_ int, l *models.Listing) any { return l.HostAcceptanceRateClean }},
	{"accommodates", "real", func(_ int, l *models.Listing) any { return l.Accommodates }},
	{"bedrooms", "real", func(_ int, l *models.Listing) any { return l.Bedrooms }},
	{"beds", "real", func(_ int, l *models.Listing) any { return l.Beds }},
	{"total_reviews", "real", func(_ int, l *models.Listing) any { return l.TotalReviews }},
	{"sales", "real", func(_ int, l *models.Listing) any { return l.Sales }},
	{"revenue_estimate", "real", func(_ int, l *models.Listing) any { return l.RevenueEstimate }},
	{"host_since_clean", "int", func(_ int, l *models.Listing) any { return l.HostSinceClean }},
	{"city_lat", "real", func(_ int, l *models.Listing) any { return l.CityLat }},
	{"city_lon", "real", func(_ int, l *models.Listing) any { return l.CityLon }},
	{"host_certified", "bool", func(_ int, l *models.Listing) any { return l.HostCertified }},
	{"guest_favourite", "bool", func(_ int, l *models.Listing) any { return l.GuestFavourite }},
}

// SQLWriter exports cleaned listings into a "listings" table. Each Write
// replaces the table contents. Missing values are stored as NULL.
type SQLWriter struct {
	db      *sql.DB
	dialect dialect
	logger  *utils.Logger
}

// NewPostgresWriter opens a PostgreSQL connection, waits for the server to
// accept pings and creates the table if needed.
func NewPostgresWriter(ctx context.Context, dsn string, retry *utils.RetryConfig, logger *utils.Logger) (*SQLWriter, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return newSQLWriter(ctx, db, postgresDialect, logger)
}

// NewSQLiteWriter opens (or creates) the SQLite database file at path.
func NewSQLiteWriter(ctx context.Context, path string, logger *utils.Logger) (*SQLWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	return newSQLWriter(ctx, db, sqliteDialect, logger)
}

func newSQLWriter(ctx context.Context, db *sql.DB, d dialect, logger *utils.Logger) (*SQLWriter, error) {
	w := &SQLWriter{db: db, dialect: d, logger: logger}
	if err := w.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.name, err)
	}
	return w, nil
}

func (w *SQLWriter) migrate(ctx context.Context) error {
	defs := make([]string, 0, len(listingTableColumns))
	for _, c := range listingTableColumns {
		def := c.name + " " + w.columnType(c.kind)
		if c.name == "row_index" {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
	}

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS listings (\n\t" + strings.Join(defs, ",\n\t") + "\n)",
		"CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city)",
		"CREATE INDEX IF NOT EXISTS idx_listings_area ON listings(area)",
		"CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price_clean)",
	}
	for _, s := range stmts {
		if _, err := w.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (w *SQLWriter) columnType(kind string) string {
	switch kind {
	case "real":
		return w.dialect.realType
	case "int":
		return w.dialect.intType
	case "bool":
		return w.dialect.boolType
	default:
		return "TEXT"
	}
}

// Write replaces the table contents with listings inside one transaction.
func (w *SQLWriter) Write(listings []*models.Listing) error {
	return w.WriteContext(context.Background(), listings)
}

func (w *SQLWriter) WriteContext(ctx context.Context, listings []*models.Listing) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", w.dialect.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM listings"); err != nil {
		return fmt.Errorf("%s: clear: %w", w.dialect.name, err)
	}

	for i := 0; i < len(listings); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := w.insertBatch(ctx, tx, i, listings[i:end]); err != nil {
			return fmt.Errorf("%s: insert rows %d-%d: %w", w.dialect.name, i, end-1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", w.dialect.name, err)
	}
	w.logger.Info("[storage] Wrote %d listings to %s", len(listings), w.dialect.name)
	return nil
}

func (w *SQLWriter) insertBatch(ctx context.Context, tx *sql.Tx, offset int, batch []*models.Listing) error {
	cols := make([]string, len(listingTableColumns))
	for i, c := range listingTableColumns {
		cols[i] = c.name
	}

	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(cols))
	n := 1
	for idx, l := range batch {
		ph := make([]string, len(listingTableColumns))
		for i, c := range listingTableColumns {
			ph[i] = w.dialect.placeholder(n)
			n++
			valueArgs = append(valueArgs, c.value(offset+idx, l))
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
	}

	query := fmt.Sprintf("INSERT INTO listings (%s) VALUES %s",
		strings.Join(cols, ", "), strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

func (w *SQLWriter) Close() error {
	return w.db.Close()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
