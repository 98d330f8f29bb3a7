package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATA_PATH", "DATA_FALLBACK_PATH", "HTTP_ADDR", "LOG_LEVEL", "MAX_RETRIES", "SNAPSHOT_CONCURRENCY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q; want :8080", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want info", cfg.LogLevel)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d; want 3", cfg.MaxRetries)
	}
	want := []string{"/app/data/Airbnb_site_hotel_new.csv", "data/Airbnb_site_hotel_new.csv"}
	got := cfg.DataPaths()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("DataPaths() = %v; want %v", got, want)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_PATH", "listings.csv")
	t.Setenv("DATA_FALLBACK_PATH", "listings.csv")
	t.Setenv("SNAPSHOT_CONCURRENCY", "5")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	if got := cfg.DataPaths(); len(got) != 1 || got[0] != "listings.csv" {
		t.Errorf("DataPaths() = %v; want [listings.csv]", got)
	}
	if cfg.SnapshotConcurrency != 5 {
		t.Errorf("SnapshotConcurrency = %d; want 5", cfg.SnapshotConcurrency)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d; want fallback 3", cfg.MaxRetries)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "db",
		PostgresPort:     "5433",
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresDB:       "rentals",
		PostgresSSLMode:  "require",
	}
	want := "host=db port=5433 user=u password=p dbname=rentals sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q; want %q", got, want)
	}
}
