package services

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDatasetCacheLoadsOnce(t *testing.T) {
	path := writeCSV(t, csvHeader, sampleRows...)
	cache := NewDatasetCache(NewLoader(newTestLogger()), newTestLogger())

	var loads int32
	cache.OnLoad = func(string, time.Duration, error) { atomic.AddInt32(&loads, 1) }

	var wg sync.WaitGroup
	results := make([]*Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := cache.Get(path)
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			results[i] = ds
		}(i)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("loads = %d; want 1", n)
	}
	for i, ds := range results {
		if ds != results[0] {
			t.Errorf("caller %d got a different dataset", i)
		}
	}
}

func TestDatasetCacheReloadsChangedFile(t *testing.T) {
	path := writeCSV(t, csvHeader, sampleRows...)
	cache := NewDatasetCache(NewLoader(newTestLogger()), newTestLogger())

	first, err := cache.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	content := csvHeader + "\n" + sampleRows[0] + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	second, err := cache.Get(path)
	if err != nil {
		t.Fatalf("Get after change: %v", err)
	}
	if second == first || len(second.Listings) != 1 {
		t.Errorf("expected a fresh load with 1 listing, got %d", len(second.Listings))
	}
}

func TestDatasetCacheGetFirst(t *testing.T) {
	good := writeCSV(t, csvHeader, sampleRows...)
	missing := filepath.Join(t.TempDir(), "missing.csv")
	cache := NewDatasetCache(NewLoader(newTestLogger()), newTestLogger())

	ds, err := cache.GetFirst(missing, good)
	if err != nil {
		t.Fatalf("GetFirst: %v", err)
	}
	if ds.Path != good {
		t.Errorf("path = %q; want %q", ds.Path, good)
	}

	if _, err := cache.GetFirst(missing); !errors.Is(err, ErrNoData) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("GetFirst(missing) err = %v; want ErrNoData wrapping fs.ErrNotExist", err)
	}
	if _, err := cache.GetFirst(); !errors.Is(err, ErrNoData) {
		t.Errorf("GetFirst() err = %v; want ErrNoData", err)
	}
}

func TestDatasetCacheGetFirstStopsOnBrokenFile(t *testing.T) {
	broken := writeCSV(t, "id,city")
	good := writeCSV(t, csvHeader, sampleRows...)
	cache := NewDatasetCache(NewLoader(newTestLogger()), newTestLogger())

	ds, err := cache.GetFirst(broken, good)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("GetFirst(broken, good) err = %v; want ErrNoData", err)
	}
	if ds != nil {
		t.Errorf("GetFirst fell back to %q; want no fallback", ds.Path)
	}
}
