package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// Dataset is one cleaned load of a source file.
type Dataset struct {
	Path     string
	Listings []*models.Listing
	Stats    *models.Stats
	LoadedAt time.Time
}

type cacheEntry struct {
	key     string
	dataset *Dataset
}

// DatasetCache loads each source file at most once per (path, size, mtime).
// Concurrent callers for the same key share a single load.
type DatasetCache struct {
	loader *Loader
	logger *utils.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry

	// OnLoad, when set, is called after every actual load (not cache hits).
	OnLoad func(path string, elapsed time.Duration, err error)
}

func NewDatasetCache(loader *Loader, logger *utils.Logger) *DatasetCache {
	return &DatasetCache{
		loader:  loader,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cleaned dataset for path, reloading it when the file's
// size or modification time has changed.
func (c *DatasetCache) Get(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.key == key {
		return e.dataset, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		e, ok := c.entries[path]
		c.mu.RUnlock()
		if ok && e.key == key {
			return e.dataset, nil
		}

		start := time.Now()
		listings, stats, err := c.loader.Load(path)
		if c.OnLoad != nil {
			c.OnLoad(path, time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}

		ds := &Dataset{Path: path, Listings: listings, Stats: stats, LoadedAt: time.Now()}
		c.mu.Lock()
		c.entries[path] = cacheEntry{key: key, dataset: ds}
		c.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("[cache] Shared load of %s", path)
	}
	return v.(*Dataset), nil
}

// GetFirst returns the dataset of the first path that exists. A file that
// exists but fails to load is reported rather than skipped.
func (c *DatasetCache) GetFirst(paths ...string) (*Dataset, error) {
	lastErr := fmt.Errorf("%w: no data path configured", ErrNoData)
	for _, p := range paths {
		if p == "" {
			continue
		}
		ds, err := c.Get(p)
		if err == nil {
			return ds, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
