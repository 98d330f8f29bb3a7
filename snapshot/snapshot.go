// Package snapshot captures PNG screenshots of dashboard views with a
// headless Chrome.
package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

const (
	defaultWidth   = 1440
	defaultHeight  = 900
	defaultTimeout = 60 * time.Second
	pngQuality     = 90
)

// View is one dashboard page to capture: a file name and the filter query
// that selects it.
type View struct {
	Name  string
	Query url.Values
}

// Options configures a Capturer.
type Options struct {
	BaseURL     string
	OutDir      string
	ChromeBin   string
	Width       int
	Height      int
	Timeout     time.Duration
	Concurrency int
	RateLimitMs int
	MaxRetries  int
}

type shootFunc func(ctx context.Context, pageURL string) ([]byte, error)

// Capturer renders views on a bounded pool of browser tabs.
type Capturer struct {
	opts   Options
	logger *utils.Logger
	pool   *utils.WorkerPool
	seen   *utils.KeySet
	retry  *utils.RetryConfig

	// shoot replaces the browser in tests.
	shoot shootFunc
}

// New creates a Capturer. Zero sizes and timeouts take defaults.
func New(opts Options, logger *utils.Logger) *Capturer {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Capturer{
		opts:   opts,
		logger: logger,
		pool:   utils.NewWorkerPool(opts.Concurrency, opts.RateLimitMs),
		seen:   utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// DefaultViews returns the overview, the two flag filters and one view per
// area of the dataset.
func DefaultViews(stats *models.Stats) []View {
	views := []View{
		{Name: "overview"},
		{Name: "guest-favourites", Query: url.Values{"guest_favourites_only": {"true"}}},
		{Name: "certified-hosts", Query: url.Values{"certified_hosts_only": {"true"}}},
	}
	if stats == nil {
		return views
	}
	for _, area := range stats.UniqueAreas {
		views = append(views, View{Name: "area-" + area, Query: url.Values{"area": {area}}})
	}
	return views
}

// ViewURL resolves v against the dashboard base URL.
func ViewURL(base string, v View) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("snapshot: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("snapshot: base url %q must be absolute", base)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = v.Query.Encode()
	return u.String(), nil
}

// FileName is the PNG name a view is written to.
func FileName(v View) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(v.Name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "view"
	}
	return name + ".png"
}

// Capture screenshots every view and returns the written file paths in
// sorted order. Views resolving to an already captured URL are skipped.
// Failed views do not stop the others; their errors are joined.
func (c *Capturer) Capture(ctx context.Context, views []View) ([]string, error) {
	if err := os.MkdirAll(c.opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create output dir: %w", err)
	}

	shoot := c.shoot
	if shoot == nil {
		browserCtx, cancel, err := c.startBrowser(ctx)
		if err != nil {
			return nil, err
		}
		defer cancel()
		shoot = c.chromeShooter(browserCtx)
	}

	var (
		mu    sync.Mutex
		paths []string
	)
	for _, v := range views {
		pageURL, err := ViewURL(c.opts.BaseURL, v)
		if err != nil {
			return nil, err
		}
		if !c.seen.Add(pageURL) {
			c.logger.Debug("[snapshot] Skipping duplicate view %s", pageURL)
			continue
		}

		c.pool.Submit(func() error {
			out := filepath.Join(c.opts.OutDir, FileName(v))
			err := c.retry.Do(ctx, "snapshot-"+v.Name, func() error {
				png, err := shoot(ctx, pageURL)
				if err != nil {
					return err
				}
				return os.WriteFile(out, png, 0o644)
			})
			if err != nil {
				c.logger.Warn("[snapshot] %s failed: %v", v.Name, err)
				return fmt.Errorf("snapshot %s: %w", v.Name, err)
			}

			c.logger.Info("[snapshot] Saved %s", out)
			mu.Lock()
			paths = append(paths, out)
			mu.Unlock()
			return nil
		})
	}

	err := c.pool.Wait()
	sort.Strings(paths)
	return paths, err
}

func (c *Capturer) startBrowser(ctx context.Context) (context.Context, context.CancelFunc, error) {
	chromeBin := c.opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	c.logger.Info("[snapshot] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(c.opts.Width, c.opts.Height),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// Start the browser once so tabs can be opened concurrently.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("snapshot: start browser: %w", err)
	}
	return browserCtx, cancel, nil
}

func (c *Capturer) chromeShooter(browserCtx context.Context) shootFunc {
	return func(ctx context.Context, pageURL string) ([]byte, error) {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.opts.Timeout)
		defer cancelTimeout()

		stop := context.AfterFunc(ctx, cancel)
		defer stop()

		var buf []byte
		err := chromedp.Run(tabCtx,
			chromedp.EmulateViewport(int64(c.opts.Width), int64(c.opts.Height)),
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.FullScreenshot(&buf, pngQuality),
		)
		if err != nil {
			return nil, fmt.Errorf("chromedp screenshot: %w", err)
		}
		return buf, nil
	}
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
