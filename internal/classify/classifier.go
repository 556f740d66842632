package classify

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/hyperjump/konomi/internal/interest"
	"github.com/hyperjump/konomi/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// Classifier resolves URLs to interest categories. The lookup tries the
// exact host first, then the host's registrable domain, so "blog.example.com"
// falls back to an "example.com" table entry. The table can be swapped at
// runtime; lookups against the old table finish against the old table.
type Classifier struct {
	mu     sync.RWMutex
	table  *Table
	logger *zap.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithLogger sets a logger for debug output (skipped URLs, table swaps).
func WithLogger(l *zap.Logger) ClassifierOption {
	return func(c *Classifier) { c.logger = l }
}

// NewClassifier creates a classifier over the given table.
func NewClassifier(table *Table, opts ...ClassifierOption) *Classifier {
	c := &Classifier{table: table}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify maps one URL to its interest category. The second return is false
// when the URL is malformed or its domain is not in the table; such URLs
// contribute nothing to a vector.
func (c *Classifier) Classify(rawURL string) (interest.Interest, bool) {
	host, err := hostOf(rawURL)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("skipping malformed URL", zap.String("url", utils.Truncate(rawURL, 120)), zap.Error(err))
		}
		return 0, false
	}

	c.mu.RLock()
	table := c.table
	c.mu.RUnlock()
	if table == nil {
		return 0, false
	}

	if cat, ok := table.Lookup(host); ok {
		return cat, true
	}
	// blog.example.com matches an example.com entry. IPs and single-label
	// hosts have no registrable domain and only match exactly.
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil && domain != host {
		if cat, ok := table.Lookup(domain); ok {
			return cat, true
		}
	}
	return 0, false
}

// SetTable swaps in a new lookup table.
func (c *Classifier) SetTable(table *Table) {
	c.mu.Lock()
	c.table = table
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Debug("classification table swapped", zap.Int("entries", table.Len()))
	}
}

// Reload loads a table file and swaps it in. On failure the current table
// stays in service.
func (c *Classifier) Reload(path string) error {
	table, err := LoadTable(path)
	if err != nil {
		return err
	}
	c.SetTable(table)
	return nil
}

// TableSize returns the number of entries in the current table.
func (c *Classifier) TableSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Len()
}

// hostOf extracts the lowercase hostname from a URL. History entries may
// omit the scheme, so bare "example.com/page" forms parse too.
func hostOf(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", errors.New("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return "", errors.New("missing host")
	}
	return host, nil
}
