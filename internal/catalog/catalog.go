// Package catalog loads the product catalog from a CSV source and indexes it
// by normalized category for lookup and sampling.
//
// The catalog is built once at process start and is read-only afterwards, so
// it is safe for concurrent reads without locking.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/zulu-club/zulubot/internal/models"
)

// Constants for catalog configuration
const (
	// DefaultCurrencyMarker is prepended to prices that carry no currency marker.
	DefaultCurrencyMarker = "₹"
	// DefaultSampleSize is how many products a category reply includes.
	DefaultSampleSize = 3
)

// Column order of the catalog CSV source.
const (
	colName = iota
	colCategory
	colPrice
	colImageURL
	columnCount
)

// Opts holds configuration options for catalog loading.
type Opts struct {
	CurrencyMarker string
}

// Option defines a configuration option for catalog loading.
type Option func(*Opts)

// WithCurrencyMarker overrides the currency marker prepended to bare prices.
func WithCurrencyMarker(marker string) Option {
	return func(o *Opts) { o.CurrencyMarker = marker }
}

// Catalog holds the loaded products and the category index.
type Catalog struct {
	records []models.Product
	index   map[string][]models.Product
}

// Load reads the catalog CSV at path and builds the category index.
// A missing file is not fatal: the bot degrades to free-text replies, so an
// empty catalog is returned with a warning instead of an error.
func Load(path string, opts ...Option) (*Catalog, error) {
	cfg := Opts{CurrencyMarker: DefaultCurrencyMarker}
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Catalog.Load: catalog file missing, starting with empty catalog", "path", path)
			return New(nil), nil
		}
		slog.Error("Catalog.Load: failed to open catalog file", "error", err, "path", path)
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer f.Close()

	records, err := parse(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	c := New(records)
	slog.Info("Catalog.Load: catalog loaded", "path", path, "records", len(c.records), "categories", len(c.index))
	return c, nil
}

// New builds a catalog directly from records, applying the same drop rules as
// Load. Useful for tests and embedded catalogs.
func New(records []models.Product) *Catalog {
	c := &Catalog{index: make(map[string][]models.Product)}
	for _, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.Category = strings.TrimSpace(rec.Category)
		if rec.Name == "" || rec.Category == "" {
			continue
		}
		c.records = append(c.records, rec)
		key := NormalizeCategory(rec.Category)
		c.index[key] = append(c.index[key], rec)
	}
	return c
}

// parse reads CSV rows into products. Rows with empty name or category are
// dropped; prices are trimmed and prefixed with the currency marker.
func parse(r io.Reader, cfg Opts) ([]models.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []models.Product
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row: %w", err)
		}
		// Skip the header row.
		if first {
			first = false
			if len(row) > colName && strings.EqualFold(strings.TrimSpace(row[colName]), "name") {
				continue
			}
		}
		if len(row) < columnCount {
			slog.Debug("Catalog.parse: skipping short row", "fields", len(row))
			continue
		}
		rec := models.Product{
			Name:     strings.TrimSpace(row[colName]),
			Category: strings.TrimSpace(row[colCategory]),
			Price:    NormalizePrice(strings.TrimSpace(row[colPrice]), cfg.CurrencyMarker),
			ImageURL: strings.TrimSpace(row[colImageURL]),
		}
		records = append(records, rec)
	}
	return records, nil
}

// NormalizePrice prepends the currency marker to a non-empty price that does
// not already carry one. Normalization is idempotent.
func NormalizePrice(price, marker string) string {
	if price == "" || marker == "" {
		return price
	}
	if strings.HasPrefix(price, marker) {
		return price
	}
	return marker + price
}

// NormalizeCategory lowercases a raw category, strips punctuation and
// collapses whitespace runs to single spaces. Idempotent; two raw categories
// differing only in case, punctuation or spacing share one key.
func NormalizeCategory(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	lastSpace := true
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Records returns all loaded products in file order.
func (c *Catalog) Records() []models.Product {
	return c.records
}

// Keys returns every known category key. Order is unspecified.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.index))
	for k := range c.index {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of loaded products.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Bucket returns the products indexed under the given category key, in file
// order. The returned slice is shared and must not be mutated.
func (c *Catalog) Bucket(key string) []models.Product {
	return c.index[key]
}

// Sample returns up to n products drawn uniformly at random, without
// replacement, from the bucket for key. An unknown key or empty bucket yields
// an empty result.
func (c *Catalog) Sample(key string, n int) []models.Product {
	bucket := c.index[key]
	if len(bucket) == 0 || n <= 0 {
		return nil
	}
	if n >= len(bucket) {
		out := make([]models.Product, len(bucket))
		copy(out, bucket)
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	perm := rand.Perm(len(bucket))
	out := make([]models.Product, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, bucket[idx])
	}
	return out
}
