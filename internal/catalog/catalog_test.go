package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zulu-club/zulubot/internal/models"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}
	return path
}

func TestLoadCountsAndDropRules(t *testing.T) {
	csv := "name,category,price,image_url\n" +
		"Red Dress,Women's Fashion,999,http://x/1.jpg\n" +
		",Women's Fashion,100,http://x/2.jpg\n" +
		"Blue Shirt,,200,http://x/3.jpg\n" +
		"Sneakers,Footwear,₹1500,http://x/4.jpg\n" +
		"  Scarf  ,  Accessories  ,,\n"
	path := writeCatalogFile(t, csv)

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Rows with empty name or category are dropped; three valid rows remain.
	if cat.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", cat.Len())
	}

	records := cat.Records()
	if records[0].Name != "Red Dress" || records[0].Price != "₹999" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	// Already-prefixed prices stay untouched.
	if records[1].Price != "₹1500" {
		t.Errorf("expected prefixed price to stay, got %q", records[1].Price)
	}
	// Empty price stays empty.
	if records[2].Price != "" {
		t.Errorf("expected empty price, got %q", records[2].Price)
	}
	// Fields are trimmed.
	if records[2].Name != "Scarf" || records[2].Category != "Accessories" {
		t.Errorf("expected trimmed fields, got %+v", records[2])
	}
}

func TestLoadMissingFileYieldsEmptyCatalog(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	if err != nil {
		t.Fatalf("expected missing file to be non-fatal, got %v", err)
	}
	if cat.Len() != 0 {
		t.Errorf("expected empty catalog, got %d records", cat.Len())
	}
	if got := cat.Sample("anything", 3); len(got) != 0 {
		t.Errorf("expected empty sample from empty catalog, got %d", len(got))
	}
}

func TestNormalizePriceIdempotent(t *testing.T) {
	once := NormalizePrice("999", DefaultCurrencyMarker)
	twice := NormalizePrice(once, DefaultCurrencyMarker)
	if once != "₹999" || once != twice {
		t.Errorf("price normalization not idempotent: %q vs %q", once, twice)
	}
	if got := NormalizePrice("", DefaultCurrencyMarker); got != "" {
		t.Errorf("empty price should stay empty, got %q", got)
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Women's Fashion", "women s fashion"},
		{"WOMEN'S   FASHION!!", "women s fashion"},
		{"  footwear  ", "footwear"},
		{"Home & Living", "home living"},
		{"", ""},
	}
	for _, tc := range cases {
		got := NormalizeCategory(tc.raw)
		if got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tc.raw, got, tc.want)
		}
		// Idempotence: normalizing a normalized string is a no-op.
		if again := NormalizeCategory(got); again != got {
			t.Errorf("NormalizeCategory not idempotent for %q: %q vs %q", tc.raw, got, again)
		}
	}
}

func TestCollidingCategoriesShareBucket(t *testing.T) {
	cat := New([]models.Product{
		{Name: "A", Category: "Women's Fashion"},
		{Name: "B", Category: "womens  fashion"},
	})
	if len(cat.Keys()) != 2 {
		// "Women's Fashion" -> "women s fashion", "womens fashion" differ.
		t.Fatalf("expected 2 keys, got %v", cat.Keys())
	}

	cat = New([]models.Product{
		{Name: "A", Category: "Women's Fashion"},
		{Name: "B", Category: "women s FASHION"},
	})
	bucket := cat.Bucket("women s fashion")
	if len(bucket) != 2 {
		t.Fatalf("expected collapsed bucket of 2, got %d", len(bucket))
	}
	// Bucket preserves file order.
	if bucket[0].Name != "A" || bucket[1].Name != "B" {
		t.Errorf("bucket order not file order: %+v", bucket)
	}
}

func TestSampleBounds(t *testing.T) {
	cat := New([]models.Product{
		{Name: "A", Category: "toys"},
		{Name: "B", Category: "toys"},
		{Name: "C", Category: "toys"},
	})

	for i := 0; i < 20; i++ {
		if got := cat.Sample("toys", 2); len(got) != 2 {
			t.Fatalf("expected sample of 2, got %d", len(got))
		}
		// n larger than the bucket returns the whole bucket once.
		if got := cat.Sample("toys", 10); len(got) != 3 {
			t.Fatalf("expected sample capped at bucket size 3, got %d", len(got))
		}
	}

	if got := cat.Sample("unknown", 3); len(got) != 0 {
		t.Errorf("expected empty sample for unknown key, got %d", len(got))
	}
	if got := cat.Sample("toys", 0); len(got) != 0 {
		t.Errorf("expected empty sample for n=0, got %d", len(got))
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	cat := New([]models.Product{
		{Name: "A", Category: "toys"},
		{Name: "B", Category: "toys"},
		{Name: "C", Category: "toys"},
	})
	for i := 0; i < 20; i++ {
		got := cat.Sample("toys", 3)
		seen := make(map[string]bool, len(got))
		for _, p := range got {
			if seen[p.Name] {
				t.Fatalf("sample returned duplicate %q", p.Name)
			}
			seen[p.Name] = true
		}
	}
}
