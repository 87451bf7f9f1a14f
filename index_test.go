package driftfield

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewIndexEmpty(t *testing.T) {
	if _, err := NewIndex("assets", 0, nil); !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestIndexTierURLs(t *testing.T) {

	index, err := NewIndex("assets", 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		id   int
		tier Tier
		want string
	}{
		{3, TierFull, "assets/3.webp"},
		{3, TierHalf, "assets/halfres/3.webp"},
		{3, TierQuarter, "assets/quarterres/3.webp"},
		{1, TierFull, "assets/1.webp"},
		{5, TierQuarter, "assets/quarterres/5.webp"},
	}

	for _, c := range cases {
		url, err := index.URL(c.id, c.tier)
		if err != nil {
			t.Fatalf("URL(%d, %s): %v", c.id, c.tier, err)
		}
		if url != c.want {
			t.Fatalf("URL(%d, %s) = %q, want %q", c.id, c.tier, url, c.want)
		}
	}

	if _, err := index.URL(6, TierFull); !errors.Is(err, ErrUnknownImage) {
		t.Fatalf("expected ErrUnknownImage for out-of-range id, got %v", err)
	}

}

func TestLoadIndexFromPipelineOutput(t *testing.T) {

	dir := t.TempDir()

	config := `{"totalImages": 3, "lastUpdated": 1700000000.0, "formats": ["full", "halfres", "quarterres"]}`
	manifest := `{"1.webp": "sunset.jpg", "2.webp": "harbor.png", "3.webp": "forest.webp"}`

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	index, err := LoadIndex(dir)
	if err != nil {
		t.Fatal(err)
	}

	if index.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", index.Len())
	}
	if got := index.Record(2).Source; got != "harbor.png" {
		t.Fatalf("Record(2).Source = %q, want %q", got, "harbor.png")
	}

	url, err := index.URL(2, TierHalf)
	if err != nil {
		t.Fatal(err)
	}
	if want := dir + "/halfres/2.webp"; url != want {
		t.Fatalf("URL = %q, want %q", url, want)
	}

}

func TestLoadIndexEmptyCollection(t *testing.T) {

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"totalImages": 0}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadIndex(dir); !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}

}

func TestLoadIndexMissingConfig(t *testing.T) {
	if _, err := LoadIndex(t.TempDir()); err == nil {
		t.Fatal("expected an error for a collection without config.json")
	}
}

func TestAddDropped(t *testing.T) {

	index, err := NewIndex("assets", 2, nil)
	if err != nil {
		t.Fatal(err)
	}

	const dataURL = "data:image/png;base64,aGVsbG8="
	id := index.AddDropped("dropped.png", dataURL)

	if id != 3 {
		t.Fatalf("AddDropped returned id %d, want 3", id)
	}
	if index.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", index.Len())
	}

	// Dropped records have a single resolution: every tier resolves to the data URL.
	for _, tier := range []Tier{TierFull, TierHalf, TierQuarter} {
		url, err := index.URL(id, tier)
		if err != nil {
			t.Fatal(err)
		}
		if url != dataURL {
			t.Fatalf("URL(%d, %s) = %q, want the data URL", id, tier, url)
		}
	}

}
