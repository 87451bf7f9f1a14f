package driftfield

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrEmptyIndex is returned when the asset index contains no images. An empty
	// index is a configuration error, fatal at startup.
	ErrEmptyIndex = errors.New("driftfield: asset index is empty")

	// ErrUnknownImage is returned when an image id outside the index is referenced.
	ErrUnknownImage = errors.New("driftfield: unknown image id")
)

// Tier is one of the three resolution variants the offline asset pipeline
// generates for every image.
type Tier int

const (
	TierFull    Tier = iota // The original-resolution lossless conversion
	TierHalf                // Half-resolution
	TierQuarter             // Quarter-resolution
)

// String returns the Tier's name.
func (tier Tier) String() string {
	switch tier {
	case TierHalf:
		return "half"
	case TierQuarter:
		return "quarter"
	default:
		return "full"
	}
}

// dir returns the subdirectory the pipeline writes the tier's files into. Full-res
// files sit in the collection root.
func (tier Tier) dir() string {
	switch tier {
	case TierHalf:
		return "halfres/"
	case TierQuarter:
		return "quarterres/"
	default:
		return ""
	}
}

// ImageRecord is one entry of the asset index: a sequential id, the original source
// name the pipeline recorded in the manifest, and (for drag-and-drop images) a data
// URL replacing the tiered files. Records are append-only during a session.
type ImageRecord struct {
	ID      int     // 1-based sequential id; the pipeline names the files "<ID>.webp"
	Source  string  // The original filename before the pipeline standardized it, if known
	Aspect  float64 // Natural width/height ratio, learned at first decode; 1 until then
	Dropped bool    // Whether the record came from drag-and-drop rather than the index
	DataURL string  // For dropped records, the data URL holding the image bytes
}

// collectionConfig mirrors the config.json the asset pipeline writes next to the
// collection.
type collectionConfig struct {
	TotalImages int      `json:"totalImages"`
	LastUpdated float64  `json:"lastUpdated"`
	Formats     []string `json:"formats"`
}

// Index is the ordered catalog of every image available to the field, built once at
// startup from the pipeline's config.json / manifest.json pair and appended to by
// drag-and-drop. It resolves (id, tier) pairs to fetchable URLs.
type Index struct {
	baseURL string
	records []ImageRecord
}

// LoadIndex builds an Index from the collection rooted at baseURL (a local directory
// or an http(s) prefix). It reads config.json for the image count and manifest.json,
// if present, for the original source names. An empty or malformed collection returns
// an error; startup is the only place driftfield is allowed to fail hard.
func LoadIndex(baseURL string) (*Index, error) {

	if len(baseURL) > 0 && baseURL[len(baseURL)-1] != '/' {
		baseURL += "/"
	}

	r, err := openResource(baseURL + "config.json")
	if err != nil {
		return nil, fmt.Errorf("driftfield: reading collection config: %w", err)
	}
	defer r.Close()

	config := collectionConfig{}
	if err := json.NewDecoder(r).Decode(&config); err != nil {
		return nil, fmt.Errorf("driftfield: parsing collection config: %w", err)
	}

	// The manifest is advisory; a collection without one still renders.
	manifest := map[string]string{}
	if mr, err := openResource(baseURL + "manifest.json"); err == nil {
		err = json.NewDecoder(mr).Decode(&manifest)
		mr.Close()
		if err != nil {
			return nil, fmt.Errorf("driftfield: parsing collection manifest: %w", err)
		}
	}

	return NewIndex(baseURL, config.TotalImages, manifest)

}

// NewIndex builds an Index directly from an image count and an optional manifest
// mapping "N.webp" filenames to original source names. The pipeline numbers images
// 1..count contiguously.
func NewIndex(baseURL string, count int, manifest map[string]string) (*Index, error) {

	if count < 1 {
		return nil, ErrEmptyIndex
	}

	if len(baseURL) > 0 && baseURL[len(baseURL)-1] != '/' {
		baseURL += "/"
	}

	index := &Index{
		baseURL: baseURL,
		records: make([]ImageRecord, 0, count),
	}

	for id := 1; id <= count; id++ {
		index.records = append(index.records, ImageRecord{
			ID:     id,
			Source: manifest[strconv.Itoa(id)+".webp"],
			Aspect: 1,
		})
	}

	return index, nil

}

// Len returns the number of images in the Index.
func (index *Index) Len() int {
	return len(index.records)
}

// BaseURL returns the collection root the Index was built from.
func (index *Index) BaseURL() string {
	return index.baseURL
}

// Record returns a pointer to the ImageRecord with the given id, or nil if the id is
// outside the index.
func (index *Index) Record(id int) *ImageRecord {
	if id < 1 || id > len(index.records) {
		return nil
	}
	return &index.records[id-1]
}

// URL resolves an (id, tier) pair to a fetchable URL. Dropped records resolve to
// their data URL for every tier, since drag-and-drop images have a single
// resolution.
func (index *Index) URL(id int, tier Tier) (string, error) {
	record := index.Record(id)
	if record == nil {
		return "", fmt.Errorf("%w: %d", ErrUnknownImage, id)
	}
	if record.Dropped {
		return record.DataURL, nil
	}
	return index.baseURL + tier.dir() + strconv.Itoa(id) + ".webp", nil
}

// AddDropped appends a drag-and-dropped image to the Index, returning its new id.
// The record carries the client-local data URL in place of tiered files and is
// otherwise treated identically to indexed images.
func (index *Index) AddDropped(source, dataURL string) int {
	id := len(index.records) + 1
	index.records = append(index.records, ImageRecord{
		ID:      id,
		Source:  source,
		Aspect:  1,
		Dropped: true,
		DataURL: dataURL,
	})
	return id
}
