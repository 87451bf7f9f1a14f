package driftfield

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"

	// The offline pipeline converts every collection to webp; png and jpeg cover
	// drag-and-dropped sources that never went through it.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// openResource opens a collection resource for reading. Three URL shapes are
// supported: http(s) URLs, data URLs (drag-and-drop), and local file paths.
func openResource(url string) (io.ReadCloser, error) {

	switch {

	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		res, err := http.Get(url)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, fmt.Errorf("fetching %s: %s", url, res.Status)
		}
		return res.Body, nil

	case strings.HasPrefix(url, "data:"):
		data, err := decodeDataURL(url)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil

	default:
		return os.Open(url)

	}

}

// decodeDataURL extracts the raw bytes out of a base64-encoded data URL of the
// form "data:image/png;base64,....".
func decodeDataURL(url string) ([]byte, error) {

	comma := strings.IndexByte(url, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}

	meta, payload := url[len("data:"):comma], url[comma+1:]

	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}

	return []byte(payload), nil

}

// fetchImage fetches and decodes the image at the URL given. This is the work the
// load scheduler runs off-tick; everything else in the engine stays on the frame
// tick.
func fetchImage(url string) (image.Image, error) {

	r, err := openResource(url)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}

	return img, nil

}

// imageAspect returns the width/height ratio of a decoded image.
func imageAspect(img image.Image) float64 {
	b := img.Bounds()
	if b.Dy() == 0 {
		return 1
	}
	return float64(b.Dx()) / float64(b.Dy())
}
