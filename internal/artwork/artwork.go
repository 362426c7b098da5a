package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"io"
	"net/http"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // YouTube serves some thumbnails as WebP
)

// DefaultMaxSize bounds the longest edge of embedded cover art.
const DefaultMaxSize = 1000

// maxDownload caps how much of a thumbnail response is read.
const maxDownload = 20 << 20

// Fetcher downloads cover art and prepares it for embedding.
type Fetcher struct {
	httpClient *http.Client
	maxSize    int
}

// NewFetcher creates a Fetcher. If maxSize is 0, DefaultMaxSize is used.
func NewFetcher(maxSize int) *Fetcher {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxSize:    maxSize,
	}
}

// Fetch downloads the image at url and returns it as JPEG no larger than the
// configured size.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create artwork request: %w", err)
	}
	req.Header.Set("User-Agent", "tubetag/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("artwork download returned no data")
	}

	return Normalize(data, f.maxSize)
}

// Normalize decodes a JPEG, PNG or WebP image, scales it to fit within
// maxSize x maxSize keeping the aspect ratio, and re-encodes it as JPEG.
func Normalize(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxSize)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode artwork: %w", err)
	}
	return buf.Bytes(), nil
}

// fit shrinks width x height to fit a maxSize square. Smaller images are left as is.
func fit(width, height, maxSize int) (int, int) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return width, height
	}
	if width >= height {
		h := height * maxSize / width
		return maxSize, max(h, 1)
	}
	w := width * maxSize / height
	return max(w, 1), maxSize
}
