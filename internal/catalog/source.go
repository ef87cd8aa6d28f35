package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FileSource reads the catalog from a JSON document on disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading from path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Places opens and decodes the catalog file.
func (fs *FileSource) Places(_ context.Context) ([]models.Place, error) {
	file, err := os.Open(fs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// HTTPSource fetches the catalog JSON document over HTTP.
type HTTPSource struct {
	client HTTPClient
	url    string
}

// NewHTTPSource creates a source fetching url with the given timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return NewHTTPSourceWithClient(&http.Client{Timeout: timeout}, url)
}

// NewHTTPSourceWithClient allows injecting a custom HTTP client.
func NewHTTPSourceWithClient(client HTTPClient, url string) *HTTPSource {
	return &HTTPSource{client: client, url: url}
}

// Places fetches and decodes the catalog document.
func (hs *HTTPSource) Places(ctx context.Context) ([]models.Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hs.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog server returned status %d: %s", resp.StatusCode, string(body))
	}

	return Decode(resp.Body)
}
