package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Media holds the retrieved bytes of a resolved media URL. ContentLength is
// taken from the response header when present and numeric; otherwise it is
// the measured length of the body.
type Media struct {
	Bytes         []byte
	ContentType   string
	ContentLength int64
}

// FetchError reports a non-success upstream response.
type FetchError struct {
	Status int
	URL    string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// Fetcher downloads media from resolved, time-limited URLs.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Fetcher{httpClient: client}
}

// Fetch retrieves the full body at mediaURL.
func (f *Fetcher) Fetch(ctx context.Context, mediaURL string) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Status: resp.StatusCode, URL: mediaURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	length := int64(len(body))
	if header := resp.Header.Get("Content-Length"); header != "" {
		if parsed, err := strconv.ParseInt(header, 10, 64); err == nil && parsed > 0 {
			length = parsed
		}
	}

	return &Media{Bytes: body, ContentType: contentType, ContentLength: length}, nil
}
