// internal/update/http.go
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPChecker polls a JSON release manifest:
//
//	{"version": "1.4.0", "downloadUrl": "https://...", "sha256": "..."}
type HTTPChecker struct {
	URL     string
	Current string
	HTTP    *http.Client
}

func NewHTTPChecker(url, current string) *HTTPChecker {
	return &HTTPChecker{URL: url, Current: current, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

// Check returns a descriptor when the manifest version differs from Current.
func (c *HTTPChecker) Check(ctx context.Context) (*Descriptor, error) {
	if c.HTTP == nil {
		c.HTTP = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update: check: %w", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	default:
		return nil, fmt.Errorf("update: check: %s", resp.Status)
	}

	var raw struct {
		Version string `json:"version"`
		URL     string `json:"downloadUrl"`
		SHA256  string `json:"sha256"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("update: decode manifest: %w", err)
	}
	if raw.Version == "" {
		return nil, errors.New("update: manifest has no version")
	}
	if raw.Version == c.Current {
		return nil, nil
	}
	return &Descriptor{Version: raw.Version, URL: raw.URL, SHA256: raw.SHA256}, nil
}
