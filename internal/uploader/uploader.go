// Package uploader is the HTTP client for the blob-storage upload backend.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client uploads blobs with a previously issued token and reports transfer
// progress as a monotonically non-decreasing 0-100 percentage.
type Client struct {
	endpoint string
	http     *http.Client
}

// New constructs a Client for the given upload endpoint.
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload transfers data to the backend under the destination key and returns
// the durable object key. onProgress, when non-nil, observes the transfer as
// it streams.
func (c *Client) Upload(ctx context.Context, token, key string, data []byte, onProgress func(percent int)) (string, error) {
	body := &progressReader{
		r:          bytes.NewReader(data),
		total:      len(data),
		onProgress: onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint+"/"+key, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "UpToken "+token)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload %s: unexpected status %d", key, resp.StatusCode)
	}

	var result struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Key == "" {
		// backends that return an empty body store under the requested key
		return key, nil
	}
	return result.Key, nil
}

// progressReader reports cumulative transfer progress as the request body is
// consumed. Percent only ever moves forward.
type progressReader struct {
	r          io.Reader
	total      int
	sent       int
	last       int
	onProgress func(percent int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.sent += n
	if p.onProgress != nil && p.total > 0 {
		percent := p.sent * 100 / p.total
		if percent > p.last {
			p.last = percent
			p.onProgress(percent)
		}
	}
	return n, err
}
