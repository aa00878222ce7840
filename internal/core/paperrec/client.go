package paperrec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxPDFBytes caps a single paper download.
const maxPDFBytes = 64 << 20

// Neighbor is one similar paper. The first neighbour of a search is the
// query paper itself.
type Neighbor struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

type Metadata struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	LinkPDF  string `json:"link_pdf"`
}

// Client talks to the paper recommendation service and downloads PDFs.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a client; an empty baseURL disables Search.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

// Enabled reports whether a recommendation service is configured.
func (c *Client) Enabled() bool { return c.baseURL != "" }

// Search asks for the k nearest papers to url.
func (c *Client) Search(ctx context.Context, url string, k int) ([]Neighbor, error) {
	if !c.Enabled() {
		return nil, nil
	}
	body, _ := json.Marshal(map[string]any{"url": url, "k": k})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paperrec search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paperrec search failed: %s", resp.Status)
	}

	var out struct {
		Neighbors []Neighbor `json:"neighbors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("paperrec search: decode: %w", err)
	}
	return out.Neighbors, nil
}

// Download fetches a PDF.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download %s failed: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if len(data) > maxPDFBytes {
		return nil, fmt.Errorf("download %s: larger than %d bytes", url, maxPDFBytes)
	}
	return data, nil
}
