// Package remote implements a photo catalog served by a remote photo service
// over HTTP. Queries are bounded by the client timeout and degrade to
// ErrCatalogUnavailable rather than blocking the caller.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/pkg/core"
)

// photoDTO is the wire form of a photo record.
type photoDTO struct {
	ID        string   `json:"id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Direction *float64 `json:"direction,omitempty"`
	Thumbnail string   `json:"thumbnail"`
	TakenAt   string   `json:"takenAt,omitempty"`
}

// Client queries a remote photo service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a remote catalog client. The timeout bounds every query; the
// UI thread must never wait longer than this for thumbnails.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Healthcheck checks if the photo service is reachable.
func (c *Client) Healthcheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Query fetches all records inside the region from the photo service.
func (c *Client) Query(ctx context.Context, region core.Region) ([]core.PhotoRecord, error) {
	q := url.Values{}
	q.Set("minLat", strconv.FormatFloat(region.MinLat, 'f', -1, 64))
	q.Set("maxLat", strconv.FormatFloat(region.MaxLat, 'f', -1, 64))
	q.Set("minLon", strconv.FormatFloat(region.MinLon, 'f', -1, 64))
	q.Set("maxLon", strconv.FormatFloat(region.MaxLon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: photo service returned status %d", catalog.ErrCatalogUnavailable, resp.StatusCode)
	}

	var dtos []photoDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", catalog.ErrCatalogUnavailable, err)
	}

	records := make([]core.PhotoRecord, 0, len(dtos))
	for _, d := range dtos {
		rec := core.PhotoRecord{
			ID:        d.ID,
			Location:  core.GeoPoint{Lat: d.Latitude, Lon: d.Longitude},
			Direction: d.Direction,
			Thumbnail: d.Thumbnail,
		}
		if d.TakenAt != "" {
			if ts, err := time.Parse(time.RFC3339, d.TakenAt); err == nil {
				rec.TakenAt = ts
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
