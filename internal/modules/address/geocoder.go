package address

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "vendor-portal/1.0"

// Geocoder searches street names within a city.
type Geocoder interface {
	SearchStreets(ctx context.Context, city, query string, limit int) ([]string, error)
}

// HTTPGeocoder queries a Nominatim-compatible search endpoint.
type HTTPGeocoder struct {
	baseURL string
	client  *http.Client
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road string `json:"road"`
	} `json:"address"`
}

// NewHTTPGeocoder creates a geocoder client with the given request timeout.
func NewHTTPGeocoder(baseURL string, timeout time.Duration) *HTTPGeocoder {
	return &HTTPGeocoder{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (g *HTTPGeocoder) SearchStreets(ctx context.Context, city, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("street", query)
	params.Set("city", city)
	params.Set("country", "Israel")
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("accept-language", "he")
	params.Set("limit", fmt.Sprint(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoder error (%d): %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	streets := make([]string, 0, len(results))
	for _, r := range results {
		name := r.Address.Road
		if name == "" {
			name, _, _ = strings.Cut(r.DisplayName, ",")
		}
		streets = append(streets, name)
	}
	return streets, nil
}
