package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Client resolves free-form location strings to coordinates using a
// Nominatim-compatible search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Lat  string `json:"lat"`
	Lon  string `json:"lon"`
	Type string `json:"type"`
}

// Locate returns the best match for a place name, preferring settlement-level
// results over streets and POIs.
func (c *Client) Locate(ctx context.Context, place string) (*Coordinates, error) {
	u := fmt.Sprintf("%s/search?format=json&q=%s", c.baseURL, url.QueryEscape(place))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "carpool-service")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no results for %q", place)
	}

	chosen := results[0]
	for _, r := range results {
		switch r.Type {
		case "city", "town", "village", "suburb", "locality":
			chosen = r
		default:
			continue
		}
		break
	}

	lat, err := strconv.ParseFloat(chosen.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q: %w", chosen.Lat, err)
	}
	lon, err := strconv.ParseFloat(chosen.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q: %w", chosen.Lon, err)
	}
	return &Coordinates{Lat: lat, Lon: lon}, nil
}

const earthRadiusKM = 6371.0

// Distance returns the great-circle distance between two points in kilometers.
func Distance(a, b Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
