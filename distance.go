package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DistanceService resolves driving distances from each origin to a single
// destination, in kilometers, preserving origin order.
type DistanceService interface {
	DriveDistances(ctx context.Context, origins []Coordinates, destination Coordinates) ([]float64, error)
}

type distanceClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewDistanceClient(baseURL string, apiKey string) DistanceService {
	return &distanceClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Wire format of the distance matrix provider: one row per origin, one
// element per destination, distances in meters.
type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

func (c *distanceClient) DriveDistances(ctx context.Context, origins []Coordinates, destination Coordinates) ([]float64, error) {
	originParts := make([]string, 0, len(origins))
	for _, origin := range origins {
		originParts = append(originParts, fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	}

	query := url.Values{}
	query.Set("origins", strings.Join(originParts, "|"))
	query.Set("destinations", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	query.Set("mode", "driving")
	query.Set("units", "metric")
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance service returned %d", resp.StatusCode)
	}

	var matrix distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&matrix); err != nil {
		return nil, err
	}

	if matrix.Status != "OK" {
		return nil, fmt.Errorf("distance service status %s", matrix.Status)
	}

	if len(matrix.Rows) != len(origins) {
		return nil, fmt.Errorf("distance service returned %d rows for %d origins", len(matrix.Rows), len(origins))
	}

	distances := make([]float64, len(origins))
	for i, row := range matrix.Rows {
		if len(row.Elements) == 0 {
			return nil, fmt.Errorf("distance service returned no element for origin %d", i)
		}

		element := row.Elements[0]
		if element.Status != "OK" {
			return nil, fmt.Errorf("distance service element status %s for origin %d", element.Status, i)
		}

		distances[i] = float64(element.Distance.Value) / 1000
	}

	return distances, nil
}
