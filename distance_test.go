package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriveDistances(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"origins":      r.URL.Query().Get("origins"),
			"destinations": r.URL.Query().Get("destinations"),
			"mode":         r.URL.Query().Get("mode"),
			"units":        r.URL.Query().Get("units"),
			"key":          r.URL.Query().Get("key"),
		}

		fmt.Fprint(w, `{
			"status": "OK",
			"rows": [
				{"elements": [{"status": "OK", "distance": {"value": 10000}}]},
				{"elements": [{"status": "OK", "distance": {"value": 42250}}]}
			]
		}`)
	}))
	defer server.Close()

	client := NewDistanceClient(server.URL, "test-key")

	origins := []Coordinates{{Lat: 14.5995, Lng: 120.9842}, {Lat: 14.5547, Lng: 121.0244}}
	distances, err := client.DriveDistances(context.Background(), origins, Coordinates{Lat: 14.6091, Lng: 121.0223})

	require.NoError(t, err)
	assert.Equal(t, []float64{10, 42.25}, distances)

	assert.Equal(t, "driving", gotQuery["mode"])
	assert.Equal(t, "metric", gotQuery["units"])
	assert.Equal(t, "test-key", gotQuery["key"])
	assert.Contains(t, gotQuery["origins"], "|")
	assert.NotEmpty(t, gotQuery["destinations"])
}

func TestDriveDistancesElementError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"status": "OK",
			"rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]
		}`)
	}))
	defer server.Close()

	client := NewDistanceClient(server.URL, "test-key")

	_, err := client.DriveDistances(context.Background(), []Coordinates{{Lat: 1, Lng: 2}}, Coordinates{Lat: 3, Lng: 4})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZERO_RESULTS")
}

func TestDriveDistancesServiceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewDistanceClient(server.URL, "test-key")

	_, err := client.DriveDistances(context.Background(), []Coordinates{{Lat: 1, Lng: 2}}, Coordinates{Lat: 3, Lng: 4})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestDriveDistancesRowMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "rows": []}`)
	}))
	defer server.Close()

	client := NewDistanceClient(server.URL, "test-key")

	_, err := client.DriveDistances(context.Background(), []Coordinates{{Lat: 1, Lng: 2}}, Coordinates{Lat: 3, Lng: 4})

	require.Error(t, err)
}
