package geo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const nominatimBase = "https://nominatim.openstreetmap.org"

// Nominatim's usage policy requires an identifying User-Agent.
const userAgent = "appraisal-backend/1.0"

var httpClient = &http.Client{Timeout: 10 * time.Second}

type GeocodeResult struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name"`
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// GeocodeAddress resolves a free-form address to coordinates.
func GeocodeAddress(address string) (*GeocodeResult, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", nominatimBase, url.QueryEscape(address))

	var places []nominatimPlace
	if err := getJSON(endpoint, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("no results for %q", address)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon: %w", err)
	}

	return &GeocodeResult{Lat: lat, Lng: lng, DisplayName: places[0].DisplayName}, nil
}

// ReverseGeocode resolves coordinates to a display address.
func ReverseGeocode(lat, lng float64) (string, error) {
	endpoint := fmt.Sprintf("%s/reverse?lat=%f&lon=%f&format=json", nominatimBase, lat, lng)

	var place nominatimPlace
	if err := getJSON(endpoint, &place); err != nil {
		return "", err
	}
	if place.DisplayName == "" {
		return "", fmt.Errorf("no address found for %f, %f", lat, lng)
	}
	return place.DisplayName, nil
}

func getJSON(endpoint string, out any) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding service returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
