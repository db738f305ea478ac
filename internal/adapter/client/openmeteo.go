package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weatherchat/internal/domain/entity"
)

// OpenMeteoClient covers both Open-Meteo endpoints the pipeline needs:
// geocoding search and the current-weather forecast.
type OpenMeteoClient struct {
	geocodingURL string
	forecastURL  string
	client       *http.Client
}

func NewOpenMeteoClient(geocodingURL, forecastURL string, timeout time.Duration) *OpenMeteoClient {
	return &OpenMeteoClient{
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		client:       &http.Client{Timeout: timeout},
	}
}

type geocodeResponse struct {
	Results []entity.GeoPlace `json:"results"`
}

// Geocode returns the first match for name, or (nil, nil) when the
// gazetteer has no entry for it.
func (c *OpenMeteoClient) Geocode(ctx context.Context, name string) (*entity.GeoPlace, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "1")

	body, err := c.get(ctx, c.geocodingURL, q)
	if err != nil {
		return nil, err
	}

	var parsed geocodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("geocoding response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, nil
	}
	return &parsed.Results[0], nil
}

type forecastResponse struct {
	CurrentWeather struct {
		WeatherCode json.Number `json:"weathercode"`
		Temperature json.Number `json:"temperature"`
		WindSpeed   json.Number `json:"windspeed"`
	} `json:"current_weather"`
}

// CurrentWeather fetches current conditions for a coordinate. Missing or
// non-numeric wind speed decodes to zero.
func (c *OpenMeteoClient) CurrentWeather(ctx context.Context, lat, lon float64) (*entity.CurrentWeather, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	q.Set("timezone", "auto")

	body, err := c.get(ctx, c.forecastURL, q)
	if err != nil {
		return nil, err
	}

	var parsed forecastResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("forecast response: %w", err)
	}

	cur := parsed.CurrentWeather
	code, err := strconv.Atoi(cur.WeatherCode.String())
	if err != nil {
		return nil, fmt.Errorf("forecast response: bad weathercode %q", cur.WeatherCode.String())
	}
	temp, _ := cur.Temperature.Float64()
	wind, _ := cur.WindSpeed.Float64()

	return &entity.CurrentWeather{Code: code, Temperature: temp, WindSpeed: wind}, nil
}

func (c *OpenMeteoClient) get(ctx context.Context, base string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
