// Package openweather is a minimal client for the OpenWeather current
// weather endpoint, the structured data service behind the lookup tool.
// One call, no retries; the distinguishable failure classes are sentinel
// errors so the caller can map each to its own user-facing message.
package openweather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/agentrouter/agentrouter/internal/utils"
)

var (
	// ErrNotFound means the service does not know the requested city.
	ErrNotFound = errors.New("city not found")
	// ErrUnauthorized means the API key is missing, invalid or not yet active.
	ErrUnauthorized = errors.New("weather API key rejected")
)

// Client queries an OpenWeather-compatible API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a Client for the given API root (e.g.
// "https://api.openweathermap.org/data/2.5") and key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

// WithHTTPClient sets a custom HTTP client.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.client = client
	return c
}

// Observation is the subset of the current-weather payload the service
// consumes. Optional fields keep their zero value when the API omits them.
type Observation struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	// Visibility is in metres; 0 means not reported.
	Visibility int    `json:"visibility"`
	Name       string `json:"name"`
}

// Description returns the first weather condition description, or "".
func (o *Observation) Description() string {
	if len(o.Weather) == 0 {
		return ""
	}
	return o.Weather[0].Description
}

// Current fetches the current weather for the named city in metric units.
// Error classes: [ErrNotFound] for an unknown city, [ErrUnauthorized] for a
// rejected key, and a generic error for anything else. Exactly one request is
// made per call.
func (c *Client) Current(ctx context.Context, city string) (*Observation, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	res, observation, err := utils.DoGetJSON[Observation](ctx, c.client, c.baseURL+"/weather", params)
	if err != nil {
		if res != nil {
			switch res.StatusCode {
			case http.StatusNotFound:
				return nil, fmt.Errorf("%w: %q", ErrNotFound, city)
			case http.StatusUnauthorized:
				return nil, ErrUnauthorized
			}
		}
		return nil, fmt.Errorf("fetching weather for %q: %w", city, err)
	}

	return observation, nil
}
