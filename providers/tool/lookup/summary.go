package lookup

import (
	"fmt"
	"strings"

	"github.com/agentrouter/agentrouter/providers/openweather"
)

// Summary is the normalized slice of the weather payload the rendering
// stages consume: every field is already formatted with its unit. It never
// reaches the caller directly — only rendered text does.
type Summary struct {
	Location   string
	Temp       string
	FeelsLike  string
	Conditions string
	Humidity   string
	WindSpeed  string
	Pressure   string
	Visibility string
}

// newSummary formats an observation for the given location. Optional fields
// the API omitted come out as "N/A" for the narrative prompt and are skipped
// by the template renderer.
func newSummary(obs *openweather.Observation, location string) Summary {
	s := Summary{
		Location:   location,
		Temp:       fmt.Sprintf("%.1f°C", obs.Main.Temp),
		FeelsLike:  fmt.Sprintf("%.1f°C", obs.Main.FeelsLike),
		Conditions: titleCase(obs.Description()),
		Humidity:   fmt.Sprintf("%d%%", obs.Main.Humidity),
		WindSpeed:  fmt.Sprintf("%g m/s", obs.Wind.Speed),
		Pressure:   "N/A",
		Visibility: "N/A",
	}
	if obs.Main.Pressure > 0 {
		s.Pressure = fmt.Sprintf("%d hPa", obs.Main.Pressure)
	}
	if obs.Visibility > 0 {
		s.Visibility = fmt.Sprintf("%.1f km", float64(obs.Visibility)/1000)
	}
	return s
}

// String renders the summary as the compact key/value block handed to the
// narrative prompt.
func (s Summary) String() string {
	return fmt.Sprintf(
		"location: %s, temperature: %s, feels_like: %s, conditions: %s, humidity: %s, wind_speed: %s, pressure: %s, visibility: %s",
		s.Location, s.Temp, s.FeelsLike, s.Conditions, s.Humidity, s.WindSpeed, s.Pressure, s.Visibility,
	)
}

// Render produces the deterministic multi-line report used when the
// narrative stage is unavailable. The user always receives the structured
// data, with or without external completion access.
func (s Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather in %s:\n", s.Location)
	fmt.Fprintf(&b, "Temperature: %s (feels like %s)\n", s.Temp, s.FeelsLike)
	fmt.Fprintf(&b, "Conditions: %s\n", s.Conditions)
	fmt.Fprintf(&b, "Humidity: %s\n", s.Humidity)
	if s.WindSpeed != "0 m/s" {
		fmt.Fprintf(&b, "Wind Speed: %s\n", s.WindSpeed)
	}
	if s.Pressure != "N/A" {
		fmt.Fprintf(&b, "Pressure: %s\n", s.Pressure)
	}
	if s.Visibility != "N/A" {
		fmt.Fprintf(&b, "Visibility: %s\n", s.Visibility)
	}
	return strings.TrimRight(b.String(), "\n")
}
