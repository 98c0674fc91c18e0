// Package lookup implements the information-lookup tool: a four-stage
// pipeline that extracts a location from the query, fetches current weather
// data for it, and renders a conversational answer.
//
// Each stage degrades independently. A failed extraction falls back to a
// local heuristic and then to the configured default location; a failed
// narrative call falls back to a deterministic template over the fetched
// data. Only hard data-service failures (unknown city, rejected key) stop
// the pipeline, and each of those maps to its own user-facing message.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/agentrouter/agentrouter/core/parse"
	"github.com/agentrouter/agentrouter/providers/ai"
	"github.com/agentrouter/agentrouter/providers/openweather"
)

// ToolName is the category identifier for this tool.
const ToolName = "lookup"

// WeatherService is the slice of the data client this tool depends on.
type WeatherService interface {
	Current(ctx context.Context, city string) (*openweather.Observation, error)
}

const (
	extractMaxTokens   = 100
	narrativeMaxTokens = 200
	// narrativeTemperature is deliberately nonzero: the rendering stage
	// should read naturally, not identically every time.
	narrativeTemperature = 0.7
)

const extractSystemPrompt = `You are a location extraction assistant. Your job is to extract the location name from weather-related queries.

Extract the location and respond in JSON format:
{"location": "location_name"} or {"location": null}

Rules:
1. Extract only the location name (city, country, or region)
2. If no location is mentioned, return {"location": null}
3. Be specific - prefer city names over general regions when possible
4. Handle variations like "NYC" -> "New York City"
5. For country+city, prefer just the city: "Tokyo, Japan" -> "Tokyo"

Examples:
- "What's the weather in Paris?" -> {"location": "Paris"}
- "How's the weather in New York City today?" -> {"location": "New York City"}
- "Weather forecast for Tokyo, Japan" -> {"location": "Tokyo"}
- "Is it raining in London?" -> {"location": "London"}
- "What's the temperature?" -> {"location": null}`

const narrativeSystemPrompt = `You are a friendly weather assistant. Convert technical weather data into natural, conversational responses.

Guidelines:
1. Be conversational and human-like
2. Answer the user's specific question if possible
3. Include relevant details but don't overwhelm with data
4. Use friendly language and appropriate tone
5. Keep it concise but informative
6. Respond in JSON format: {"response": "your_natural_answer"}`

// Tool answers weather lookup queries.
type Tool struct {
	completer       ai.Completer
	weather         WeatherService
	defaultLocation string
	logger          *slog.Logger
}

// New creates the lookup tool. A nil weather service marks the data service
// as unconfigured: Execute then returns a stable configuration-error message
// instead of attempting a fetch. The logger may be nil.
func New(completer ai.Completer, weather WeatherService, defaultLocation string, logger *slog.Logger) *Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tool{
		completer:       completer,
		weather:         weather,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return ToolName }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "For weather information, forecasts, temperature, conditions"
}

// Execute runs the pipeline. It never returns an error: every outcome,
// including hard data-service failures, is phrased as answer text.
func (t *Tool) Execute(ctx context.Context, query string) (string, error) {
	if t.weather == nil {
		return "Weather service is not configured. Please set the OPENWEATHER_API_KEY environment variable.", nil
	}

	location := t.extractLocation(ctx, query)

	observation, err := t.weather.Current(ctx, location)
	if err != nil {
		switch {
		case errors.Is(err, openweather.ErrNotFound):
			return fmt.Sprintf("Sorry, I couldn't retrieve weather data for %s. Please check the location name and try again.", location), nil
		case errors.Is(err, openweather.ErrUnauthorized):
			return "Weather service is misconfigured: the API key was rejected. Please check the OPENWEATHER_API_KEY setting.", nil
		default:
			t.logger.WarnContext(ctx, "weather fetch failed",
				slog.String("location", location),
				slog.String("error", err.Error()),
			)
			return fmt.Sprintf("Sorry, the weather service is currently unavailable for %s. Please try again later.", location), nil
		}
	}

	summary := newSummary(observation, location)

	if narrative, ok := t.renderNarrative(ctx, query, summary); ok {
		return narrative, nil
	}

	// The narrative call itself failed; the user still gets the data.
	return summary.Render(), nil
}

/*
	STAGE 1 - LOCATION EXTRACTION
*/

type locationPayload struct {
	Location *string `json:"location"`
}

// extractLocation resolves the location to query: LLM extraction first, the
// local heuristic when the LLM is unavailable or returns something
// unparseable, the configured default when neither yields a name.
func (t *Tool) extractLocation(ctx context.Context, query string) string {
	content, err := t.completer.Complete(ctx, ai.Request{
		System:      extractSystemPrompt,
		User:        "Extract the location from this weather query: " + query,
		Temperature: 0,
		MaxTokens:   extractMaxTokens,
	})
	if err != nil {
		t.logger.WarnContext(ctx, "location extraction call failed", slog.String("error", err.Error()))
		return t.fallbackLocation(query)
	}

	payload, err := parse.StringAs[locationPayload](content)
	if err != nil {
		t.logger.WarnContext(ctx, "location extraction returned unparseable JSON",
			slog.String("content", content),
		)
		return t.fallbackLocation(query)
	}

	if payload.Location == nil {
		return t.defaultLocation
	}
	location := strings.TrimSpace(*payload.Location)
	if location == "" || strings.EqualFold(location, "null") || strings.EqualFold(location, "none") {
		return t.defaultLocation
	}
	return location
}

func (t *Tool) fallbackLocation(query string) string {
	if location := heuristicLocation(query); location != "" {
		return location
	}
	return t.defaultLocation
}

// stopWords are stripped from the query by the heuristic extractor. The list
// mirrors the phrasing of typical weather questions.
var stopWords = []string{
	"weather", "temperature", "forecast", "climate",
	"what's", "what is", "how's", "how is",
	"the", "in", "at", "for", "today", "tomorrow", "like",
}

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// heuristicLocation strips stop words and punctuation from the query and
// title-cases whatever remains. It is pure and needs no I/O, so the degraded
// extraction path is testable without any network.
func heuristicLocation(query string) string {
	cleaned := strings.ToLower(query)
	for _, word := range stopWords {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = nonWordRe.ReplaceAllString(cleaned, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return titleCase(cleaned)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

/*
	STAGE 3 - NARRATIVE RENDERING
*/

type narrativePayload struct {
	Response string `json:"response"`
}

// renderNarrative asks the completion service to phrase the summary as a
// conversational answer. The second return value reports whether the call
// succeeded; the stage tolerates a malformed envelope (raw text is accepted)
// but not a failed call.
func (t *Tool) renderNarrative(ctx context.Context, query string, summary Summary) (string, bool) {
	user := fmt.Sprintf("Original question: %q\nLocation: %s\nWeather data: %s\n\nPlease provide a natural, conversational response to the user's weather question.",
		query, summary.Location, summary.String())

	content, err := t.completer.Complete(ctx, ai.Request{
		System:      narrativeSystemPrompt,
		User:        user,
		Temperature: narrativeTemperature,
		MaxTokens:   narrativeMaxTokens,
	})
	if err != nil {
		t.logger.WarnContext(ctx, "narrative rendering failed, using template fallback",
			slog.String("location", summary.Location),
			slog.String("error", err.Error()),
		)
		return "", false
	}

	payload, err := parse.StringAs[narrativePayload](content)
	if err != nil || payload.Response == "" {
		// The call succeeded but the envelope didn't; raw text is fine.
		return content, true
	}
	return payload.Response, true
}
