package entity

import (
	"encoding/json"
	"strings"
)

// ChatRequest is the inbound payload for both the blocking and streaming
// process endpoints.
type ChatRequest struct {
	UserText string `json:"userText"`
}

// Message roles accepted by the chat-completions collaborator.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sampling bundles the generation parameters forwarded to the model.
type Sampling struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// GeoPlace is a single geocoding match. At most one candidate is kept.
type GeoPlace struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentWeather is the raw current-conditions reading for a coordinate.
type CurrentWeather struct {
	Code        int     `json:"weathercode"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
}

// WeatherFacts is the classified form handed to the answer composer.
type WeatherFacts struct {
	Condition   string  `json:"condition"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
}

// Image is a normalized image-search result attached to one item.
type Image struct {
	Thumbnail   string `json:"thumbnail,omitempty"`
	URL         string `json:"url,omitempty"`
	SourcePage  string `json:"source_page,omitempty"`
	Attribution string `json:"attribution,omitempty"`
}

// StructuredAnswer is the document shape the model may return instead of
// prose. It is accepted as structured only when Sections is non-empty.
type StructuredAnswer struct {
	Sections []Section `json:"sections"`
}

type Section struct {
	Title string `json:"title,omitempty"`
	Items []Item `json:"items"`
}

// Item carries one of several candidate label fields; the first non-empty
// of Title, Name, Place, Text is used when searching for an image.
type Item struct {
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
	Place string `json:"place,omitempty"`
	Text  string `json:"text,omitempty"`
	Image *Image `json:"image,omitempty"`
}

// Label returns the search label for the item, or "" when no candidate
// field holds a usable value.
func (it *Item) Label() string {
	for _, v := range []string{it.Title, it.Name, it.Place, it.Text} {
		if s := strings.TrimSpace(v); len(s) > 1 {
			return s
		}
	}
	return ""
}

// Pipeline error codes surfaced to callers.
const (
	CodeUserTextRequired       = "userText_required"
	CodeCityNotFound           = "city_not_found_in_geocoding"
	CodeWeatherFetchFailed     = "weather_fetch_failed"
	CodeGenerationFailed       = "generation_failed"
	CodeGenerationFailedNoCity = "generation_failed_no_city"
	CodeInternalException      = "internal_exception"
)

// ProcessResult is the outcome of one pipeline run. A non-empty ErrorCode
// marks a terminal non-success outcome; city_not_found_in_geocoding is
// reported as data rather than a server error.
type ProcessResult struct {
	ErrorCode string `json:"error,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Details   string `json:"details,omitempty"`

	City             string            `json:"city,omitempty"`
	Weather          *WeatherFacts     `json:"weather,omitempty"`
	Answer           string            `json:"answer,omitempty"`
	AnswerStructured *StructuredAnswer `json:"answer_structured,omitempty"`
	RawLLM           json.RawMessage   `json:"raw_llm,omitempty"`
}

// Failed reports whether the result carries an error code.
func (r *ProcessResult) Failed() bool { return r.ErrorCode != "" }

// Stream event types emitted by the chunk streamer.
const (
	EventMeta  = "meta"
	EventChunk = "chunk"
	EventDone  = "done"
)

// StreamEvent is one framed unit of a streamed answer. A Type-less event
// with Err set is the single error frame for a failed pipeline run.
type StreamEvent struct {
	Type    string         `json:"type,omitempty"`
	City    string         `json:"city,omitempty"`
	Weather *WeatherFacts  `json:"weather,omitempty"`
	Index   *int           `json:"index,omitempty"`
	Text    string         `json:"text,omitempty"`
	Err     *ProcessResult `json:"error,omitempty"`
}

// Transcript is the normalized output of the transcription collaborator.
type Transcript struct {
	Text     string          `json:"text"`
	Language string          `json:"language,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}
