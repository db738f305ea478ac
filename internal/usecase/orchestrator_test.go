package usecase

import (
	"context"
	"strings"
	"testing"

	"weatherchat/internal/domain/entity"
)

func newTestOrchestrator(gen *fakeGenerator, geo *fakeGeocoder, weather *fakeWeather) *Orchestrator {
	composer := NewAnswerComposer(gen, nil)
	return NewOrchestrator(
		NewPlaceExtractor(gen),
		NewWeatherResolver(geo, weather),
		composer,
	)
}

func TestRun_LisbonEndToEnd(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Lisbon", "Light layers and sunglasses."}}
	geo := &fakeGeocoder{place: &entity.GeoPlace{Latitude: 38.7, Longitude: -9.1}}
	weather := &fakeWeather{current: &entity.CurrentWeather{Code: 0, Temperature: 22, WindSpeed: 3}}

	res := newTestOrchestrator(gen, geo, weather).Run(context.Background(), "What should I wear in Lisbon tomorrow?")

	if res.Failed() {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.City != "Lisbon" {
		t.Errorf("city = %q, want Lisbon", res.City)
	}
	if res.Weather == nil || res.Weather.Condition != ConditionSunny {
		t.Errorf("weather = %+v, want sunny", res.Weather)
	}
	if res.Answer != "Light layers and sunglasses." {
		t.Errorf("answer = %q", res.Answer)
	}

	// The composer prompt must embed the formatted facts.
	if len(gen.calls) != 2 {
		t.Fatalf("generation calls = %d, want 2 (extract + compose)", len(gen.calls))
	}
	finalPrompt := gen.calls[1][1].Content
	if !strings.Contains(finalPrompt, "Condition: sunny; Temp: 22°C; wind: 3 m/s.") {
		t.Errorf("composer prompt missing facts: %q", finalPrompt)
	}
}

func TestRun_NoCityComposesWithoutFacts(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"NONE", "General packing advice."}}
	geo := &fakeGeocoder{}
	weather := &fakeWeather{}

	res := newTestOrchestrator(gen, geo, weather).Run(context.Background(), "what should I pack for a beach trip?")

	if res.Failed() {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.City != "" || res.Weather != nil {
		t.Errorf("no-city success must not carry city/weather: %+v", res)
	}
	if res.Answer != "General packing advice." {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(geo.names) != 0 {
		t.Errorf("geocoder must not be called when no city was extracted: %v", geo.names)
	}
}

func TestRun_CityNotFoundSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Nowhereville"}}
	geo := &fakeGeocoder{} // gazetteer miss
	weather := &fakeWeather{}

	res := newTestOrchestrator(gen, geo, weather).Run(context.Background(), "weather in Nowhereville?")

	if res.ErrorCode != entity.CodeCityNotFound {
		t.Fatalf("error = %q, want %q", res.ErrorCode, entity.CodeCityNotFound)
	}
	if res.City != "Nowhereville" {
		t.Errorf("result should carry the attempted city, got %q", res.City)
	}
	if len(gen.calls) != 1 {
		t.Errorf("generation calls = %d; a geocoding miss must never reach the composer", len(gen.calls))
	}
}

func TestRun_ExtractionFailure(t *testing.T) {
	gen := &fakeGenerator{err: &entity.LLMError{Kind: entity.LLMNotConfigured, Detail: "OPENROUTER_API_KEY not set"}}

	res := newTestOrchestrator(gen, &fakeGeocoder{}, &fakeWeather{}).Run(context.Background(), "Kyoto?")

	if res.ErrorCode != entity.CodeGenerationFailed {
		t.Fatalf("error = %q, want %q", res.ErrorCode, entity.CodeGenerationFailed)
	}
	if res.Stage != "extraction" {
		t.Errorf("stage = %q, want extraction", res.Stage)
	}
}

func TestRun_WeatherFetchFailure(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Oslo"}}
	geo := &fakeGeocoder{place: &entity.GeoPlace{Latitude: 59.9, Longitude: 10.7}}
	weather := &fakeWeather{err: context.DeadlineExceeded}

	res := newTestOrchestrator(gen, geo, weather).Run(context.Background(), "weather in Oslo")

	if res.ErrorCode != entity.CodeWeatherFetchFailed {
		t.Fatalf("error = %q, want %q", res.ErrorCode, entity.CodeWeatherFetchFailed)
	}
	if len(gen.calls) != 1 {
		t.Errorf("a weather failure must not reach the composer")
	}
}

func TestRun_NoCityGenerationFailureUsesNoCityCode(t *testing.T) {
	// Extraction succeeds with NONE, then the final generation fails.
	gen := &fakeGenerator{replies: []string{"NONE"}}

	res := newTestOrchestrator(gen, &fakeGeocoder{}, &fakeWeather{}).Run(context.Background(), "hello")

	if res.ErrorCode != entity.CodeGenerationFailedNoCity {
		t.Fatalf("error = %q, want %q", res.ErrorCode, entity.CodeGenerationFailedNoCity)
	}
}
