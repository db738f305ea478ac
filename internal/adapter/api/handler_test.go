package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"weatherchat/internal/domain/entity"
	"weatherchat/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type scriptedGenerator struct {
	replies []string
	calls   int
}

func (s *scriptedGenerator) Complete(_ context.Context, _ []entity.Message, _ entity.Sampling) (string, json.RawMessage, error) {
	s.calls++
	if s.calls > len(s.replies) {
		return "", nil, fmt.Errorf("unexpected generation call %d", s.calls)
	}
	return s.replies[s.calls-1], json.RawMessage(`{}`), nil
}

type stubGeocoder struct{ place *entity.GeoPlace }

func (s *stubGeocoder) Geocode(_ context.Context, _ string) (*entity.GeoPlace, error) {
	return s.place, nil
}

type stubWeather struct{ current *entity.CurrentWeather }

func (s *stubWeather) CurrentWeather(_ context.Context, _, _ float64) (*entity.CurrentWeather, error) {
	return s.current, nil
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (*entity.Transcript, error) {
	return &entity.Transcript{Text: "hello"}, nil
}

func newTestApp(gen *scriptedGenerator, geo *stubGeocoder, weather *stubWeather) *fiber.App {
	composer := usecase.NewAnswerComposer(gen, nil)
	orch := usecase.NewOrchestrator(
		usecase.NewPlaceExtractor(gen),
		usecase.NewWeatherResolver(geo, weather),
		composer,
	)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	handler := NewChatHandler(orch, usecase.NewStreamer(0), stubTranscriber{}, usecase.NewAuthService(nil, nil, time.Hour), time.Hour)
	SetupRouter(app, handler)
	return app
}

func postJSON(app *fiber.App, path, body string) (int, map[string]any, error) {
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		return 0, nil, err
	}
	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload, nil
}

func TestHandleProcess_EmptyUserText(t *testing.T) {
	gen := &scriptedGenerator{} // any generation call would error out
	app := newTestApp(gen, &stubGeocoder{}, &stubWeather{})

	status, payload, err := postJSON(app, "/api/process", `{"userText":"   "}`)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if payload["error"] != entity.CodeUserTextRequired {
		t.Errorf("error = %v, want %q", payload["error"], entity.CodeUserTextRequired)
	}
	if gen.calls != 0 {
		t.Errorf("no outbound calls may be made for an empty userText, got %d", gen.calls)
	}
}

func TestHandleProcess_Success(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Lisbon", "Light layers."}}
	geo := &stubGeocoder{place: &entity.GeoPlace{Latitude: 38.7, Longitude: -9.1}}
	weather := &stubWeather{current: &entity.CurrentWeather{Code: 0, Temperature: 22, WindSpeed: 3}}
	app := newTestApp(gen, geo, weather)

	status, payload, err := postJSON(app, "/api/process", `{"userText":"What should I wear in Lisbon tomorrow?"}`)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (payload %v)", status, payload)
	}
	if payload["city"] != "Lisbon" || payload["answer"] != "Light layers." {
		t.Errorf("payload = %v", payload)
	}
}

func TestHandleProcess_CityNotFoundIs200(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Nowhereville"}}
	app := newTestApp(gen, &stubGeocoder{}, &stubWeather{})

	status, payload, err := postJSON(app, "/api/process", `{"userText":"weather in Nowhereville"}`)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if status != fiber.StatusOK {
		t.Errorf("status = %d; a gazetteer miss is data, not a server error", status)
	}
	if payload["error"] != entity.CodeCityNotFound || payload["city"] != "Nowhereville" {
		t.Errorf("payload = %v", payload)
	}
}

func TestHandleProcess_GenerationFailureIs500(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{}} // extraction call fails
	app := newTestApp(gen, &stubGeocoder{}, &stubWeather{})

	status, payload, err := postJSON(app, "/api/process", `{"userText":"Kyoto?"}`)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if status != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if payload["error"] != entity.CodeGenerationFailed {
		t.Errorf("payload = %v", payload)
	}
}

func TestHandleStreamProcess_Frames(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Lisbon", "Sunny today. Pack light."}}
	geo := &stubGeocoder{place: &entity.GeoPlace{Latitude: 38.7, Longitude: -9.1}}
	weather := &stubWeather{current: &entity.CurrentWeather{Code: 0, Temperature: 22, WindSpeed: 3}}
	app := newTestApp(gen, geo, weather)

	req := httptest.NewRequest(fiber.MethodPost, "/api/stream_process", strings.NewReader(`{"userText":"weather in Lisbon"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content-type = %q", ct)
	}

	var events []entity.StreamEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev entity.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		events = append(events, ev)
	}

	if len(events) < 3 {
		t.Fatalf("got %d events, want meta + chunks + done", len(events))
	}
	if events[0].Type != entity.EventMeta || events[0].City != "Lisbon" {
		t.Errorf("meta = %+v", events[0])
	}
	if events[len(events)-1].Type != entity.EventDone {
		t.Errorf("last = %+v", events[len(events)-1])
	}

	var joined strings.Builder
	for _, ev := range events {
		if ev.Type == entity.EventChunk {
			joined.WriteString(ev.Text)
		}
	}
	if joined.String() != "Sunny today. Pack light." {
		t.Errorf("joined chunks = %q", joined.String())
	}
}

func TestHandleStreamProcess_ErrorFrame(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{}} // extraction fails immediately
	app := newTestApp(gen, &stubGeocoder{}, &stubWeather{})

	req := httptest.NewRequest(fiber.MethodPost, "/api/stream_process", strings.NewReader(`{"userText":"Kyoto?"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	var frames []entity.StreamEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			var ev entity.StreamEvent
			_ = json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev)
			frames = append(frames, ev)
		}
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want exactly one error frame", len(frames))
	}
	if frames[0].Err == nil || frames[0].Err.ErrorCode != entity.CodeGenerationFailed {
		t.Errorf("frame = %+v", frames[0])
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&scriptedGenerator{}, &stubGeocoder{}, &stubWeather{})
	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
