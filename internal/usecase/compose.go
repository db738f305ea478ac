package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"weatherchat/internal/domain/entity"
	"weatherchat/internal/domain/repository"
)

// AnswerComposer builds the grounding prompt, calls the generation
// gateway, and decides whether the reply is structured or plain text.
type AnswerComposer struct {
	generator repository.TextGenerator
	enricher  *ImageEnricher
}

func NewAnswerComposer(generator repository.TextGenerator, enricher *ImageEnricher) *AnswerComposer {
	return &AnswerComposer{generator: generator, enricher: enricher}
}

// FormatFacts renders weather facts the way the grounding prompt expects.
func FormatFacts(facts *entity.WeatherFacts) string {
	return fmt.Sprintf("Condition: %s; Temp: %v°C; wind: %v m/s.", facts.Condition, facts.Temperature, facts.WindSpeed)
}

// ComposeWithoutCity asks for a general travel answer, disclosing that no
// location was detected.
func (c *AnswerComposer) ComposeWithoutCity(ctx context.Context, userText string) (*entity.ProcessResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: "You are a travel assistant. Use the user's prompt to produce a helpful travel-related response even without specific city/weather data."},
		{Role: entity.RoleUser, Content: fmt.Sprintf(
			"Original user prompt: %s\n\nNo city was detected in the user's message. Produce a helpful travel-oriented answer based only on the user's prompt. If the prompt asks for location-specific advice, explain you do not have a city and give general suggestions or ask for clarification.",
			userText)},
	}

	text, raw, err := c.generator.Complete(ctx, messages, entity.Sampling{MaxTokens: 600, Temperature: 0.7, TopP: 0.95})
	if err != nil {
		return nil, err
	}
	return &entity.ProcessResult{Answer: text, RawLLM: raw}, nil
}

// ComposeWithCity asks for an answer grounded in the weather facts, then
// branches on the reply shape: a JSON document with a non-empty sections
// list is enriched with images and returned structured; anything else is
// returned as plain text.
func (c *AnswerComposer) ComposeWithCity(ctx context.Context, userText, city string, facts *entity.WeatherFacts) (*entity.ProcessResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: "You are a travel assistant. Use the provided weather facts and the user's request to produce a helpful response."},
		{Role: entity.RoleUser, Content: fmt.Sprintf(
			"Original user prompt: %s\n\nWeather facts for %s: %s\n\nNow produce an answer that addresses the user's prompt, using the weather facts above. Be clear and useful.",
			userText, city, FormatFacts(facts))},
	}

	text, raw, err := c.generator.Complete(ctx, messages, entity.Sampling{MaxTokens: 900, Temperature: 0.7, TopP: 0.95})
	if err != nil {
		return nil, err
	}

	result := &entity.ProcessResult{City: city, Weather: facts, RawLLM: raw}

	var doc entity.StructuredAnswer
	if err := json.Unmarshal([]byte(text), &doc); err == nil && len(doc.Sections) > 0 {
		// Image failures degrade the answer, never the request.
		if c.enricher != nil {
			c.enricher.Enrich(ctx, &doc, city)
		}
		result.AnswerStructured = &doc
		return result, nil
	}

	result.Answer = text
	return result, nil
}
