package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"weatherchat/internal/domain/entity"
	"weatherchat/internal/domain/repository"
)

// placePattern keeps the longest run of letters, spaces and hyphens,
// covering Latin-extended, Hiragana/Katakana and CJK ranges. Anything
// else the model wrapped around the name is discarded.
var placePattern = regexp.MustCompile(`[A-Za-z\x{00C0}-\x{017F}\x{3040}-\x{30FF}\x{4E00}-\x{9FFF} \-]+`)

// PlaceExtractor pulls a single place name out of free text using a
// constrained, deterministic generation prompt.
type PlaceExtractor struct {
	generator repository.TextGenerator
}

func NewPlaceExtractor(generator repository.TextGenerator) *PlaceExtractor {
	return &PlaceExtractor{generator: generator}
}

// Extract returns the sanitized place name, or "" when the model saw no
// place in the text. A gateway failure is returned as an error for the
// orchestrator to report as an extraction-stage generation failure.
func (e *PlaceExtractor) Extract(ctx context.Context, userText string) (string, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: "You are a parser. From the user's message, extract the name of the city mentioned. If no city is present, respond with NONE."},
		{Role: entity.RoleUser, Content: fmt.Sprintf("User message: %s\n\nRespond with only the city name (single word or multi-word), or NONE if no city is found.", userText)},
	}

	text, _, err := e.generator.Complete(ctx, messages, entity.Sampling{MaxTokens: 40, Temperature: 0, TopP: 0.95})
	if err != nil {
		return "", err
	}
	return sanitizePlace(text), nil
}

// sanitizePlace normalizes a raw model reply into a bare place name.
func sanitizePlace(text string) string {
	city := strings.TrimSpace(text)
	city = strings.Trim(city, `"'`)
	if city == "" || strings.EqualFold(city, "NONE") {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(city), "city:") {
		city = strings.TrimSpace(city[len("city:"):])
	}
	if m := longestRun(city); m != "" {
		city = strings.TrimSpace(m)
	}
	return city
}

func longestRun(s string) string {
	var best string
	for _, m := range placePattern.FindAllString(s, -1) {
		if len(m) > len(best) {
			best = m
		}
	}
	return best
}
