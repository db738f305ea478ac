package usecase

import (
	"context"

	"weatherchat/internal/domain/entity"

	"github.com/rs/zerolog/log"
)

// Orchestrator sequences extraction, weather resolution and composition
// into the single produce-an-answer operation used by both delivery
// modes. It holds no per-request state and never retries; every failure
// surfaces as a coded result, not a panic.
type Orchestrator struct {
	extractor *PlaceExtractor
	resolver  *WeatherResolver
	composer  *AnswerComposer
}

func NewOrchestrator(extractor *PlaceExtractor, resolver *WeatherResolver, composer *AnswerComposer) *Orchestrator {
	return &Orchestrator{extractor: extractor, resolver: resolver, composer: composer}
}

// Run produces the answer for one user message.
func (o *Orchestrator) Run(ctx context.Context, userText string) *entity.ProcessResult {
	city, err := o.extractor.Extract(ctx, userText)
	if err != nil {
		return &entity.ProcessResult{
			ErrorCode: entity.CodeGenerationFailed,
			Stage:     "extraction",
			Details:   err.Error(),
		}
	}

	if city == "" {
		res, err := o.composer.ComposeWithoutCity(ctx, userText)
		if err != nil {
			return &entity.ProcessResult{
				ErrorCode: entity.CodeGenerationFailedNoCity,
				Stage:     "final",
				Details:   err.Error(),
			}
		}
		return res
	}

	log.Debug().Str("city", city).Msg("city extracted")

	facts, found, err := o.resolver.Resolve(ctx, city)
	if err != nil {
		return &entity.ProcessResult{
			ErrorCode: entity.CodeWeatherFetchFailed,
			Details:   err.Error(),
			City:      city,
		}
	}
	if !found {
		return &entity.ProcessResult{
			ErrorCode: entity.CodeCityNotFound,
			City:      city,
		}
	}

	res, err := o.composer.ComposeWithCity(ctx, userText, city, facts)
	if err != nil {
		return &entity.ProcessResult{
			ErrorCode: entity.CodeGenerationFailed,
			Stage:     "final",
			Details:   err.Error(),
			City:      city,
			Weather:   facts,
		}
	}
	return res
}
