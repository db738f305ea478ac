package usecase

import (
	"context"
	"strings"

	"weatherchat/internal/domain/entity"
	"weatherchat/internal/domain/repository"

	"github.com/rs/zerolog/log"
)

// ImageEnricher attaches a representative image to each item of a
// structured answer, backed by a shared durable cache so a given
// (label, context) pair hits the search provider at most once.
type ImageEnricher struct {
	cache  repository.ImageCache
	images repository.ImageSearcher
}

func NewImageEnricher(cache repository.ImageCache, images repository.ImageSearcher) *ImageEnricher {
	return &ImageEnricher{cache: cache, images: images}
}

// CacheKey derives the cache key for a label within a context.
func CacheKey(label, context string) string {
	return strings.ToLower(label) + "::" + strings.ToLower(context)
}

// Enrich walks the document and fills in missing item images, mutating
// doc in place. Idempotent: items that already carry an image are left
// alone. Failures only ever leave an item imageless.
func (e *ImageEnricher) Enrich(ctx context.Context, doc *entity.StructuredAnswer, cityContext string) {
	for si := range doc.Sections {
		items := doc.Sections[si].Items
		for ii := range items {
			item := &items[ii]
			if item.Image != nil {
				continue
			}
			label := item.Label()
			if label == "" {
				continue
			}

			key := CacheKey(label, cityContext)
			if img, err := e.cache.Get(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("image cache read failed")
			} else if img != nil {
				item.Image = img
				continue
			}

			img := e.lookup(ctx, label, cityContext)
			if img == nil {
				log.Debug().Str("label", label).Msg("no image found")
				continue
			}
			if err := e.cache.Set(ctx, key, img); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("image cache write failed")
			}
			item.Image = img
		}
	}
}

// lookup tries the query variants in order and returns the first usable
// result. Context-qualified forms bracket the bare label so city-scoped
// photos win when available.
func (e *ImageEnricher) lookup(ctx context.Context, label, cityContext string) *entity.Image {
	variants := []string{label}
	if cityContext != "" {
		variants = []string{label + " " + cityContext, label, label + ", " + cityContext}
	}

	for _, q := range variants {
		img, err := e.images.Search(ctx, q)
		if err != nil {
			log.Debug().Err(err).Str("query", q).Msg("image search failed, trying next variant")
			continue
		}
		if img != nil {
			return img
		}
	}
	return nil
}
