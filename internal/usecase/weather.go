package usecase

import (
	"context"

	"weatherchat/internal/domain/entity"
	"weatherchat/internal/domain/repository"
)

// WeatherResolver turns a place name into classified weather facts.
type WeatherResolver struct {
	geocoder repository.Geocoder
	weather  repository.WeatherProvider
}

func NewWeatherResolver(geocoder repository.Geocoder, weather repository.WeatherProvider) *WeatherResolver {
	return &WeatherResolver{geocoder: geocoder, weather: weather}
}

// Resolve geocodes the place and fetches current conditions. A gazetteer
// miss returns (nil, false, nil): not found, but not an error — the
// place may simply not exist. Transport or parse failures are errors.
func (r *WeatherResolver) Resolve(ctx context.Context, placeName string) (*entity.WeatherFacts, bool, error) {
	place, err := r.geocoder.Geocode(ctx, placeName)
	if err != nil {
		return nil, false, err
	}
	if place == nil {
		return nil, false, nil
	}

	cur, err := r.weather.CurrentWeather(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return nil, true, err
	}

	return &entity.WeatherFacts{
		Condition:   ClassifyCondition(cur.Code, cur.WindSpeed),
		Temperature: cur.Temperature,
		WindSpeed:   cur.WindSpeed,
	}, true, nil
}
