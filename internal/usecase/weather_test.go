package usecase

import (
	"context"
	"errors"
	"testing"

	"weatherchat/internal/domain/entity"
)

func TestResolve_CityNotFound(t *testing.T) {
	geo := &fakeGeocoder{}
	weather := &fakeWeather{}
	r := NewWeatherResolver(geo, weather)

	facts, found, err := r.Resolve(context.Background(), "Nowhereville")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
	if facts != nil {
		t.Errorf("expected nil facts, got %+v", facts)
	}
	if weather.calls != 0 {
		t.Errorf("weather provider called %d times on a geocoding miss", weather.calls)
	}
	if len(geo.names) != 1 || geo.names[0] != "Nowhereville" {
		t.Errorf("geocoder called with %v, want [Nowhereville]", geo.names)
	}
}

func TestResolve_Success(t *testing.T) {
	geo := &fakeGeocoder{place: &entity.GeoPlace{Latitude: 38.7, Longitude: -9.1}}
	weather := &fakeWeather{current: &entity.CurrentWeather{Code: 0, Temperature: 22, WindSpeed: 3}}

	facts, found, err := NewWeatherResolver(geo, weather).Resolve(context.Background(), "Lisbon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected found")
	}
	if facts.Condition != ConditionSunny {
		t.Errorf("condition = %q, want %q", facts.Condition, ConditionSunny)
	}
	if facts.Temperature != 22 || facts.WindSpeed != 3 {
		t.Errorf("facts = %+v", facts)
	}
}

func TestResolve_WeatherFetchFailed(t *testing.T) {
	geo := &fakeGeocoder{place: &entity.GeoPlace{Latitude: 1, Longitude: 2}}
	weather := &fakeWeather{err: errors.New("connection reset")}

	_, found, err := NewWeatherResolver(geo, weather).Resolve(context.Background(), "Oslo")
	if err == nil {
		t.Fatal("expected error")
	}
	if !found {
		t.Error("city was geocoded; found should be true even when the fetch fails")
	}
}

func TestResolve_WindyOverridesCode(t *testing.T) {
	geo := &fakeGeocoder{place: &entity.GeoPlace{}}
	weather := &fakeWeather{current: &entity.CurrentWeather{Code: 95, Temperature: 18, WindSpeed: 14}}

	facts, _, err := NewWeatherResolver(geo, weather).Resolve(context.Background(), "Chicago")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts.Condition != ConditionWindy {
		t.Errorf("condition = %q, want %q", facts.Condition, ConditionWindy)
	}
}
