package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"weatherchat/internal/domain/entity"
)

// fakeGenerator replays canned completions in order and records every
// prompt it was given.
type fakeGenerator struct {
	replies []string
	err     error
	calls   [][]entity.Message
	params  []entity.Sampling
}

func (f *fakeGenerator) Complete(_ context.Context, messages []entity.Message, params entity.Sampling) (string, json.RawMessage, error) {
	f.calls = append(f.calls, messages)
	f.params = append(f.params, params)
	if f.err != nil {
		return "", nil, f.err
	}
	if len(f.calls) > len(f.replies) {
		return "", nil, fmt.Errorf("fakeGenerator: unexpected call %d", len(f.calls))
	}
	return f.replies[len(f.calls)-1], json.RawMessage(`{"stub":true}`), nil
}

type fakeGeocoder struct {
	place *entity.GeoPlace
	err   error
	names []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, name string) (*entity.GeoPlace, error) {
	f.names = append(f.names, name)
	return f.place, f.err
}

type fakeWeather struct {
	current *entity.CurrentWeather
	err     error
	calls   int
}

func (f *fakeWeather) CurrentWeather(_ context.Context, _, _ float64) (*entity.CurrentWeather, error) {
	f.calls++
	return f.current, f.err
}

// fakeSearcher serves images per query and counts provider calls.
type fakeSearcher struct {
	byQuery map[string]*entity.Image
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (*entity.Image, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

// memCache is an in-memory stand-in for the Redis image cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*entity.Image
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]*entity.Image{}}
}

func (m *memCache) Get(_ context.Context, key string) (*entity.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *memCache) Set(_ context.Context, key string, img *entity.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = img
	return nil
}
