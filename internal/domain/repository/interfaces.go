package repository

import (
	"context"
	"encoding/json"
	"time"

	"weatherchat/internal/domain/entity"
)

// TextGenerator is the chat-completions collaborator. On success it
// returns the first completion's text plus the raw provider payload; on
// failure the error is a *entity.LLMError.
type TextGenerator interface {
	Complete(ctx context.Context, messages []entity.Message, params entity.Sampling) (string, json.RawMessage, error)
}

// Geocoder resolves a free-text place name to at most one coordinate
// match. A miss is (nil, nil), not an error.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (*entity.GeoPlace, error)
}

// WeatherProvider fetches current conditions for a coordinate.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (*entity.CurrentWeather, error)
}

// ImageSearcher runs one image-search query and returns the first
// normalized result, or (nil, nil) when nothing usable came back.
type ImageSearcher interface {
	Search(ctx context.Context, query string) (*entity.Image, error)
}

// ImageCache is the durable key -> image mapping shared by all requests.
// A lookup miss is (nil, nil). Entries are never invalidated.
type ImageCache interface {
	Get(ctx context.Context, key string) (*entity.Image, error)
	Set(ctx context.Context, key string, img *entity.Image) error
}

// Transcriber converts audio bytes into text. language is a hint;
// empty or "auto" asks the provider to detect it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (*entity.Transcript, error)
}

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*entity.User, error)
	FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
}

// SessionStore maps opaque session tokens to user IDs with a TTL.
type SessionStore interface {
	Create(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Get(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}
