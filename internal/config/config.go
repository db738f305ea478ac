package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// OpenRouter configuration
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	OpenRouterTimeout time.Duration
	SiteURL           string
	SiteTitle         string

	// Deepgram configuration
	DeepgramAPIKey  string
	DeepgramBaseURL string
	DeepgramTimeout time.Duration

	// Open-Meteo configuration
	GeocodingURL string
	ForecastURL  string
	GeoTimeout   time.Duration

	// Unsplash configuration
	UnsplashKey       string
	UnsplashSearchURL string
	UnsplashMinDelay  time.Duration
	UnsplashTimeout   time.Duration

	// Stores
	RedisAddr   string
	DatabaseURL string
	SessionTTL  time.Duration

	// Transports
	Port        string
	NatsURL     string
	NatsSubject string

	// Streaming
	StreamChunkDelay time.Duration

	ServiceName string
}

func Load() *Config {
	return &Config{
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "deepseek/deepseek-chat-v3.1:free"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterTimeout: getDurationEnv("LLM_TIMEOUT", 60*time.Second),
		SiteURL:           getEnv("SITE_URL", "http://localhost:5000"),
		SiteTitle:         getEnv("SITE_TITLE", "WeatherBot"),

		DeepgramAPIKey:  getEnv("DEEPGRAM_API_KEY", ""),
		DeepgramBaseURL: getEnv("DEEPGRAM_BASE_URL", "https://api.deepgram.com/v1/listen"),
		DeepgramTimeout: getDurationEnv("STT_TIMEOUT", 120*time.Second),

		GeocodingURL: getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		ForecastURL:  getEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		GeoTimeout:   getDurationEnv("GEO_TIMEOUT", 8*time.Second),

		UnsplashKey:       getEnv("UNSPLASH_KEY", ""),
		UnsplashSearchURL: getEnv("UNSPLASH_SEARCH_URL", "https://api.unsplash.com/search/photos"),
		UnsplashMinDelay:  getDurationEnv("UNSPLASH_MIN_DELAY", 120*time.Millisecond),
		UnsplashTimeout:   getDurationEnv("IMAGE_TIMEOUT", 8*time.Second),

		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SessionTTL:  getDurationEnv("SESSION_TTL", 168*time.Hour),

		Port:        getEnv("PORT", "5000"),
		NatsURL:     getEnv("NATS_URL", ""),
		NatsSubject: getEnv("NATS_REQUEST_SUBJECT", "chat.process"),

		StreamChunkDelay: getDurationEnv("STREAM_CHUNK_DELAY", 60*time.Millisecond),

		ServiceName: getEnv("SERVICE_NAME", "weatherchat-gateway"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// plain numbers are taken as seconds
		if secs, err := strconv.ParseFloat(value, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return defaultValue
}
