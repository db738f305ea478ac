package main

import (
	"context"
	"os"
	"time"

	"weatherchat/internal/adapter/api"
	"weatherchat/internal/adapter/client"
	"weatherchat/internal/adapter/store"
	"weatherchat/internal/config"
	"weatherchat/internal/transport"
	"weatherchat/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	if cfg.OpenRouterAPIKey == "" {
		log.Warn().Msg("OPENROUTER_API_KEY not set; generation requests will fail fast")
	}
	if cfg.UnsplashKey == "" {
		log.Warn().Msg("UNSPLASH_KEY not set; image enrichment will run unauthenticated")
	}

	// Redis backs the enrichment cache and the session store.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
	}

	// Postgres is optional: without it the account endpoints report an
	// unconfigured store instead of refusing to boot.
	var users *store.PostgresUserStore
	if cfg.DatabaseURL != "" {
		var err error
		users, err = store.NewPostgresUserStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init postgres user store")
		}
		defer users.Close()
	} else {
		log.Warn().Msg("DATABASE_URL not set; account endpoints disabled")
	}

	generator := client.NewOpenRouterClient(
		cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL,
		cfg.SiteURL, cfg.SiteTitle, cfg.OpenRouterTimeout,
	)
	meteo := client.NewOpenMeteoClient(cfg.GeocodingURL, cfg.ForecastURL, cfg.GeoTimeout)
	images := client.NewUnsplashClient(cfg.UnsplashKey, cfg.UnsplashSearchURL, cfg.UnsplashMinDelay, cfg.UnsplashTimeout)
	transcriber := client.NewDeepgramClient(cfg.DeepgramAPIKey, cfg.DeepgramBaseURL, cfg.DeepgramTimeout)

	enricher := usecase.NewImageEnricher(store.NewRedisImageCache(rdb), images)
	composer := usecase.NewAnswerComposer(generator, enricher)
	extractor := usecase.NewPlaceExtractor(generator)
	resolver := usecase.NewWeatherResolver(meteo, meteo)
	orchestrator := usecase.NewOrchestrator(extractor, resolver, composer)
	streamer := usecase.NewStreamer(cfg.StreamChunkDelay)

	var auth *usecase.AuthService
	if users != nil {
		auth = usecase.NewAuthService(users, store.NewRedisSessionStore(rdb), cfg.SessionTTL)
	} else {
		auth = usecase.NewAuthService(nil, store.NewRedisSessionStore(rdb), cfg.SessionTTL)
	}

	// Optional bus transport for callers not speaking HTTP.
	if cfg.NatsURL != "" {
		nt, err := transport.NewNATSTransport(cfg.NatsURL, cfg.NatsSubject, cfg.ServiceName, orchestrator, cfg.OpenRouterTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init NATS transport")
		}
		defer nt.Close()
		if err := nt.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start NATS transport")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.ServiceName,
		ErrorHandler: api.ErrorHandler,
	})

	handler := api.NewChatHandler(orchestrator, streamer, transcriber, auth, cfg.SessionTTL)
	api.SetupRouter(app, handler)

	log.Info().Str("port", cfg.Port).Str("model", cfg.OpenRouterModel).Msg("weatherchat gateway running")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
