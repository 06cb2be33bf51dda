package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect4-engine/internal/config"
	"github.com/iamasit07/connect4-engine/internal/event"
	"github.com/iamasit07/connect4-engine/internal/repository/redis"
	"github.com/iamasit07/connect4-engine/internal/service/bot"
	"github.com/iamasit07/connect4-engine/internal/service/cleanup"
	"github.com/iamasit07/connect4-engine/internal/service/game"
	transportHttp "github.com/iamasit07/connect4-engine/internal/transport/http"
	"github.com/iamasit07/connect4-engine/internal/transport/websocket"
	"github.com/iamasit07/connect4-engine/pkg/auth"
	"github.com/iamasit07/connect4-engine/pkg/logger"
)

func main() {
	envErr := godotenv.Load()
	if envErr != nil {
		envErr = godotenv.Load("../.env")
	}

	cfg := config.LoadConfig()
	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		log.Info().Msg("no .env file found, using process environment")
	}

	if !bot.IsKnownDifficulty(cfg.DefaultBot) {
		log.Warn().Str("difficulty", cfg.DefaultBot).Msg("unknown DEFAULT_DIFFICULTY, using random")
		cfg.DefaultBot = bot.DifficultyRandom
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Live-session cache (optional)
	var cache game.CacheRepository
	if cfg.RedisEnabled {
		client, err := redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Warn().Err(err).Str("component", "redis").Msg("could not connect, sessions stay in memory only")
		} else {
			redisCache := redis.NewRedisCache(client)
			defer redisCache.Close()
			cache = redisCache
		}
	}

	// 2. Game-finished events (optional)
	var publisher game.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := event.NewProducer(event.ProducerConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			User:     cfg.KafkaUser,
			Password: cfg.KafkaPassword,
		})
		if err != nil {
			log.Warn().Err(err).Str("component", "kafka").Msg("producer unavailable, events disabled")
		} else {
			defer producer.Close()
			publisher = producer
			log.Info().Str("component", "kafka").Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("producer ready")
		}
	}

	// 3. Services
	sessionManager := game.NewSessionManager(cache, publisher, game.Options{
		SearchDepth: cfg.SearchDepth,
		SessionTTL:  cfg.SessionIdle,
	})
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.GameTokenTTL)

	cleanupWorker := cleanup.NewWorker(sessionManager, cfg.SessionIdle, cfg.CleanupPeriod)
	go cleanupWorker.Start(ctx)

	// 4. Transport
	gin.SetMode(gin.ReleaseMode)
	gameHandler := transportHttp.NewGameHandler(sessionManager, tokens, cfg.DefaultBot)
	wsHandler := websocket.NewHandler(websocket.NewConnectionManager(), sessionManager, tokens, cfg.DefaultBot, cfg.AllowedOrigins)
	router := transportHttp.NewRouter(gameHandler, tokens, gin.WrapF(wsHandler.HandleWebSocket), cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// deferred producer.Close runs after this
	if err := sessionManager.Drain(shutdownCtx); err != nil {
		log.Warn().Err(err).Str("component", "kafka").Msg("pending game events not delivered")
	}

	log.Info().Int("active_sessions", sessionManager.ActiveCount()).Msg("server exited gracefully")
}
