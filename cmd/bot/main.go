package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/splitbot-dev/splitbot/internal/api"
	"github.com/splitbot-dev/splitbot/internal/bot"
	"github.com/splitbot-dev/splitbot/internal/config"
	"github.com/splitbot-dev/splitbot/internal/factory"
	"github.com/splitbot-dev/splitbot/internal/gateway/console"
	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/services/trivia"
	redisstorage "github.com/splitbot-dev/splitbot/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Local overrides; absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Trivia bank is optional; the trivia command reports an empty bank
	// to the user itself
	var questions []trivia.Question
	if qs, err := trivia.ReadQuestions(cfg.TriviaPath); err != nil {
		logger.Warn("could not load trivia questions",
			slog.String("path", cfg.TriviaPath),
			slog.String("error", err.Error()))
	} else {
		questions = qs
	}

	roleButtons, err := cfg.ParseRoleButtons()
	if err != nil {
		logger.Error("invalid role button config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	botButtons := make([]bot.RoleButton, 0, len(roleButtons))
	for _, rb := range roleButtons {
		botButtons = append(botButtons, bot.RoleButton{
			Label:  rb.Label,
			RoleID: model.RoleID(rb.RoleID),
		})
	}

	gw := console.New(os.Stdout, logger)

	factoryCfg := factory.Config{
		Gateway:         gw,
		Logger:          logger,
		StorageType:     cfg.StorageType,
		ProviderBaseURL: cfg.ProviderBaseURL,
		Questions:       questions,
		SuggestChannel:  model.ChannelID(cfg.SuggestChannelID),
		SuggestTimeout:  cfg.SuggestTimeout,
		BotConfig: bot.Config{
			GuessTimeout: cfg.GuessTimeout,
			RoleButtons:  botButtons,
		},
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		if cfg.RedisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Re-attach handlers for any role panels that survived a restart
	rehydrateCtx, rehydrateCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := app.Rehydrator.Run(rehydrateCtx); err != nil {
		logger.Warn("role panel rehydration incomplete", slog.String("error", err.Error()))
	}
	rehydrateCancel()

	// HTTP API for health checks and leaderboard reads
	router := api.NewRouter(api.RouterConfig{
		Logger: logger,
		Scores: app.ScoreboardService,
	})
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.HTTPPort
	server := api.NewServer(router, serverConfig, logger)

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()

	// Read commands and answers from stdin until EOF or shutdown
	handler := bot.NewRouter(app.Bot, app.Dispatcher, "!", logger)
	go func() {
		errCh <- gw.Run(ctx, os.Stdin, handler)
	}()

	logger.Info("bot started",
		slog.String("storage", factoryCfg.StorageType),
		slog.String("http_addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("fatal error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cancel()
	case <-ctx.Done():
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("bot stopped")
}
