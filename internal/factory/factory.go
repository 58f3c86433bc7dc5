package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/splitbot-dev/splitbot/internal/bot"
	"github.com/splitbot-dev/splitbot/internal/dependencies/clock"
	"github.com/splitbot-dev/splitbot/internal/dependencies/random"
	"github.com/splitbot-dev/splitbot/internal/dispatch"
	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/services/challenge"
	"github.com/splitbot-dev/splitbot/internal/services/rolepanel"
	"github.com/splitbot-dev/splitbot/internal/services/rounds"
	"github.com/splitbot-dev/splitbot/internal/services/scoreboard"
	"github.com/splitbot-dev/splitbot/internal/services/trivia"
	"github.com/splitbot-dev/splitbot/internal/storage"
	"github.com/splitbot-dev/splitbot/internal/storage/memory"
	redisstorage "github.com/splitbot-dev/splitbot/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Event plumbing
	Dispatcher *dispatch.Dispatcher

	// Services
	ChallengeService  *challenge.Service
	ScoreboardService *scoreboard.Service
	Registry          *rolepanel.Registry
	Toggler           *rolepanel.Toggler
	Rehydrator        *rolepanel.Rehydrator
	Provider          rounds.Provider
	Bank              *trivia.Bank
	Suggester         *trivia.Suggester
	Bot               *bot.Bot
}

// Config holds configuration for the application factory
type Config struct {
	// Gateway is the chat transport the bot speaks through (required)
	Gateway gateway.Gateway
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ProviderBaseURL is the base URL of the run-data API (optional)
	// If empty, rounds.DefaultBaseURL is used
	ProviderBaseURL string
	// Questions is the trivia question pool
	Questions []trivia.Question
	// SuggestChannel is where trivia suggestions are posted for review
	SuggestChannel model.ChannelID
	// SuggestTimeout bounds each suggestion prompt (optional, defaults to 5m)
	SuggestTimeout time.Duration
	// BotConfig tunes round timeouts, leaderboard size and role buttons
	BotConfig bot.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("Gateway is required")
	}

	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, cfg.Gateway, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Store,
	gw gateway.Gateway,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *App {
	suggestTimeout := cfg.SuggestTimeout
	if suggestTimeout == 0 {
		suggestTimeout = 5 * time.Minute
	}
	providerBaseURL := cfg.ProviderBaseURL
	if providerBaseURL == "" {
		providerBaseURL = rounds.DefaultBaseURL
	}

	// Create services
	dispatcher := dispatch.New(clk, logger)
	scoreboardService := scoreboard.New(store, logger)
	challengeService := challenge.New(gw, dispatcher, scoreboardService, clk, logger)
	registry := rolepanel.NewRegistry(store, logger)
	toggler := rolepanel.NewToggler(gw, logger)
	rehydrator := rolepanel.NewRehydrator(registry, gw, logger)
	provider := rounds.NewClient(providerBaseURL, rnd, logger)
	bank := trivia.NewBank(cfg.Questions, rnd)
	suggester := trivia.NewSuggester(gw, dispatcher, clk, cfg.SuggestChannel, suggestTimeout, logger)
	b := bot.New(gw, dispatcher, challengeService, scoreboardService, registry, toggler, provider, bank, suggester, store, cfg.BotConfig, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Dispatcher:        dispatcher,
		ChallengeService:  challengeService,
		ScoreboardService: scoreboardService,
		Registry:          registry,
		Toggler:           toggler,
		Rehydrator:        rehydrator,
		Provider:          provider,
		Bank:              bank,
		Suggester:         suggester,
		Bot:               b,
	}
}
