package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/splitbot-dev/splitbot/internal/dependencies/mocks"
	"github.com/splitbot-dev/splitbot/internal/gateway/gatewaytest"
	"github.com/splitbot-dev/splitbot/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	Gateway    *gatewaytest.Fake
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(cfg Config) *TestApp {
	store := memory.New()
	fake := gatewaytest.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	app := newWithDependencies(store, fake, mockClock, mockRandom, cfg, logger)

	return &TestApp{
		App:        app,
		Gateway:    fake,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
