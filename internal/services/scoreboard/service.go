package scoreboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/storage"
)

// Service exposes score accumulation and leaderboard queries over the
// storage layer. Ordering lives here so every storage backend produces
// identical leaderboards.
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// New creates a new scoreboard Service
func New(store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With(slog.String("component", "scoreboard")),
	}
}

// Increment atomically adds delta to the user's total for a game,
// creating the record if needed, and refreshes the stored display name.
// Returns the new total.
func (s *Service) Increment(ctx context.Context, game model.GameKey, userID model.UserID, displayName string, delta int64) (int64, error) {
	return s.store.IncrementScore(ctx, game, userID, displayName, delta)
}

// TopN returns up to n records for a game, ordered by descending score.
// Ties break by ascending user ID so repeated calls against unchanged
// data return the same order.
func (s *Service) TopN(ctx context.Context, game model.GameKey, n int) ([]model.ScoreRecord, error) {
	records, err := s.store.Scores(ctx, game)
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].UserID < records[j].UserID
	})

	if n >= 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// FormatLeaderboard renders records as the chat leaderboard message
func FormatLeaderboard(records []model.ScoreRecord) string {
	var b strings.Builder
	b.WriteString("**🏆 Leaderboard 🏆**\n")
	for rank, rec := range records {
		fmt.Fprintf(&b, "%d. **%s** - %d points\n", rank+1, rec.DisplayName, rec.Score)
	}
	return b.String()
}
