package storage

import (
	"context"

	"github.com/splitbot-dev/splitbot/internal/model"
)

// Store defines the interface for durable bot state
type Store interface {
	// Score operations. IncrementScore is a single atomic upsert: it
	// inserts a record with score=delta if the user is absent, otherwise
	// adds delta to the stored total, and always overwrites the display
	// name with the latest value. Returns the new total. Safe under
	// concurrent increments for the same user.
	IncrementScore(ctx context.Context, game model.GameKey, userID model.UserID, displayName string, delta int64) (int64, error)
	// Scores returns all score records for a game, in no particular
	// order. Callers own sorting.
	Scores(ctx context.Context, game model.GameKey) ([]model.ScoreRecord, error)

	// Role panel operations. ReplaceBinding atomically discards whatever
	// binding is stored for the binding's guild and stores the new one as
	// that guild's sole record. Bindings for other guilds are untouched.
	ReplaceBinding(ctx context.Context, binding *model.ComponentBinding) error
	GetBinding(ctx context.Context, guildID model.GuildID) (*model.ComponentBinding, error)
	ListBindings(ctx context.Context) ([]*model.ComponentBinding, error)
	DeleteBinding(ctx context.Context, guildID model.GuildID) error

	// Account link operations
	SaveLink(ctx context.Context, link *model.AccountLink) error
	GetLink(ctx context.Context, userID model.UserID) (*model.AccountLink, error)
	DeleteLink(ctx context.Context, userID model.UserID) error
}
