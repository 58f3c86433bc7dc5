package gateway

import (
	"context"
	"errors"

	"github.com/splitbot-dev/splitbot/internal/model"
)

// Error classes reported by gateway implementations. Callers classify
// failures with errors.Is; anything else is treated as a transient
// transport error.
var (
	// ErrNotFound indicates the referenced guild, channel, message, or
	// role no longer exists
	ErrNotFound = errors.New("gateway: not found")
	// ErrPermissionDenied indicates the bot lacks rights for the
	// operation; the target may still exist
	ErrPermissionDenied = errors.New("gateway: permission denied")
)

// Handler receives events from a connected gateway
type Handler interface {
	HandleMessage(ctx context.Context, msg model.TextMessage)
	HandleControl(ctx context.Context, ev model.ControlActivated)
}

// Gateway is the chat transport the bot operates through. Connection
// management (login, heartbeats, reconnects) is owned by the
// implementation; the core only sends through it and resolves stored
// references against it.
type Gateway interface {
	// SendMessage posts content to a channel and returns the new
	// message's ID
	SendMessage(ctx context.Context, channelID model.ChannelID, content string) (model.MessageID, error)
	// SendButtons posts a new message carrying interactive controls
	SendButtons(ctx context.Context, channelID model.ChannelID, content string, buttons []model.ButtonSpec) (model.MessageID, error)
	// AttachButtons replaces the interactive controls on an existing
	// message
	AttachButtons(ctx context.Context, channelID model.ChannelID, messageID model.MessageID, buttons []model.ButtonSpec) error
	// Whisper sends content visible only to the given user
	Whisper(ctx context.Context, userID model.UserID, content string) error
	// WhisperButtons is Whisper with interactive controls attached
	WhisperButtons(ctx context.Context, userID model.UserID, content string, buttons []model.ButtonSpec) error
	// OpenDirectChannel returns the DM channel for a user
	OpenDirectChannel(ctx context.Context, userID model.UserID) (model.ChannelID, error)
	DeleteMessage(ctx context.Context, channelID model.ChannelID, messageID model.MessageID) error

	// Reference resolution, used by rehydration. Each returns nil when
	// the reference is live, or an ErrNotFound / ErrPermissionDenied
	// class error otherwise.
	ResolveGuild(ctx context.Context, guildID model.GuildID) error
	ResolveChannel(ctx context.Context, guildID model.GuildID, channelID model.ChannelID) error
	ResolveMessage(ctx context.Context, channelID model.ChannelID, messageID model.MessageID) error

	// Role management
	RoleName(ctx context.Context, guildID model.GuildID, roleID model.RoleID) (string, error)
	HasRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) (bool, error)
	AddRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) error
	RemoveRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) error
}
