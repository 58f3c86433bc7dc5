package rolepanel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// Toggler flips role membership for users pressing panel buttons. A
// toggle is its own inverse: two presses return the user to their
// original state.
type Toggler struct {
	gw     gateway.Gateway
	logger *slog.Logger
}

// NewToggler creates a new Toggler
func NewToggler(gw gateway.Gateway, logger *slog.Logger) *Toggler {
	return &Toggler{
		gw:     gw,
		logger: logger.With(slog.String("component", "roletoggle")),
	}
}

// Toggle grants the role if the user lacks it and revokes it if they
// hold it, acknowledging either way with a user-only reply. Failures
// are reported to the user and mutate nothing.
func (t *Toggler) Toggle(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) error {
	name, err := t.gw.RoleName(ctx, guildID, roleID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			// Role was deleted after the panel was stored
			t.logger.Warn("toggle for missing role",
				slog.String("guild_id", string(guildID)),
				slog.String("role_id", string(roleID)))
			return t.gw.Whisper(ctx, userID, "Role not found.")
		}
		return fmt.Errorf("resolve role %s: %w", roleID, err)
	}

	has, err := t.gw.HasRole(ctx, guildID, userID, roleID)
	if err != nil {
		return fmt.Errorf("check role membership: %w", err)
	}

	if has {
		err = t.gw.RemoveRole(ctx, guildID, userID, roleID)
	} else {
		err = t.gw.AddRole(ctx, guildID, userID, roleID)
	}
	if err != nil {
		if errors.Is(err, gateway.ErrPermissionDenied) {
			return t.gw.Whisper(ctx, userID, "I don't have permission to manage that role.")
		}
		return fmt.Errorf("toggle role %s: %w", roleID, err)
	}

	ack := fmt.Sprintf("Added %s role!", name)
	if has {
		ack = fmt.Sprintf("Removed %s role!", name)
	}
	t.logger.Info("role toggled",
		slog.String("guild_id", string(guildID)),
		slog.String("user_id", string(userID)),
		slog.String("role", name),
		slog.Bool("granted", !has))
	return t.gw.Whisper(ctx, userID, ack)
}
