package rolepanel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/storage"
)

// Registry owns the durable role panel bindings: at most one panel per
// guild, plus the control->role action table its buttons resolve
// through.
type Registry struct {
	store  storage.Store
	logger *slog.Logger
}

// NewRegistry creates a new Registry
func NewRegistry(store storage.Store, logger *slog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger.With(slog.String("component", "rolepanel")),
	}
}

// Replace atomically discards the guild's current binding (if any) and
// stores binding as its sole record. Panels in other guilds are
// untouched.
func (r *Registry) Replace(ctx context.Context, binding *model.ComponentBinding) error {
	if err := r.store.ReplaceBinding(ctx, binding); err != nil {
		return fmt.Errorf("store role panel binding: %w", err)
	}
	r.logger.Info("role panel binding replaced",
		slog.String("guild_id", string(binding.GuildID)),
		slog.String("message_id", string(binding.MessageID)),
		slog.Int("buttons", len(binding.Buttons)))
	return nil
}

// Latest returns the guild's stored binding, or ErrBindingNotFound
func (r *Registry) Latest(ctx context.Context, guildID model.GuildID) (*model.ComponentBinding, error) {
	return r.store.GetBinding(ctx, guildID)
}

// All returns every stored binding, one per guild
func (r *Registry) All(ctx context.Context) ([]*model.ComponentBinding, error) {
	return r.store.ListBindings(ctx)
}

// Purge deletes the guild's binding without replacement
func (r *Registry) Purge(ctx context.Context, guildID model.GuildID) error {
	return r.store.DeleteBinding(ctx, guildID)
}

// LookupAction resolves an activated control to the role it toggles.
// Controls are only ever registered together with an action, so an
// unknown control on an existing panel is a programming error and is
// reported as ErrUnknownControl.
func (r *Registry) LookupAction(ctx context.Context, guildID model.GuildID, controlID model.ControlID) (model.RoleID, error) {
	binding, err := r.store.GetBinding(ctx, guildID)
	if err != nil {
		if errors.Is(err, model.ErrBindingNotFound) {
			return "", err
		}
		return "", fmt.Errorf("load role panel binding: %w", err)
	}

	roleID, ok := binding.RoleFor(controlID)
	if !ok {
		return "", fmt.Errorf("%w: %s", model.ErrUnknownControl, controlID)
	}
	return roleID, nil
}
