package rolepanel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// Rehydrator re-attaches working buttons to stored panel messages after
// a restart. It runs once, after the gateway is connected.
type Rehydrator struct {
	registry *Registry
	gw       gateway.Gateway
	logger   *slog.Logger
}

// NewRehydrator creates a new Rehydrator
func NewRehydrator(registry *Registry, gw gateway.Gateway, logger *slog.Logger) *Rehydrator {
	return &Rehydrator{
		registry: registry,
		gw:       gw,
		logger:   logger.With(slog.String("component", "rehydrate")),
	}
}

// Run walks every stored binding and restores its panel. A binding
// whose guild, channel, or message no longer exists is purged; one the
// bot currently lacks permission for is kept for a later start. Run
// never fails the boot: problems are logged and the next binding is
// tried.
func (r *Rehydrator) Run(ctx context.Context) error {
	bindings, err := r.registry.All(ctx)
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		r.logger.Info("no role panel bindings to restore")
		return nil
	}

	for _, binding := range bindings {
		r.rehydrate(ctx, binding)
	}
	return nil
}

func (r *Rehydrator) rehydrate(ctx context.Context, binding *model.ComponentBinding) {
	log := r.logger.With(
		slog.String("guild_id", string(binding.GuildID)),
		slog.String("channel_id", string(binding.ChannelID)),
		slog.String("message_id", string(binding.MessageID)))

	// Resolve outermost-first so a dead guild is caught before its
	// channels are probed
	steps := []struct {
		name    string
		resolve func() error
	}{
		{"guild", func() error { return r.gw.ResolveGuild(ctx, binding.GuildID) }},
		{"channel", func() error { return r.gw.ResolveChannel(ctx, binding.GuildID, binding.ChannelID) }},
		{"message", func() error { return r.gw.ResolveMessage(ctx, binding.ChannelID, binding.MessageID) }},
	}

	for _, step := range steps {
		if err := step.resolve(); err != nil {
			r.classify(ctx, binding, step.name, err, log)
			return
		}
	}

	if err := r.gw.AttachButtons(ctx, binding.ChannelID, binding.MessageID, binding.Buttons); err != nil {
		r.classify(ctx, binding, "attach", err, log)
		return
	}

	log.Info("role panel restored", slog.Int("buttons", len(binding.Buttons)))
}

// classify applies the self-healing policy: a dangling reference is
// worse than no reference, so not-found purges the binding; permission
// problems may clear up, so the binding stays.
func (r *Rehydrator) classify(ctx context.Context, binding *model.ComponentBinding, step string, err error, log *slog.Logger) {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		log.Info("purging stale role panel binding",
			slog.String("step", step),
			slog.String("error", err.Error()))
		if purgeErr := r.registry.Purge(ctx, binding.GuildID); purgeErr != nil {
			log.Error("failed to purge stale binding", slog.String("error", purgeErr.Error()))
		}
	case errors.Is(err, gateway.ErrPermissionDenied):
		log.Warn("no access to stored role panel, keeping binding",
			slog.String("step", step),
			slog.String("error", err.Error()))
	default:
		log.Error("role panel restore failed, keeping binding",
			slog.String("step", step),
			slog.String("error", err.Error()))
	}
}
