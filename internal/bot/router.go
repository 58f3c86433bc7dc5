package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// Router is a text-command front-end. Messages starting with the prefix
// are parsed as commands and run against the Bot; everything else is
// forwarded to next (normally the dispatcher) so open rounds can claim
// it. Control activations always go to next.
type Router struct {
	bot    *Bot
	next   gateway.Handler
	prefix string
	logger *slog.Logger
}

// Ensure Router implements the handler interface
var _ gateway.Handler = (*Router)(nil)

// NewRouter creates a command router with the given prefix (e.g. "!")
func NewRouter(b *Bot, next gateway.Handler, prefix string, logger *slog.Logger) *Router {
	return &Router{
		bot:    b,
		next:   next,
		prefix: prefix,
		logger: logger.With(slog.String("component", "router")),
	}
}

// HandleMessage parses and runs a command, or forwards the message
func (r *Router) HandleMessage(ctx context.Context, msg model.TextMessage) {
	rest, ok := strings.CutPrefix(msg.Content, r.prefix)
	if !ok {
		r.next.HandleMessage(ctx, msg)
		return
	}

	name, arg, _ := strings.Cut(rest, " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	inv := Invocation{
		UserID:    msg.AuthorID,
		UserName:  msg.AuthorName,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
	}

	var err error
	switch name {
	case "guesstime":
		err = r.bot.GuessTime(ctx, inv)
	case "trivia":
		err = r.bot.Trivia(ctx, inv)
	case "leaderboard":
		err = r.bot.Leaderboard(ctx, inv)
	case "setuproles":
		err = r.bot.SetupRoles(ctx, inv)
	case "suggesttrivia":
		err = r.bot.SuggestTrivia(ctx, inv)
	case "link":
		err = r.bot.Link(ctx, inv, arg)
	case "pride":
		err = r.bot.Pride(ctx, inv)
	default:
		// Not a command we own; treat it as chatter
		r.next.HandleMessage(ctx, msg)
		return
	}

	if err != nil {
		r.logger.Error("command failed",
			slog.String("command", name),
			slog.String("user_id", string(msg.AuthorID)),
			slog.String("error", err.Error()))
	}
}

// HandleControl forwards button presses
func (r *Router) HandleControl(ctx context.Context, ev model.ControlActivated) {
	r.next.HandleControl(ctx, ev)
}
