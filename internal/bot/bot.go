package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/splitbot-dev/splitbot/internal/dispatch"
	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/services/challenge"
	"github.com/splitbot-dev/splitbot/internal/services/rolepanel"
	"github.com/splitbot-dev/splitbot/internal/services/rounds"
	"github.com/splitbot-dev/splitbot/internal/services/scoreboard"
	"github.com/splitbot-dev/splitbot/internal/services/trivia"
	"github.com/splitbot-dev/splitbot/internal/storage"
)

// Scoring tiers. A perfect time guess is worth 100; anything more than
// 30 seconds off scores nothing.
var timeGuessBands = model.BandTable{
	{MaxDifference: 0, Points: 100},
	{MaxDifference: 5, Points: 60},
	{MaxDifference: 10, Points: 40},
	{MaxDifference: 30, Points: 20},
}

// Trivia is all-or-nothing
var triviaBands = model.BandTable{
	{MaxDifference: 0, Points: 50},
}

// RoleButton configures one button on the role panel
type RoleButton struct {
	Label  string
	RoleID model.RoleID
}

// Config holds the bot's command tunables
type Config struct {
	// GuessTimeout bounds guess-the-time and trivia rounds
	GuessTimeout time.Duration
	// LeaderboardSize is how many rows the leaderboard command shows
	LeaderboardSize int
	// RoleButtons defines the panel created by the roles command
	RoleButtons []RoleButton
}

// DefaultConfig returns default command tunables
func DefaultConfig() Config {
	return Config{
		GuessTimeout:    30 * time.Second,
		LeaderboardSize: 10,
	}
}

// Invocation identifies who invoked a command and where
type Invocation struct {
	UserID    model.UserID
	UserName  string
	ChannelID model.ChannelID
	GuildID   model.GuildID
}

// Bot is the command layer: it turns command invocations into challenge
// rounds, leaderboard queries, and role panel operations, and routes
// control activations to the action that owns them.
type Bot struct {
	gw         gateway.Gateway
	dispatcher *dispatch.Dispatcher
	challenges *challenge.Service
	scores     *scoreboard.Service
	registry   *rolepanel.Registry
	toggler    *rolepanel.Toggler
	provider   rounds.Provider
	bank       *trivia.Bank
	suggester  *trivia.Suggester
	store      storage.Store
	cfg        Config
	logger     *slog.Logger

	// Short-lived controls (unlink buttons) that never hit the durable
	// registry
	transientMu sync.Mutex
	transient   map[model.ControlID]func(context.Context, model.ControlActivated)
}

// New creates the Bot and registers it as the dispatcher's control
// handler
func New(
	gw gateway.Gateway,
	dispatcher *dispatch.Dispatcher,
	challenges *challenge.Service,
	scores *scoreboard.Service,
	registry *rolepanel.Registry,
	toggler *rolepanel.Toggler,
	provider rounds.Provider,
	bank *trivia.Bank,
	suggester *trivia.Suggester,
	store storage.Store,
	cfg Config,
	logger *slog.Logger,
) *Bot {
	if cfg.GuessTimeout == 0 {
		cfg.GuessTimeout = DefaultConfig().GuessTimeout
	}
	if cfg.LeaderboardSize == 0 {
		cfg.LeaderboardSize = DefaultConfig().LeaderboardSize
	}

	b := &Bot{
		gw:         gw,
		dispatcher: dispatcher,
		challenges: challenges,
		scores:     scores,
		registry:   registry,
		toggler:    toggler,
		provider:   provider,
		bank:       bank,
		suggester:  suggester,
		store:      store,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "bot")),
		transient:  make(map[model.ControlID]func(context.Context, model.ControlActivated)),
	}
	dispatcher.SetControlHandler(b.handleControl)
	return b
}

// GuessTime starts a guess-the-time round for the invoking user in the
// invoking channel
func (b *Bot) GuessTime(ctx context.Context, inv Invocation) error {
	cand, err := b.provider.RandomRun(ctx)
	if errors.Is(err, model.ErrNoCandidates) {
		_, err := b.gw.SendMessage(ctx, inv.ChannelID, "No verified runs found right now. Try again later!")
		return err
	}
	if err != nil {
		b.logger.Error("round provider failed", slog.String("error", err.Error()))
		_, err := b.gw.SendMessage(ctx, inv.ChannelID, "Couldn't fetch run data. Try again later!")
		return err
	}

	date := cand.Date
	if date == "" {
		date = "Unknown"
	}
	round := &model.Round{
		Kind: model.RoundTimeGuess,
		Prompt: fmt.Sprintf("## **Guess the Time!**\n- **Chapter:** %s\n- **Description:** %s\n- **Run Date:** %s",
			cand.Topic.Name, cand.Description, date),
		Answer:       challenge.FormatClock(cand.Seconds),
		Bands:        timeGuessBands,
		Scope:        model.RoundScope{UserID: inv.UserID, ChannelID: inv.ChannelID},
		ReferenceURL: cand.RunURL,
	}
	return b.challenges.Run(ctx, model.GameGuessTime, round, b.cfg.GuessTimeout)
}

// Trivia starts a trivia round for the invoking user in the invoking
// channel
func (b *Bot) Trivia(ctx context.Context, inv Invocation) error {
	q, err := b.bank.Random()
	if errors.Is(err, model.ErrNoQuestions) {
		_, err := b.gw.SendMessage(ctx, inv.ChannelID, "No trivia questions available right now. Try again later!")
		return err
	}
	if err != nil {
		return err
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "**Question:** %s\n", q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, opt)
	}

	round := &model.Round{
		Kind:    model.RoundFixedChoice,
		Prompt:  strings.TrimSuffix(prompt.String(), "\n"),
		Answer:  q.Answer,
		Options: q.Options,
		Bands:   triviaBands,
		Scope:   model.RoundScope{UserID: inv.UserID, ChannelID: inv.ChannelID},
	}
	return b.challenges.Run(ctx, model.GameTrivia, round, b.cfg.GuessTimeout)
}

// Leaderboard posts the guess-the-time leaderboard
func (b *Bot) Leaderboard(ctx context.Context, inv Invocation) error {
	records, err := b.scores.TopN(ctx, model.GameGuessTime, b.cfg.LeaderboardSize)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := b.gw.SendMessage(ctx, inv.ChannelID, "No scores yet! Be the first to play!")
		return err
	}
	_, err = b.gw.SendMessage(ctx, inv.ChannelID, scoreboard.FormatLeaderboard(records))
	return err
}

// SetupRoles posts a fresh role panel in the invoking channel and
// records it as the guild's sole binding
func (b *Bot) SetupRoles(ctx context.Context, inv Invocation) error {
	if len(b.cfg.RoleButtons) == 0 {
		return b.gw.Whisper(ctx, inv.UserID, "No role buttons are configured.")
	}

	buttons := make([]model.ButtonSpec, 0, len(b.cfg.RoleButtons))
	for _, rb := range b.cfg.RoleButtons {
		buttons = append(buttons, model.ButtonSpec{
			Label:     rb.Label,
			ControlID: model.ControlID(uuid.NewString()),
			RoleID:    rb.RoleID,
		})
	}

	content := "Click to receive the role for the Chapter specified!\nClick the buttons below to toggle the roles:"
	msgID, err := b.gw.SendButtons(ctx, inv.ChannelID, content, buttons)
	if err != nil {
		return fmt.Errorf("post role panel: %w", err)
	}

	binding := &model.ComponentBinding{
		MessageID: msgID,
		ChannelID: inv.ChannelID,
		GuildID:   inv.GuildID,
		Buttons:   buttons,
	}
	if err := b.registry.Replace(ctx, binding); err != nil {
		return err
	}
	return b.gw.Whisper(ctx, inv.UserID, "Role selection message created!")
}

// SuggestTrivia starts the DM suggestion flow
func (b *Bot) SuggestTrivia(ctx context.Context, inv Invocation) error {
	if err := b.gw.Whisper(ctx, inv.UserID, "Check your DMs! 📨"); err != nil {
		return err
	}
	return b.suggester.Run(ctx, inv.UserID, inv.UserName)
}

// Pride posts the support message
func (b *Bot) Pride(ctx context.Context, inv Invocation) error {
	_, err := b.gw.SendMessage(ctx, inv.ChannelID, "Splitbot supports LGBTQIA+ people! 🌈")
	return err
}

// handleControl routes a button press: suggestion cancels first, then
// transient controls, then the durable role panel registry.
func (b *Bot) handleControl(ctx context.Context, ev model.ControlActivated) {
	if b.suggester != nil && b.suggester.HandleCancel(ev.ControlID) {
		return
	}

	b.transientMu.Lock()
	fn, ok := b.transient[ev.ControlID]
	b.transientMu.Unlock()
	if ok {
		fn(ctx, ev)
		return
	}

	roleID, err := b.registry.LookupAction(ctx, ev.GuildID, ev.ControlID)
	if err != nil {
		if errors.Is(err, model.ErrBindingNotFound) {
			// Press on a panel whose binding is gone; nothing to do
			b.logger.Warn("control press with no stored binding",
				slog.String("guild_id", string(ev.GuildID)),
				slog.String("control_id", string(ev.ControlID)))
			return
		}
		b.logger.Error("control lookup failed",
			slog.String("control_id", string(ev.ControlID)),
			slog.String("error", err.Error()))
		return
	}

	if err := b.toggler.Toggle(ctx, ev.GuildID, ev.ActorID, roleID); err != nil {
		b.logger.Error("role toggle failed",
			slog.String("user_id", string(ev.ActorID)),
			slog.String("role_id", string(roleID)),
			slog.String("error", err.Error()))
	}
}

func (b *Bot) registerTransient(id model.ControlID, fn func(context.Context, model.ControlActivated)) {
	b.transientMu.Lock()
	defer b.transientMu.Unlock()
	b.transient[id] = fn
}

func (b *Bot) unregisterTransient(id model.ControlID) {
	b.transientMu.Lock()
	defer b.transientMu.Unlock()
	delete(b.transient, id)
}
