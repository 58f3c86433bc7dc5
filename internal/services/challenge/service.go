package challenge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitbot-dev/splitbot/internal/dependencies/clock"
	"github.com/splitbot-dev/splitbot/internal/dispatch"
	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/services/scoreboard"
)

// Service runs timed challenge rounds: it posts the prompt, waits for
// the first in-scope message of the right shape, scores it against the
// round's tolerance bands, and announces the outcome. Each round
// resolves exactly once.
type Service struct {
	gw         gateway.Gateway
	dispatcher *dispatch.Dispatcher
	scores     *scoreboard.Service
	clock      clock.Clock
	logger     *slog.Logger
}

// New creates a new challenge Service
func New(gw gateway.Gateway, dispatcher *dispatch.Dispatcher, scores *scoreboard.Service, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		gw:         gw,
		dispatcher: dispatcher,
		scores:     scores,
		clock:      clk,
		logger:     logger.With(slog.String("component", "challenge")),
	}
}

// Run executes one round to completion. It blocks until the round is
// Answered or Expired; other rounds keep making progress while it
// waits. Round answers are credited to the given game's score
// namespace.
func (s *Service) Run(ctx context.Context, game model.GameKey, round *model.Round, timeout time.Duration) error {
	round.Deadline = s.clock.Now().Add(timeout)

	prompt := fmt.Sprintf("%s\n⏰ **Time's up <t:%d:R>**", round.Prompt, round.Deadline.Unix())
	if _, err := s.gw.SendMessage(ctx, round.Scope.ChannelID, prompt); err != nil {
		return fmt.Errorf("post prompt: %w", err)
	}

	// Scope and shape only; correctness is judged after acceptance, so
	// the first well-formed guess is the one that counts.
	pred := func(msg model.TextMessage) bool {
		return round.Scope.Matches(msg) && s.shapeMatches(round, msg.Content)
	}

	res := s.dispatcher.AwaitMessage(ctx, pred, round.Deadline)
	if res.Status == dispatch.Matched {
		return s.resolveAnswered(ctx, game, round, res.Message)
	}
	return s.resolveExpired(ctx, round)
}

func (s *Service) shapeMatches(round *model.Round, content string) bool {
	switch round.Kind {
	case model.RoundTimeGuess:
		return IsClockLiteral(content)
	case model.RoundFixedChoice:
		canonical := CanonicalChoice(content)
		for _, opt := range round.Options {
			if canonical == CanonicalChoice(opt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// difference computes the numeric distance between the accepted guess
// and the canonical answer: seconds apart for time guesses, 0/1 for
// fixed-choice rounds.
func (s *Service) difference(round *model.Round, content string) (int64, error) {
	switch round.Kind {
	case model.RoundTimeGuess:
		guessed, err := ParseClock(content)
		if err != nil {
			return 0, err
		}
		actual, err := ParseClock(round.Answer)
		if err != nil {
			return 0, err
		}
		diff := guessed - actual
		if diff < 0 {
			diff = -diff
		}
		return diff, nil
	case model.RoundFixedChoice:
		if CanonicalChoice(content) == CanonicalChoice(round.Answer) {
			return 0, nil
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("unknown round kind %q", round.Kind)
	}
}

func (s *Service) resolveAnswered(ctx context.Context, game model.GameKey, round *model.Round, msg model.TextMessage) error {
	if !round.Resolve(model.RoundAnswered) {
		// Lost the race against expiry; the other side announces
		return nil
	}

	diff, err := s.difference(round, msg.Content)
	if err != nil {
		// Shape predicate admitted something difference can't parse
		return fmt.Errorf("score accepted answer: %w", err)
	}
	points := round.Bands.Score(diff)

	if points > 0 {
		total, err := s.scores.Increment(ctx, game, msg.AuthorID, msg.AuthorName, points)
		if err != nil {
			s.logger.Error("failed to record score",
				slog.String("game", string(game)),
				slog.String("user_id", string(msg.AuthorID)),
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("score awarded",
				slog.String("game", string(game)),
				slog.String("user_id", string(msg.AuthorID)),
				slog.Int64("points", points),
				slog.Int64("total", total))
		}
	}

	outcome := s.formatOutcome(round, diff, points)
	if _, err := s.gw.SendMessage(ctx, round.Scope.ChannelID, outcome); err != nil {
		return fmt.Errorf("announce outcome: %w", err)
	}
	return nil
}

func (s *Service) resolveExpired(ctx context.Context, round *model.Round) error {
	if !round.Resolve(model.RoundExpired) {
		return nil
	}

	text := fmt.Sprintf("⏰ Time's up! The correct answer was %s.", round.Answer)
	if round.ReferenceURL != "" {
		text += fmt.Sprintf("\n[Link to the run](<%s>)", round.ReferenceURL)
	}
	if _, err := s.gw.SendMessage(ctx, round.Scope.ChannelID, text); err != nil {
		return fmt.Errorf("announce expiry: %w", err)
	}
	return nil
}

func (s *Service) formatOutcome(round *model.Round, diff, points int64) string {
	var text string
	switch {
	case diff == 0:
		text = fmt.Sprintf("🎉 Perfect! The answer is %s.\nYou earned **%d points**!", round.Answer, points)
	case points > 0:
		text = fmt.Sprintf("👍 You were close! The difference was **%d** seconds.\nYou earned **%d points**!\nThe correct answer was %s.", diff, points, round.Answer)
	case round.Kind == model.RoundTimeGuess:
		text = fmt.Sprintf("😢 Incorrect. The difference was **%d** seconds.\nThe correct answer was %s.", diff, round.Answer)
	default:
		text = fmt.Sprintf("😢 Incorrect. The correct answer was: %s.", round.Answer)
	}
	if round.ReferenceURL != "" {
		text += fmt.Sprintf("\n[Link to the run](<%s>)", round.ReferenceURL)
	}
	return text
}
