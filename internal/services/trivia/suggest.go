package trivia

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/splitbot-dev/splitbot/internal/dependencies/clock"
	"github.com/splitbot-dev/splitbot/internal/dispatch"
	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// Suggester runs the DM question-suggestion flow: three prompts
// (question, options, answer) with a cancel button, forwarding accepted
// suggestions to the review channel. All of its own prompts are deleted
// whether the flow completes, is canceled, or times out.
type Suggester struct {
	gw            gateway.Gateway
	dispatcher    *dispatch.Dispatcher
	clock         clock.Clock
	logger        *slog.Logger
	timeout       time.Duration
	reviewChannel model.ChannelID

	mu      sync.Mutex
	cancels map[model.ControlID]context.CancelFunc
}

// NewSuggester creates a new Suggester. reviewChannel receives accepted
// suggestions; timeout bounds each prompt.
func NewSuggester(gw gateway.Gateway, dispatcher *dispatch.Dispatcher, clk clock.Clock, reviewChannel model.ChannelID, timeout time.Duration, logger *slog.Logger) *Suggester {
	return &Suggester{
		gw:            gw,
		dispatcher:    dispatcher,
		clock:         clk,
		logger:        logger.With(slog.String("component", "suggest")),
		timeout:       timeout,
		reviewChannel: reviewChannel,
		cancels:       make(map[model.ControlID]context.CancelFunc),
	}
}

// HandleCancel cancels the flow owning the control, reporting whether
// the control belonged to a suggestion flow
func (s *Suggester) HandleCancel(controlID model.ControlID) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[controlID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Run drives one suggestion flow for the given user. It blocks until
// the flow finishes; other flows and challenge rounds keep making
// progress meanwhile.
func (s *Suggester) Run(ctx context.Context, userID model.UserID, userName string) error {
	dm, err := s.gw.OpenDirectChannel(ctx, userID)
	if err != nil {
		return fmt.Errorf("open direct channel: %w", err)
	}

	cancelID := model.ControlID(uuid.NewString())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancels[cancelID] = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.cancels, cancelID)
		s.mu.Unlock()
	}()

	var prompts []model.MessageID
	cleanup := func() {
		for _, id := range prompts {
			if err := s.gw.DeleteMessage(context.WithoutCancel(ctx), dm, id); err != nil {
				s.logger.Warn("failed to delete suggestion prompt",
					slog.String("message_id", string(id)),
					slog.String("error", err.Error()))
			}
		}
	}
	defer cleanup()

	// Any DM from this user advances the flow
	pred := func(msg model.TextMessage) bool {
		return msg.AuthorID == userID && msg.ChannelID == dm
	}

	ask := func(prompt string, withCancel bool) (string, error) {
		var msgID model.MessageID
		var err error
		if withCancel {
			msgID, err = s.gw.SendButtons(ctx, dm, prompt, []model.ButtonSpec{
				{Label: "Cancel", ControlID: cancelID},
			})
		} else {
			msgID, err = s.gw.SendMessage(ctx, dm, prompt)
		}
		if err != nil {
			return "", fmt.Errorf("send prompt: %w", err)
		}
		prompts = append(prompts, msgID)

		res := s.dispatcher.AwaitMessage(ctx, pred, s.clock.Now().Add(s.timeout))
		switch res.Status {
		case dispatch.Matched:
			return res.Message.Content, nil
		case dispatch.Canceled:
			return "", context.Canceled
		default:
			return "", context.DeadlineExceeded
		}
	}

	question, err := ask("What's the trivia question?", true)
	if err != nil {
		return s.finishAborted(ctx, userID, err)
	}
	options, err := ask(fmt.Sprintf("Thank you! Now, what are the options for the question: ``%s``", question), false)
	if err != nil {
		return s.finishAborted(ctx, userID, err)
	}
	answer, err := ask("Finally, what's the correct answer from the options?", false)
	if err != nil {
		return s.finishAborted(ctx, userID, err)
	}

	review := fmt.Sprintf(
		"**New Trivia Question Suggestion**\nQuestion: ``%s``\nOptions: ``%s``\nCorrect Answer: ``%s``\nSuggested by: ``%s`` ``%s``",
		question, options, answer, userName, userID)
	if _, err := s.gw.SendMessage(ctx, s.reviewChannel, review); err != nil {
		return fmt.Errorf("forward suggestion: %w", err)
	}

	s.logger.Info("trivia suggestion submitted", slog.String("user_id", string(userID)))
	return s.gw.Whisper(ctx, userID, "Your trivia question has been submitted successfully!")
}

// finishAborted tells the user why the flow ended; prompt cleanup is
// handled by the caller's defer
func (s *Suggester) finishAborted(ctx context.Context, userID model.UserID, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if cause == context.Canceled {
		return s.gw.Whisper(ctx, userID, "Your trivia question suggestion has been canceled.")
	}
	return s.gw.Whisper(ctx, userID, "You took too long to respond, submission has been canceled.")
}
