package trivia

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/splitbot-dev/splitbot/internal/dependencies/mocks"
	"github.com/splitbot-dev/splitbot/internal/dispatch"
	"github.com/splitbot-dev/splitbot/internal/gateway/gatewaytest"
	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/testutil"
)

const reviewChannel = model.ChannelID("chan-review")

type SuggesterSuite struct {
	suite.Suite
	gw         *gatewaytest.Fake
	clock      *mocks.MockClock
	dispatcher *dispatch.Dispatcher
	suggester  *Suggester
	ctx        context.Context
}

func TestSuggesterSuite(t *testing.T) {
	suite.Run(t, new(SuggesterSuite))
}

func (s *SuggesterSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.gw = gatewaytest.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.dispatcher = dispatch.New(s.clock, logger)
	s.suggester = NewSuggester(s.gw, s.dispatcher, s.clock, reviewChannel, time.Minute, logger)
	s.ctx = context.Background()
}

// answer waits for the flow to be listening, then replies in the DM
func (s *SuggesterSuite) answer(content string) {
	s.Require().Eventually(func() bool {
		return s.dispatcher.OpenWaits() == 1
	}, time.Second, time.Millisecond)
	s.dispatcher.HandleMessage(s.ctx, model.TextMessage{
		AuthorID:   "user-1",
		AuthorName: "Alice",
		ChannelID:  "dm-user-1",
		Content:    content,
	})
}

func (s *SuggesterSuite) TestCompletedFlowReachesReviewChannel() {
	done := make(chan error, 1)
	go func() {
		done <- s.suggester.Run(s.ctx, "user-1", "Alice")
	}()

	s.answer("Which chapter is fastest?")
	s.answer("Chapter 1, Chapter 2, Chapter 3")
	s.answer("Chapter 1")
	s.Require().NoError(<-done)

	var review *gatewaytest.SentMessage
	for _, msg := range s.gw.Sent() {
		if msg.ChannelID == reviewChannel {
			m := msg
			review = &m
		}
	}
	s.Require().NotNil(review, "suggestion must be forwarded for review")
	s.Contains(review.Content, "Which chapter is fastest?")
	s.Contains(review.Content, "Chapter 1, Chapter 2, Chapter 3")
	s.Contains(review.Content, "Alice")

	whispers := s.gw.Whispers()
	s.Require().NotEmpty(whispers)
	s.Contains(whispers[len(whispers)-1].Content, "submitted successfully")

	// All three DM prompts cleaned up
	s.Len(s.gw.Deleted(), 3)
}

func (s *SuggesterSuite) TestFirstPromptCarriesCancelButton() {
	done := make(chan error, 1)
	go func() {
		done <- s.suggester.Run(s.ctx, "user-1", "Alice")
	}()

	s.Require().Eventually(func() bool {
		return s.dispatcher.OpenWaits() == 1
	}, time.Second, time.Millisecond)

	sent := s.gw.Sent()
	s.Require().NotEmpty(sent)
	s.Require().Len(sent[0].Buttons, 1)
	s.Equal("Cancel", sent[0].Buttons[0].Label)

	// Finish the flow so the goroutine exits
	s.dispatcher.HandleMessage(s.ctx, model.TextMessage{AuthorID: "user-1", ChannelID: "dm-user-1", Content: "q"})
	s.answer("opts")
	s.answer("ans")
	s.Require().NoError(<-done)
}

func (s *SuggesterSuite) TestCancelButtonAbortsFlow() {
	done := make(chan error, 1)
	go func() {
		done <- s.suggester.Run(s.ctx, "user-1", "Alice")
	}()

	s.Require().Eventually(func() bool {
		return s.dispatcher.OpenWaits() == 1
	}, time.Second, time.Millisecond)

	cancelID := s.gw.Sent()[0].Buttons[0].ControlID
	s.True(s.suggester.HandleCancel(cancelID))
	s.Require().NoError(<-done)

	whispers := s.gw.Whispers()
	s.Require().NotEmpty(whispers)
	s.Contains(whispers[len(whispers)-1].Content, "has been canceled")

	// The one posted prompt is cleaned up and nothing reaches review
	s.Len(s.gw.Deleted(), 1)
	for _, msg := range s.gw.Sent() {
		s.NotEqual(reviewChannel, msg.ChannelID)
	}
}

func (s *SuggesterSuite) TestCancelControlOnlyClaimedOnce() {
	done := make(chan error, 1)
	go func() {
		done <- s.suggester.Run(s.ctx, "user-1", "Alice")
	}()

	s.Require().Eventually(func() bool {
		return s.dispatcher.OpenWaits() == 1
	}, time.Second, time.Millisecond)

	cancelID := s.gw.Sent()[0].Buttons[0].ControlID
	s.True(s.suggester.HandleCancel(cancelID))
	s.Require().NoError(<-done)

	// The flow is over; its control no longer belongs to anyone
	s.False(s.suggester.HandleCancel(cancelID))
	s.False(s.suggester.HandleCancel("ctrl-unknown"))
}

func (s *SuggesterSuite) TestTimeoutAbortsFlow() {
	s.suggester = NewSuggester(s.gw, s.dispatcher, s.clock, reviewChannel, 20*time.Millisecond, testutil.NopLogger())

	err := s.suggester.Run(s.ctx, "user-1", "Alice")
	s.Require().NoError(err)

	whispers := s.gw.Whispers()
	s.Require().NotEmpty(whispers)
	s.Contains(whispers[len(whispers)-1].Content, "took too long")
	s.Len(s.gw.Deleted(), 1)
}

func (s *SuggesterSuite) TestOtherUsersCannotAdvanceTheFlow() {
	done := make(chan error, 1)
	go func() {
		done <- s.suggester.Run(s.ctx, "user-1", "Alice")
	}()

	s.Require().Eventually(func() bool {
		return s.dispatcher.OpenWaits() == 1
	}, time.Second, time.Millisecond)

	// Someone else talking in another DM must not advance the flow
	s.dispatcher.HandleMessage(s.ctx, model.TextMessage{
		AuthorID:  "user-2",
		ChannelID: "dm-user-2",
		Content:   "hijack",
	})
	s.Equal(1, s.dispatcher.OpenWaits())

	s.dispatcher.HandleMessage(s.ctx, model.TextMessage{AuthorID: "user-1", ChannelID: "dm-user-1", Content: "q"})
	s.answer("opts")
	s.answer("ans")
	s.Require().NoError(<-done)

	var review bool
	for _, msg := range s.gw.Sent() {
		if msg.ChannelID == reviewChannel {
			review = true
			s.NotContains(msg.Content, "hijack")
		}
	}
	s.True(review)
}
