package bot

import (
	"context"
	"sync"

	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/testutil"
)

// recordingHandler captures what the router forwards
type recordingHandler struct {
	mu       sync.Mutex
	messages []model.TextMessage
	controls []model.ControlActivated
}

func (h *recordingHandler) HandleMessage(ctx context.Context, msg model.TextMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

func (h *recordingHandler) HandleControl(ctx context.Context, ev model.ControlActivated) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.controls = append(h.controls, ev)
}

func (s *BotSuite) routerWith(next *recordingHandler) *Router {
	return NewRouter(s.bot, next, "!", testutil.NopLogger())
}

func (s *BotSuite) TestRouterRunsCommands() {
	router := s.routerWith(&recordingHandler{})

	router.HandleMessage(s.ctx, model.TextMessage{
		AuthorID:   "user-1",
		AuthorName: "Alice",
		ChannelID:  "chan-1",
		GuildID:    "guild-1",
		Content:    "!pride",
	})

	last := s.gw.LastSent()
	s.Require().NotNil(last)
	s.Contains(last.Content, "🌈")
}

func (s *BotSuite) TestRouterPassesCommandArgument() {
	s.provider.profile = s.verifiedProfile()
	router := s.routerWith(&recordingHandler{})

	router.HandleMessage(s.ctx, model.TextMessage{
		AuthorID:   "user-1",
		AuthorName: "Alice",
		Content:    "!link alice_runs",
	})

	link, err := s.storage.GetLink(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("alice_runs", link.SrcUsername)
}

func (s *BotSuite) TestRouterForwardsChatter() {
	next := &recordingHandler{}
	router := s.routerWith(next)

	router.HandleMessage(s.ctx, model.TextMessage{AuthorID: "user-1", Content: "2:05"})
	router.HandleMessage(s.ctx, model.TextMessage{AuthorID: "user-1", Content: "!notacommand"})

	s.Require().Len(next.messages, 2)
	s.Equal("2:05", next.messages[0].Content)
	s.Equal("!notacommand", next.messages[1].Content)
}

func (s *BotSuite) TestRouterForwardsControls() {
	next := &recordingHandler{}
	router := s.routerWith(next)

	router.HandleControl(s.ctx, model.ControlActivated{ControlID: "ctrl-1"})

	s.Require().Len(next.controls, 1)
	s.Equal(model.ControlID("ctrl-1"), next.controls[0].ControlID)
}

func (s *BotSuite) TestRouterCommandNamesAreCaseInsensitive() {
	router := s.routerWith(&recordingHandler{})

	router.HandleMessage(s.ctx, model.TextMessage{AuthorID: "user-1", ChannelID: "chan-1", Content: "!PRIDE"})

	last := s.gw.LastSent()
	s.Require().NotNil(last)
	s.Contains(last.Content, "🌈")
}
