package bot

import (
	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/services/rounds"
)

func (s *BotSuite) verifiedProfile() *rounds.UserProfile {
	return &rounds.UserProfile{
		ID:           "src-1",
		Username:     "alice_runs",
		ImageURL:     "https://example.com/alice.png",
		ChatName:     "Alice",
		ChatVerified: true,
	}
}

func (s *BotSuite) TestLinkSuccess() {
	s.provider.profile = s.verifiedProfile()

	s.Require().NoError(s.bot.Link(s.ctx, s.inv, "alice_runs"))

	s.Contains(s.lastWhisper(), "successfully linked")

	link, err := s.storage.GetLink(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("alice_runs", link.SrcUsername)
	s.Equal("src-1", link.SrcUserID)
	s.Equal("Alice", link.ChatName)
}

func (s *BotSuite) TestLinkChatNameComparedCaseInsensitively() {
	profile := s.verifiedProfile()
	profile.ChatName = "ALICE"
	s.provider.profile = profile

	s.Require().NoError(s.bot.Link(s.ctx, s.inv, "alice_runs"))
	s.Contains(s.lastWhisper(), "successfully linked")
}

func (s *BotSuite) TestLinkAlreadyLinked() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, &model.AccountLink{
		UserID:      "user-1",
		SrcUsername: "alice_runs",
	}))

	s.Require().NoError(s.bot.Link(s.ctx, s.inv, "other_account"))
	s.Contains(s.lastWhisper(), "already linked to the speedrun.com account 'alice_runs'")
}

func (s *BotSuite) TestLinkUnknownAccount() {
	s.provider.lookupErr = rounds.ErrNotFound

	s.Require().NoError(s.bot.Link(s.ctx, s.inv, "nobody"))
	s.Contains(s.lastWhisper(), "Couldn't find user 'nobody'")
}

func (s *BotSuite) TestLinkNoChatConnection() {
	profile := s.verifiedProfile()
	profile.ChatName = ""
	s.provider.profile = profile

	s.Require().NoError(s.bot.Link(s.ctx, s.inv, "alice_runs"))
	s.Contains(s.lastWhisper(), "Couldn't find a chat account")
}

func (s *BotSuite) TestLinkUnverifiedChatConnection() {
	profile := s.verifiedProfile()
	profile.ChatVerified = false
	s.provider.profile = profile

	s.Require().NoError(s.bot.Link(s.ctx, s.inv, "alice_runs"))
	s.Contains(s.lastWhisper(), "not verified")
}

func (s *BotSuite) TestLinkBelongsToSomeoneElse() {
	profile := s.verifiedProfile()
	profile.ChatName = "Mallory"
	s.provider.profile = profile

	s.Require().NoError(s.bot.Link(s.ctx, s.inv, "alice_runs"))
	s.Contains(s.lastWhisper(), "already linked to the chat account 'Mallory'")

	_, err := s.storage.GetLink(s.ctx, "user-1")
	s.ErrorIs(err, model.ErrLinkNotFound)
}

func (s *BotSuite) TestShowLinkWithoutLink() {
	s.Require().NoError(s.bot.Link(s.ctx, s.inv, ""))
	s.Contains(s.lastWhisper(), "no linked account")
}

func (s *BotSuite) TestShowLinkThenUnlink() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, &model.AccountLink{
		UserID:      "user-1",
		SrcUsername: "alice_runs",
	}))

	s.Require().NoError(s.bot.Link(s.ctx, s.inv, ""))

	whispers := s.gw.Whispers()
	s.Require().NotEmpty(whispers)
	shown := whispers[len(whispers)-1]
	s.Contains(shown.Content, "alice_runs")
	s.Require().Len(shown.Buttons, 1)
	s.Equal("Unlink Account", shown.Buttons[0].Label)

	s.dispatcher.HandleControl(s.ctx, model.ControlActivated{
		ActorID:   "user-1",
		GuildID:   "guild-1",
		ControlID: shown.Buttons[0].ControlID,
	})

	s.Contains(s.lastWhisper(), "successfully unlinked")
	_, err := s.storage.GetLink(s.ctx, "user-1")
	s.ErrorIs(err, model.ErrLinkNotFound)
}

func (s *BotSuite) TestUnlinkButtonIsSingleUse() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, &model.AccountLink{
		UserID:      "user-1",
		SrcUsername: "alice_runs",
	}))
	s.Require().NoError(s.bot.Link(s.ctx, s.inv, ""))

	whispers := s.gw.Whispers()
	controlID := whispers[len(whispers)-1].Buttons[0].ControlID

	s.dispatcher.HandleControl(s.ctx, model.ControlActivated{ActorID: "user-1", ControlID: controlID})
	before := len(s.gw.Whispers())

	// A second press finds no transient handler and no stored binding
	s.dispatcher.HandleControl(s.ctx, model.ControlActivated{ActorID: "user-1", ControlID: controlID})
	s.Len(s.gw.Whispers(), before)
}
