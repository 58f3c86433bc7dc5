package rolepanel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/splitbot-dev/splitbot/internal/gateway/gatewaytest"
	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/storage/memory"
	"github.com/splitbot-dev/splitbot/internal/testutil"
)

type RolePanelSuite struct {
	suite.Suite
	gw         *gatewaytest.Fake
	registry   *Registry
	toggler    *Toggler
	rehydrator *Rehydrator
	ctx        context.Context
}

func TestRolePanelSuite(t *testing.T) {
	suite.Run(t, new(RolePanelSuite))
}

func (s *RolePanelSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.gw = gatewaytest.New()
	s.registry = NewRegistry(memory.New(), logger)
	s.toggler = NewToggler(s.gw, logger)
	s.rehydrator = NewRehydrator(s.registry, s.gw, logger)
	s.ctx = context.Background()
}

func (s *RolePanelSuite) binding(guildID model.GuildID, msgID model.MessageID) *model.ComponentBinding {
	return &model.ComponentBinding{
		MessageID: msgID,
		ChannelID: "chan-1",
		GuildID:   guildID,
		Buttons: []model.ButtonSpec{
			{Label: "Chapter 1", ControlID: "ctrl-1", RoleID: "role-1"},
			{Label: "Chapter 2", ControlID: "ctrl-2", RoleID: "role-2"},
		},
	}
}

// Registry tests

func (s *RolePanelSuite) TestReplaceThenLatest() {
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))

	got, err := s.registry.Latest(s.ctx, "guild-1")
	s.Require().NoError(err)
	s.Equal(model.MessageID("msg-1"), got.MessageID)
}

func (s *RolePanelSuite) TestReplaceLeavesOnlyNewestBinding() {
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-2")))

	got, err := s.registry.Latest(s.ctx, "guild-1")
	s.Require().NoError(err)
	s.Equal(model.MessageID("msg-2"), got.MessageID)

	all, err := s.registry.All(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(model.MessageID("msg-2"), all[0].MessageID)
}

func (s *RolePanelSuite) TestLatestNotFound() {
	_, err := s.registry.Latest(s.ctx, "guild-9")
	s.ErrorIs(err, model.ErrBindingNotFound)
}

func (s *RolePanelSuite) TestLookupAction() {
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))

	roleID, err := s.registry.LookupAction(s.ctx, "guild-1", "ctrl-2")
	s.Require().NoError(err)
	s.Equal(model.RoleID("role-2"), roleID)
}

func (s *RolePanelSuite) TestLookupActionUnknownControl() {
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))

	_, err := s.registry.LookupAction(s.ctx, "guild-1", "ctrl-9")
	s.ErrorIs(err, model.ErrUnknownControl)
}

func (s *RolePanelSuite) TestLookupActionNoBinding() {
	_, err := s.registry.LookupAction(s.ctx, "guild-9", "ctrl-1")
	s.ErrorIs(err, model.ErrBindingNotFound)
}

// Toggler tests

func (s *RolePanelSuite) TestToggleIsItsOwnInverse() {
	s.gw.DefineRole("role-1", "Chapter 1")

	s.Require().NoError(s.toggler.Toggle(s.ctx, "guild-1", "user-1", "role-1"))
	has, err := s.gw.HasRole(s.ctx, "guild-1", "user-1", "role-1")
	s.Require().NoError(err)
	s.True(has)

	s.Require().NoError(s.toggler.Toggle(s.ctx, "guild-1", "user-1", "role-1"))
	has, err = s.gw.HasRole(s.ctx, "guild-1", "user-1", "role-1")
	s.Require().NoError(err)
	s.False(has)

	whispers := s.gw.Whispers()
	s.Require().Len(whispers, 2)
	s.Equal("Added Chapter 1 role!", whispers[0].Content)
	s.Equal("Removed Chapter 1 role!", whispers[1].Content)
}

func (s *RolePanelSuite) TestToggleMissingRole() {
	s.Require().NoError(s.toggler.Toggle(s.ctx, "guild-1", "user-1", "role-9"))

	whispers := s.gw.Whispers()
	s.Require().Len(whispers, 1)
	s.Equal("Role not found.", whispers[0].Content)
}

// Rehydration tests

func (s *RolePanelSuite) TestRehydrateRestoresButtons() {
	s.gw.AddGuild("guild-1", "chan-1")
	s.gw.AddMessage("msg-1")
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))

	s.Require().NoError(s.rehydrator.Run(s.ctx))

	buttons := s.gw.AttachedButtons("msg-1")
	s.Require().Len(buttons, 2)
	s.Equal(model.ControlID("ctrl-1"), buttons[0].ControlID)

	// Binding survives for the next restart
	_, err := s.registry.Latest(s.ctx, "guild-1")
	s.NoError(err)
}

func (s *RolePanelSuite) TestRehydratePurgesWhenMessageGone() {
	s.gw.AddGuild("guild-1", "chan-1")
	// msg-1 never registered: it was deleted while the bot was down
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))

	s.Require().NoError(s.rehydrator.Run(s.ctx))

	_, err := s.registry.Latest(s.ctx, "guild-1")
	s.ErrorIs(err, model.ErrBindingNotFound)
}

func (s *RolePanelSuite) TestRehydratePurgesWhenGuildGone() {
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))

	s.Require().NoError(s.rehydrator.Run(s.ctx))

	_, err := s.registry.Latest(s.ctx, "guild-1")
	s.ErrorIs(err, model.ErrBindingNotFound)
}

func (s *RolePanelSuite) TestRehydrateKeepsBindingWhenForbidden() {
	s.gw.AddGuild("guild-1", "chan-1")
	s.gw.AddMessage("msg-1")
	s.gw.ForbiddenChannels["chan-1"] = true
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))

	s.Require().NoError(s.rehydrator.Run(s.ctx))

	// No buttons attached, but the binding stays for a later start
	s.Empty(s.gw.AttachedButtons("msg-1"))
	_, err := s.registry.Latest(s.ctx, "guild-1")
	s.NoError(err)
}

func (s *RolePanelSuite) TestRehydrateContinuesPastBadBindings() {
	// guild-1's panel is gone; guild-2's is fine
	s.Require().NoError(s.registry.Replace(s.ctx, s.binding("guild-1", "msg-1")))

	healthy := s.binding("guild-2", "msg-2")
	healthy.ChannelID = "chan-2"
	s.gw.AddGuild("guild-2", "chan-2")
	s.gw.AddMessage("msg-2")
	s.Require().NoError(s.registry.Replace(s.ctx, healthy))

	s.Require().NoError(s.rehydrator.Run(s.ctx))

	s.Len(s.gw.AttachedButtons("msg-2"), 2)
	_, err := s.registry.Latest(s.ctx, "guild-1")
	s.ErrorIs(err, model.ErrBindingNotFound)
}

func (s *RolePanelSuite) TestRehydrateNoBindings() {
	s.NoError(s.rehydrator.Run(s.ctx))
}
