package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// SentMessage records one message posted through the fake
type SentMessage struct {
	ID        model.MessageID
	ChannelID model.ChannelID
	Content   string
	Buttons   []model.ButtonSpec
}

// Whisper records one user-only reply
type Whisper struct {
	UserID  model.UserID
	Content string
	Buttons []model.ButtonSpec
}

type memberKey struct {
	GuildID model.GuildID
	UserID  model.UserID
	RoleID  model.RoleID
}

// Fake is an in-memory Gateway for tests. The zero value from New knows
// no guilds, channels, or roles; seed it before use.
type Fake struct {
	mu sync.Mutex

	nextID   int
	sent     []SentMessage
	whispers []Whisper
	deleted  []model.MessageID
	attached map[model.MessageID][]model.ButtonSpec

	guilds   map[model.GuildID]bool
	channels map[model.ChannelID]bool
	messages map[model.MessageID]bool
	roles    map[model.RoleID]string
	members  map[memberKey]bool

	// ForbiddenChannels makes resolution and sends into these channels
	// fail with ErrPermissionDenied
	ForbiddenChannels map[model.ChannelID]bool
}

// Ensure Fake implements Gateway
var _ gateway.Gateway = (*Fake)(nil)

// New creates an empty fake gateway
func New() *Fake {
	return &Fake{
		attached:          make(map[model.MessageID][]model.ButtonSpec),
		guilds:            make(map[model.GuildID]bool),
		channels:          make(map[model.ChannelID]bool),
		messages:          make(map[model.MessageID]bool),
		roles:             make(map[model.RoleID]string),
		members:           make(map[memberKey]bool),
		ForbiddenChannels: make(map[model.ChannelID]bool),
	}
}

// Seeding helpers

// AddGuild registers a guild and its channels as existing
func (f *Fake) AddGuild(guildID model.GuildID, channels ...model.ChannelID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guilds[guildID] = true
	for _, ch := range channels {
		f.channels[ch] = true
	}
}

// AddMessage registers a message as existing
func (f *Fake) AddMessage(id model.MessageID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[id] = true
}

// DefineRole registers a role by name
func (f *Fake) DefineRole(roleID model.RoleID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[roleID] = name
}

// RemoveGuild forgets a guild (its channels stay unless removed too)
func (f *Fake) RemoveGuild(guildID model.GuildID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.guilds, guildID)
}

// RemoveChannel forgets a channel
func (f *Fake) RemoveChannel(channelID model.ChannelID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channelID)
}

// RemoveMessage forgets a message
func (f *Fake) RemoveMessage(id model.MessageID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, id)
}

// DeleteRole forgets a role without touching memberships
func (f *Fake) DeleteRole(roleID model.RoleID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.roles, roleID)
}

// Inspection helpers

// Sent returns all messages posted so far
func (f *Fake) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

// LastSent returns the most recent posted message, or nil
func (f *Fake) LastSent() *SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	msg := f.sent[len(f.sent)-1]
	return &msg
}

// Whispers returns all user-only replies so far
func (f *Fake) Whispers() []Whisper {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Whisper, len(f.whispers))
	copy(out, f.whispers)
	return out
}

// Deleted returns the IDs of deleted messages
func (f *Fake) Deleted() []model.MessageID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.MessageID, len(f.deleted))
	copy(out, f.deleted)
	return out
}

// AttachedButtons returns the controls currently attached to a message
func (f *Fake) AttachedButtons(id model.MessageID) []model.ButtonSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attached[id]
}

// Gateway implementation

func (f *Fake) SendMessage(ctx context.Context, channelID model.ChannelID, content string) (model.MessageID, error) {
	return f.send(channelID, content, nil)
}

func (f *Fake) SendButtons(ctx context.Context, channelID model.ChannelID, content string, buttons []model.ButtonSpec) (model.MessageID, error) {
	return f.send(channelID, content, buttons)
}

func (f *Fake) send(channelID model.ChannelID, content string, buttons []model.ButtonSpec) (model.MessageID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForbiddenChannels[channelID] {
		return "", fmt.Errorf("send to %s: %w", channelID, gateway.ErrPermissionDenied)
	}
	f.nextID++
	id := model.MessageID(fmt.Sprintf("msg-%d", f.nextID))
	f.sent = append(f.sent, SentMessage{ID: id, ChannelID: channelID, Content: content, Buttons: buttons})
	f.messages[id] = true
	if len(buttons) > 0 {
		f.attached[id] = buttons
	}
	return id, nil
}

func (f *Fake) AttachButtons(ctx context.Context, channelID model.ChannelID, messageID model.MessageID, buttons []model.ButtonSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.messages[messageID] {
		return fmt.Errorf("message %s: %w", messageID, gateway.ErrNotFound)
	}
	f.attached[messageID] = buttons
	return nil
}

func (f *Fake) Whisper(ctx context.Context, userID model.UserID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whispers = append(f.whispers, Whisper{UserID: userID, Content: content})
	return nil
}

func (f *Fake) WhisperButtons(ctx context.Context, userID model.UserID, content string, buttons []model.ButtonSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whispers = append(f.whispers, Whisper{UserID: userID, Content: content, Buttons: buttons})
	return nil
}

func (f *Fake) OpenDirectChannel(ctx context.Context, userID model.UserID) (model.ChannelID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := model.ChannelID("dm-" + string(userID))
	f.channels[ch] = true
	return ch, nil
}

func (f *Fake) DeleteMessage(ctx context.Context, channelID model.ChannelID, messageID model.MessageID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.messages[messageID] {
		return fmt.Errorf("message %s: %w", messageID, gateway.ErrNotFound)
	}
	delete(f.messages, messageID)
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *Fake) ResolveGuild(ctx context.Context, guildID model.GuildID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.guilds[guildID] {
		return fmt.Errorf("guild %s: %w", guildID, gateway.ErrNotFound)
	}
	return nil
}

func (f *Fake) ResolveChannel(ctx context.Context, guildID model.GuildID, channelID model.ChannelID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForbiddenChannels[channelID] {
		return fmt.Errorf("channel %s: %w", channelID, gateway.ErrPermissionDenied)
	}
	if !f.channels[channelID] {
		return fmt.Errorf("channel %s: %w", channelID, gateway.ErrNotFound)
	}
	return nil
}

func (f *Fake) ResolveMessage(ctx context.Context, channelID model.ChannelID, messageID model.MessageID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForbiddenChannels[channelID] {
		return fmt.Errorf("channel %s: %w", channelID, gateway.ErrPermissionDenied)
	}
	if !f.messages[messageID] {
		return fmt.Errorf("message %s: %w", messageID, gateway.ErrNotFound)
	}
	return nil
}

func (f *Fake) RoleName(ctx context.Context, guildID model.GuildID, roleID model.RoleID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.roles[roleID]
	if !ok {
		return "", fmt.Errorf("role %s: %w", roleID, gateway.ErrNotFound)
	}
	return name, nil
}

func (f *Fake) HasRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[memberKey{guildID, userID, roleID}], nil
}

func (f *Fake) AddRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[roleID]; !ok {
		return fmt.Errorf("role %s: %w", roleID, gateway.ErrNotFound)
	}
	f.members[memberKey{guildID, userID, roleID}] = true
	return nil
}

func (f *Fake) RemoveRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[roleID]; !ok {
		return fmt.Errorf("role %s: %w", roleID, gateway.ErrNotFound)
	}
	delete(f.members, memberKey{guildID, userID, roleID})
	return nil
}
