package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// Gateway is a line-oriented local transport for running the bot
// without a real chat connection. Lines typed on the reader arrive as
// messages from a fixed local user; outgoing traffic is written to the
// writer. Every reference resolves, and role state lives in memory.
//
// Input forms:
//
//	any text          delivered as a chat message
//	/press <id>       delivered as a control activation
type Gateway struct {
	mu sync.Mutex

	out    io.Writer
	nextID int

	userID    model.UserID
	userName  string
	channelID model.ChannelID
	guildID   model.GuildID

	messages map[model.MessageID]bool
	members  map[model.RoleID]bool

	logger *slog.Logger
}

// Ensure Gateway implements the interface
var _ gateway.Gateway = (*Gateway)(nil)

// New creates a console gateway writing to out
func New(out io.Writer, logger *slog.Logger) *Gateway {
	return &Gateway{
		out:       out,
		userID:    "local-user",
		userName:  "local",
		channelID: "console",
		guildID:   "local-guild",
		messages:  make(map[model.MessageID]bool),
		members:   make(map[model.RoleID]bool),
		logger:    logger.With(slog.String("component", "console")),
	}
}

// Run reads lines from in and delivers them to the handler until in is
// exhausted or ctx is canceled
func (g *Gateway) Run(ctx context.Context, in io.Reader, handler gateway.Handler) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if id, ok := strings.CutPrefix(line, "/press "); ok {
			handler.HandleControl(ctx, model.ControlActivated{
				ActorID:   g.userID,
				ActorName: g.userName,
				GuildID:   g.guildID,
				ChannelID: g.channelID,
				ControlID: model.ControlID(strings.TrimSpace(id)),
			})
			continue
		}

		// Dispatch concurrently so a suspended round doesn't stall the
		// read loop
		go handler.HandleMessage(ctx, model.TextMessage{
			AuthorID:   g.userID,
			AuthorName: g.userName,
			ChannelID:  g.channelID,
			GuildID:    g.guildID,
			Content:    line,
		})
	}
	return scanner.Err()
}

func (g *Gateway) print(format string, args ...any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintf(g.out, format+"\n", args...)
}

func (g *Gateway) newMessageID() model.MessageID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := model.MessageID(fmt.Sprintf("console-%d", g.nextID))
	g.messages[id] = true
	return id
}

func (g *Gateway) SendMessage(ctx context.Context, channelID model.ChannelID, content string) (model.MessageID, error) {
	id := g.newMessageID()
	g.print("[#%s] %s", channelID, content)
	return id, nil
}

func (g *Gateway) SendButtons(ctx context.Context, channelID model.ChannelID, content string, buttons []model.ButtonSpec) (model.MessageID, error) {
	id := g.newMessageID()
	g.print("[#%s] %s", channelID, content)
	for _, b := range buttons {
		g.print("[#%s]   [%s] /press %s", channelID, b.Label, b.ControlID)
	}
	return id, nil
}

func (g *Gateway) AttachButtons(ctx context.Context, channelID model.ChannelID, messageID model.MessageID, buttons []model.ButtonSpec) error {
	for _, b := range buttons {
		g.print("[#%s] (%s) [%s] /press %s", channelID, messageID, b.Label, b.ControlID)
	}
	return nil
}

func (g *Gateway) Whisper(ctx context.Context, userID model.UserID, content string) error {
	g.print("(to %s) %s", userID, content)
	return nil
}

func (g *Gateway) WhisperButtons(ctx context.Context, userID model.UserID, content string, buttons []model.ButtonSpec) error {
	g.print("(to %s) %s", userID, content)
	for _, b := range buttons {
		g.print("(to %s)   [%s] /press %s", userID, b.Label, b.ControlID)
	}
	return nil
}

func (g *Gateway) OpenDirectChannel(ctx context.Context, userID model.UserID) (model.ChannelID, error) {
	return model.ChannelID("dm-" + string(userID)), nil
}

func (g *Gateway) DeleteMessage(ctx context.Context, channelID model.ChannelID, messageID model.MessageID) error {
	g.mu.Lock()
	delete(g.messages, messageID)
	g.mu.Unlock()
	g.print("[#%s] (deleted %s)", channelID, messageID)
	return nil
}

// Reference resolution: the console world contains everything

func (g *Gateway) ResolveGuild(ctx context.Context, guildID model.GuildID) error {
	return nil
}

func (g *Gateway) ResolveChannel(ctx context.Context, guildID model.GuildID, channelID model.ChannelID) error {
	return nil
}

func (g *Gateway) ResolveMessage(ctx context.Context, channelID model.ChannelID, messageID model.MessageID) error {
	return nil
}

// Role management: roles are named by their ID and membership is kept
// in memory for the single local user

func (g *Gateway) RoleName(ctx context.Context, guildID model.GuildID, roleID model.RoleID) (string, error) {
	return string(roleID), nil
}

func (g *Gateway) HasRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[roleID], nil
}

func (g *Gateway) AddRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[roleID] = true
	return nil
}

func (g *Gateway) RemoveRole(ctx context.Context, guildID model.GuildID, userID model.UserID, roleID model.RoleID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, roleID)
	return nil
}
