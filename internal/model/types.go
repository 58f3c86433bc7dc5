package model

// UserID identifies a chat user
type UserID string

// ChannelID identifies a channel within a guild (or a DM channel)
type ChannelID string

// GuildID identifies a guild (server)
type GuildID string

// MessageID identifies a single message within a channel
type MessageID string

// RoleID identifies a grantable role within a guild
type RoleID string

// ControlID identifies an interactive control (button) attached to a message
type ControlID string

// GameKey names an independent score namespace
type GameKey string

// Score namespaces. Each game keeps its own totals; there is no
// cross-game aggregation.
const (
	GameGuessTime GameKey = "guess_time"
	GameTrivia    GameKey = "trivia"
)

// ScoreRecord is one user's total for a single game
type ScoreRecord struct {
	UserID      UserID
	DisplayName string
	Score       int64
}

// ButtonSpec describes one role button: its label, the control ID the
// gateway reports on activation, and the role the button toggles
type ButtonSpec struct {
	Label     string    `json:"label"`
	ControlID ControlID `json:"control_id"`
	RoleID    RoleID    `json:"role_id"`
}

// ComponentBinding is the durable association between a message's
// buttons and the role toggles they trigger
type ComponentBinding struct {
	MessageID MessageID    `json:"message_id"`
	ChannelID ChannelID    `json:"channel_id"`
	GuildID   GuildID      `json:"guild_id"`
	Buttons   []ButtonSpec `json:"buttons"`
}

// RoleFor resolves a control ID to the role it toggles
func (b *ComponentBinding) RoleFor(id ControlID) (RoleID, bool) {
	for _, btn := range b.Buttons {
		if btn.ControlID == id {
			return btn.RoleID, true
		}
	}
	return "", false
}

// AccountLink ties a chat user to their speedrun.com account
type AccountLink struct {
	UserID      UserID `json:"user_id"`
	ChatName    string `json:"chat_name"`
	SrcUsername string `json:"src_username"`
	SrcUserID   string `json:"src_user_id"`
	ImageURL    string `json:"image_url"`
}
