package model

// TextMessage is a chat message delivered by the gateway
type TextMessage struct {
	AuthorID   UserID
	AuthorName string
	ChannelID  ChannelID
	GuildID    GuildID
	Content    string
}

// ControlActivated is a button press delivered by the gateway
type ControlActivated struct {
	ActorID   UserID
	ActorName string
	GuildID   GuildID
	ChannelID ChannelID
	ControlID ControlID
}
