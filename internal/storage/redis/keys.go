package redis

import (
	"github.com/splitbot-dev/splitbot/internal/model"
)

// Key layout:
//
//	splitbot:scores:{game}        hash user_id -> total score
//	splitbot:scores:{game}:names  hash user_id -> last-seen display name
//	splitbot:rolepanel:{guild}    JSON ComponentBinding
//	splitbot:rolepanel:guilds     set of guild IDs with a stored binding
//	splitbot:links:{user}         JSON AccountLink

const keyPrefix = "splitbot:"

func scoreKey(game model.GameKey) string {
	return keyPrefix + "scores:" + string(game)
}

func scoreNamesKey(game model.GameKey) string {
	return scoreKey(game) + ":names"
}

func bindingKey(guildID model.GuildID) string {
	return keyPrefix + "rolepanel:" + string(guildID)
}

func bindingIndexKey() string {
	return keyPrefix + "rolepanel:guilds"
}

func linkKey(userID model.UserID) string {
	return keyPrefix + "links:" + string(userID)
}
