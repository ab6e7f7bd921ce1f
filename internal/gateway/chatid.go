package gateway

import (
	"strings"

	"github.com/popeskul/waha-sync/internal/models"
)

const (
	suffixContact   = "@c.us"
	suffixWhatsApp  = "@s.whatsapp.net"
	suffixLID       = "@lid"
	suffixGroup     = "@g.us"
	suffixBroadcast = "@broadcast"
)

var phoneSuffixes = strings.NewReplacer(
	suffixContact, "",
	suffixWhatsApp, "",
	suffixLID, "",
)

// PhoneNumber strips the known one-to-one suffixes from a chat id:
// 5541999990000@c.us -> 5541999990000.
func PhoneNumber(chatID models.ChatID) string {
	return phoneSuffixes.Replace(string(chatID))
}

// IsGroup reports whether the chat id addresses a group conversation.
func IsGroup(chatID models.ChatID) bool {
	return strings.HasSuffix(string(chatID), suffixGroup)
}

// IsBroadcast reports whether the chat id is a broadcast list or the
// status@broadcast pseudo-chat.
func IsBroadcast(chatID models.ChatID) bool {
	return strings.HasSuffix(string(chatID), suffixBroadcast)
}

// Syncable reports whether messages of this chat belong in the message store.
func Syncable(chatID models.ChatID) bool {
	return chatID != "" && !IsGroup(chatID) && !IsBroadcast(chatID)
}
