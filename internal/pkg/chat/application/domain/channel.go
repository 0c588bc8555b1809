package chat

import "strings"

// ConversationChannelPrefix prefixes the realtime channel of every conversation.
const ConversationChannelPrefix = "private-conversation-"

// EventNewMessage is published on a conversation channel after a message is stored.
const EventNewMessage = "new-message"

// ChannelName returns the realtime channel for a conversation.
func ChannelName(conversationID string) string {
	return ConversationChannelPrefix + conversationID
}

// ConversationFromChannel extracts the conversation id embedded in a channel name.
func ConversationFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, ConversationChannelPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
