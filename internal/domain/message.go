package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ChatMessage is a relayed group-chat message. IDs are ULIDs from the
// package's monotonic entropy source, so two messages stamped in the same
// millisecond still sort and never collide.
type ChatMessage struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChatMessage(roomID, sender, message string) ChatMessage {
	return ChatMessage{
		ID:        ulid.Make().String(),
		RoomID:    roomID,
		Message:   message,
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}
}
