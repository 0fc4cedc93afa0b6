package models

import "time"

// ChatMessage is one message in a team chat room. Delivery is handled by the
// realtime layer; this model only backs the history API.
type ChatMessage struct {
	ID           string    `json:"id" dynamodbav:"id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	UserNickname string    `json:"user_nickname" dynamodbav:"user_nickname"`
	ChatRoomID   string    `json:"chat_room_id" dynamodbav:"chat_room_id"`
	Message      string    `json:"message" dynamodbav:"message"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
}

func (m *ChatMessage) GetPK() string {
	return "CHAT#" + m.ChatRoomID
}

func (m *ChatMessage) GetSK() string {
	return "MSG#" + m.CreatedAt.UTC().Format(time.RFC3339Nano) + "#" + m.ID
}
