// Package models defines data structures used throughout the application.
package models

import "time"

type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

const (
	DefaultMessageType    = "text"
	MessageStatusReceived = "received"
)

// ChatMessage represents a row of the chat_messages table.
type ChatMessage struct {
	ID               string    `db:"id" json:"id"`
	SessionName      string    `db:"session_name" json:"sessionName"`
	PhoneNumber      string    `db:"phone_number" json:"phoneNumber"`
	ContactName      string    `db:"contact_name" json:"contactName"`
	Direction        Direction `db:"direction" json:"direction"`
	MessageType      string    `db:"message_type" json:"messageType"`
	Content          string    `db:"content" json:"content"`
	GatewayMessageID string    `db:"waha_message_id" json:"gatewayMessageId"`
	Status           string    `db:"status" json:"status"`
	IsRead           bool      `db:"is_read" json:"isRead"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// NewMessageEvent is the payload broadcast for every stored message.
type NewMessageEvent struct {
	ID          string    `json:"id"`
	SessionName string    `json:"sessionName"`
	PhoneNumber string    `json:"phoneNumber"`
	ContactName string    `json:"contactName"`
	Direction   Direction `json:"direction"`
	MessageType string    `json:"messageType"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (m *ChatMessage) Event() NewMessageEvent {
	return NewMessageEvent{
		ID:          m.ID,
		SessionName: m.SessionName,
		PhoneNumber: m.PhoneNumber,
		ContactName: m.ContactName,
		Direction:   m.Direction,
		MessageType: m.MessageType,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
	}
}

// MessageFilter narrows stored-message listings. Empty fields match everything.
type MessageFilter struct {
	SessionName string
	PhoneNumber string
}
