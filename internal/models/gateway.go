package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChatID is a gateway chat identifier such as 5541999990000@c.us. Depending on
// the engine the gateway sends it either as a plain string or as an object
// carrying a _serialized field.
type ChatID string

func (c *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ChatID(s)
		return nil
	}

	var obj struct {
		Serialized string `json:"_serialized"`
		User       string `json:"user"`
		Server     string `json:"server"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid chat id: %w", err)
	}
	switch {
	case obj.Serialized != "":
		*c = ChatID(obj.Serialized)
	case obj.User != "" && obj.Server != "":
		*c = ChatID(obj.User + "@" + obj.Server)
	default:
		*c = ""
	}
	return nil
}

// GatewayChat is one entry of GET /api/{session}/chats.
type GatewayChat struct {
	ID   ChatID `json:"id"`
	Name string `json:"name,omitempty"`
}

// GatewayMessage is one entry of GET /api/{session}/chats/{chatId}/messages.
type GatewayMessage struct {
	ID        string           `json:"id"`
	Timestamp int64            `json:"timestamp"`
	From      string           `json:"from"`
	To        string           `json:"to,omitempty"`
	Body      string           `json:"body"`
	FromMe    bool             `json:"fromMe"`
	Type      string           `json:"type,omitempty"`
	HasMedia  bool             `json:"hasMedia,omitempty"`
	Data      *GatewayMsgExtra `json:"_data,omitempty"`
}

type GatewayMsgExtra struct {
	NotifyName string `json:"notifyName,omitempty"`
}

// NotifyName returns the sender display name, if the gateway supplied one.
func (m *GatewayMessage) NotifyName() string {
	if m.Data == nil {
		return ""
	}
	return m.Data.NotifyName
}

// GatewaySessionInfo is the body of GET /api/sessions/{name}.
type GatewaySessionInfo struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// WebhookEvent is the envelope the gateway POSTs to registered webhooks.
type WebhookEvent struct {
	Event   string          `json:"event"`
	Session string          `json:"session"`
	Engine  string          `json:"engine,omitempty"`
	Payload json.RawMessage `json:"payload"`
}
