// Package notify delivers new-message events to live subscribers.
//
// Delivery is fire-and-forget: a publisher does not wait for acknowledgement
// and nothing is replayed for subscribers that connect later.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher broadcasts a named event to every current subscriber.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Envelope is the frame written to stream-style sinks (websocket, redis).
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encodeEnvelope(event string, payload any) ([]byte, error) {
	body, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	return body, nil
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error {
	return nil
}
