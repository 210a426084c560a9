package core

import (
	"context"
)

// EventType names a logged contract event.
type EventType string

const (
	EventRegister      EventType = "register"
	EventTokenTransfer EventType = "token_transfer"
)

// Event is a structured log entry produced by a committed call.
type Event struct {
	Type      EventType `json:"type" cbor:"type"`
	AuctionID AuctionID `json:"auction_id" cbor:"auction_id"`

	// Set for EventTokenTransfer only.
	To           AccountAddress `json:"to,omitempty" cbor:"to,omitempty"`
	TokenID      TokenID        `json:"token_id,omitempty" cbor:"token_id,omitempty"`
	TokenAmount  TokenAmount    `json:"token_amount,omitempty" cbor:"token_amount,omitempty"`
	StateChanged bool           `json:"state_changed,omitempty" cbor:"state_changed,omitempty"`
}

// RegisterEvent is emitted once per created auction.
func RegisterEvent(id AuctionID) Event {
	return Event{Type: EventRegister, AuctionID: id}
}

// EventLogger receives the events of committed calls in emission order.
type EventLogger interface {
	Log(ctx context.Context, event Event) error
}

// eventBuffer holds the events of the running call until it commits.
type eventBuffer struct {
	events []Event
}

func (b *eventBuffer) add(e Event) {
	b.events = append(b.events, e)
}
