package messaging

import (
	"context"
)

// SalesCreatedSubject is the subject a SaleCreated event is published on.
const SalesCreatedSubject = "sales.created"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards every event. Used when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
