package listeners

import (
	"context"

	"equipment-system/internal/events"
	"equipment-system/pkg/eventbus"
)

// Broadcaster is the live alert feed, see pkg/websocket.Hub.
type Broadcaster interface {
	Broadcast(messageType string, payload interface{}) error
}

// FeedListener forwards domain events to every connected alert subscriber.
type FeedListener struct {
	feed Broadcaster
}

func NewFeedListener(feed Broadcaster) *FeedListener {
	return &FeedListener{feed: feed}
}

func (l *FeedListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.StockLowName, l.forward)
	bus.Subscribe(events.EquipmentStatusChangedName, l.forward)
}

func (l *FeedListener) forward(ctx context.Context, event eventbus.Event) error {
	return l.feed.Broadcast(event.Name(), event)
}
