package sse

import (
	"time"

	"github.com/aether-industries/storefront-api/internal/models"
)

// OrderNotifier is the interface services use to emit checkout events.
type OrderNotifier interface {
	NotifyOrderCreated(o *models.Order)
}

// HubNotifier implements OrderNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyOrderCreated(o *models.Order) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(orderToEvent(o))
}

func orderToEvent(o *models.Order) *OrderEvent {
	eventType := EventOrderCreated
	if o.Type == models.OrderTypeQuote {
		eventType = EventQuoteCreated
	}
	itemCount := 0
	for _, line := range o.Items {
		itemCount += line.Quantity
	}
	return &OrderEvent{
		Event:     eventType,
		OrderID:   o.ID,
		Type:      string(o.Type),
		Email:     o.Email,
		ItemCount: itemCount,
		Total:     o.Total.StringFixed(2),
		Timestamp: time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyOrderCreated(o *models.Order) {}
