package checkout

import (
	"context"

	"minicart/internal/domain"
)

// Event is published when the user initiates checkout on a non-empty cart.
// The checkout flow itself lives outside this service.
type Event struct {
	Items         []domain.LineItem `json:"items"`
	SubtotalCents int64             `json:"subtotalCents"`
	ItemCount     int               `json:"itemCount"`
}

type Notifier interface {
	CheckoutInitiated(ctx context.Context, event Event) error
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) CheckoutInitiated(context.Context, Event) error { return nil }
