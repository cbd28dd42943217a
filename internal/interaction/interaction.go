// Package interaction turns UI intents into reconciler calls, suppressing duplicate
// triggers per line and surfacing every outcome through the notification sink.
package interaction

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notify"
)

// Outcome tells the caller what happened to a trigger.
type Outcome int

const (
	Applied Outcome = iota
	// Ignored: dropped because the same line or food already has a call in flight.
	Ignored
	Failed
	// Rejected: the trigger itself was invalid (e.g. a quantity below 1); no call was made.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Ignored:
		return "ignored"
	case Rejected:
		return "rejected"
	default:
		return "failed"
	}
}

type Cart interface {
	AddToCart(ctx context.Context, foodID domain.ID, quantity int) (*domain.CartSnapshot, error)
	UpdateItem(ctx context.Context, lineID domain.ID, quantity int) error
	RemoveItem(ctx context.Context, lineID domain.ID) error
	ClearCart(ctx context.Context) error
}

type Notifier interface {
	Post(message string, severity notify.Severity, d time.Duration) notify.ID
}

type Identity interface {
	Authenticated() bool
}
