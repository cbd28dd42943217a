package interaction

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/lineguard"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/sirupsen/logrus"
)

// CartLines handles the quantity and remove controls of rendered cart lines.
type CartLines struct {
	cart  Cart
	notes Notifier
	guard *lineguard.Guard[domain.ID]
	log   logrus.FieldLogger
}

func NewCartLines(cart Cart, notes Notifier, log logrus.FieldLogger) *CartLines {
	return &CartLines{
		cart:  cart,
		notes: notes,
		guard: lineguard.New[domain.ID](),
		log:   log,
	}
}

// Busy reports whether line has an operation in flight.
func (c *CartLines) Busy(lineID domain.ID) bool {
	return c.guard.Busy(lineID)
}

// ChangeQuantity rejects quantities below 1 and ignores triggers on a busy line.
func (c *CartLines) ChangeQuantity(ctx context.Context, line domain.CartLine, quantity int) (Outcome, error) {
	if quantity < 1 {
		return Rejected, nil
	}
	token, ok := c.guard.TryAcquire(line.ID)
	if !ok {
		c.log.WithField("line_id", line.ID).Debug("line busy, quantity change dropped")
		return Ignored, nil
	}
	defer c.guard.Release(line.ID, token)

	if err := c.cart.UpdateItem(ctx, line.ID, quantity); err != nil {
		c.log.WithError(err).WithField("line_id", line.ID).Warn("update quantity failed")
		c.notes.Post("Failed to update quantity", notify.SeverityError, notify.DefaultDuration)
		return Failed, err
	}
	return Applied, nil
}

func (c *CartLines) Remove(ctx context.Context, line domain.CartLine) (Outcome, error) {
	token, ok := c.guard.TryAcquire(line.ID)
	if !ok {
		c.log.WithField("line_id", line.ID).Debug("line busy, remove dropped")
		return Ignored, nil
	}
	defer c.guard.Release(line.ID, token)

	if err := c.cart.RemoveItem(ctx, line.ID); err != nil {
		c.log.WithError(err).WithField("line_id", line.ID).Warn("remove item failed")
		c.notes.Post("Failed to remove item", notify.SeverityError, notify.DefaultDuration)
		return Failed, err
	}
	c.notes.Post(fmt.Sprintf("%s removed from cart", line.FoodName), notify.SeverityInfo, notify.DefaultDuration)
	return Applied, nil
}

func (c *CartLines) Clear(ctx context.Context) (Outcome, error) {
	if err := c.cart.ClearCart(ctx); err != nil {
		c.log.WithError(err).Warn("clear cart failed")
		c.notes.Post(domain.UserMessage(err, "Failed to clear cart"), notify.SeverityError, notify.DefaultDuration)
		return Failed, err
	}
	c.notes.Post("Cart cleared", notify.SeverityInfo, notify.DefaultDuration)
	return Applied, nil
}
