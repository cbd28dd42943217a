package interaction

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/lineguard"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/sirupsen/logrus"
)

const loginHint = "Please login to add items to cart"

// MenuActions handles the add-to-cart button of menu cards.
type MenuActions struct {
	cart     Cart
	identity Identity
	notes    Notifier
	guard    *lineguard.Guard[domain.ID]
	log      logrus.FieldLogger
}

func NewMenuActions(cart Cart, identity Identity, notes Notifier, log logrus.FieldLogger) *MenuActions {
	return &MenuActions{
		cart:     cart,
		identity: identity,
		notes:    notes,
		guard:    lineguard.New[domain.ID](),
		log:      log,
	}
}

// AddToCart checks the session first so anonymous users get a hint instead of a round trip.
func (m *MenuActions) AddToCart(ctx context.Context, food domain.Food, quantity int) (Outcome, error) {
	if !m.identity.Authenticated() {
		m.notes.Post(loginHint, notify.SeverityInfo, notify.DefaultDuration)
		return Ignored, &domain.Failure{Message: loginHint, Err: domain.ErrUnauthenticated}
	}
	token, ok := m.guard.TryAcquire(food.ID)
	if !ok {
		return Ignored, nil
	}
	defer m.guard.Release(food.ID, token)

	if _, err := m.cart.AddToCart(ctx, food.ID, quantity); err != nil {
		m.log.WithError(err).WithField("food_id", food.ID).Warn("add to cart failed")
		m.notes.Post(domain.UserMessage(err, "Failed to add to cart"), notify.SeverityError, notify.DefaultDuration)
		return Failed, err
	}
	m.notes.Post(fmt.Sprintf("%s added to cart!", food.Name), notify.SeveritySuccess, notify.DefaultDuration)
	return Applied, nil
}
