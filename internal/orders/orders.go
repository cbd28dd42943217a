package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/forms"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/sirupsen/logrus"
)

const placedToastDuration = 4 * time.Second

type Gateway interface {
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id domain.ID) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id domain.ID, status domain.OrderStatus) (*domain.Order, error)
}

type Cart interface {
	ClearCart(ctx context.Context) error
	Refresh(ctx context.Context)
}

type Notifier interface {
	Post(message string, severity notify.Severity, d time.Duration) notify.ID
}

var checkoutMessages = forms.Messages{
	"deliveryAddress": "Delivery address is required",
	"paymentMethod":   "Please select a payment method",
}

type Service struct {
	gw    Gateway
	cart  Cart
	notes Notifier
	forms *forms.Validator
	log   logrus.FieldLogger
}

func NewService(gw Gateway, cart Cart, notes Notifier, log logrus.FieldLogger) *Service {
	return &Service{
		gw:    gw,
		cart:  cart,
		notes: notes,
		forms: forms.New(),
		log:   log,
	}
}

// Place submits the checkout form and empties the local cart once the order exists.
func (s *Service) Place(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Order, error) {
	req.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)
	if err := s.forms.Check(req, checkoutMessages); err != nil {
		return nil, err
	}

	order, err := s.gw.PlaceOrder(ctx, req)
	if errors.Is(err, domain.ErrMalformedResponse) {
		// Accepted by the server, so the order exists even though its details are unknown.
		s.log.WithError(err).Warn("order placed but response could not be decoded")
		order, err = &domain.Order{
			Status:          domain.OrderStatusPlaced,
			DeliveryAddress: req.DeliveryAddress,
			PaymentMethod:   req.PaymentMethod,
		}, nil
	}
	if err != nil {
		s.log.WithError(err).Error("failed to place order")
		s.notes.Post(domain.UserMessage(err, "Failed to place order"), notify.SeverityError, notify.DefaultDuration)
		return nil, err
	}

	// The server has already emptied the cart; a failed local clear only needs a resync.
	if err := s.cart.ClearCart(ctx); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to clear cart after order")
		s.cart.Refresh(ctx)
	}

	s.notes.Post("Order placed successfully! 🎉", notify.SeveritySuccess, placedToastDuration)
	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"total":    order.TotalPrice.StringFixed(2),
	}).Info("order placed")
	return order, nil
}

func (s *Service) History(ctx context.Context) ([]domain.Order, error) {
	list, err := s.gw.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Order{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Order, error) {
	if id == "" {
		return nil, fmt.Errorf("get order: empty id: %w", domain.ErrInvalidArgument)
	}
	return s.gw.GetOrder(ctx, id)
}

// UpdateStatus moves an order along its lifecycle. Only admins are accepted by the server.
func (s *Service) UpdateStatus(ctx context.Context, id domain.ID, status domain.OrderStatus) (*domain.Order, error) {
	if id == "" {
		return nil, fmt.Errorf("update order status: empty id: %w", domain.ErrInvalidArgument)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("update order status: unknown status %q: %w", status, domain.ErrInvalidArgument)
	}
	order, err := s.gw.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "status": status}).Info("order status updated")
	return order, nil
}
