package domain

import "github.com/shopspring/decimal"

// CartLine is one entry of a cart. PriceAtTime is frozen when the line is created,
// Subtotal is computed by the server.
type CartLine struct {
	ID           ID              `json:"id"`
	FoodID       ID              `json:"foodId"`
	FoodName     string          `json:"foodName"`
	Category     string          `json:"category"`
	FoodImageURL string          `json:"foodImageUrl"`
	PriceAtTime  decimal.Decimal `json:"priceAtTime"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// CartSnapshot represents the full server-side cart state at the moment it was returned
type CartSnapshot struct {
	ID         ID              `json:"id,omitempty"`
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Message    string          `json:"message,omitempty"`
}

// EmptySnapshot is the unambiguous state of a cart after a successful clear.
func EmptySnapshot() *CartSnapshot {
	return &CartSnapshot{
		Items:      []CartLine{},
		TotalItems: 0,
		TotalPrice: decimal.Zero,
	}
}

func (s *CartSnapshot) Line(id ID) (CartLine, bool) {
	if s == nil {
		return CartLine{}, false
	}
	for _, l := range s.Items {
		if l.ID == id {
			return l, true
		}
	}
	return CartLine{}, false
}

func (s *CartSnapshot) IsEmpty() bool {
	return s == nil || len(s.Items) == 0
}

// Clone returns a deep copy so callers never alias the reconciler's snapshot.
func (s *CartSnapshot) Clone() *CartSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Items = make([]CartLine, len(s.Items))
	copy(c.Items, s.Items)
	return &c
}
