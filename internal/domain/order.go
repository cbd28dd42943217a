package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "PLACED"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderItem struct {
	ID           ID              `json:"id"`
	FoodID       ID              `json:"foodId"`
	FoodName     string          `json:"foodName"`
	FoodImageURL string          `json:"foodImageUrl"`
	Quantity     int             `json:"quantity"`
	PriceAtTime  decimal.Decimal `json:"priceAtTime"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              ID              `json:"id"`
	UserID          ID              `json:"userId"`
	UserName        string          `json:"userName"`
	Items           []OrderItem     `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          OrderStatus     `json:"status"`
	DeliveryAddress string          `json:"deliveryAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       LocalTime       `json:"createdAt"`
}

// PaymentMethods offered at checkout.
var PaymentMethods = []string{"Cash on Delivery", "UPI", "Credit/Debit Card", "Net Banking"}

type PlaceOrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress" validate:"required"`
	PaymentMethod   string `json:"paymentMethod" validate:"required,oneof='Cash on Delivery' 'UPI' 'Credit/Debit Card' 'Net Banking'"`
}
