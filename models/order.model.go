package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Per-item fulfillment states. Delivered and Cancelled are terminal.
const (
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

var (
	ErrUnknownStatus    = errors.New("unknown item status")
	ErrItemDelivered    = errors.New("item has already been delivered")
	ErrItemCancelled    = errors.New("item has already been cancelled")
	ErrItemNotFound     = errors.New("item not found in order")
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrOrderAlreadyPaid = errors.New("order has already been paid")
)

// OrderItem is a snapshot of one purchased product line at the time the order
// was placed. Price and name are copied from the product so later catalog
// edits do not rewrite history.
type OrderItem struct {
	ProductID          primitive.ObjectID `bson:"product_id" json:"product_id"`
	SellerID           primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	Name               string             `bson:"name" json:"name"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	Price              float64            `bson:"price" json:"price"`
	Status             string             `bson:"status" json:"status"`
	IsDelivered        bool               `bson:"is_delivered" json:"is_delivered"`
	DeliveredAt        time.Time          `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	CancellationReason string             `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CancelledAt        time.Time          `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}

// Order is the parent order for one checkout. Items from every seller are
// embedded; seller_order_ids references the per-seller fan-out.
type Order struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Items          []OrderItem          `bson:"items" json:"items"`
	AddressID      primitive.ObjectID   `bson:"address_id" json:"address_id"`
	ItemsPrice     float64              `bson:"items_price" json:"items_price"`
	ShippingPrice  float64              `bson:"shipping_price" json:"shipping_price"`
	TaxPrice       float64              `bson:"tax_price" json:"tax_price"`
	TotalPrice     float64              `bson:"total_price" json:"total_price"`
	PaymentMethod  string               `bson:"payment_method" json:"payment_method"`
	IsPaid         bool                 `bson:"is_paid" json:"is_paid"`
	PaidAt         time.Time            `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	IsDelivered    bool                 `bson:"is_delivered" json:"is_delivered"`
	DeliveredAt    time.Time            `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	OrderStatus    string               `bson:"order_status" json:"order_status"`
	SellerOrderIDs []primitive.ObjectID `bson:"seller_order_ids" json:"seller_order_ids"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

// SellerOrder is the slice of a parent order sold by one seller. Shipping and
// tax are not distributed to sellers and stay zero; the subtotal is the sum
// of price×quantity over the seller's lines.
type SellerOrder struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID       primitive.ObjectID `bson:"order_id" json:"order_id"`
	SellerID      primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items         []OrderItem        `bson:"items" json:"items"`
	ItemsPrice    float64            `bson:"items_price" json:"items_price"`
	ShippingPrice float64            `bson:"shipping_price" json:"shipping_price"`
	TaxPrice      float64            `bson:"tax_price" json:"tax_price"`
	TotalPrice    float64            `bson:"total_price" json:"total_price"`
	IsPaid        bool               `bson:"is_paid" json:"is_paid"`
	PaidAt        time.Time          `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	IsDelivered   bool               `bson:"is_delivered" json:"is_delivered"`
	DeliveredAt   time.Time          `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	OrderStatus   string             `bson:"order_status" json:"order_status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// SellerGroup is one seller's share of an order's items, with the computed
// subtotal.
type SellerGroup struct {
	SellerID primitive.ObjectID
	Items    []OrderItem
	Subtotal float64
}

// PartitionBySeller splits order items into per-seller groups, preserving the
// order in which each seller first appears. Every group's subtotal is
// Σ price×quantity over its lines, rounded to 2 decimals.
func PartitionBySeller(items []OrderItem) []SellerGroup {
	index := make(map[primitive.ObjectID]int)
	groups := []SellerGroup{}
	for _, item := range items {
		i, ok := index[item.SellerID]
		if !ok {
			i = len(groups)
			index[item.SellerID] = i
			groups = append(groups, SellerGroup{SellerID: item.SellerID})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	for i := range groups {
		groups[i].Subtotal = ItemsSubtotal(groups[i].Items)
	}
	return groups
}

// ItemsSubtotal is Σ price×quantity over the given lines, rounded to 2
// decimals.
func ItemsSubtotal(items []OrderItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal, _ := sum.Round(2).Float64()
	return subtotal
}

// ValidateStatusTransition checks a seller's status update against the item
// state machine. Cancellation goes through CheckCancellable instead; it needs
// a reason and has its own endpoint.
func ValidateStatusTransition(current, target string) error {
	switch target {
	case StatusProcessing, StatusShipped, StatusDelivered:
	case StatusCancelled:
		return fmt.Errorf("%w: use the cancellation endpoint", ErrUnknownStatus)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}
	switch current {
	case StatusDelivered:
		return ErrItemDelivered
	case StatusCancelled:
		return ErrItemCancelled
	}
	return nil
}

// CheckCancellable reports whether an item in the given state may still be
// cancelled.
func CheckCancellable(current string) error {
	switch current {
	case StatusDelivered:
		return ErrItemDelivered
	case StatusCancelled:
		return ErrItemCancelled
	}
	return nil
}

// AllDelivered reports whether every non-cancelled line has been delivered.
// Orders with only cancelled lines are not considered delivered.
func AllDelivered(items []OrderItem) bool {
	delivered := 0
	for _, item := range items {
		switch item.Status {
		case StatusCancelled:
		case StatusDelivered:
			delivered++
		default:
			return false
		}
	}
	return delivered > 0
}
