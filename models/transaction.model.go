package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction statuses.
const (
	TransactionCaptured = "captured"
	TransactionFailed   = "failed"
)

// Transaction records one payment attempt against an order, including the raw
// gateway callback payload for auditing.
type Transaction struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID        primitive.ObjectID `bson:"order_id" json:"order_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	GatewayOrderID string             `bson:"gateway_order_id" json:"gateway_order_id"`
	PaymentID      string             `bson:"payment_id" json:"payment_id"`
	Signature      string             `bson:"signature" json:"-"`
	Method         string             `bson:"method" json:"method"`
	Status         string             `bson:"status" json:"status"`
	Amount         float64            `bson:"amount" json:"amount"`
	RawPayload     bson.M             `bson:"raw_payload,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
