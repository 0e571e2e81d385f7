package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPartitionBySeller(t *testing.T) {
	sellerA := primitive.NewObjectID()
	sellerB := primitive.NewObjectID()

	items := []OrderItem{
		{ProductID: primitive.NewObjectID(), SellerID: sellerA, Quantity: 2, Price: 10.50},
		{ProductID: primitive.NewObjectID(), SellerID: sellerB, Quantity: 1, Price: 99.99},
		{ProductID: primitive.NewObjectID(), SellerID: sellerA, Quantity: 3, Price: 5},
	}

	groups := PartitionBySeller(items)
	require.Len(t, groups, 2)

	// First-seen order is preserved.
	assert.Equal(t, sellerA, groups[0].SellerID)
	assert.Equal(t, sellerB, groups[1].SellerID)

	assert.Len(t, groups[0].Items, 2)
	assert.Len(t, groups[1].Items, 1)

	assert.Equal(t, 36.0, groups[0].Subtotal) // 2×10.50 + 3×5
	assert.Equal(t, 99.99, groups[1].Subtotal)
}

func TestPartitionSubtotalsSumToItemsTotal(t *testing.T) {
	// Σ sub-order totals must equal Σ price×quantity over all lines.
	sellers := []primitive.ObjectID{
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
	}
	items := []OrderItem{
		{SellerID: sellers[0], Quantity: 1, Price: 19.99},
		{SellerID: sellers[1], Quantity: 4, Price: 2.25},
		{SellerID: sellers[2], Quantity: 2, Price: 149.50},
		{SellerID: sellers[0], Quantity: 7, Price: 0.99},
		{SellerID: sellers[1], Quantity: 1, Price: 1234.56},
	}

	var sum float64
	for _, g := range PartitionBySeller(items) {
		sum += g.Subtotal
	}
	assert.InDelta(t, ItemsSubtotal(items), sum, 0.001)
}

func TestPartitionBySellerEmpty(t *testing.T) {
	assert.Empty(t, PartitionBySeller(nil))
}

func TestValidateStatusTransition(t *testing.T) {
	tests := []struct {
		name    string
		current string
		target  string
		wantErr error
	}{
		{"processing to shipped", StatusProcessing, StatusShipped, nil},
		{"processing to delivered", StatusProcessing, StatusDelivered, nil},
		{"shipped to delivered", StatusShipped, StatusDelivered, nil},
		{"delivered is terminal", StatusDelivered, StatusShipped, ErrItemDelivered},
		{"delivered to delivered", StatusDelivered, StatusDelivered, ErrItemDelivered},
		{"cancelled is terminal", StatusCancelled, StatusShipped, ErrItemCancelled},
		{"cancel via status endpoint", StatusProcessing, StatusCancelled, ErrUnknownStatus},
		{"unknown target", StatusProcessing, "Lost", ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatusTransition(tt.current, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCheckCancellable(t *testing.T) {
	assert.NoError(t, CheckCancellable(StatusProcessing))
	assert.NoError(t, CheckCancellable(StatusShipped))
	assert.ErrorIs(t, CheckCancellable(StatusDelivered), ErrItemDelivered)
	assert.ErrorIs(t, CheckCancellable(StatusCancelled), ErrItemCancelled)
}

func TestAllDelivered(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     bool
	}{
		{"all delivered", []string{StatusDelivered, StatusDelivered}, true},
		{"one still processing", []string{StatusDelivered, StatusProcessing}, false},
		{"one shipped", []string{StatusDelivered, StatusShipped}, false},
		{"delivered and cancelled", []string{StatusDelivered, StatusCancelled}, true},
		{"only cancelled", []string{StatusCancelled}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]OrderItem, len(tt.statuses))
			for i, s := range tt.statuses {
				items[i] = OrderItem{Status: s}
			}
			assert.Equal(t, tt.want, AllDelivered(items))
		})
	}
}
