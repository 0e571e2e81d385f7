package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"go-marketplace/middleware"
	"go-marketplace/models"
	"go-marketplace/utils"
)

func TestFindItem(t *testing.T) {
	target := primitive.NewObjectID()
	items := []models.OrderItem{
		{ProductID: primitive.NewObjectID()},
		{ProductID: target},
		{ProductID: primitive.NewObjectID()},
	}

	i, err := findItem(items, target)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = findItem(items, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusError(models.ErrItemDelivered))
	assert.Equal(t, http.StatusBadRequest, statusError(models.ErrItemCancelled))
	assert.Equal(t, http.StatusBadRequest, statusError(models.ErrItemNotFound))
	assert.Equal(t, http.StatusBadRequest, statusError(models.ErrUnknownStatus))
	assert.Equal(t, http.StatusInternalServerError, statusError(assert.AnError))
}

func cancelItemRequestFor(t *testing.T, sellerOrderID, sellerID, productID primitive.ObjectID, reason string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"product_id": productID.Hex(), "reason": reason})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/seller-orders/"+sellerOrderID.Hex()+"/cancel-item", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": sellerOrderID.Hex()})
	claims := &utils.Claims{UserID: sellerID.Hex(), Email: "seller@example.com", Role: models.RoleSeller}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func cancelItemDocs(orderID, sellerOrderID, sellerID, userID, productID primitive.ObjectID, quantity int, status string) (bson.D, bson.D) {
	item := bson.D{
		{Key: "product_id", Value: productID},
		{Key: "seller_id", Value: sellerID},
		{Key: "name", Value: "Walnut Desk"},
		{Key: "quantity", Value: quantity},
		{Key: "price", Value: 120.0},
		{Key: "status", Value: status},
	}
	sellerOrderDoc := bson.D{
		{Key: "_id", Value: sellerOrderID},
		{Key: "order_id", Value: orderID},
		{Key: "seller_id", Value: sellerID},
		{Key: "user_id", Value: userID},
		{Key: "items", Value: bson.A{item}},
	}
	orderDoc := bson.D{
		{Key: "_id", Value: orderID},
		{Key: "user_id", Value: userID},
		{Key: "items", Value: bson.A{item}},
	}
	return sellerOrderDoc, orderDoc
}

func TestCancelItem(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("restores exactly the item quantity", func(mt *mtest.T) {
		fs := newFakeStock()
		productID := fs.add("Walnut Desk", 0) // sold out after the sale
		orderID := primitive.NewObjectID()
		sellerOrderID := primitive.NewObjectID()
		sellerID := primitive.NewObjectID()
		userID := primitive.NewObjectID()

		sc := NewSellerOrderController(mt.Client, zap.NewNop())
		sc.Stock = fs

		sellerOrderDoc, orderDoc := cancelItemDocs(orderID, sellerOrderID, sellerID, userID, productID, 3, models.StatusProcessing)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "marketplace.seller_orders", mtest.FirstBatch, sellerOrderDoc),
			mtest.CreateCursorResponse(0, "marketplace.orders", mtest.FirstBatch, orderDoc),
			mtest.CreateSuccessResponse(), // seller order update
			mtest.CreateSuccessResponse(), // parent order update
		)

		rec := httptest.NewRecorder()
		sc.CancelItem(rec, cancelItemRequestFor(mt.T, sellerOrderID, sellerID, productID, "damaged in warehouse"))

		require.Equal(mt, http.StatusOK, rec.Code)
		require.Len(mt, fs.restores, 1)
		assert.Equal(mt, stockMove{id: productID, qty: 3}, fs.restores[0])
		assert.Equal(mt, 3, fs.stock[productID])
	})

	mt.Run("delivered item cannot be cancelled and stock is untouched", func(mt *mtest.T) {
		fs := newFakeStock()
		productID := fs.add("Walnut Desk", 0)
		orderID := primitive.NewObjectID()
		sellerOrderID := primitive.NewObjectID()
		sellerID := primitive.NewObjectID()
		userID := primitive.NewObjectID()

		sc := NewSellerOrderController(mt.Client, zap.NewNop())
		sc.Stock = fs

		sellerOrderDoc, _ := cancelItemDocs(orderID, sellerOrderID, sellerID, userID, productID, 3, models.StatusDelivered)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "marketplace.seller_orders", mtest.FirstBatch, sellerOrderDoc),
		)

		rec := httptest.NewRecorder()
		sc.CancelItem(rec, cancelItemRequestFor(mt.T, sellerOrderID, sellerID, productID, "too late"))

		assert.Equal(mt, http.StatusBadRequest, rec.Code)
		assert.Empty(mt, fs.restores)
		assert.Equal(mt, 0, fs.stock[productID])
	})
}
