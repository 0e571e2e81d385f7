// controllers/sellerorder.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"go-marketplace/middleware"
	"go-marketplace/models"
	"go-marketplace/utils"
)

// SellerOrderController handles seller-side fulfillment of sub-orders
type SellerOrderController struct {
	SellerOrderCollection *mongo.Collection
	OrderCollection       *mongo.Collection
	Stock                 ProductStock
	Logger                *zap.Logger
}

// NewSellerOrderController creates a new SellerOrderController
func NewSellerOrderController(client *mongo.Client, logger *zap.Logger) *SellerOrderController {
	return &SellerOrderController{
		SellerOrderCollection: utils.Collection(client, "seller_orders"),
		OrderCollection:       utils.Collection(client, "orders"),
		Stock:                 NewProductStock(utils.Collection(client, "products")),
		Logger:                logger,
	}
}

// loadOwnedSellerOrder fetches a sub-order and enforces seller ownership
// (admins may touch any sub-order).
func (sc *SellerOrderController) loadOwnedSellerOrder(ctx context.Context, r *http.Request) (*models.SellerOrder, int, string) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, http.StatusUnauthorized, "Unauthorized"
	}

	sellerOrderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid seller order ID"
	}

	var sellerOrder models.SellerOrder
	if err := sc.SellerOrderCollection.FindOne(ctx, bson.M{"_id": sellerOrderID}).Decode(&sellerOrder); err != nil {
		return nil, http.StatusNotFound, "Seller order not found"
	}

	if claims.Role != models.RoleAdmin && sellerOrder.SellerID.Hex() != claims.UserID {
		return nil, http.StatusForbidden, "Forbidden"
	}
	return &sellerOrder, 0, ""
}

// ListSellerOrders returns the authenticated seller's sub-orders
func (sc *SellerOrderController) ListSellerOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	sellerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := sc.SellerOrderCollection.Find(ctx, bson.M{"seller_id": sellerID})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve seller orders")
		return
	}
	defer cursor.Close(ctx)

	sellerOrders := []models.SellerOrder{}
	if err := cursor.All(ctx, &sellerOrders); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding seller orders")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"seller_orders": sellerOrders})
}

// GetSellerOrder returns one sub-order, enforcing ownership
func (sc *SellerOrderController) GetSellerOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sellerOrder, status, msg := sc.loadOwnedSellerOrder(ctx, r)
	if sellerOrder == nil {
		utils.RespondError(w, status, msg)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"seller_order": sellerOrder})
}

type itemStatusRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// findItem locates a line by product id.
func findItem(items []models.OrderItem, productID primitive.ObjectID) (int, error) {
	for i := range items {
		if items[i].ProductID == productID {
			return i, nil
		}
	}
	return -1, models.ErrItemNotFound
}

// statusError maps state-machine violations to a 400 and everything else to
// a 500.
func statusError(err error) int {
	if errors.Is(err, models.ErrItemDelivered) ||
		errors.Is(err, models.ErrItemCancelled) ||
		errors.Is(err, models.ErrUnknownStatus) ||
		errors.Is(err, models.ErrItemNotFound) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// persistMirroredItems writes the updated line arrays to both the sub-order
// and the parent order, recomputing the delivered rollups on each.
func (sc *SellerOrderController) persistMirroredItems(ctx context.Context, sellerOrder *models.SellerOrder, parent *models.Order, now time.Time) error {
	sellerSet := bson.M{"items": sellerOrder.Items, "updated_at": now}
	if models.AllDelivered(sellerOrder.Items) {
		sellerSet["is_delivered"] = true
		sellerSet["delivered_at"] = now
		sellerSet["order_status"] = models.StatusDelivered
	}
	if _, err := sc.SellerOrderCollection.UpdateOne(ctx, bson.M{"_id": sellerOrder.ID}, bson.M{"$set": sellerSet}); err != nil {
		return err
	}

	parentSet := bson.M{"items": parent.Items, "updated_at": now}
	if models.AllDelivered(parent.Items) {
		parentSet["is_delivered"] = true
		parentSet["delivered_at"] = now
		parentSet["order_status"] = models.StatusDelivered
	}
	_, err := sc.OrderCollection.UpdateOne(ctx, bson.M{"_id": parent.ID}, bson.M{"$set": parentSet})
	return err
}

// UpdateItemStatus moves one line through the fulfillment state machine and
// mirrors the change onto the parent order's matching line.
func (sc *SellerOrderController) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	var req itemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerOrder, status, msg := sc.loadOwnedSellerOrder(ctx, r)
	if sellerOrder == nil {
		utils.RespondError(w, status, msg)
		return
	}

	i, err := findItem(sellerOrder.Items, productID)
	if err != nil {
		utils.RespondError(w, statusError(err), err.Error())
		return
	}
	if err := models.ValidateStatusTransition(sellerOrder.Items[i].Status, req.Status); err != nil {
		utils.RespondError(w, statusError(err), err.Error())
		return
	}

	now := time.Now()
	sellerOrder.Items[i].Status = req.Status
	if req.Status == models.StatusDelivered {
		sellerOrder.Items[i].IsDelivered = true
		sellerOrder.Items[i].DeliveredAt = now
	}

	var parent models.Order
	if err := sc.OrderCollection.FindOne(ctx, bson.M{"_id": sellerOrder.OrderID}).Decode(&parent); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Parent order not found")
		return
	}
	j, err := findItem(parent.Items, productID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Item missing from parent order")
		return
	}
	parent.Items[j].Status = req.Status
	parent.Items[j].IsDelivered = sellerOrder.Items[i].IsDelivered
	parent.Items[j].DeliveredAt = sellerOrder.Items[i].DeliveredAt

	if err := sc.persistMirroredItems(ctx, sellerOrder, &parent, now); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update item status")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Item status updated", map[string]interface{}{
		"seller_order": sellerOrder,
	})
}

type cancelItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

// CancelItem cancels one line, mirrors the cancellation onto the parent
// order, and restores the item quantity to product stock. Aggregate prices
// keep the original invoice amounts.
func (sc *SellerOrderController) CancelItem(w http.ResponseWriter, r *http.Request) {
	var req cancelItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerOrder, status, msg := sc.loadOwnedSellerOrder(ctx, r)
	if sellerOrder == nil {
		utils.RespondError(w, status, msg)
		return
	}

	i, err := findItem(sellerOrder.Items, productID)
	if err != nil {
		utils.RespondError(w, statusError(err), err.Error())
		return
	}
	if err := models.CheckCancellable(sellerOrder.Items[i].Status); err != nil {
		utils.RespondError(w, statusError(err), err.Error())
		return
	}

	now := time.Now()
	sellerOrder.Items[i].Status = models.StatusCancelled
	sellerOrder.Items[i].CancellationReason = req.Reason
	sellerOrder.Items[i].CancelledAt = now

	var parent models.Order
	if err := sc.OrderCollection.FindOne(ctx, bson.M{"_id": sellerOrder.OrderID}).Decode(&parent); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Parent order not found")
		return
	}
	j, err := findItem(parent.Items, productID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Item missing from parent order")
		return
	}
	parent.Items[j].Status = models.StatusCancelled
	parent.Items[j].CancellationReason = req.Reason
	parent.Items[j].CancelledAt = now

	if err := sc.persistMirroredItems(ctx, sellerOrder, &parent, now); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to cancel item")
		return
	}

	if err := sc.Stock.RestoreStock(ctx, productID, sellerOrder.Items[i].Quantity); err != nil {
		sc.Logger.Error("failed to restore stock after cancellation",
			zap.String("product_id", productID.Hex()),
			zap.Int("quantity", sellerOrder.Items[i].Quantity),
			zap.Error(err),
		)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to restore product stock")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Item cancelled", map[string]interface{}{
		"seller_order": sellerOrder,
	})
}
