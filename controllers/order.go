// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

// OrderController handles order creation and payment capture
type OrderController struct {
	OrderCollection       *mongo.Collection
	SellerOrderCollection *mongo.Collection
	TransactionCollection *mongo.Collection
	UserCollection        *mongo.Collection
	Stock                 ProductStock
	EmailService          *utils.EmailService
	Gateway               *utils.PaymentGateway
	Logger                *zap.Logger
}

// NewOrderController creates a new OrderController
func NewOrderController(client *mongo.Client, emailService *utils.EmailService, gateway *utils.PaymentGateway, logger *zap.Logger) *OrderController {
	return &OrderController{
		OrderCollection:       utils.Collection(client, "orders"),
		SellerOrderCollection: utils.Collection(client, "seller_orders"),
		TransactionCollection: utils.Collection(client, "transactions"),
		Stock:                 NewProductStock(utils.Collection(client, "products")),
		UserCollection:        utils.Collection(client, "users"),
		EmailService:          emailService,
		Gateway:               gateway,
		Logger:                logger,
	}
}

type orderItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	SellerID  string  `json:"seller_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	AddressID     string             `json:"address_id" validate:"required"`
	PaymentMethod string             `json:"payment_method" validate:"required"`
	ItemsPrice    float64            `json:"items_price" validate:"gte=0"`
	ShippingPrice float64            `json:"shipping_price" validate:"gte=0"`
	TaxPrice      float64            `json:"tax_price" validate:"gte=0"`
	TotalPrice    float64            `json:"total_price" validate:"required,gt=0"`
}

// deduction records a stock decrement that may need to be undone.
type deduction struct {
	productID primitive.ObjectID
	quantity  int
}

// restoreStock undoes earlier decrements after a mid-sequence failure.
func (oc *OrderController) restoreStock(ctx context.Context, deductions []deduction) {
	for _, d := range deductions {
		if err := oc.Stock.RestoreStock(ctx, d.productID, d.quantity); err != nil {
			oc.Logger.Error("failed to restore stock during rollback",
				zap.String("product_id", d.productID.Hex()),
				zap.Int("quantity", d.quantity),
				zap.Error(err),
			)
		}
	}
}

// takeStock walks the lines in request order, taking stock with one guarded
// update per line so a concurrent order cannot race past the availability
// check. On any failure it restores everything taken so far and returns the
// HTTP status and message for the response; a zero status means every line
// was taken.
func (oc *OrderController) takeStock(ctx context.Context, items []models.OrderItem) ([]deduction, int, string) {
	deductions := []deduction{}
	for _, item := range items {
		product, err := oc.Stock.FindProduct(ctx, item.ProductID)
		if err != nil {
			oc.restoreStock(ctx, deductions)
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", item.ProductID.Hex())
			}
			return nil, http.StatusInternalServerError, "Failed to load product"
		}

		taken, err := oc.Stock.TakeStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			oc.restoreStock(ctx, deductions)
			return nil, http.StatusInternalServerError, "Failed to update product stock"
		}
		if !taken {
			oc.restoreStock(ctx, deductions)
			return nil, http.StatusBadRequest, fmt.Sprintf("Insufficient stock for product: %s", product.Name)
		}
		deductions = append(deductions, deduction{productID: item.ProductID, quantity: item.Quantity})
	}
	return deductions, 0, ""
}

// CreateOrder validates the item list against live stock, decrements stock
// with a guarded conditional update, creates the parent order and one
// sub-order per seller, and links them. Any failure after the first
// decrement restores everything taken so far.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		utils.RespondError(w, http.StatusBadRequest, models.ErrEmptyOrder.Error())
		return
	}

	addressID, err := primitive.ObjectIDFromHex(req.AddressID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid address ID")
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}
		sellerID, err := primitive.ObjectIDFromHex(item.SellerID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid seller ID")
			return
		}
		items = append(items, models.OrderItem{
			ProductID: productID,
			SellerID:  sellerID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Status:    models.StatusProcessing,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	deductions, status, message := oc.takeStock(ctx, items)
	if status != 0 {
		utils.RespondError(w, status, message)
		return
	}

	now := time.Now()
	order := models.Order{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		Items:          items,
		AddressID:      addressID,
		ItemsPrice:     req.ItemsPrice,
		ShippingPrice:  req.ShippingPrice,
		TaxPrice:       req.TaxPrice,
		TotalPrice:     req.TotalPrice,
		PaymentMethod:  req.PaymentMethod,
		OrderStatus:    models.StatusProcessing,
		SellerOrderIDs: []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := oc.OrderCollection.InsertOne(ctx, order); err != nil {
		oc.restoreStock(ctx, deductions)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	// Fan the order out into one sub-order per seller.
	sellerOrderIDs := []primitive.ObjectID{}
	for _, group := range models.PartitionBySeller(items) {
		sellerOrder := models.SellerOrder{
			ID:          primitive.NewObjectID(),
			OrderID:     order.ID,
			SellerID:    group.SellerID,
			UserID:      userID,
			Items:       group.Items,
			ItemsPrice:  group.Subtotal,
			TotalPrice:  group.Subtotal,
			OrderStatus: models.StatusProcessing,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := oc.SellerOrderCollection.InsertOne(ctx, sellerOrder); err != nil {
			oc.restoreStock(ctx, deductions)
			oc.rollbackOrder(ctx, order.ID, sellerOrderIDs)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create seller order")
			return
		}
		sellerOrderIDs = append(sellerOrderIDs, sellerOrder.ID)
	}

	_, err = oc.OrderCollection.UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{
		"$set": bson.M{"seller_order_ids": sellerOrderIDs, "updated_at": time.Now()},
	})
	if err != nil {
		oc.restoreStock(ctx, deductions)
		oc.rollbackOrder(ctx, order.ID, sellerOrderIDs)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to link seller orders")
		return
	}
	order.SellerOrderIDs = sellerOrderIDs

	go func(email string, order models.Order) {
		if err := oc.EmailService.SendOrderConfirmationEmail(email, order); err != nil {
			oc.Logger.Error("failed to send order confirmation", zap.String("email", email), zap.Error(err))
		}
	}(claims.Email, order)

	utils.RespondSuccess(w, http.StatusCreated, "Order created successfully", map[string]interface{}{
		"order": order,
	})
}

// rollbackOrder removes a half-created order and its sub-orders after a
// failure later in the sequence.
func (oc *OrderController) rollbackOrder(ctx context.Context, orderID primitive.ObjectID, sellerOrderIDs []primitive.ObjectID) {
	if len(sellerOrderIDs) > 0 {
		if _, err := oc.SellerOrderCollection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": sellerOrderIDs}}); err != nil {
			oc.Logger.Error("failed to remove seller orders during rollback", zap.Error(err))
		}
	}
	if _, err := oc.OrderCollection.DeleteOne(ctx, bson.M{"_id": orderID}); err != nil {
		oc.Logger.Error("failed to remove order during rollback", zap.String("order_id", orderID.Hex()), zap.Error(err))
	}
}

// GetOrders retrieves all orders for the authenticated user
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := oc.OrderCollection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding orders")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"orders": orders})
}

// GetOrder retrieves one order; only the owner or an admin may read it
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var order models.Order
	if err := oc.OrderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if claims.Role != models.RoleAdmin && order.UserID.Hex() != claims.UserID {
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"order": order})
}

// PayOrder creates a gateway order for payment capture. The amount is the
// order total in integer minor units and the receipt carries the internal
// order id.
func (oc *OrderController) PayOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	var order models.Order
	if err := oc.OrderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.UserID.Hex() != claims.UserID {
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return
	}
	if order.IsPaid {
		utils.RespondError(w, http.StatusBadRequest, models.ErrOrderAlreadyPaid.Error())
		return
	}

	gatewayOrder, err := oc.Gateway.CreateOrder(ctx, utils.MinorUnits(order.TotalPrice), "INR", order.ID.Hex())
	if err != nil {
		oc.Logger.Error("gateway order creation failed", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create payment order")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{
		"gateway_order": gatewayOrder,
	})
}

type verifyPaymentRequest struct {
	GatewayOrderID string `json:"gateway_order_id" validate:"required"`
	PaymentID      string `json:"payment_id" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
}

// VerifyPayment is the single authoritative capture path: it checks the
// gateway signature, records a transaction with the raw payload, and marks
// the order and every linked seller order paid with the same timestamp. An
// order is never marked paid without a transaction whose signature check
// passed.
func (oc *OrderController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	var order models.Order
	if err := oc.OrderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.UserID.Hex() != claims.UserID {
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)
	rawPayload := bson.M{
		"gateway_order_id": req.GatewayOrderID,
		"payment_id":       req.PaymentID,
		"signature":        req.Signature,
	}

	if !oc.Gateway.VerifySignature(req.GatewayOrderID, req.PaymentID, req.Signature) {
		// The failed attempt is still recorded; the order stays unpaid.
		failed := models.Transaction{
			ID:             primitive.NewObjectID(),
			OrderID:        order.ID,
			UserID:         userID,
			GatewayOrderID: req.GatewayOrderID,
			PaymentID:      req.PaymentID,
			Signature:      req.Signature,
			Method:         order.PaymentMethod,
			Status:         models.TransactionFailed,
			Amount:         order.TotalPrice,
			RawPayload:     rawPayload,
			CreatedAt:      time.Now(),
		}
		if _, err := oc.TransactionCollection.InsertOne(ctx, failed); err != nil {
			oc.Logger.Error("failed to record failed transaction", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		}
		utils.RespondError(w, http.StatusBadRequest, "Payment signature verification failed")
		return
	}

	paidAt := time.Now()
	transaction := models.Transaction{
		ID:             primitive.NewObjectID(),
		OrderID:        order.ID,
		UserID:         userID,
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
		Method:         order.PaymentMethod,
		Status:         models.TransactionCaptured,
		Amount:         order.TotalPrice,
		RawPayload:     rawPayload,
		CreatedAt:      paidAt,
	}
	if _, err := oc.TransactionCollection.InsertOne(ctx, transaction); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	_, err = oc.OrderCollection.UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{
		"$set": bson.M{"is_paid": true, "paid_at": paidAt, "updated_at": paidAt},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to mark order paid")
		return
	}

	_, err = oc.SellerOrderCollection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": order.SellerOrderIDs}},
		bson.M{"$set": bson.M{"is_paid": true, "paid_at": paidAt, "updated_at": paidAt}},
	)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to mark seller orders paid")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Payment verified", map[string]interface{}{
		"transaction": transaction,
	})
}
