// controllers/admin.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"go-marketplace/models"
	"go-marketplace/utils"
)

// AdminController handles administration of users and platform-wide listings
type AdminController struct {
	UserCollection        *mongo.Collection
	OrderCollection       *mongo.Collection
	ProductCollection     *mongo.Collection
	TransactionCollection *mongo.Collection
	Logger                *zap.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(client *mongo.Client, logger *zap.Logger) *AdminController {
	return &AdminController{
		UserCollection:        utils.Collection(client, "users"),
		OrderCollection:       utils.Collection(client, "orders"),
		ProductCollection:     utils.Collection(client, "products"),
		TransactionCollection: utils.Collection(client, "transactions"),
		Logger:                logger,
	}
}

// ListUsers returns all users
func (ac *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := ac.UserCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding users")
		return
	}
	for i := range users {
		users[i].Password = ""
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"users": users})
}

// GetUser returns one user by id
func (ac *AdminController) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	if err := ac.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	user.Password = ""
	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"user": user})
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UpdateUserRole changes a user's role
func (ac *AdminController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if !models.ValidRole(req.Role) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := ac.UserCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"role": req.Role, "updated_at": time.Now()},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating role")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Role updated", nil)
}

type activeRequest struct {
	IsActive bool `json:"is_active"`
}

// SetUserActive soft-deletes or restores an account
func (ac *AdminController) SetUserActive(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := ac.UserCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"is_active": req.IsActive, "updated_at": time.Now()},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating user")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "User updated", nil)
}

// ListOrders returns all orders
func (ac *AdminController) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := ac.OrderCollection.Find(ctx, bson.M{})
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

// Dashboard returns platform-wide counts
func (ac *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userCount, err := ac.UserCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to count users")
		return
	}
	productCount, err := ac.ProductCollection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to count products")
		return
	}
	orderCount, err := ac.OrderCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to count orders")
		return
	}
	transactionCount, err := ac.TransactionCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to count transactions")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{
		"counts": map[string]int64{
			"users":        userCount,
			"products":     productCount,
			"orders":       orderCount,
			"transactions": transactionCount,
		},
	})
}
