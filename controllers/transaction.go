// controllers/transaction.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"go-marketplace/middleware"
	"go-marketplace/models"
	"go-marketplace/utils"
)

// TransactionController exposes payment records
type TransactionController struct {
	Collection *mongo.Collection
	Logger     *zap.Logger
}

// NewTransactionController creates a new TransactionController
func NewTransactionController(client *mongo.Client, logger *zap.Logger) *TransactionController {
	return &TransactionController{
		Collection: utils.Collection(client, "transactions"),
		Logger:     logger,
	}
}

// ListMyTransactions returns the authenticated user's payment records
func (tc *TransactionController) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
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
	cursor, err := tc.Collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}
	defer cursor.Close(ctx)

	transactions := []models.Transaction{}
	if err := cursor.All(ctx, &transactions); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding transactions")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"transactions": transactions})
}

// ListAllTransactions returns every payment record (Admin only)
func (tc *TransactionController) ListAllTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := tc.Collection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}
	defer cursor.Close(ctx)

	transactions := []models.Transaction{}
	if err := cursor.All(ctx, &transactions); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding transactions")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"transactions": transactions})
}
