// controllers/address.go
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

	"go-marketplace/middleware"
	"go-marketplace/models"
	"go-marketplace/utils"
)

// AddressController handles a user's delivery addresses
type AddressController struct {
	Collection *mongo.Collection
	Logger     *zap.Logger
}

// NewAddressController creates a new AddressController
func NewAddressController(client *mongo.Client, logger *zap.Logger) *AddressController {
	return &AddressController{
		Collection: utils.Collection(client, "addresses"),
		Logger:     logger,
	}
}

type addressRequest struct {
	FullName  string `json:"full_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Line1     string `json:"line1" validate:"required"`
	Line2     string `json:"line2"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Country   string `json:"country" validate:"required"`
	ZipCode   string `json:"zipcode" validate:"required"`
	IsDefault bool   `json:"is_default"`
}

// setDefault flips is_default across all of the user's addresses in one
// update: true for the chosen id, false everywhere else.
func (ac *AddressController) setDefault(ctx context.Context, userID, addressID primitive.ObjectID) error {
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"is_default": bson.M{"$eq": bson.A{"$_id", addressID}},
		}},
	}
	_, err := ac.Collection.UpdateMany(ctx, bson.M{"user_id": userID}, pipeline)
	return err
}

// ListAddresses returns the authenticated user's addresses
func (ac *AddressController) ListAddresses(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cursor, err := ac.Collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve addresses")
		return
	}
	defer cursor.Close(ctx)

	addresses := []models.Address{}
	if err := cursor.All(ctx, &addresses); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding addresses")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"addresses": addresses})
}

// CreateAddress adds an address for the authenticated user
func (ac *AddressController) CreateAddress(w http.ResponseWriter, r *http.Request) {
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

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	address := models.Address{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		ZipCode:   req.ZipCode,
		IsDefault: req.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := ac.Collection.InsertOne(ctx, address); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error creating address")
		return
	}

	if req.IsDefault {
		if err := ac.setDefault(ctx, userID, address.ID); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Error setting default address")
			return
		}
	}

	utils.RespondSuccess(w, http.StatusCreated, "Address created", map[string]interface{}{"address": address})
}

// UpdateAddress updates one of the authenticated user's addresses
func (ac *AddressController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
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

	addressID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid address ID")
		return
	}

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := ac.Collection.UpdateOne(ctx,
		bson.M{"_id": addressID, "user_id": userID},
		bson.M{"$set": bson.M{
			"full_name":  req.FullName,
			"phone":      req.Phone,
			"line1":      req.Line1,
			"line2":      req.Line2,
			"city":       req.City,
			"state":      req.State,
			"country":    req.Country,
			"zipcode":    req.ZipCode,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating address")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Address not found")
		return
	}

	if req.IsDefault {
		if err := ac.setDefault(ctx, userID, addressID); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Error setting default address")
			return
		}
	}

	utils.RespondSuccess(w, http.StatusOK, "Address updated", nil)
}

// DeleteAddress removes one of the authenticated user's addresses
func (ac *AddressController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
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

	addressID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid address ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := ac.Collection.DeleteOne(ctx, bson.M{"_id": addressID, "user_id": userID})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error deleting address")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Address not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Address deleted", nil)
}
