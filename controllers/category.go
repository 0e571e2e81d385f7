// controllers/category.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"go-marketplace/models"
	"go-marketplace/utils"
)

// CategoryController handles the category graph
type CategoryController struct {
	Collection *mongo.Collection
	Logger     *zap.Logger
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(client *mongo.Client, logger *zap.Logger) *CategoryController {
	return &CategoryController{
		Collection: utils.Collection(client, "categories"),
		Logger:     logger,
	}
}

type categoryRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	ParentIDs   []string `json:"parent_ids"`
	IsActive    *bool    `json:"is_active"`
}

// resolveParents loads the parent documents and returns them together with
// their ids. Unknown parent ids are a client error.
func (cc *CategoryController) resolveParents(ctx context.Context, hexIDs []string) ([]primitive.ObjectID, []models.Category, error) {
	parentIDs := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, hexID := range hexIDs {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			return nil, nil, err
		}
		parentIDs = append(parentIDs, id)
	}
	if len(parentIDs) == 0 {
		return parentIDs, nil, nil
	}

	cursor, err := cc.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": parentIDs}})
	if err != nil {
		return nil, nil, err
	}
	defer cursor.Close(ctx)

	var parents []models.Category
	if err := cursor.All(ctx, &parents); err != nil {
		return nil, nil, err
	}
	if len(parents) != len(parentIDs) {
		return nil, nil, mongo.ErrNoDocuments
	}
	return parentIDs, parents, nil
}

// CreateCategory adds a category and materializes its ancestor closure (Admin only)
func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
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

	categorySlug := slug.Make(req.Name)
	count, err := cc.Collection.CountDocuments(ctx, bson.M{"slug": categorySlug})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		utils.RespondError(w, http.StatusConflict, "Category already exists")
		return
	}

	parentIDs, parents, err := cc.resolveParents(ctx, req.ParentIDs)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid parent category")
		return
	}

	now := time.Now()
	category := models.Category{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Slug:        categorySlug,
		Description: req.Description,
		ParentIDs:   parentIDs,
		AncestorIDs: models.ComputeAncestors(parents),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := cc.Collection.InsertOne(ctx, category); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error creating category")
		return
	}

	utils.RespondSuccess(w, http.StatusCreated, "Category created", map[string]interface{}{"category": category})
}

// UpdateCategory updates a category and recomputes its ancestor closure (Admin only)
func (cc *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req categoryRequest
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

	parentIDs, parents, err := cc.resolveParents(ctx, req.ParentIDs)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid parent category")
		return
	}
	for _, id := range parentIDs {
		if id == categoryID {
			utils.RespondError(w, http.StatusBadRequest, "Category cannot be its own parent")
			return
		}
	}

	update := bson.M{
		"name":         req.Name,
		"slug":         slug.Make(req.Name),
		"description":  req.Description,
		"parent_ids":   parentIDs,
		"ancestor_ids": models.ComputeAncestors(parents),
		"updated_at":   time.Now(),
	}
	if req.IsActive != nil {
		update["is_active"] = *req.IsActive
	}

	result, err := cc.Collection.UpdateOne(ctx, bson.M{"_id": categoryID}, bson.M{"$set": update})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating category")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Category not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Category updated", nil)
}

// ListCategories returns all active categories
func (cc *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := cc.Collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding categories")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"categories": categories})
}

// GetCategory returns one category by id or slug
func (cc *CategoryController) GetCategory(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["idOrSlug"]

	filter := bson.M{"slug": key}
	if id, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": id}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var category models.Category
	if err := cc.Collection.FindOne(ctx, filter).Decode(&category); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Category not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"category": category})
}

// DeleteCategory soft-disables a category (Admin only)
func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := cc.Collection.UpdateOne(ctx, bson.M{"_id": categoryID}, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now()},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error deleting category")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Category not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Category disabled", nil)
}
