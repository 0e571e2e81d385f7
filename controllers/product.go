// controllers/product.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"go-marketplace/middleware"
	"go-marketplace/models"
	"go-marketplace/utils"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// ProductController handles the catalog
type ProductController struct {
	Collection         *mongo.Collection
	CategoryCollection *mongo.Collection
	Logger             *zap.Logger
}

// NewProductController creates a new ProductController
func NewProductController(client *mongo.Client, logger *zap.Logger) *ProductController {
	return &ProductController{
		Collection:         utils.Collection(client, "products"),
		CategoryCollection: utils.Collection(client, "categories"),
		Logger:             logger,
	}
}

// buildCatalogFilter translates query parameters into a mongo filter over
// active products. categoryIDs is the already-expanded id set (category plus
// descendants); empty means no category constraint. Non-numeric price bounds
// are a validation error.
func buildCatalogFilter(search, brand, minPrice, maxPrice string, categoryIDs []primitive.ObjectID) (bson.M, error) {
	filter := bson.M{"is_active": true}

	if search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": search, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	if brand != "" {
		filter["brand"] = bson.M{"$regex": "^" + brand + "$", "$options": "i"}
	}
	if len(categoryIDs) > 0 {
		filter["category_ids"] = bson.M{"$in": categoryIDs}
	}

	price := bson.M{}
	if minPrice != "" {
		min, err := strconv.ParseFloat(minPrice, 64)
		if err != nil {
			return nil, strconv.ErrSyntax
		}
		price["$gte"] = min
	}
	if maxPrice != "" {
		max, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			return nil, strconv.ErrSyntax
		}
		price["$lte"] = max
	}
	if len(price) > 0 {
		filter["base_price"] = price
	}

	return filter, nil
}

// catalogSort maps a sort key to a fixed ordering; unknown keys fall back to
// newest first.
func catalogSort(key string) bson.D {
	switch key {
	case "price_asc":
		return bson.D{{Key: "base_price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "base_price", Value: -1}}
	case "popular":
		return bson.D{{Key: "ratings_average", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// parsePagination normalizes page/limit query parameters.
func parsePagination(pageStr, limitStr string) (page, limit int64) {
	page, _ = strconv.ParseInt(pageStr, 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.ParseInt(limitStr, 10, 64)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// expandCategory resolves the category parameter (id, name or slug) and
// returns its id plus the ids of every descendant, using the materialized
// ancestor closure.
func (pc *ProductController) expandCategory(ctx context.Context, key string) ([]primitive.ObjectID, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"slug": key},
		bson.M{"name": key},
	}}
	if id, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": id}
	}

	var category models.Category
	if err := pc.CategoryCollection.FindOne(ctx, filter).Decode(&category); err != nil {
		return nil, err
	}

	ids := []primitive.ObjectID{category.ID}
	cursor, err := pc.CategoryCollection.Find(ctx, bson.M{"ancestor_ids": category.ID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var descendants []models.Category
	if err := cursor.All(ctx, &descendants); err != nil {
		return nil, err
	}
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// GetProducts runs the catalog query: free-text search, brand, category,
// price range, pagination and sorting.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var categoryIDs []primitive.ObjectID
	if key := query.Get("category"); key != "" {
		ids, err := pc.expandCategory(ctx, key)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				utils.RespondError(w, http.StatusNotFound, "Category not found")
			} else {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to resolve category")
			}
			return
		}
		categoryIDs = ids
	}

	filter, err := buildCatalogFilter(
		query.Get("search"),
		query.Get("brand"),
		query.Get("minPrice"),
		query.Get("maxPrice"),
		categoryIDs,
	)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid price filter")
		return
	}

	page, limit := parsePagination(query.Get("page"), query.Get("limit"))

	total, err := pc.Collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to count products")
		return
	}

	opts := options.Find().
		SetSort(catalogSort(query.Get("sort"))).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := pc.Collection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding products")
		return
	}
	for i := range products {
		products[i].ComputePricing()
	}

	pages := (total + limit - 1) / limit
	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{
		"products": products,
		"pagination": map[string]interface{}{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}

// GetProduct returns one product by id or slug
func (pc *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["idOrSlug"]

	filter := bson.M{"slug": key}
	if id, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": id}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var product models.Product
	if err := pc.Collection.FindOne(ctx, filter).Decode(&product); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	product.ComputePricing()
	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"product": product})
}

type productRequest struct {
	Name               string         `json:"name" validate:"required"`
	Description        string         `json:"description"`
	Brand              string         `json:"brand"`
	CategoryIDs        []string       `json:"category_ids" validate:"required,min=1"`
	Images             []models.Image `json:"images"`
	BasePrice          float64        `json:"base_price" validate:"required,gt=0"`
	DiscountPercentage float64        `json:"discount_percentage" validate:"gte=0,lte=100"`
	TaxPercentage      float64        `json:"tax_percentage" validate:"gte=0,lte=100"`
	Stock              int            `json:"stock" validate:"gte=0"`
}

func parseObjectIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, hexID := range hexIDs {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateProduct adds a product owned by the authenticated seller
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
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

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	categoryIDs, err := parseObjectIDs(req.CategoryIDs)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	count, err := pc.CategoryCollection.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": categoryIDs}})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count != int64(len(categoryIDs)) {
		utils.RespondError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	now := time.Now()
	images := req.Images
	if images == nil {
		images = []models.Image{}
	}
	product := models.Product{
		ID:                 primitive.NewObjectID(),
		SellerID:           sellerID,
		CategoryIDs:        categoryIDs,
		Name:               req.Name,
		Slug:               slug.Make(req.Name),
		Description:        req.Description,
		Brand:              req.Brand,
		Images:             images,
		BasePrice:          req.BasePrice,
		DiscountPercentage: req.DiscountPercentage,
		TaxPercentage:      req.TaxPercentage,
		Stock:              req.Stock,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := pc.Collection.InsertOne(ctx, product); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error creating product")
		return
	}

	product.ComputePricing()
	utils.RespondSuccess(w, http.StatusCreated, "Product created", map[string]interface{}{"product": product})
}

// ownerFilter restricts writes to the product's seller; admins may touch any
// product.
func ownerFilter(productID primitive.ObjectID, claims *utils.Claims) bson.M {
	filter := bson.M{"_id": productID}
	if claims.Role != models.RoleAdmin {
		sellerID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err == nil {
			filter["seller_id"] = sellerID
		}
	}
	return filter
}

// UpdateProduct updates a product owned by the authenticated seller
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	categoryIDs, err := parseObjectIDs(req.CategoryIDs)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	update := bson.M{
		"name":                req.Name,
		"slug":                slug.Make(req.Name),
		"description":         req.Description,
		"brand":               req.Brand,
		"category_ids":        categoryIDs,
		"base_price":          req.BasePrice,
		"discount_percentage": req.DiscountPercentage,
		"tax_percentage":      req.TaxPercentage,
		"stock":               req.Stock,
		"updated_at":          time.Now(),
	}
	if req.Images != nil {
		update["images"] = req.Images
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := pc.Collection.UpdateOne(ctx, ownerFilter(productID, claims), bson.M{"$set": update})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating product")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Product updated", nil)
}

// DeleteProduct soft-disables a product owned by the authenticated seller
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := pc.Collection.UpdateOne(ctx, ownerFilter(productID, claims), bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now()},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error deleting product")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Product disabled", nil)
}
