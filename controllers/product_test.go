package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

func TestBuildCatalogFilter(t *testing.T) {
	t.Run("defaults to active products only", func(t *testing.T) {
		filter, err := buildCatalogFilter("", "", "", "", nil)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"is_active": true}, filter)
	})

	t.Run("search matches name and description", func(t *testing.T) {
		filter, err := buildCatalogFilter("phone", "", "", "", nil)
		require.NoError(t, err)
		assert.Contains(t, filter, "$or")
	})

	t.Run("price range", func(t *testing.T) {
		filter, err := buildCatalogFilter("", "", "10", "99.5", nil)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 99.5}, filter["base_price"])
	})

	t.Run("min only", func(t *testing.T) {
		filter, err := buildCatalogFilter("", "", "10", "", nil)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$gte": 10.0}, filter["base_price"])
	})

	t.Run("non-numeric min price is rejected", func(t *testing.T) {
		_, err := buildCatalogFilter("", "", "cheap", "", nil)
		assert.Error(t, err)
	})

	t.Run("non-numeric max price is rejected", func(t *testing.T) {
		_, err := buildCatalogFilter("", "", "", "expensive", nil)
		assert.Error(t, err)
	})

	t.Run("category ids expand to $in", func(t *testing.T) {
		ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
		filter, err := buildCatalogFilter("", "", "", "", ids)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$in": ids}, filter["category_ids"])
	})
}

func TestCatalogSort(t *testing.T) {
	tests := []struct {
		key  string
		want bson.D
	}{
		{"price_asc", bson.D{{Key: "base_price", Value: 1}}},
		{"price_desc", bson.D{{Key: "base_price", Value: -1}}},
		{"popular", bson.D{{Key: "ratings_average", Value: -1}}},
		{"", bson.D{{Key: "created_at", Value: -1}}},
		{"bogus", bson.D{{Key: "created_at", Value: -1}}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, catalogSort(tt.key), "key=%q", tt.key)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		page      string
		limit     string
		wantPage  int64
		wantLimit int64
	}{
		{"", "", 1, defaultPageSize},
		{"3", "20", 3, 20},
		{"0", "0", 1, defaultPageSize},
		{"-2", "-5", 1, defaultPageSize},
		{"junk", "junk", 1, defaultPageSize},
		{"2", "9999", 2, maxPageSize},
	}

	for _, tt := range tests {
		page, limit := parsePagination(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page, "page=%q", tt.page)
		assert.Equal(t, tt.wantLimit, limit, "limit=%q", tt.limit)
	}
}

func TestGetProductsCategoryLookup(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown category is not found", func(mt *mtest.T) {
		pc := NewProductController(mt.Client, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "marketplace.categories", mtest.FirstBatch))

		rec := httptest.NewRecorder()
		pc.GetProducts(rec, httptest.NewRequest(http.MethodGet, "/api/product?category=lamps", nil))

		assert.Equal(mt, http.StatusNotFound, rec.Code)
		assert.Contains(mt, rec.Body.String(), "Category not found")
	})

	mt.Run("category lookup failure is a server error", func(mt *mtest.T) {
		pc := NewProductController(mt.Client, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Name:    "InterruptedAtShutdown",
			Message: "interrupted at shutdown",
		}))

		rec := httptest.NewRecorder()
		pc.GetProducts(rec, httptest.NewRequest(http.MethodGet, "/api/product?category=lamps", nil))

		assert.Equal(mt, http.StatusInternalServerError, rec.Code)
	})
}
