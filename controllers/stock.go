// controllers/stock.go
package controllers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-marketplace/models"
)

// ProductStock is the slice of the products collection the order workflow
// uses for stock movements. The indirection lets tests observe the exact
// take and restore sequence.
type ProductStock interface {
	FindProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// TakeStock decrements stock by quantity if at least that much is
	// available. The availability check and the decrement are one guarded
	// update, so concurrent takers cannot race past the check. It reports
	// whether the stock was taken.
	TakeStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error)
	RestoreStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

type mongoProductStock struct {
	coll *mongo.Collection
}

// NewProductStock wraps the products collection.
func NewProductStock(coll *mongo.Collection) ProductStock {
	return &mongoProductStock{coll: coll}
}

func (s *mongoProductStock) FindProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *mongoProductStock) TakeStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error) {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"stock": -quantity}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (s *mongoProductStock) RestoreStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stock": quantity}})
	return err
}
