package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a stored product image, addressed by the public id the upload
// service assigned to it.
type Image struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

// Product is a catalog entry owned by one seller. finalPrice, discountAmount
// and taxAmount are derived from the base price on every read; they are not
// stored.
type Product struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	SellerID           primitive.ObjectID   `bson:"seller_id" json:"seller_id"`
	CategoryIDs        []primitive.ObjectID `bson:"category_ids" json:"category_ids"`
	Name               string               `bson:"name" json:"name"`
	Slug               string               `bson:"slug" json:"slug"`
	Description        string               `bson:"description,omitempty" json:"description,omitempty"`
	Brand              string               `bson:"brand,omitempty" json:"brand,omitempty"`
	Images             []Image              `bson:"images" json:"images"`
	BasePrice          float64              `bson:"base_price" json:"base_price"`
	DiscountPercentage float64              `bson:"discount_percentage" json:"discount_percentage"`
	TaxPercentage      float64              `bson:"tax_percentage" json:"tax_percentage"`
	Stock              int                  `bson:"stock" json:"stock"`
	RatingsAverage     float64              `bson:"ratings_average" json:"ratings_average"`
	RatingsCount       int                  `bson:"ratings_count" json:"ratings_count"`
	IsActive           bool                 `bson:"is_active" json:"is_active"`
	CreatedAt          time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updated_at"`

	DiscountAmount float64 `bson:"-" json:"discount_amount"`
	TaxAmount      float64 `bson:"-" json:"tax_amount"`
	FinalPrice     float64 `bson:"-" json:"final_price"`
}

// ComputePricing fills the derived price fields:
//
//	discounted = basePrice × (1 − discount/100)
//	tax        = discounted × (tax/100)
//	finalPrice = discounted + tax
//
// all rounded to 2 decimals.
func (p *Product) ComputePricing() {
	base := decimal.NewFromFloat(p.BasePrice)
	hundred := decimal.NewFromInt(100)

	discount := base.Mul(decimal.NewFromFloat(p.DiscountPercentage)).Div(hundred)
	discounted := base.Sub(discount)
	tax := discounted.Mul(decimal.NewFromFloat(p.TaxPercentage)).Div(hundred)
	final := discounted.Add(tax)

	p.DiscountAmount, _ = discount.Round(2).Float64()
	p.TaxAmount, _ = tax.Round(2).Float64()
	p.FinalPrice, _ = final.Round(2).Float64()
}
