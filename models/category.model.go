package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a node in the category graph. A category may have several
// parents; ancestor_ids holds the materialized closure of every ancestor
// (parents plus all of their ancestors) and is recomputed on every write.
// Descendant lookups then become a single query matching the closure instead
// of a graph walk.
type Category struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string               `bson:"name" json:"name"`
	Slug        string               `bson:"slug" json:"slug"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	ParentIDs   []primitive.ObjectID `bson:"parent_ids" json:"parent_ids"`
	AncestorIDs []primitive.ObjectID `bson:"ancestor_ids" json:"ancestor_ids"`
	IsActive    bool                 `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

// ComputeAncestors returns the ancestor closure for a category given its
// resolved parent documents: the union of every parent's ancestors and the
// parents themselves, deduplicated, in first-seen order.
func ComputeAncestors(parents []Category) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	ancestors := []primitive.ObjectID{}
	for _, parent := range parents {
		for _, id := range parent.AncestorIDs {
			if !seen[id] {
				seen[id] = true
				ancestors = append(ancestors, id)
			}
		}
		if !seen[parent.ID] {
			seen[parent.ID] = true
			ancestors = append(ancestors, parent.ID)
		}
	}
	return ancestors
}

// HasAncestor reports whether id is in the category's ancestor closure.
func (c *Category) HasAncestor(id primitive.ObjectID) bool {
	for _, a := range c.AncestorIDs {
		if a == id {
			return true
		}
	}
	return false
}
