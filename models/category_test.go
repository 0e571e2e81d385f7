package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestComputeAncestors(t *testing.T) {
	root := primitive.NewObjectID()
	mid := primitive.NewObjectID()
	other := primitive.NewObjectID()

	tests := []struct {
		name    string
		parents []Category
		want    []primitive.ObjectID
	}{
		{
			name:    "no parents",
			parents: nil,
			want:    []primitive.ObjectID{},
		},
		{
			name: "single root parent",
			parents: []Category{
				{ID: root},
			},
			want: []primitive.ObjectID{root},
		},
		{
			name: "parent with ancestors",
			parents: []Category{
				{ID: mid, AncestorIDs: []primitive.ObjectID{root}},
			},
			want: []primitive.ObjectID{root, mid},
		},
		{
			name: "two parents sharing an ancestor",
			parents: []Category{
				{ID: mid, AncestorIDs: []primitive.ObjectID{root}},
				{ID: other, AncestorIDs: []primitive.ObjectID{root}},
			},
			want: []primitive.ObjectID{root, mid, other},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAncestors(tt.parents))
		})
	}
}

func TestComputeAncestorsClosure(t *testing.T) {
	// Build a chain root -> a -> b and check the closure accumulates each
	// level exactly once.
	root := Category{ID: primitive.NewObjectID(), AncestorIDs: []primitive.ObjectID{}}
	a := Category{ID: primitive.NewObjectID(), AncestorIDs: ComputeAncestors([]Category{root})}
	b := Category{ID: primitive.NewObjectID(), AncestorIDs: ComputeAncestors([]Category{a})}

	assert.Equal(t, []primitive.ObjectID{root.ID}, a.AncestorIDs)
	assert.Equal(t, []primitive.ObjectID{root.ID, a.ID}, b.AncestorIDs)

	assert.True(t, b.HasAncestor(root.ID))
	assert.True(t, b.HasAncestor(a.ID))
	assert.False(t, b.HasAncestor(b.ID))
	assert.False(t, root.HasAncestor(a.ID))
}

func TestDescendantLookupByAncestor(t *testing.T) {
	// Category lookup by id must match itself plus every category whose
	// ancestor set contains that id; this mirrors the catalog expansion
	// query.
	root := Category{ID: primitive.NewObjectID()}
	child := Category{ID: primitive.NewObjectID(), AncestorIDs: ComputeAncestors([]Category{root})}
	grandchild := Category{ID: primitive.NewObjectID(), AncestorIDs: ComputeAncestors([]Category{child})}
	unrelated := Category{ID: primitive.NewObjectID()}

	all := []Category{root, child, grandchild, unrelated}
	matched := []primitive.ObjectID{root.ID}
	for _, c := range all {
		if c.HasAncestor(root.ID) {
			matched = append(matched, c.ID)
		}
	}

	assert.ElementsMatch(t, []primitive.ObjectID{root.ID, child.ID, grandchild.ID}, matched)
}
