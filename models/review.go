package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"userId" json:"-"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	Rating    int                `bson:"rating" json:"rating"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReviewView is a review with the reviewer populated.
type ReviewView struct {
	Review
	UserID Author `json:"userId"`
}
