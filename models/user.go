package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"`
	ProfileImage string               `bson:"profileImage" json:"profileImage"`
	Following    []primitive.ObjectID `bson:"following" json:"following"`
	IsVerified   bool                 `bson:"isVerified" json:"isVerified"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
