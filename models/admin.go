package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultProfileImage = "https://img.daisyui.com/images/stock/photo-1606107557195-0e29a4b5b4aa.webp"

type Admin struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"`
	ProfileImage string               `bson:"profileImage" json:"profileImage"`
	Followers    []primitive.ObjectID `bson:"followers" json:"followers"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasFollower reports whether userID is in the admin's follower set.
func (a *Admin) HasFollower(userID primitive.ObjectID) bool {
	for _, id := range a.Followers {
		if id == userID {
			return true
		}
	}
	return false
}

// AdminSummary is the listing shape used by the admin directory and search.
type AdminSummary struct {
	ID            primitive.ObjectID `json:"_id"`
	Username      string             `json:"username"`
	Email         string             `json:"email"`
	ProfileImage  string             `json:"profileImage"`
	FollowerCount int                `json:"followerCount"`
	PostCount     int                `json:"postCount"`
}

// Author is the populated createdBy/userId reference embedded in responses.
type Author struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Username     string             `bson:"username" json:"username"`
	ProfileImage string             `bson:"profileImage" json:"profileImage"`
}
