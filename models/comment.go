package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PostID     primitive.ObjectID `bson:"postId" json:"postId"`
	UserID     primitive.ObjectID `bson:"userId" json:"-"`
	Text       string             `bson:"comment" json:"comment"`
	ReportedBy []Report           `bson:"reportedBy" json:"reportedBy"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CommentView is a comment with its author populated.
type CommentView struct {
	Comment
	UserID Author `json:"userId"`
}

// PostRef is the slice of a post shown next to a reported comment.
type PostRef struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	CreatedBy primitive.ObjectID `json:"createdBy"`
}

// ReportedComment is the moderation view of a comment on the admin's post.
type ReportedComment struct {
	ID         primitive.ObjectID `json:"_id"`
	Comment    string             `json:"comment"`
	UserID     Author             `json:"userId"`
	PostID     PostRef            `json:"postId"`
	ReportedBy []ReportView       `json:"reportedBy"`
	CreatedAt  time.Time          `json:"createdAt"`
}
