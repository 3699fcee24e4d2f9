package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostStatus string

const (
	StatusDrafted     PostStatus = "drafted"
	StatusScheduled   PostStatus = "scheduled"
	StatusPublished   PostStatus = "published"
	StatusUnpublished PostStatus = "unpublished"
)

// Valid reports whether s is one of the four lifecycle stages.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDrafted, StatusScheduled, StatusPublished, StatusUnpublished:
		return true
	}
	return false
}

type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Report struct {
	User       primitive.ObjectID `bson:"user" json:"user"`
	Reason     string             `bson:"reason" json:"reason"`
	ReportedAt time.Time          `bson:"reportedAt" json:"reportedAt"`
}

type Post struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title       string               `bson:"title" json:"title"`
	Content     string               `bson:"content" json:"content"`
	Category    string               `bson:"category" json:"category"`
	Tags        []string             `bson:"tags" json:"tags"`
	BannerImage string               `bson:"bannerImage" json:"bannerImage"`
	Views       int64                `bson:"views" json:"views"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	LikesCount  int                  `bson:"likesCount" json:"likesCount"`
	SeenBy      []primitive.ObjectID `bson:"seenBy" json:"seenBy"`
	Rating      Rating               `bson:"rating" json:"rating"`
	Status      PostStatus           `bson:"status" json:"status"`
	ScheduledAt *time.Time           `bson:"scheduledAt" json:"scheduledAt"`
	PublishedAt *time.Time           `bson:"publishedAt" json:"publishedAt"`
	ReportedBy  []Report             `bson:"reportedBy" json:"reportedBy"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"-"`
}

// MissingRequired lists the required fields that are blank. Drafts have none.
func (p *Post) MissingRequired() []string {
	if p.Status == StatusDrafted {
		return nil
	}
	var missing []string
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(p.Content) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(p.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(p.BannerImage) == "" {
		missing = append(missing, "bannerImage")
	}
	return missing
}

// SeenByUser reports whether userID has opened the post.
func (p *Post) SeenByUser(userID primitive.ObjectID) bool {
	for _, id := range p.SeenBy {
		if id == userID {
			return true
		}
	}
	return false
}


// PostView is a post with its author populated, as returned by the API.
type PostView struct {
	Post
	CreatedBy Author `json:"createdBy"`
}

// ReportView is a report with the reporter populated.
type ReportView struct {
	User       Author    `json:"user"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reportedAt"`
}

// ReportedPost is the moderation view of a post owned by the calling admin.
type ReportedPost struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Category    string             `json:"category"`
	Tags        []string           `json:"tags"`
	BannerImage string             `json:"bannerImage"`
	CreatedBy   Author             `json:"createdBy"`
	ReportedBy  []ReportView       `json:"reportedBy"`
}

// SortKey selects the feed ordering.
type SortKey string

const (
	SortLatest SortKey = "latest"
	SortLiked  SortKey = "liked"
	SortViewed SortKey = "viewed"
	SortRated  SortKey = "rated"
)

// ParseSortKey maps a query value to a SortKey, defaulting to latest.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortLiked, SortViewed, SortRated:
		return SortKey(s)
	}
	return SortLatest
}
