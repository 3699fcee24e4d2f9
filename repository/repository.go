package repository

import (
	"context"
	"errors"
	"time"

	"newsdesk/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("repository: document not found")
	ErrDuplicate       = errors.New("repository: duplicate key")
	ErrAlreadyReported = errors.New("repository: already reported by this user")
)

// ProfileChanges carries optional profile edits; nil fields are left untouched.
type ProfileChanges struct {
	Username     *string
	Email        *string
	ProfileImage *string
}

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByEmailOrUsername(ctx context.Context, value string) (*models.Admin, error)
	FindAll(ctx context.Context) ([]models.Admin, error)
	Search(ctx context.Context, query string) ([]models.Admin, error)
	FindAuthors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error)
	UsernameTaken(ctx context.Context, username string, exclude primitive.ObjectID) (bool, error)
	EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, changes ProfileChanges) (*models.Admin, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	AddFollower(ctx context.Context, adminID, userID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, adminID, userID primitive.ObjectID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAuthors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, changes ProfileChanges) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	AddFollowing(ctx context.Context, userID, adminID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, adminID primitive.ObjectID) error
}

// PublishedFilter selects posts visible to readers at Now.
type PublishedFilter struct {
	Category string
	Tag      string
	Now      time.Time
	Sort     models.SortKey
}

// AdminPostFilter narrows an admin's own post listing. Zero values are ignored.
type AdminPostFilter struct {
	Status          models.PostStatus
	ScheduledAfter  time.Time
	PublishedBefore time.Time
}

// PostChanges carries optional post edits; nil fields are left untouched.
type PostChanges struct {
	Title       *string
	Content     *string
	Category    *string
	Tags        []string
	BannerImage *string
	Status      *models.PostStatus
	ScheduledAt *time.Time
	PublishedAt *time.Time
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// FindPublished returns matching posts in Sort order. limit 0 means all.
	FindPublished(ctx context.Context, filter PublishedFilter, skip, limit int64) ([]models.Post, error)
	FindByAdmin(ctx context.Context, adminID primitive.ObjectID, filter AdminPostFilter) ([]models.Post, error)
	FindReportedByAdmin(ctx context.Context, adminID primitive.ObjectID) ([]models.Post, error)
	CountPublishedByAdmins(ctx context.Context, adminIDs []primitive.ObjectID) (map[primitive.ObjectID]int, error)
	Update(ctx context.Context, id primitive.ObjectID, changes PostChanges) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ToggleLike adds or removes userID from likes and resyncs likesCount in one write.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	// RecordView bumps views and, when viewer is set, adds it to seenBy.
	RecordView(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID) (*models.Post, error)
	AddReport(ctx context.Context, postID primitive.ObjectID, report models.Report) error
	SetRating(ctx context.Context, postID primitive.ObjectID, rating models.Rating) error
	// PublishDue flips every scheduled post due at now to published and returns them.
	PublishDue(ctx context.Context, now time.Time) ([]models.Post, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	FindReportedOnPosts(ctx context.Context, postIDs []primitive.ObjectID) ([]models.Comment, error)
	AddReport(ctx context.Context, commentID primitive.ObjectID, report models.Report) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
}

type ReviewRepository interface {
	// Upsert creates or replaces the rating of userID on postID.
	Upsert(ctx context.Context, userID, postID primitive.ObjectID, rating int, now time.Time) error
	FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Review, error)
	// Summarize aggregates all current reviews of postID.
	Summarize(ctx context.Context, postID primitive.ObjectID) (models.Rating, error)
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
}
