// Package events announces post lifecycle changes to interested parties.
package events

import (
	"context"
	"errors"
	"time"

	"newsdesk/logger"
	"newsdesk/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PostPublishedEvent struct {
	EventID     string    `json:"eventId"`
	Timestamp   time.Time `json:"timestamp"`
	PostID      string    `json:"postId"`
	AdminID     string    `json:"adminId"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"publishedAt"`
}

type PostDeletedEvent struct {
	EventID   string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
	PostID    string    `json:"postId"`
	AdminID   string    `json:"adminId"`
}

func NewPostPublishedEvent(post *models.Post) PostPublishedEvent {
	ev := PostPublishedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		PostID:    post.ID.Hex(),
		AdminID:   post.CreatedBy.Hex(),
		Title:     post.Title,
		Category:  post.Category,
		Tags:      post.Tags,
	}
	if post.PublishedAt != nil {
		ev.PublishedAt = *post.PublishedAt
	}
	return ev
}

func NewPostDeletedEvent(post *models.Post) PostDeletedEvent {
	return PostDeletedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		PostID:    post.ID.Hex(),
		AdminID:   post.CreatedBy.Hex(),
	}
}

// Publisher is notified after a post becomes visible to readers or is deleted.
type Publisher interface {
	PostPublished(ctx context.Context, post *models.Post) error
	PostDeleted(ctx context.Context, post *models.Post) error
}

// Multi forwards every event to each publisher and joins their errors.
type Multi []Publisher

func (m Multi) PostPublished(ctx context.Context, post *models.Post) error {
	var errs []error
	for _, p := range m {
		if err := p.PostPublished(ctx, post); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) PostDeleted(ctx context.Context, post *models.Post) error {
	var errs []error
	for _, p := range m {
		if err := p.PostDeleted(ctx, post); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notify sends a published event and only logs a failure; the post change
// has already been committed by the time this runs.
func Notify(ctx context.Context, pub Publisher, post *models.Post) {
	if err := pub.PostPublished(ctx, post); err != nil {
		logger.Log.Warn("Failed to announce published post",
			zap.String("postID", post.ID.Hex()), zap.Error(err))
	}
}

// NotifyDeleted is the delete counterpart of Notify.
func NotifyDeleted(ctx context.Context, pub Publisher, post *models.Post) {
	if err := pub.PostDeleted(ctx, post); err != nil {
		logger.Log.Warn("Failed to announce deleted post",
			zap.String("postID", post.ID.Hex()), zap.Error(err))
	}
}
