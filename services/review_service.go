package services

import (
	"context"
	"time"

	"newsdesk/apperror"
	"newsdesk/logger"
	"newsdesk/models"
	"newsdesk/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReviewService struct {
	reviews repository.ReviewRepository
	posts   repository.PostRepository
	users   repository.UserRepository
	now     func() time.Time
}

func NewReviewService(reviews repository.ReviewRepository, posts repository.PostRepository, users repository.UserRepository) *ReviewService {
	return &ReviewService{reviews: reviews, posts: posts, users: users, now: time.Now}
}

// Rate records the user's rating of a post, replacing any earlier one, and
// recomputes the post's aggregate from all of its reviews.
func (s *ReviewService) Rate(ctx context.Context, userID, postID primitive.ObjectID, rating int) (models.Rating, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return models.Rating{}, apperror.BadRequest("Invalid post or rating")
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return models.Rating{}, postLookupError(err)
	}

	if err := s.reviews.Upsert(ctx, userID, postID, rating, s.now()); err != nil {
		return models.Rating{}, apperror.Internal("Failed to save review", err)
	}

	summary, err := s.reviews.Summarize(ctx, postID)
	if err != nil {
		return models.Rating{}, apperror.Internal("Failed to recompute rating", err)
	}
	if err := s.posts.SetRating(ctx, postID, summary); err != nil {
		return models.Rating{}, postLookupError(err)
	}

	logger.Log.Debug("Post rating updated",
		zap.String("postID", postID.Hex()),
		zap.Float64("average", summary.Average),
		zap.Int("count", summary.Count))
	return summary, nil
}

func (s *ReviewService) List(ctx context.Context, postID primitive.ObjectID) ([]models.ReviewView, error) {
	reviews, err := s.reviews.FindByPost(ctx, postID)
	if err != nil {
		return nil, apperror.Internal("Failed to load reviews", err)
	}

	ids := make([]primitive.ObjectID, len(reviews))
	for i, r := range reviews {
		ids[i] = r.UserID
	}
	authors, err := s.users.FindAuthors(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to load reviewers", err)
	}

	views := make([]models.ReviewView, len(reviews))
	for i, r := range reviews {
		views[i] = models.ReviewView{Review: r, UserID: authorOrStub(authors, r.UserID)}
	}
	return views, nil
}
