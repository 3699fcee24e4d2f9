package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"newsdesk/apperror"
	"newsdesk/models"
	"newsdesk/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, users repository.UserRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users, now: time.Now}
}

func (s *CommentService) Add(ctx context.Context, userID, postID primitive.ObjectID, text string) (*models.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.BadRequest("Comment text is required")
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, postLookupError(err)
	}

	now := s.now()
	comment := &models.Comment{
		PostID:     postID,
		UserID:     userID,
		Text:       text,
		ReportedBy: []models.Report{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperror.Internal("Failed to add comment", err)
	}

	views, err := s.withAuthors(ctx, []models.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns a post's comments, oldest first.
func (s *CommentService) List(ctx context.Context, postID primitive.ObjectID) ([]models.CommentView, error) {
	comments, err := s.comments.FindByPost(ctx, postID)
	if err != nil {
		return nil, apperror.Internal("Failed to load comments", err)
	}
	return s.withAuthors(ctx, comments)
}

func (s *CommentService) withAuthors(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]primitive.ObjectID, len(comments))
	for i, c := range comments {
		ids[i] = c.UserID
	}
	authors, err := s.users.FindAuthors(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to load comment authors", err)
	}

	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = models.CommentView{Comment: c, UserID: authorOrStub(authors, c.UserID)}
	}
	return views, nil
}

func (s *CommentService) Report(ctx context.Context, userID, commentID primitive.ObjectID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.BadRequest(msgReasonRequired)
	}

	err := s.comments.AddReport(ctx, commentID, models.Report{User: userID, Reason: reason, ReportedAt: s.now()})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("Comment not found")
	case errors.Is(err, repository.ErrAlreadyReported):
		return apperror.BadRequest("You have already reported this comment")
	case err != nil:
		return apperror.Internal("Failed to report comment", err)
	}
	return nil
}

// Reported lists reported comments left on the admin's own posts.
func (s *CommentService) Reported(ctx context.Context, adminID primitive.ObjectID) ([]models.ReportedComment, error) {
	posts, err := s.posts.FindByAdmin(ctx, adminID, repository.AdminPostFilter{})
	if err != nil {
		return nil, apperror.Internal("Failed to load posts", err)
	}
	titles := make(map[primitive.ObjectID]string, len(posts))
	postIDs := make([]primitive.ObjectID, len(posts))
	for i, p := range posts {
		titles[p.ID] = p.Title
		postIDs[i] = p.ID
	}

	comments, err := s.comments.FindReportedOnPosts(ctx, postIDs)
	if err != nil {
		return nil, apperror.Internal("Failed to load reported comments", err)
	}

	var userIDs []primitive.ObjectID
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
		for _, r := range c.ReportedBy {
			userIDs = append(userIDs, r.User)
		}
	}
	people, err := s.users.FindAuthors(ctx, userIDs)
	if err != nil {
		return nil, apperror.Internal("Failed to load users", err)
	}

	out := make([]models.ReportedComment, len(comments))
	for i, c := range comments {
		out[i] = models.ReportedComment{
			ID:         c.ID,
			Comment:    c.Text,
			UserID:     authorOrStub(people, c.UserID),
			PostID:     models.PostRef{ID: c.PostID, Title: titles[c.PostID], CreatedBy: adminID},
			ReportedBy: reportViews(c.ReportedBy, people),
			CreatedAt:  c.CreatedAt,
		}
	}
	return out, nil
}
