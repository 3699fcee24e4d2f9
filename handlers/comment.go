package handlers

import (
	"context"
	"net/http"

	"newsdesk/middleware"
	"newsdesk/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService interface {
	Add(ctx context.Context, userID, postID primitive.ObjectID, text string) (*models.CommentView, error)
	List(ctx context.Context, postID primitive.ObjectID) ([]models.CommentView, error)
	Report(ctx context.Context, userID, commentID primitive.ObjectID, reason string) error
	Reported(ctx context.Context, adminID primitive.ObjectID) ([]models.ReportedComment, error)
}

type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

func (h *CommentHandler) Add(c *gin.Context) {
	postID, ok := pathID(c, "id", "Invalid post ID")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req, "Comment text is required") {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.comments.Add(ctx, middleware.CurrentID(c), postID, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment added successfully", "comment": comment})
}

// List returns a post's comments oldest first; a post without comments yields [].
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := pathID(c, "id", "Invalid post ID")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.comments.List(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Report(c *gin.Context) {
	commentID, ok := pathID(c, "id", "Invalid comment ID")
	if !ok {
		return
	}
	var req reportRequest
	if !bindJSON(c, &req, msgReasonRequired) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.comments.Report(ctx, middleware.CurrentID(c), commentID, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment reported successfully"})
}

func (h *CommentHandler) Reported(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.comments.Reported(ctx, middleware.CurrentID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
