package handlers

import (
	"context"
	"net/http"

	"newsdesk/middleware"
	"newsdesk/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewService interface {
	Rate(ctx context.Context, userID, postID primitive.ObjectID, rating int) (models.Rating, error)
	List(ctx context.Context, postID primitive.ObjectID) ([]models.ReviewView, error)
}

type ReviewHandler struct {
	reviews ReviewService
}

func NewReviewHandler(reviews ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type reviewRequest struct {
	PostID string `json:"postId" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

func (h *ReviewHandler) AddOrUpdate(c *gin.Context) {
	var req reviewRequest
	if !bindJSON(c, &req, "Invalid post or rating") {
		return
	}
	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid post or rating"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rating, err := h.reviews.Rate(ctx, middleware.CurrentID(c), postID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review saved successfully", "rating": rating})
}

func (h *ReviewHandler) List(c *gin.Context) {
	postID, ok := pathID(c, "postId", "Post ID is required")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, err := h.reviews.List(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
