package handlers

import (
	"context"
	"net/http"

	"newsdesk/middleware"
	"newsdesk/models"
	"newsdesk/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostService interface {
	Create(ctx context.Context, adminID primitive.ObjectID, in services.PostInput) (*models.Post, error)
	Feed(ctx context.Context, q services.FeedQuery) (*services.Feed, error)
	ByTag(ctx context.Context, tag, category string, page, limit int) ([]models.PostView, error)
	ByAdmin(ctx context.Context, adminID primitive.ObjectID, requester *primitive.ObjectID, status string) ([]models.PostView, error)
	Drafts(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error)
	Scheduled(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error)
	Published(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error)
	Get(ctx context.Context, id primitive.ObjectID, view bool, viewer *primitive.ObjectID) (*models.PostView, error)
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.PostView, error)
	Update(ctx context.Context, adminID, postID primitive.ObjectID, in services.PostUpdate) (*models.PostView, error)
	UpdateStatus(ctx context.Context, adminID, postID primitive.ObjectID, status, scheduledAt string) (*models.Post, error)
	Delete(ctx context.Context, adminID, postID primitive.ObjectID) error
	Report(ctx context.Context, userID, postID primitive.ObjectID, reason string) error
	Reported(ctx context.Context, adminID primitive.ObjectID) ([]models.ReportedPost, error)
}

type PostHandler struct {
	posts PostService
}

func NewPostHandler(posts PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type statusRequest struct {
	Status      string `json:"status" binding:"required"`
	ScheduledAt string `json:"scheduledAt"`
}

type reportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

const msgReasonRequired = "Reason for report is required."

func (h *PostHandler) Create(c *gin.Context) {
	banner, closeBanner, err := formFile(c, "banner")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeBanner()

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Create(ctx, middleware.CurrentID(c), services.PostInput{
		Title:       c.PostForm("title"),
		Content:     c.PostForm("content"),
		Category:    c.PostForm("category"),
		Tags:        services.ParseTags(c.PostForm("tags")),
		Status:      c.PostForm("status"),
		ScheduledAt: c.PostForm("scheduledAt"),
		Banner:      banner,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "post": post})
}

// Feed serves the reader feed: ?category=&page=&limit=&sort=&userId=
func (h *PostHandler) Feed(c *gin.Context) {
	viewer, ok := queryID(c, "userId")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	feed, err := h.posts.Feed(ctx, services.FeedQuery{
		Category: c.Query("category"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", services.DefaultPageSize),
		Sort:     models.ParseSortKey(c.Query("sort")),
		Viewer:   viewer,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *PostHandler) ByTag(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.posts.ByTag(ctx, c.Param("tag"), c.Query("category"),
		queryInt(c, "page", 1), queryInt(c, "limit", services.DefaultPageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// ByAdmin lists an author's posts. Runs behind OptionalAuth so the author
// also sees unpublished work.
func (h *PostHandler) ByAdmin(c *gin.Context) {
	adminID, ok := pathID(c, "id", "Invalid admin ID")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.posts.ByAdmin(ctx, adminID, middleware.CurrentAdmin(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Drafts(c *gin.Context) {
	h.ownListing(c, h.posts.Drafts)
}

func (h *PostHandler) Scheduled(c *gin.Context) {
	h.ownListing(c, h.posts.Scheduled)
}

func (h *PostHandler) Published(c *gin.Context) {
	h.ownListing(c, h.posts.Published)
}

func (h *PostHandler) ownListing(c *gin.Context, list func(context.Context, primitive.ObjectID) ([]models.PostView, error)) {
	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := list(ctx, middleware.CurrentID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get returns one post; ?view=true also counts a view by ?userId.
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid post ID")
	if !ok {
		return
	}
	viewer, ok := queryID(c, "userId")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Get(ctx, id, c.Query("view") == "true", viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Like(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid post ID")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.ToggleLike(ctx, id, middleware.CurrentID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post liked successfully", "post": post})
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid post ID")
	if !ok {
		return
	}
	banner, closeBanner, err := formFile(c, "banner")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeBanner()

	in := services.PostUpdate{
		Title:    formString(c, "title"),
		Content:  formString(c, "content"),
		Category: formString(c, "category"),
		Banner:   banner,
	}
	if tags := formString(c, "tags"); tags != nil {
		in.Tags = services.ParseTags(*tags)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Update(ctx, middleware.CurrentID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "post": post})
}

func (h *PostHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid post ID")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req, "Invalid status") {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.UpdateStatus(ctx, middleware.CurrentID(c), id, req.Status, req.ScheduledAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": post.Status})
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid post ID")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.posts.Delete(ctx, middleware.CurrentID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *PostHandler) Report(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid post ID")
	if !ok {
		return
	}
	var req reportRequest
	if !bindJSON(c, &req, msgReasonRequired) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.posts.Report(ctx, middleware.CurrentID(c), id, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post reported successfully"})
}

func (h *PostHandler) Reported(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.posts.Reported(ctx, middleware.CurrentID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
