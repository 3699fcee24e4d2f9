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

type AdminService interface {
	AccountService
	Profile(ctx context.Context, adminID primitive.ObjectID, viewer *primitive.ObjectID) (*services.AdminProfile, error)
	UpdateProfile(ctx context.Context, adminID primitive.ObjectID, in services.AdminProfileInput) (*models.Admin, error)
	Directory(ctx context.Context) ([]models.AdminSummary, error)
	Search(ctx context.Context, query string) ([]models.AdminSummary, error)
	ToggleFollow(ctx context.Context, userID, adminID primitive.ObjectID) (bool, *models.Admin, error)
}

type AdminHandler struct {
	accountHandlers
	admins AdminService
}

func NewAdminHandler(admins AdminService) *AdminHandler {
	return &AdminHandler{
		accountHandlers: accountHandlers{svc: admins, label: "Admin"},
		admins:          admins,
	}
}

func (h *AdminHandler) Profile(c *gin.Context) {
	adminID, ok := pathID(c, "adminId", "Admin ID is required")
	if !ok {
		return
	}
	viewer, ok := queryID(c, "userId")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.admins.Profile(ctx, adminID, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AdminHandler) All(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	admins, err := h.admins.Directory(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admins)
}

func (h *AdminHandler) Search(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	admins, err := h.admins.Search(ctx, c.Param("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admins)
}

func (h *AdminHandler) FollowUnfollow(c *gin.Context) {
	adminID, ok := pathID(c, "adminId", "Invalid admin ID")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	following, admin, err := h.admins.ToggleFollow(ctx, middleware.CurrentID(c), adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Unfollowed successfully"
	if following {
		message = "Followed successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "admin": admin})
}

// EditProfile updates the caller's own profile; the path id must match the token.
func (h *AdminHandler) EditProfile(c *gin.Context) {
	adminID, ok := pathID(c, "adminId", "Invalid admin ID")
	if !ok {
		return
	}
	if adminID != middleware.CurrentID(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized: cannot edit others' profiles"})
		return
	}

	image, closeImage, err := formFile(c, "profileImage")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeImage()

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := h.admins.UpdateProfile(ctx, adminID, services.AdminProfileInput{
		Username: formString(c, "username"),
		Email:    formString(c, "email"),
		Image:    image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "admin": admin})
}
