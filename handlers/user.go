package handlers

import (
	"context"
	"io"
	"net/http"

	"newsdesk/middleware"
	"newsdesk/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	AccountService
	Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, username string, image io.Reader) (*models.User, error)
}

type UserHandler struct {
	accountHandlers
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{
		accountHandlers: accountHandlers{svc: users, label: "User"},
		users:           users,
	}
}

func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Profile(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) EditProfile(c *gin.Context) {
	image, closeImage, err := formFile(c, "image")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeImage()

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.UpdateProfile(ctx, middleware.CurrentID(c), c.PostForm("username"), image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}
