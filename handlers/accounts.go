package handlers

import (
	"context"
	"net/http"

	"newsdesk/services"

	"github.com/gin-gonic/gin"
)

// AccountService is the registration, login and password reset flow shared
// by admins and users.
type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) error
	VerifyRegistration(ctx context.Context, email, code string) (string, error)
	Login(ctx context.Context, identifier, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// accountHandlers serves the account endpoints for one role. label prefixes
// the success messages ("Admin registered successfully").
type accountHandlers struct {
	svc   AccountService
	label string
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type loginRequest struct {
	Email           string `json:"email" binding:"required_without=EmailOrUsername"`
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *accountHandlers) Register(c *gin.Context) {
	image, closeImage, err := formFile(c, "image")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeImage()

	ctx, cancel := requestContext(c)
	defer cancel()

	err = h.svc.Register(ctx, services.RegisterInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Image:    image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

func (h *accountHandlers) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req, "Email and OTP are required") {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	token, err := h.svc.VerifyRegistration(ctx, req.Email, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": h.label + " registered successfully", "token": token})
}

func (h *accountHandlers) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "Email or username and password are required") {
		return
	}
	identifier := req.EmailOrUsername
	if identifier == "" {
		identifier = req.Email
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	token, err := h.svc.Login(ctx, identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.label + " logged in successfully", "token": token})
}

func (h *accountHandlers) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req, "Email is required") {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.ForgotPassword(ctx, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email"})
}

func (h *accountHandlers) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req, "Email, OTP and new password are required") {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.ResetPassword(ctx, req.Email, req.OTP, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
