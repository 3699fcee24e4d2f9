package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"newsdesk/apperror"
	"newsdesk/auth"
	"newsdesk/logger"
	"newsdesk/mailer"
	"newsdesk/media"
	"newsdesk/models"
	"newsdesk/otp"
	"newsdesk/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UserService struct {
	users    repository.UserRepository
	uploader media.Uploader
	tokens   *auth.Tokens
	otp      *otpFlow
	now      func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	store otp.Store,
	mail mailer.Mailer,
	uploader media.Uploader,
	tokens *auth.Tokens,
	otpTTL time.Duration,
) *UserService {
	s := &UserService{
		users:    users,
		uploader: uploader,
		tokens:   tokens,
		now:      time.Now,
	}
	s.otp = &otpFlow{store: store, mailer: mail, ns: otp.Users, ttl: otpTTL, now: func() time.Time { return s.now() }}
	return s
}

// Register mails a confirmation code for a new reader. The profile image is optional.
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	in.normalize()
	if err := in.validate(); err != nil {
		return err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return apperror.BadRequest("User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperror.Internal("Failed to register user", err)
	}

	imageURL := models.DefaultProfileImage
	if in.Image != nil {
		url, err := uploadImage(ctx, s.uploader, in.Image, media.FolderProfiles)
		if err != nil {
			return err
		}
		imageURL = url
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return err
	}

	return s.otp.issue(ctx, in.Email, otp.Record{
		Purpose:      otp.PurposeRegister,
		Username:     in.Username,
		PasswordHash: hash,
		ProfileImage: imageURL,
	}, mailer.UserVerificationEmail)
}

func (s *UserService) VerifyRegistration(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	rec, err := s.otp.verifyRegistration(ctx, email, code)
	if err != nil {
		return "", err
	}

	now := s.now()
	user := &models.User{
		Username:     rec.Username,
		Email:        email,
		PasswordHash: rec.PasswordHash,
		ProfileImage: rec.ProfileImage,
		Following:    []primitive.ObjectID{},
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.otp.consume(ctx, email)
			return "", apperror.BadRequest("User already exists")
		}
		return "", apperror.Internal("Failed to create user", err)
	}
	s.otp.consume(ctx, email)

	logger.Log.Info("User registered", zap.String("userID", user.ID.Hex()))
	return s.issueToken(user.ID)
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", apperror.BadRequest("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperror.BadRequest("User Not Found")
	}
	if err != nil {
		return "", apperror.Internal("Failed to log in", err)
	}
	if !passwordMatches(user.PasswordHash, password) {
		return "", apperror.BadRequest("Invalid credentials")
	}
	return s.issueToken(user.ID)
}

func (s *UserService) issueToken(id primitive.ObjectID) (string, error) {
	token, err := s.tokens.Issue(id, auth.RoleUser)
	if err != nil {
		return "", apperror.Internal("Failed to issue token", err)
	}
	return token, nil
}

func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperror.BadRequest("Email is required")
	}
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal("Failed to look up user", err)
	}
	return s.otp.issue(ctx, email, otp.Record{Purpose: otp.PurposeReset}, mailer.UserResetEmail)
}

func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if newPassword == "" {
		return apperror.BadRequest("New password is required")
	}
	if err := s.otp.verifyReset(ctx, email, code); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal("Failed to reset password", err)
	}
	s.otp.consume(ctx, email)
	return nil
}

func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load user", err)
	}
	return user, nil
}

// UpdateProfile changes the username and, when image is non-nil, the picture.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, username string, image io.Reader) (*models.User, error) {
	var changes repository.ProfileChanges
	if username = strings.TrimSpace(username); username != "" {
		changes.Username = &username
	}
	if image != nil {
		url, err := uploadImage(ctx, s.uploader, image, media.FolderProfiles)
		if err != nil {
			return nil, err
		}
		changes.ProfileImage = &url
	}

	user, err := s.users.UpdateProfile(ctx, id, changes)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to update profile", err)
	}
	return user, nil
}
