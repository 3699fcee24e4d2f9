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

// AdminProfile is the public profile of an author as seen by one viewer.
type AdminProfile struct {
	models.Admin
	FollowersCount int  `json:"followersCount"`
	IsFollowing    bool `json:"isFollowing"`
}

// AdminProfileInput carries an author's own profile edits.
type AdminProfileInput struct {
	Username *string
	Email    *string
	Image    io.Reader
}

type AdminService struct {
	admins   repository.AdminRepository
	users    repository.UserRepository
	posts    repository.PostRepository
	uploader media.Uploader
	tokens   *auth.Tokens
	otp      *otpFlow
	now      func() time.Time
}

func NewAdminService(
	admins repository.AdminRepository,
	users repository.UserRepository,
	posts repository.PostRepository,
	store otp.Store,
	mail mailer.Mailer,
	uploader media.Uploader,
	tokens *auth.Tokens,
	otpTTL time.Duration,
) *AdminService {
	s := &AdminService{
		admins:   admins,
		users:    users,
		posts:    posts,
		uploader: uploader,
		tokens:   tokens,
		now:      time.Now,
	}
	s.otp = &otpFlow{store: store, mailer: mail, ns: otp.Admins, ttl: otpTTL, now: func() time.Time { return s.now() }}
	return s
}

// Register validates a new author, uploads the profile image and mails a
// confirmation code. Nothing is persisted until VerifyRegistration.
func (s *AdminService) Register(ctx context.Context, in RegisterInput) error {
	in.normalize()
	if err := in.validate(); err != nil {
		return err
	}
	if in.Image == nil {
		return apperror.BadRequest("Profile image is required")
	}

	taken, err := s.admins.EmailTaken(ctx, in.Email, primitive.NilObjectID)
	if err != nil {
		return apperror.Internal("Failed to register admin", err)
	}
	if taken {
		return apperror.BadRequest("Admin already exists")
	}
	taken, err = s.admins.UsernameTaken(ctx, in.Username, primitive.NilObjectID)
	if err != nil {
		return apperror.Internal("Failed to register admin", err)
	}
	if taken {
		return apperror.BadRequest("Username already taken")
	}

	imageURL, err := uploadImage(ctx, s.uploader, in.Image, media.FolderProfiles)
	if err != nil {
		return err
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
	}, mailer.AdminVerificationEmail)
}

// VerifyRegistration creates the pending admin when code matches and returns a token.
func (s *AdminService) VerifyRegistration(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	rec, err := s.otp.verifyRegistration(ctx, email, code)
	if err != nil {
		return "", err
	}

	now := s.now()
	admin := &models.Admin{
		Username:     rec.Username,
		Email:        email,
		PasswordHash: rec.PasswordHash,
		ProfileImage: rec.ProfileImage,
		Followers:    []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.otp.consume(ctx, email)
			return "", apperror.BadRequest("Admin already exists")
		}
		return "", apperror.Internal("Failed to create admin", err)
	}
	s.otp.consume(ctx, email)

	logger.Log.Info("Admin registered", zap.String("adminID", admin.ID.Hex()))
	return s.issueToken(admin.ID)
}

func (s *AdminService) Login(ctx context.Context, emailOrUsername, password string) (string, error) {
	value := strings.TrimSpace(emailOrUsername)
	if strings.Contains(value, "@") {
		value = strings.ToLower(value)
	}
	if value == "" || password == "" {
		return "", apperror.BadRequest("Email or username and password are required")
	}

	admin, err := s.admins.FindByEmailOrUsername(ctx, value)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperror.BadRequest("Admin not found")
	}
	if err != nil {
		return "", apperror.Internal("Failed to log in", err)
	}
	if !passwordMatches(admin.PasswordHash, password) {
		return "", apperror.BadRequest("Invalid credentials")
	}
	return s.issueToken(admin.ID)
}

func (s *AdminService) issueToken(id primitive.ObjectID) (string, error) {
	token, err := s.tokens.Issue(id, auth.RoleAdmin)
	if err != nil {
		return "", apperror.Internal("Failed to issue token", err)
	}
	return token, nil
}

func (s *AdminService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperror.BadRequest("Email is required")
	}
	if _, err := s.admins.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Admin not found")
		}
		return apperror.Internal("Failed to look up admin", err)
	}
	return s.otp.issue(ctx, email, otp.Record{Purpose: otp.PurposeReset}, mailer.AdminResetEmail)
}

func (s *AdminService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
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
	if err := s.admins.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Admin not found")
		}
		return apperror.Internal("Failed to reset password", err)
	}
	s.otp.consume(ctx, email)
	return nil
}

// Profile returns an admin with follower figures relative to viewer, which may be nil.
func (s *AdminService) Profile(ctx context.Context, adminID primitive.ObjectID, viewer *primitive.ObjectID) (*AdminProfile, error) {
	admin, err := s.findAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	profile := &AdminProfile{Admin: *admin, FollowersCount: len(admin.Followers)}
	if viewer != nil {
		profile.IsFollowing = admin.HasFollower(*viewer)
	}
	return profile, nil
}

func (s *AdminService) findAdmin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("Admin not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load admin", err)
	}
	return admin, nil
}

func (s *AdminService) UpdateProfile(ctx context.Context, adminID primitive.ObjectID, in AdminProfileInput) (*models.Admin, error) {
	var changes repository.ProfileChanges

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username != "" {
			taken, err := s.admins.UsernameTaken(ctx, username, adminID)
			if err != nil {
				return nil, apperror.Internal("Failed to update profile", err)
			}
			if taken {
				return nil, apperror.BadRequest("Username already taken")
			}
			changes.Username = &username
		}
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != "" {
			taken, err := s.admins.EmailTaken(ctx, email, adminID)
			if err != nil {
				return nil, apperror.Internal("Failed to update profile", err)
			}
			if taken {
				return nil, apperror.BadRequest("Email already taken")
			}
			changes.Email = &email
		}
	}
	if in.Image != nil {
		url, err := uploadImage(ctx, s.uploader, in.Image, media.FolderProfiles)
		if err != nil {
			return nil, err
		}
		changes.ProfileImage = &url
	}

	admin, err := s.admins.UpdateProfile(ctx, adminID, changes)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperror.NotFound("Admin not found")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperror.BadRequest("Email already taken")
	case err != nil:
		return nil, apperror.Internal("Failed to update profile", err)
	}
	return admin, nil
}

// Directory lists every admin with follower and published-post counts.
func (s *AdminService) Directory(ctx context.Context) ([]models.AdminSummary, error) {
	admins, err := s.admins.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load admins", err)
	}
	return s.summarize(ctx, admins)
}

// Search matches query as a case-insensitive substring of username or email.
func (s *AdminService) Search(ctx context.Context, query string) ([]models.AdminSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.BadRequest("Search query is required")
	}
	admins, err := s.admins.Search(ctx, query)
	if err != nil {
		return nil, apperror.Internal("Failed to search admins", err)
	}
	return s.summarize(ctx, admins)
}

func (s *AdminService) summarize(ctx context.Context, admins []models.Admin) ([]models.AdminSummary, error) {
	ids := make([]primitive.ObjectID, len(admins))
	for i, a := range admins {
		ids[i] = a.ID
	}
	counts, err := s.posts.CountPublishedByAdmins(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to count posts", err)
	}

	out := make([]models.AdminSummary, len(admins))
	for i, a := range admins {
		out[i] = models.AdminSummary{
			ID:            a.ID,
			Username:      a.Username,
			Email:         a.Email,
			ProfileImage:  a.ProfileImage,
			FollowerCount: len(a.Followers),
			PostCount:     counts[a.ID],
		}
	}
	return out, nil
}

// ToggleFollow flips whether userID follows adminID, updating both sides.
// It reports the new state and the admin after the change.
func (s *AdminService) ToggleFollow(ctx context.Context, userID, adminID primitive.ObjectID) (bool, *models.Admin, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil, apperror.NotFound("User not found")
		}
		return false, nil, apperror.Internal("Failed to load user", err)
	}
	admin, err := s.findAdmin(ctx, adminID)
	if err != nil {
		return false, nil, err
	}

	following := !admin.HasFollower(userID)
	if following {
		err = s.admins.AddFollower(ctx, adminID, userID)
		if err == nil {
			err = s.users.AddFollowing(ctx, userID, adminID)
		}
	} else {
		err = s.admins.RemoveFollower(ctx, adminID, userID)
		if err == nil {
			err = s.users.RemoveFollowing(ctx, userID, adminID)
		}
	}
	if err != nil {
		return false, nil, apperror.Internal("Failed to update follow state", err)
	}

	admin, err = s.findAdmin(ctx, adminID)
	if err != nil {
		return false, nil, err
	}
	return following, admin, nil
}
