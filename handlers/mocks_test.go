package handlers

import (
	"context"
	"io"

	"newsdesk/models"
	"newsdesk/services"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) Register(ctx context.Context, in services.RegisterInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockAccounts) VerifyRegistration(ctx context.Context, email, code string) (string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.Error(1)
}

func (m *mockAccounts) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

func (m *mockAccounts) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAccounts) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.Called(ctx, email, code, newPassword).Error(0)
}

type mockAdminService struct {
	mockAccounts
}

func (m *mockAdminService) Profile(ctx context.Context, adminID primitive.ObjectID, viewer *primitive.ObjectID) (*services.AdminProfile, error) {
	args := m.Called(ctx, adminID, viewer)
	p, _ := args.Get(0).(*services.AdminProfile)
	return p, args.Error(1)
}

func (m *mockAdminService) UpdateProfile(ctx context.Context, adminID primitive.ObjectID, in services.AdminProfileInput) (*models.Admin, error) {
	args := m.Called(ctx, adminID, in)
	a, _ := args.Get(0).(*models.Admin)
	return a, args.Error(1)
}

func (m *mockAdminService) Directory(ctx context.Context) ([]models.AdminSummary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]models.AdminSummary)
	return s, args.Error(1)
}

func (m *mockAdminService) Search(ctx context.Context, query string) ([]models.AdminSummary, error) {
	args := m.Called(ctx, query)
	s, _ := args.Get(0).([]models.AdminSummary)
	return s, args.Error(1)
}

func (m *mockAdminService) ToggleFollow(ctx context.Context, userID, adminID primitive.ObjectID) (bool, *models.Admin, error) {
	args := m.Called(ctx, userID, adminID)
	a, _ := args.Get(1).(*models.Admin)
	return args.Bool(0), a, args.Error(2)
}

type mockUserService struct {
	mockAccounts
}

func (m *mockUserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, username string, image io.Reader) (*models.User, error) {
	args := m.Called(ctx, id, username, image)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockPostService struct {
	mock.Mock
}

func (m *mockPostService) Create(ctx context.Context, adminID primitive.ObjectID, in services.PostInput) (*models.Post, error) {
	args := m.Called(ctx, adminID, in)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPostService) Feed(ctx context.Context, q services.FeedQuery) (*services.Feed, error) {
	args := m.Called(ctx, q)
	f, _ := args.Get(0).(*services.Feed)
	return f, args.Error(1)
}

func (m *mockPostService) ByTag(ctx context.Context, tag, category string, page, limit int) ([]models.PostView, error) {
	args := m.Called(ctx, tag, category, page, limit)
	p, _ := args.Get(0).([]models.PostView)
	return p, args.Error(1)
}

func (m *mockPostService) ByAdmin(ctx context.Context, adminID primitive.ObjectID, requester *primitive.ObjectID, status string) ([]models.PostView, error) {
	args := m.Called(ctx, adminID, requester, status)
	p, _ := args.Get(0).([]models.PostView)
	return p, args.Error(1)
}

func (m *mockPostService) Drafts(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error) {
	args := m.Called(ctx, adminID)
	p, _ := args.Get(0).([]models.PostView)
	return p, args.Error(1)
}

func (m *mockPostService) Scheduled(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error) {
	args := m.Called(ctx, adminID)
	p, _ := args.Get(0).([]models.PostView)
	return p, args.Error(1)
}

func (m *mockPostService) Published(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error) {
	args := m.Called(ctx, adminID)
	p, _ := args.Get(0).([]models.PostView)
	return p, args.Error(1)
}

func (m *mockPostService) Get(ctx context.Context, id primitive.ObjectID, view bool, viewer *primitive.ObjectID) (*models.PostView, error) {
	args := m.Called(ctx, id, view, viewer)
	p, _ := args.Get(0).(*models.PostView)
	return p, args.Error(1)
}

func (m *mockPostService) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.PostView, error) {
	args := m.Called(ctx, postID, userID)
	p, _ := args.Get(0).(*models.PostView)
	return p, args.Error(1)
}

func (m *mockPostService) Update(ctx context.Context, adminID, postID primitive.ObjectID, in services.PostUpdate) (*models.PostView, error) {
	args := m.Called(ctx, adminID, postID, in)
	p, _ := args.Get(0).(*models.PostView)
	return p, args.Error(1)
}

func (m *mockPostService) UpdateStatus(ctx context.Context, adminID, postID primitive.ObjectID, status, scheduledAt string) (*models.Post, error) {
	args := m.Called(ctx, adminID, postID, status, scheduledAt)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPostService) Delete(ctx context.Context, adminID, postID primitive.ObjectID) error {
	return m.Called(ctx, adminID, postID).Error(0)
}

func (m *mockPostService) Report(ctx context.Context, userID, postID primitive.ObjectID, reason string) error {
	return m.Called(ctx, userID, postID, reason).Error(0)
}

func (m *mockPostService) Reported(ctx context.Context, adminID primitive.ObjectID) ([]models.ReportedPost, error) {
	args := m.Called(ctx, adminID)
	p, _ := args.Get(0).([]models.ReportedPost)
	return p, args.Error(1)
}

type mockCommentService struct {
	mock.Mock
}

func (m *mockCommentService) Add(ctx context.Context, userID, postID primitive.ObjectID, text string) (*models.CommentView, error) {
	args := m.Called(ctx, userID, postID, text)
	c, _ := args.Get(0).(*models.CommentView)
	return c, args.Error(1)
}

func (m *mockCommentService) List(ctx context.Context, postID primitive.ObjectID) ([]models.CommentView, error) {
	args := m.Called(ctx, postID)
	c, _ := args.Get(0).([]models.CommentView)
	return c, args.Error(1)
}

func (m *mockCommentService) Report(ctx context.Context, userID, commentID primitive.ObjectID, reason string) error {
	return m.Called(ctx, userID, commentID, reason).Error(0)
}

func (m *mockCommentService) Reported(ctx context.Context, adminID primitive.ObjectID) ([]models.ReportedComment, error) {
	args := m.Called(ctx, adminID)
	c, _ := args.Get(0).([]models.ReportedComment)
	return c, args.Error(1)
}

type mockReviewService struct {
	mock.Mock
}

func (m *mockReviewService) Rate(ctx context.Context, userID, postID primitive.ObjectID, rating int) (models.Rating, error) {
	args := m.Called(ctx, userID, postID, rating)
	return args.Get(0).(models.Rating), args.Error(1)
}

func (m *mockReviewService) List(ctx context.Context, postID primitive.ObjectID) ([]models.ReviewView, error) {
	args := m.Called(ctx, postID)
	r, _ := args.Get(0).([]models.ReviewView)
	return r, args.Error(1)
}

// anyAdmin and anyUser treat every token subject as an existing account.
type anyAdmin struct{}

func (anyAdmin) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return &models.Admin{ID: id}, nil
}

type anyUser struct{}

func (anyUser) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return &models.User{ID: id}, nil
}
