package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"newsdesk/apperror"
	"newsdesk/auth"
	"newsdesk/otp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	admins   *fakeAdmins
	users    *fakeUsers
	posts    *fakePosts
	comments *fakeComments
	reviews  *fakeReviews
	store    *otp.MemoryStore
	mail     *sentMail
	uploader *fakeUploader
	events   *mockPublisher
	tokens   *auth.Tokens
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		admins:   newFakeAdmins(),
		users:    newFakeUsers(),
		posts:    newFakePosts(),
		comments: &fakeComments{},
		reviews:  &fakeReviews{},
		store:    otp.NewMemoryStore(),
		mail:     &sentMail{},
		uploader: &fakeUploader{},
		events:   new(mockPublisher),
		tokens:   auth.NewTokens("test-secret", time.Hour),
		now:      time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	e.events.On("PostPublished", mock.Anything, mock.Anything).Return(nil).Maybe()
	e.events.On("PostDeleted", mock.Anything, mock.Anything).Return(nil).Maybe()
	return e
}

func (e *testEnv) clock() time.Time { return e.now }

func (e *testEnv) hasCode(ns otp.Namespace, email string) bool {
	_, err := e.store.Get(context.Background(), otp.Key(ns, email))
	return err == nil
}

func (e *testEnv) hasAdminCode(email string) bool { return e.hasCode(otp.Admins, email) }
func (e *testEnv) hasUserCode(email string) bool  { return e.hasCode(otp.Users, email) }

func (e *testEnv) adminService() *AdminService {
	s := NewAdminService(e.admins, e.users, e.posts, e.store, e.mail, e.uploader, e.tokens, 5*time.Minute)
	s.now = e.clock
	return s
}

func (e *testEnv) userService() *UserService {
	s := NewUserService(e.users, e.store, e.mail, e.uploader, e.tokens, 10*time.Minute)
	s.now = e.clock
	return s
}

func (e *testEnv) postService() *PostService {
	s := NewPostService(e.posts, e.comments, e.reviews, e.admins, e.users, e.uploader, e.events)
	s.now = e.clock
	return s
}

func (e *testEnv) commentService() *CommentService {
	s := NewCommentService(e.comments, e.posts, e.users)
	s.now = e.clock
	return s
}

func (e *testEnv) reviewService() *ReviewService {
	s := NewReviewService(e.reviews, e.posts, e.users)
	s.now = e.clock
	return s
}

var codePattern = regexp.MustCompile(`\d{6}`)

// lastCode pulls the OTP out of the most recent email.
func (e *testEnv) lastCode(t *testing.T) string {
	t.Helper()
	code := codePattern.FindString(e.mail.last().Body)
	require.NotEmpty(t, code)
	return code
}

func assertAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *AppError, got %v", err)
	assert.Equal(t, status, appErr.Status)
	assert.Equal(t, message, appErr.Message)
}
