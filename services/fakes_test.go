package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"newsdesk/models"
	"newsdesk/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAdmins struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Admin
}

func newFakeAdmins() *fakeAdmins {
	return &fakeAdmins{byID: make(map[primitive.ObjectID]*models.Admin)}
}

func (f *fakeAdmins) Create(_ context.Context, admin *models.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == admin.Email {
			return repository.ErrDuplicate
		}
	}
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	cp := *admin
	f.byID[admin.ID] = &cp
	return nil
}

func (f *fakeAdmins) findBy(match func(*models.Admin) bool) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if match(a) {
			cp := *a
			cp.Followers = append([]primitive.ObjectID(nil), a.Followers...)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return f.findBy(func(a *models.Admin) bool { return a.ID == id })
}

func (f *fakeAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	return f.findBy(func(a *models.Admin) bool { return a.Email == email })
}

func (f *fakeAdmins) FindByEmailOrUsername(_ context.Context, value string) (*models.Admin, error) {
	return f.findBy(func(a *models.Admin) bool { return a.Email == value || a.Username == value })
}

func (f *fakeAdmins) all(match func(*models.Admin) bool) []models.Admin {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Admin{}
	for _, a := range f.byID {
		if match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (f *fakeAdmins) FindAll(context.Context) ([]models.Admin, error) {
	return f.all(func(*models.Admin) bool { return true }), nil
}

func (f *fakeAdmins) Search(_ context.Context, query string) ([]models.Admin, error) {
	q := strings.ToLower(query)
	return f.all(func(a *models.Admin) bool {
		return strings.Contains(strings.ToLower(a.Username), q) || strings.Contains(strings.ToLower(a.Email), q)
	}), nil
}

func (f *fakeAdmins) FindAuthors(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[primitive.ObjectID]models.Author)
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out[id] = models.Author{ID: a.ID, Username: a.Username, ProfileImage: a.ProfileImage}
		}
	}
	return out, nil
}

func (f *fakeAdmins) UsernameTaken(_ context.Context, username string, exclude primitive.ObjectID) (bool, error) {
	_, err := f.findBy(func(a *models.Admin) bool { return a.Username == username && a.ID != exclude })
	return err == nil, nil
}

func (f *fakeAdmins) EmailTaken(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	_, err := f.findBy(func(a *models.Admin) bool { return a.Email == email && a.ID != exclude })
	return err == nil, nil
}

func (f *fakeAdmins) UpdateProfile(_ context.Context, id primitive.ObjectID, changes repository.ProfileChanges) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if changes.Username != nil {
		a.Username = *changes.Username
	}
	if changes.Email != nil {
		a.Email = *changes.Email
	}
	if changes.ProfileImage != nil {
		a.ProfileImage = *changes.ProfileImage
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAdmins) UpdatePassword(_ context.Context, email, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			a.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAdmins) AddFollower(_ context.Context, adminID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[adminID]
	if !ok {
		return repository.ErrNotFound
	}
	if !a.HasFollower(userID) {
		a.Followers = append(a.Followers, userID)
	}
	return nil
}

func (f *fakeAdmins) RemoveFollower(_ context.Context, adminID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[adminID]
	if !ok {
		return repository.ErrNotFound
	}
	a.Followers = without(a.Followers, userID)
	return nil
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.Following = append([]primitive.ObjectID(nil), u.Following...)
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindAuthors(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[primitive.ObjectID]models.Author)
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out[id] = models.Author{ID: u.ID, Username: u.Username, ProfileImage: u.ProfileImage}
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, changes repository.ProfileChanges) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if changes.Username != nil {
		u.Username = *changes.Username
	}
	if changes.ProfileImage != nil {
		u.ProfileImage = *changes.ProfileImage
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, email, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			u.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUsers) AddFollowing(_ context.Context, userID, adminID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if !containsID(u.Following, adminID) {
		u.Following = append(u.Following, adminID)
	}
	return nil
}

func (f *fakeUsers) RemoveFollowing(_ context.Context, userID, adminID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Following = without(u.Following, adminID)
	return nil
}

type fakePosts struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{byID: make(map[primitive.ObjectID]*models.Post)}
}

func clonePost(p *models.Post) models.Post {
	cp := *p
	cp.Likes = append([]primitive.ObjectID{}, p.Likes...)
	cp.SeenBy = append([]primitive.ObjectID{}, p.SeenBy...)
	cp.ReportedBy = append([]models.Report{}, p.ReportedBy...)
	cp.Tags = append([]string{}, p.Tags...)
	return cp
}

func (f *fakePosts) Create(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	cp := clonePost(post)
	f.byID[post.ID] = &cp
	return nil
}

func (f *fakePosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := clonePost(p)
	return &cp, nil
}

func (f *fakePosts) filter(match func(*models.Post) bool, less func(a, b *models.Post) bool) []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Post{}
	for _, p := range f.byID {
		if match(p) {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if less(&out[i], &out[j]) {
			return true
		}
		if less(&out[j], &out[i]) {
			return false
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func sortKeyLess(key models.SortKey) func(a, b *models.Post) bool {
	switch key {
	case models.SortLiked:
		return func(a, b *models.Post) bool { return a.LikesCount > b.LikesCount }
	case models.SortViewed:
		return func(a, b *models.Post) bool { return a.Views > b.Views }
	case models.SortRated:
		return func(a, b *models.Post) bool { return a.Rating.Average > b.Rating.Average }
	}
	return func(a, b *models.Post) bool { return a.PublishedAt.After(*b.PublishedAt) }
}

func (f *fakePosts) FindPublished(_ context.Context, filter repository.PublishedFilter, skip, limit int64) ([]models.Post, error) {
	posts := f.filter(func(p *models.Post) bool {
		if p.Status != models.StatusPublished || p.PublishedAt == nil || p.PublishedAt.After(filter.Now) {
			return false
		}
		if filter.Category != "" && filter.Category != "All" && p.Category != filter.Category {
			return false
		}
		if filter.Tag != "" {
			found := false
			for _, t := range p.Tags {
				found = found || t == filter.Tag
			}
			return found
		}
		return true
	}, sortKeyLess(filter.Sort))

	if skip >= int64(len(posts)) {
		return []models.Post{}, nil
	}
	posts = posts[skip:]
	if limit > 0 && limit < int64(len(posts)) {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *fakePosts) FindByAdmin(_ context.Context, adminID primitive.ObjectID, filter repository.AdminPostFilter) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool {
		if p.CreatedBy != adminID {
			return false
		}
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		if !filter.ScheduledAfter.IsZero() && (p.ScheduledAt == nil || !p.ScheduledAt.After(filter.ScheduledAfter)) {
			return false
		}
		if !filter.PublishedBefore.IsZero() && (p.PublishedAt == nil || p.PublishedAt.After(filter.PublishedBefore)) {
			return false
		}
		return true
	}, func(a, b *models.Post) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (f *fakePosts) FindReportedByAdmin(_ context.Context, adminID primitive.ObjectID) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool {
		return p.CreatedBy == adminID && len(p.ReportedBy) > 0
	}, func(a, b *models.Post) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (f *fakePosts) CountPublishedByAdmins(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[primitive.ObjectID]bool)
	for _, id := range ids {
		want[id] = true
	}
	counts := make(map[primitive.ObjectID]int)
	for _, p := range f.byID {
		if want[p.CreatedBy] && p.Status == models.StatusPublished {
			counts[p.CreatedBy]++
		}
	}
	return counts, nil
}

func (f *fakePosts) mutate(id primitive.ObjectID, fn func(p *models.Post)) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(p)
	cp := clonePost(p)
	return &cp, nil
}

func (f *fakePosts) Update(_ context.Context, id primitive.ObjectID, c repository.PostChanges) (*models.Post, error) {
	return f.mutate(id, func(p *models.Post) {
		if c.Title != nil {
			p.Title = *c.Title
		}
		if c.Content != nil {
			p.Content = *c.Content
		}
		if c.Category != nil {
			p.Category = *c.Category
		}
		if c.Tags != nil {
			p.Tags = c.Tags
		}
		if c.BannerImage != nil {
			p.BannerImage = *c.BannerImage
		}
		if c.Status != nil {
			p.Status = *c.Status
		}
		if c.ScheduledAt != nil {
			p.ScheduledAt = c.ScheduledAt
		}
		if c.PublishedAt != nil {
			p.PublishedAt = c.PublishedAt
		}
	})
}

func (f *fakePosts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePosts) ToggleLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return f.mutate(postID, func(p *models.Post) {
		liked := false
		for _, id := range p.Likes {
			liked = liked || id == userID
		}
		if liked {
			p.Likes = without(p.Likes, userID)
		} else {
			p.Likes = append(p.Likes, userID)
		}
		p.LikesCount = len(p.Likes)
	})
}

func (f *fakePosts) RecordView(_ context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID) (*models.Post, error) {
	return f.mutate(postID, func(p *models.Post) {
		p.Views++
		if viewer != nil && !p.SeenByUser(*viewer) {
			p.SeenBy = append(p.SeenBy, *viewer)
		}
	})
}

func (f *fakePosts) AddReport(_ context.Context, postID primitive.ObjectID, report models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[postID]
	if !ok {
		return repository.ErrNotFound
	}
	if hasReport(p.ReportedBy, report.User) {
		return repository.ErrAlreadyReported
	}
	p.ReportedBy = append(p.ReportedBy, report)
	return nil
}

func (f *fakePosts) SetRating(_ context.Context, postID primitive.ObjectID, rating models.Rating) error {
	_, err := f.mutate(postID, func(p *models.Post) { p.Rating = rating })
	return err
}

func (f *fakePosts) PublishDue(_ context.Context, now time.Time) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Post{}
	for _, p := range f.byID {
		if p.Status == models.StatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now) {
			p.Status = models.StatusPublished
			at := now
			p.PublishedAt = &at
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

type fakeComments struct {
	mu   sync.Mutex
	list []*models.Comment
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	f.list = append(f.list, &cp)
	return nil
}

func (f *fakeComments) FindByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.list {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComments) FindReportedOnPosts(_ context.Context, postIDs []primitive.ObjectID) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[primitive.ObjectID]bool)
	for _, id := range postIDs {
		want[id] = true
	}
	out := []models.Comment{}
	for _, c := range f.list {
		if want[c.PostID] && len(c.ReportedBy) > 0 {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComments) AddReport(_ context.Context, id primitive.ObjectID, report models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.list {
		if c.ID == id {
			if hasReport(c.ReportedBy, report.User) {
				return repository.ErrAlreadyReported
			}
			c.ReportedBy = append(c.ReportedBy, report)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeComments) DeleteByPost(_ context.Context, postID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.list[:0]
	for _, c := range f.list {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	f.list = kept
	return nil
}

type fakeReviews struct {
	mu   sync.Mutex
	list []*models.Review
}

func (f *fakeReviews) Upsert(_ context.Context, userID, postID primitive.ObjectID, rating int, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.list {
		if r.UserID == userID && r.PostID == postID {
			r.Rating = rating
			r.UpdatedAt = now
			return nil
		}
	}
	f.list = append(f.list, &models.Review{
		ID: primitive.NewObjectID(), UserID: userID, PostID: postID, Rating: rating, CreatedAt: now, UpdatedAt: now,
	})
	return nil
}

func (f *fakeReviews) FindByPost(_ context.Context, postID primitive.ObjectID) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Review{}
	for _, r := range f.list {
		if r.PostID == postID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviews) Summarize(ctx context.Context, postID primitive.ObjectID) (models.Rating, error) {
	reviews, _ := f.FindByPost(ctx, postID)
	ratings := make([]int, len(reviews))
	for i, r := range reviews {
		ratings[i] = r.Rating
	}
	return averageRating(ratings), nil
}

func (f *fakeReviews) DeleteByPost(_ context.Context, postID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.list[:0]
	for _, r := range f.list {
		if r.PostID != postID {
			kept = append(kept, r)
		}
	}
	f.list = kept
	return nil
}

// sentMail records messages instead of delivering them.
type sentMail struct {
	mu   sync.Mutex
	msgs []mailMessage
	err  error
}

type mailMessage struct {
	To, Subject, Body string
}

func (m *sentMail) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, mailMessage{To: to, Subject: subject, Body: body})
	return nil
}

func (m *sentMail) last() mailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msgs[len(m.msgs)-1]
}

type fakeUploader struct {
	uploads int
}

func (u *fakeUploader) Upload(_ context.Context, file io.Reader, folder string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.uploads++
	return "https://img.example.com/" + folder + "/" + string(data), nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PostPublished(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockPublisher) PostDeleted(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func hasReport(reports []models.Report, user primitive.ObjectID) bool {
	for _, r := range reports {
		if r.User == user {
			return true
		}
	}
	return false
}

// averageRating mirrors the $avg aggregation the Mongo repository runs.
func averageRating(ratings []int) models.Rating {
	if len(ratings) == 0 {
		return models.Rating{}
	}
	total := 0
	for _, r := range ratings {
		total += r
	}
	return models.Rating{Average: float64(total) / float64(len(ratings)), Count: len(ratings)}
}
