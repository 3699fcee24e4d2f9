package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"newsdesk/apperror"
	"newsdesk/events"
	"newsdesk/logger"
	"newsdesk/media"
	"newsdesk/models"
	"newsdesk/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgPostNotFound     = "Post not found"
	msgRequiredFields   = "Title, content, and category are required for published or scheduled posts."
	msgScheduledAtReq   = "Scheduled date is required for scheduled posts."
	msgBannerRequired   = "Banner image is required for published or scheduled posts."
	msgInvalidStatus    = "Invalid status"
	msgNotPostOwner     = "You can only modify your own posts"
	msgReasonRequired   = "Reason for report is required."
	msgNoMorePostsFound = "No more posts found"
)

var scheduledAtLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// ParseScheduledAt accepts RFC 3339 or an HTML datetime-local value, the
// latter interpreted in the server's local zone.
func ParseScheduledAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range scheduledAtLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseTags splits a comma separated list, dropping blanks.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// PostInput is a new post as submitted by its author. Banner is nil when no
// file was attached.
type PostInput struct {
	Title       string
	Content     string
	Category    string
	Tags        []string
	Status      string
	ScheduledAt string
	Banner      io.Reader
}

// PostUpdate carries content edits. Nil fields are left unchanged.
type PostUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Tags     []string
	Banner   io.Reader
}

type FeedQuery struct {
	Category string
	Page     int
	Limit    int
	Sort     models.SortKey
	Viewer   *primitive.ObjectID
}

type Feed struct {
	Label string            `json:"label"`
	Posts []models.PostView `json:"posts"`
}

type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
	admins   repository.AdminRepository
	users    repository.UserRepository
	uploader media.Uploader
	events   events.Publisher
	now      func() time.Time
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	reviews repository.ReviewRepository,
	admins repository.AdminRepository,
	users repository.UserRepository,
	uploader media.Uploader,
	publisher events.Publisher,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		reviews:  reviews,
		admins:   admins,
		users:    users,
		uploader: uploader,
		events:   publisher,
		now:      time.Now,
	}
}

func (s *PostService) Create(ctx context.Context, adminID primitive.ObjectID, in PostInput) (*models.Post, error) {
	status := models.PostStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.StatusDrafted
	}
	if !status.Valid() {
		return nil, apperror.BadRequest(msgInvalidStatus)
	}

	if status != models.StatusDrafted {
		if blank(in.Title) || blank(in.Content) || blank(in.Category) {
			return nil, apperror.BadRequest(msgRequiredFields)
		}
		if status == models.StatusScheduled && blank(in.ScheduledAt) {
			return nil, apperror.BadRequest(msgScheduledAtReq)
		}
		if in.Banner == nil {
			return nil, apperror.BadRequest(msgBannerRequired)
		}
	}

	now := s.now()
	post := &models.Post{
		Title:      in.Title,
		Content:    in.Content,
		Category:   in.Category,
		Tags:       in.Tags,
		Status:     status,
		Likes:      []primitive.ObjectID{},
		SeenBy:     []primitive.ObjectID{},
		ReportedBy: []models.Report{},
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  adminID,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	switch status {
	case models.StatusScheduled:
		at, err := ParseScheduledAt(in.ScheduledAt)
		if err != nil {
			return nil, apperror.BadRequest("Invalid scheduled date")
		}
		post.ScheduledAt = &at
	case models.StatusPublished:
		post.PublishedAt = &now
	}

	if in.Banner != nil {
		url, err := uploadImage(ctx, s.uploader, in.Banner, media.FolderBanners)
		if err != nil {
			return nil, err
		}
		post.BannerImage = url
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperror.Internal("Failed to create post", err)
	}
	logger.Log.Info("Post created",
		zap.String("postID", post.ID.Hex()),
		zap.String("adminID", adminID.Hex()),
		zap.String("status", string(status)))

	if status == models.StatusPublished {
		events.Notify(ctx, s.events, post)
	}
	return post, nil
}

// Feed returns one page of the reader feed.
func (s *PostService) Feed(ctx context.Context, q FeedQuery) (*Feed, error) {
	skip, limit := Page(q.Page, q.Limit)
	filter := repository.PublishedFilter{Category: q.Category, Now: s.now(), Sort: q.Sort}

	var (
		page  []models.Post
		label string
	)
	if q.Sort == models.SortLatest || q.Sort == "" {
		all, err := s.posts.FindPublished(ctx, filter, 0, 0)
		if err != nil {
			return nil, apperror.Internal("Failed to load posts", err)
		}
		followed, err := s.followedBy(ctx, q.Viewer)
		if err != nil {
			return nil, err
		}
		page, label = ComposeLatest(all, q.Viewer, followed, skip, limit)
	} else {
		var err error
		page, err = s.posts.FindPublished(ctx, filter, int64(skip), int64(limit))
		if err != nil {
			return nil, apperror.Internal("Failed to load posts", err)
		}
		label = "Sorted by " + string(q.Sort)
	}

	views, err := s.withAuthors(ctx, page)
	if err != nil {
		return nil, err
	}
	return &Feed{Label: label, Posts: views}, nil
}

func (s *PostService) followedBy(ctx context.Context, viewer *primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	followed := make(map[primitive.ObjectID]bool)
	if viewer == nil {
		return followed, nil
	}
	user, err := s.users.FindByID(ctx, *viewer)
	if errors.Is(err, repository.ErrNotFound) {
		return followed, nil
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load viewer", err)
	}
	for _, id := range user.Following {
		followed[id] = true
	}
	return followed, nil
}

func (s *PostService) withAuthors(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	ids := make([]primitive.ObjectID, len(posts))
	for i, p := range posts {
		ids[i] = p.CreatedBy
	}
	authors, err := s.admins.FindAuthors(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to load authors", err)
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = models.PostView{Post: p, CreatedBy: authorOrStub(authors, p.CreatedBy)}
	}
	return views, nil
}

func (s *PostService) withAuthor(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := s.withAuthors(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func authorOrStub(authors map[primitive.ObjectID]models.Author, id primitive.ObjectID) models.Author {
	if a, ok := authors[id]; ok {
		return a
	}
	return models.Author{ID: id}
}

// ByTag pages through published posts carrying tag, newest first.
func (s *PostService) ByTag(ctx context.Context, tag, category string, page, limit int) ([]models.PostView, error) {
	skip, size := Page(page, limit)
	filter := repository.PublishedFilter{Category: category, Tag: tag, Now: s.now(), Sort: models.SortLatest}

	posts, err := s.posts.FindPublished(ctx, filter, int64(skip), int64(size))
	if err != nil {
		return nil, apperror.Internal("Failed to load posts", err)
	}
	if len(posts) == 0 {
		return nil, apperror.NotFound(msgNoMorePostsFound)
	}
	return s.withAuthors(ctx, posts)
}

// ByAdmin lists an author's posts. Only the author, identified by requester,
// sees posts that are not yet live.
func (s *PostService) ByAdmin(ctx context.Context, adminID primitive.ObjectID, requester *primitive.ObjectID, status string) ([]models.PostView, error) {
	st := models.PostStatus(strings.TrimSpace(status))
	if st != "" && !st.Valid() {
		return nil, apperror.BadRequest(msgInvalidStatus)
	}

	filter := repository.AdminPostFilter{Status: st}
	if requester == nil || *requester != adminID {
		if st != "" && st != models.StatusPublished {
			return []models.PostView{}, nil
		}
		filter.Status = models.StatusPublished
		filter.PublishedBefore = s.now()
	}

	return s.listByAdmin(ctx, adminID, filter)
}

func (s *PostService) Drafts(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error) {
	return s.listByAdmin(ctx, adminID, repository.AdminPostFilter{Status: models.StatusDrafted})
}

// Scheduled lists the author's scheduled posts that are still in the future.
func (s *PostService) Scheduled(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error) {
	return s.listByAdmin(ctx, adminID, repository.AdminPostFilter{
		Status:         models.StatusScheduled,
		ScheduledAfter: s.now(),
	})
}

func (s *PostService) Published(ctx context.Context, adminID primitive.ObjectID) ([]models.PostView, error) {
	return s.listByAdmin(ctx, adminID, repository.AdminPostFilter{
		Status:          models.StatusPublished,
		PublishedBefore: s.now(),
	})
}

func (s *PostService) listByAdmin(ctx context.Context, adminID primitive.ObjectID, filter repository.AdminPostFilter) ([]models.PostView, error) {
	posts, err := s.posts.FindByAdmin(ctx, adminID, filter)
	if err != nil {
		return nil, apperror.Internal("Failed to load posts", err)
	}
	return s.withAuthors(ctx, posts)
}

// Get loads one post. With view set it also counts the view and marks the
// post as seen by viewer.
func (s *PostService) Get(ctx context.Context, id primitive.ObjectID, view bool, viewer *primitive.ObjectID) (*models.PostView, error) {
	var (
		post *models.Post
		err  error
	)
	if view {
		post, err = s.posts.RecordView(ctx, id, viewer)
	} else {
		post, err = s.posts.FindByID(ctx, id)
	}
	if err != nil {
		return nil, postLookupError(err)
	}
	return s.withAuthor(ctx, post)
}

func postLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(msgPostNotFound)
	}
	return apperror.Internal("Failed to load post", err)
}

func (s *PostService) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.PostView, error) {
	post, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, postLookupError(err)
	}
	return s.withAuthor(ctx, post)
}

func (s *PostService) owned(ctx context.Context, adminID, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, postLookupError(err)
	}
	if post.CreatedBy != adminID {
		return nil, apperror.Forbidden(msgNotPostOwner)
	}
	return post, nil
}

func missingFieldsError(missing []string) error {
	return apperror.BadRequest("Missing required fields for a non-draft post: " + strings.Join(missing, ", "))
}

// Update edits an author's post. The merged result must still satisfy the
// required-field rule for its status.
func (s *PostService) Update(ctx context.Context, adminID, postID primitive.ObjectID, in PostUpdate) (*models.PostView, error) {
	post, err := s.owned(ctx, adminID, postID)
	if err != nil {
		return nil, err
	}

	merged := *post
	changes := repository.PostChanges{Title: in.Title, Content: in.Content, Category: in.Category, Tags: in.Tags}
	if in.Title != nil {
		merged.Title = *in.Title
	}
	if in.Content != nil {
		merged.Content = *in.Content
	}
	if in.Category != nil {
		merged.Category = *in.Category
	}

	var missing []string
	for _, field := range merged.MissingRequired() {
		if field == "bannerImage" && in.Banner != nil {
			continue
		}
		missing = append(missing, field)
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}

	if in.Banner != nil {
		url, err := uploadImage(ctx, s.uploader, in.Banner, media.FolderBanners)
		if err != nil {
			return nil, err
		}
		changes.BannerImage = &url
	}

	updated, err := s.posts.Update(ctx, postID, changes)
	if err != nil {
		return nil, postLookupError(err)
	}
	return s.withAuthor(ctx, updated)
}

// UpdateStatus moves a post to status. publishedAt is stamped the first time
// a post goes live; scheduling needs a date either given now or already set.
func (s *PostService) UpdateStatus(ctx context.Context, adminID, postID primitive.ObjectID, status, scheduledAt string) (*models.Post, error) {
	st := models.PostStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return nil, apperror.BadRequest(msgInvalidStatus)
	}
	post, err := s.owned(ctx, adminID, postID)
	if err != nil {
		return nil, err
	}

	merged := *post
	merged.Status = st
	changes := repository.PostChanges{Status: &st}

	if st == models.StatusScheduled {
		if !blank(scheduledAt) {
			at, err := ParseScheduledAt(scheduledAt)
			if err != nil {
				return nil, apperror.BadRequest("Invalid scheduled date")
			}
			changes.ScheduledAt = &at
		} else if post.ScheduledAt == nil {
			return nil, apperror.BadRequest(msgScheduledAtReq)
		}
	}
	if missing := merged.MissingRequired(); len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}

	now := s.now()
	if st == models.StatusPublished && post.PublishedAt == nil {
		changes.PublishedAt = &now
	}

	updated, err := s.posts.Update(ctx, postID, changes)
	if err != nil {
		return nil, postLookupError(err)
	}

	if st == models.StatusPublished && post.Status != models.StatusPublished {
		events.Notify(ctx, s.events, updated)
	}
	return updated, nil
}

// Delete removes an author's post together with its comments and reviews.
func (s *PostService) Delete(ctx context.Context, adminID, postID primitive.ObjectID) error {
	post, err := s.owned(ctx, adminID, postID)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return postLookupError(err)
	}
	if err := s.comments.DeleteByPost(ctx, postID); err != nil {
		return apperror.Internal("Failed to delete post comments", err)
	}
	if err := s.reviews.DeleteByPost(ctx, postID); err != nil {
		return apperror.Internal("Failed to delete post reviews", err)
	}

	events.NotifyDeleted(ctx, s.events, post)
	return nil
}

func (s *PostService) Report(ctx context.Context, userID, postID primitive.ObjectID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.BadRequest(msgReasonRequired)
	}

	err := s.posts.AddReport(ctx, postID, models.Report{User: userID, Reason: reason, ReportedAt: s.now()})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(msgPostNotFound)
	case errors.Is(err, repository.ErrAlreadyReported):
		return apperror.BadRequest("You have already reported this post")
	case err != nil:
		return apperror.Internal("Failed to report post", err)
	}
	return nil
}

// Reported lists the author's posts that have at least one report.
func (s *PostService) Reported(ctx context.Context, adminID primitive.ObjectID) ([]models.ReportedPost, error) {
	posts, err := s.posts.FindReportedByAdmin(ctx, adminID)
	if err != nil {
		return nil, apperror.Internal("Failed to load reported posts", err)
	}

	var reporterIDs []primitive.ObjectID
	for _, p := range posts {
		for _, r := range p.ReportedBy {
			reporterIDs = append(reporterIDs, r.User)
		}
	}
	reporters, err := s.users.FindAuthors(ctx, reporterIDs)
	if err != nil {
		return nil, apperror.Internal("Failed to load reporters", err)
	}
	authors, err := s.admins.FindAuthors(ctx, []primitive.ObjectID{adminID})
	if err != nil {
		return nil, apperror.Internal("Failed to load authors", err)
	}

	out := make([]models.ReportedPost, len(posts))
	for i, p := range posts {
		out[i] = models.ReportedPost{
			ID:          p.ID,
			Title:       p.Title,
			Content:     p.Content,
			Category:    p.Category,
			Tags:        p.Tags,
			BannerImage: p.BannerImage,
			CreatedBy:   authorOrStub(authors, p.CreatedBy),
			ReportedBy:  reportViews(p.ReportedBy, reporters),
		}
	}
	return out, nil
}

func reportViews(reports []models.Report, reporters map[primitive.ObjectID]models.Author) []models.ReportView {
	views := make([]models.ReportView, len(reports))
	for i, r := range reports {
		views[i] = models.ReportView{
			User:       authorOrStub(reporters, r.User),
			Reason:     r.Reason,
			ReportedAt: r.ReportedAt,
		}
	}
	return views
}

// PublishDue publishes every scheduled post whose time has come and
// announces each one. It returns how many posts went live.
func (s *PostService) PublishDue(ctx context.Context) (int, error) {
	published, err := s.posts.PublishDue(ctx, s.now())
	for i := range published {
		events.Notify(ctx, s.events, &published[i])
	}
	if err != nil {
		return len(published), err
	}
	if len(published) > 0 {
		logger.Log.Info("Published scheduled posts", zap.Int("count", len(published)))
	}
	return len(published), nil
}
