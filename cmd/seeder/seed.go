package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsdesk/logger"
	"newsdesk/models"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var categories = []string{"Tech", "Sports", "Politics", "Business", "Health", "Entertainment"}

var statuses = []models.PostStatus{
	models.StatusPublished,
	models.StatusPublished,
	models.StatusPublished,
	models.StatusScheduled,
	models.StatusDrafted,
	models.StatusUnpublished,
}

type adminCreator interface {
	Create(ctx context.Context, admin *models.Admin) error
}

type userCreator interface {
	Create(ctx context.Context, user *models.User) error
	AddFollowing(ctx context.Context, userID, adminID primitive.ObjectID) error
}

type followerAdder interface {
	AddFollower(ctx context.Context, adminID, userID primitive.ObjectID) error
}

type postCreator interface {
	Create(ctx context.Context, post *models.Post) error
}

type seeder struct {
	faker        *gofakeit.Faker
	admins       adminCreator
	followers    followerAdder
	users        userCreator
	posts        postCreator
	passwordHash string
	now          time.Time
}

type seedCounts struct {
	Admins, Users, Posts, Follows int
}

func (s *seeder) newAdmin() *models.Admin {
	username := strings.ToLower(s.faker.Username())
	return &models.Admin{
		Username:     username,
		Email:        fmt.Sprintf("%s.%d@newsdesk.test", username, s.faker.Number(1000, 9999)),
		PasswordHash: s.passwordHash,
		ProfileImage: s.faker.ImageURL(200, 200),
		Followers:    []primitive.ObjectID{},
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
}

func (s *seeder) newUser() *models.User {
	username := strings.ToLower(s.faker.Username())
	return &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s.%d@reader.test", username, s.faker.Number(1000, 9999)),
		PasswordHash: s.passwordHash,
		ProfileImage: models.DefaultProfileImage,
		Following:    []primitive.ObjectID{},
		IsVerified:   true,
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
}

// newPost builds a complete post by author in a random lifecycle stage.
func (s *seeder) newPost(author primitive.ObjectID) *models.Post {
	status := statuses[s.faker.Number(0, len(statuses)-1)]
	created := s.now.Add(-time.Duration(s.faker.Number(1, 30*24)) * time.Hour)

	tags := make([]string, s.faker.Number(1, 4))
	for i := range tags {
		tags[i] = strings.ToLower(s.faker.Word())
	}

	post := &models.Post{
		Title:       strings.TrimSuffix(s.faker.Sentence(s.faker.Number(4, 10)), "."),
		Content:     "<p>" + s.faker.Paragraph(3, 5, 20, "</p><p>") + "</p>",
		Category:    categories[s.faker.Number(0, len(categories)-1)],
		Tags:        tags,
		BannerImage: s.faker.ImageURL(1200, 630),
		Status:      status,
		Likes:       []primitive.ObjectID{},
		SeenBy:      []primitive.ObjectID{},
		ReportedBy:  []models.Report{},
		CreatedAt:   created,
		UpdatedAt:   created,
		CreatedBy:   author,
	}

	switch status {
	case models.StatusPublished, models.StatusUnpublished:
		published := created.Add(time.Duration(s.faker.Number(0, 60)) * time.Minute)
		if published.After(s.now) {
			published = s.now
		}
		post.PublishedAt = &published
		post.Views = int64(s.faker.Number(0, 500))
	case models.StatusScheduled:
		at := s.now.Add(time.Duration(s.faker.Number(1, 72)) * time.Hour)
		post.ScheduledAt = &at
	}
	return post
}

// run creates the requested admins, users and posts. Each user follows a
// random subset of the admins.
func (s *seeder) run(ctx context.Context, nAdmins, nUsers, nPosts int) (seedCounts, error) {
	var counts seedCounts

	adminIDs := make([]primitive.ObjectID, 0, nAdmins)
	for i := 0; i < nAdmins; i++ {
		admin := s.newAdmin()
		if err := s.admins.Create(ctx, admin); err != nil {
			return counts, fmt.Errorf("creating admin %s: %w", admin.Username, err)
		}
		adminIDs = append(adminIDs, admin.ID)
		counts.Admins++
	}
	if len(adminIDs) == 0 {
		return counts, nil
	}

	for i := 0; i < nUsers; i++ {
		user := s.newUser()
		if err := s.users.Create(ctx, user); err != nil {
			return counts, fmt.Errorf("creating user %s: %w", user.Username, err)
		}
		counts.Users++

		for _, adminID := range adminIDs {
			if !s.faker.Bool() {
				continue
			}
			if err := s.followers.AddFollower(ctx, adminID, user.ID); err != nil {
				return counts, err
			}
			if err := s.users.AddFollowing(ctx, user.ID, adminID); err != nil {
				return counts, err
			}
			counts.Follows++
		}
	}

	for i := 0; i < nPosts; i++ {
		post := s.newPost(adminIDs[s.faker.Number(0, len(adminIDs)-1)])
		if err := s.posts.Create(ctx, post); err != nil {
			return counts, fmt.Errorf("creating post %d: %w", i+1, err)
		}
		counts.Posts++
		logger.Log.Debug("Seeded post",
			zap.String("id", post.ID.Hex()),
			zap.String("status", string(post.Status)))
	}
	return counts, nil
}
