package repository

import (
	"errors"
	"testing"
	"time"

	"newsdesk/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestUniqueIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	assert.Equal(t, []primitive.ObjectID{a, b}, uniqueIDs([]primitive.ObjectID{a, b, a, b}))
	assert.Empty(t, uniqueIDs(nil))
}

func TestPublishedQuery(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		filter PublishedFilter
		want   bson.M
	}{
		{
			name:   "all categories",
			filter: PublishedFilter{Category: "All", Now: now},
			want:   bson.M{"status": models.StatusPublished, "publishedAt": bson.M{"$lte": now}},
		},
		{
			name:   "category and tag",
			filter: PublishedFilter{Category: "Tech", Tag: "go", Now: now},
			want: bson.M{
				"status":      models.StatusPublished,
				"publishedAt": bson.M{"$lte": now},
				"category":    "Tech",
				"tags":        "go",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publishedQuery(tt.filter))
		})
	}
}

func TestSortFor(t *testing.T) {
	tests := map[models.SortKey]string{
		models.SortLatest: "publishedAt",
		models.SortLiked:  "likesCount",
		models.SortViewed: "views",
		models.SortRated:  "rating.average",
	}
	for key, field := range tests {
		got := sortFor(key)
		assert.Equal(t, bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}}, got, string(key))
	}
}

func TestPostSetOnlyTouchesGivenFields(t *testing.T) {
	title := "New title"
	status := models.StatusPublished
	set := postSet(PostChanges{Title: &title, Status: &status, Tags: []string{"a"}})

	assert.Equal(t, "New title", set["title"])
	assert.Equal(t, models.StatusPublished, set["status"])
	assert.Equal(t, []string{"a"}, set["tags"])
	assert.Contains(t, set, "updatedAt")
	assert.NotContains(t, set, "content")
	assert.NotContains(t, set, "bannerImage")
	assert.NotContains(t, set, "publishedAt")
}

func TestProfileSet(t *testing.T) {
	name := "alice"
	set := profileSet(ProfileChanges{Username: &name})
	assert.Equal(t, bson.M{"username": "alice"}, set)
}

func TestToggleLikePipelineResyncsCount(t *testing.T) {
	userID := primitive.NewObjectID()
	pipeline := toggleLikePipeline(userID)

	assert.Len(t, pipeline, 2)
	last := pipeline[1][0]
	assert.Equal(t, "$set", last.Key)
	assert.Equal(t, bson.D{{Key: "likesCount", Value: bson.D{{Key: "$size", Value: "$likes"}}}}, last.Value)
}
