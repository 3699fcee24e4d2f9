package repository

import (
	"context"
	"time"

	"newsdesk/database"
	"newsdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPostRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{coll: db.Collection(database.PostsCollection)}
}

// publishedQuery is the reader-visibility filter: published and due.
func publishedQuery(f PublishedFilter) bson.M {
	query := bson.M{
		"status":      models.StatusPublished,
		"publishedAt": bson.M{"$lte": f.Now},
	}
	if f.Category != "" && f.Category != "All" {
		query["category"] = f.Category
	}
	if f.Tag != "" {
		query["tags"] = f.Tag
	}
	return query
}

func sortFor(key models.SortKey) bson.D {
	field := "publishedAt"
	switch key {
	case models.SortLiked:
		field = "likesCount"
	case models.SortViewed:
		field = "views"
	case models.SortRated:
		field = "rating.average"
	}
	return bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.SeenBy == nil {
		post.SeenBy = []primitive.ObjectID{}
	}
	if post.ReportedBy == nil {
		post.ReportedBy = []models.Report{}
	}
	_, err := r.coll.InsertOne(ctx, post)
	return translate(err)
}

func (r *mongoPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *mongoPostRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *mongoPostRepository) FindPublished(ctx context.Context, filter PublishedFilter, skip, limit int64) ([]models.Post, error) {
	opts := options.Find().SetSort(sortFor(filter.Sort))
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, publishedQuery(filter), opts)
}

func (r *mongoPostRepository) FindByAdmin(ctx context.Context, adminID primitive.ObjectID, filter AdminPostFilter) ([]models.Post, error) {
	query := bson.M{"createdBy": adminID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if !filter.ScheduledAfter.IsZero() {
		query["scheduledAt"] = bson.M{"$gt": filter.ScheduledAfter}
	}
	if !filter.PublishedBefore.IsZero() {
		query["publishedAt"] = bson.M{"$lte": filter.PublishedBefore}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, query, opts)
}

func (r *mongoPostRepository) FindReportedByAdmin(ctx context.Context, adminID primitive.ObjectID) ([]models.Post, error) {
	query := bson.M{"createdBy": adminID, "reportedBy.0": bson.M{"$exists": true}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, query, opts)
}

func (r *mongoPostRepository) CountPublishedByAdmins(ctx context.Context, adminIDs []primitive.ObjectID) (map[primitive.ObjectID]int, error) {
	counts := make(map[primitive.ObjectID]int)
	if len(adminIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "createdBy", Value: bson.D{{Key: "$in", Value: adminIDs}}},
			{Key: "status", Value: models.StatusPublished},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$createdBy"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func postSet(changes PostChanges) bson.M {
	set := bson.M{"updatedAt": time.Now()}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Content != nil {
		set["content"] = *changes.Content
	}
	if changes.Category != nil {
		set["category"] = *changes.Category
	}
	if changes.Tags != nil {
		set["tags"] = changes.Tags
	}
	if changes.BannerImage != nil {
		set["bannerImage"] = *changes.BannerImage
	}
	if changes.Status != nil {
		set["status"] = *changes.Status
	}
	if changes.ScheduledAt != nil {
		set["scheduledAt"] = *changes.ScheduledAt
	}
	if changes.PublishedAt != nil {
		set["publishedAt"] = *changes.PublishedAt
	}
	return set
}

func (r *mongoPostRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update interface{}) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *mongoPostRepository) Update(ctx context.Context, id primitive.ObjectID, changes PostChanges) (*models.Post, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": postSet(changes)})
}

func (r *mongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// toggleLikePipeline removes userID from likes if present, appends it
// otherwise, then recomputes likesCount from the resulting array.
func toggleLikePipeline(userID primitive.ObjectID) mongo.Pipeline {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
			bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: likes},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
			}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
		}}}}}}},
		{{Key: "$set", Value: bson.D{{Key: "likesCount", Value: bson.D{{Key: "$size", Value: "$likes"}}}}}},
	}
}

func (r *mongoPostRepository) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": postID}, toggleLikePipeline(userID))
}

func (r *mongoPostRepository) RecordView(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID) (*models.Post, error) {
	update := bson.M{"$inc": bson.M{"views": 1}}
	if viewer != nil {
		update["$addToSet"] = bson.M{"seenBy": *viewer}
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": postID}, update)
}

func (r *mongoPostRepository) AddReport(ctx context.Context, postID primitive.ObjectID, report models.Report) error {
	return addReport(ctx, r.coll, postID, report)
}

// addReport appends report unless the same user already reported the document.
func addReport(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, report models.Report) error {
	result, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "reportedBy.user": bson.M{"$ne": report.User}},
		bson.M{"$push": bson.M{"reportedBy": report}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 1 {
		return nil
	}

	count, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyReported
}

func (r *mongoPostRepository) SetRating(ctx context.Context, postID primitive.ObjectID, rating models.Rating) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$set": bson.M{"rating": rating}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPostRepository) PublishDue(ctx context.Context, now time.Time) ([]models.Post, error) {
	due, err := r.find(ctx, bson.M{
		"status":      models.StatusScheduled,
		"scheduledAt": bson.M{"$lte": now},
	}, options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}}))
	if err != nil {
		return nil, err
	}

	published := make([]models.Post, 0, len(due))
	for _, post := range due {
		// status is re-checked so a manual change since the read wins
		result, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": post.ID, "status": models.StatusScheduled},
			bson.M{"$set": bson.M{"status": models.StatusPublished, "publishedAt": now, "updatedAt": now}},
		)
		if err != nil {
			return published, err
		}
		if result.ModifiedCount == 0 {
			continue
		}
		post.Status = models.StatusPublished
		publishedAt := now
		post.PublishedAt = &publishedAt
		published = append(published, post)
	}
	return published, nil
}
