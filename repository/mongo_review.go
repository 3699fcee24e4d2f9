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

type mongoReviewRepository struct {
	coll *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &mongoReviewRepository{coll: db.Collection(database.ReviewsCollection)}
}

func (r *mongoReviewRepository) Upsert(ctx context.Context, userID, postID primitive.ObjectID, rating int, now time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "postId": postID},
		bson.M{
			"$set":         bson.M{"rating": rating, "updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}

func (r *mongoReviewRepository) FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *mongoReviewRepository) Summarize(ctx context.Context, postID primitive.ObjectID) (models.Rating, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "postId", Value: postID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.Rating{}, err
	}
	defer cursor.Close(ctx)

	var rows []models.Rating
	if err := cursor.All(ctx, &rows); err != nil {
		return models.Rating{}, err
	}
	if len(rows) == 0 {
		return models.Rating{}, nil
	}
	return rows[0], nil
}

func (r *mongoReviewRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"postId": postID})
	return err
}
