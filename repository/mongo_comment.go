package repository

import (
	"context"

	"newsdesk/database"
	"newsdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &mongoCommentRepository{coll: db.Collection(database.CommentsCollection)}
}

func (r *mongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.ReportedBy == nil {
		comment.ReportedBy = []models.Report{}
	}
	_, err := r.coll.InsertOne(ctx, comment)
	return translate(err)
}

func (r *mongoCommentRepository) find(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *mongoCommentRepository) FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"postId": postID})
}

func (r *mongoCommentRepository) FindReportedOnPosts(ctx context.Context, postIDs []primitive.ObjectID) ([]models.Comment, error) {
	if len(postIDs) == 0 {
		return []models.Comment{}, nil
	}
	return r.find(ctx, bson.M{
		"postId":       bson.M{"$in": postIDs},
		"reportedBy.0": bson.M{"$exists": true},
	})
}

func (r *mongoCommentRepository) AddReport(ctx context.Context, commentID primitive.ObjectID, report models.Report) error {
	return addReport(ctx, r.coll, commentID, report)
}

func (r *mongoCommentRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"postId": postID})
	return err
}
