package database

import (
	"context"
	"fmt"
	"time"

	"newsdesk/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	AdminsCollection   = "admins"
	UsersCollection    = "users"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
	ReviewsCollection  = "reviews"
)

var Client *mongo.Client

// Connect dials MongoDB, pings it and returns the named database.
func Connect(uri, dbName string) (*mongo.Database, error) {
	if uri == "" {
		return nil, fmt.Errorf("database connection URI is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(50).
		SetConnectTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	Client = client
	logger.Log.Info("Connected to MongoDB", zap.String("database", dbName))
	return client.Database(dbName), nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		AdminsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "publishedAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduledAt", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		ReviewsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "postId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "postId", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Disconnect closes the client opened by Connect.
func Disconnect() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := Client.Disconnect(ctx); err != nil {
		return err
	}

	logger.Log.Info("Disconnected from MongoDB")
	return nil
}
