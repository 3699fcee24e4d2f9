package repository

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// findAuthors loads {_id, username, profileImage} for ids from an account collection.
func findAuthors(ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error) {
	out := make(map[primitive.ObjectID]models.Author)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "profileImage": 1})
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var authors []models.Author
	if err := cursor.All(ctx, &authors); err != nil {
		return nil, err
	}
	for _, a := range authors {
		out[a.ID] = a
	}
	return out, nil
}

func profileSet(changes ProfileChanges) bson.M {
	set := bson.M{}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.ProfileImage != nil {
		set["profileImage"] = *changes.ProfileImage
	}
	return set
}
