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

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, user)
	return translate(err)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindAuthors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error) {
	return findAuthors(ctx, r.coll, ids)
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, changes ProfileChanges) (*models.User, error) {
	set := profileSet(changes)
	set["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) AddFollowing(ctx context.Context, userID, adminID primitive.ObjectID) error {
	return r.updateFollowing(ctx, userID, bson.M{"$addToSet": bson.M{"following": adminID}})
}

func (r *mongoUserRepository) RemoveFollowing(ctx context.Context, userID, adminID primitive.ObjectID) error {
	return r.updateFollowing(ctx, userID, bson.M{"$pull": bson.M{"following": adminID}})
}

func (r *mongoUserRepository) updateFollowing(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
