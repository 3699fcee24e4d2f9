package repository

import (
	"context"
	"regexp"
	"time"

	"newsdesk/database"
	"newsdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAdminRepository struct {
	coll *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) AdminRepository {
	return &mongoAdminRepository{coll: db.Collection(database.AdminsCollection)}
}

func (r *mongoAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	if admin.Followers == nil {
		admin.Followers = []primitive.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, admin)
	return translate(err)
}

func (r *mongoAdminRepository) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var admin models.Admin
	if err := r.coll.FindOne(ctx, filter).Decode(&admin); err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *mongoAdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoAdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoAdminRepository) FindByEmailOrUsername(ctx context.Context, value string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{bson.M{"email": value}, bson.M{"username": value}}})
}

func (r *mongoAdminRepository) find(ctx context.Context, filter bson.M) ([]models.Admin, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	admins := []models.Admin{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *mongoAdminRepository) FindAll(ctx context.Context) ([]models.Admin, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoAdminRepository) Search(ctx context.Context, query string) ([]models.Admin, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"username": pattern},
		bson.M{"email": pattern},
	}})
}

func (r *mongoAdminRepository) FindAuthors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error) {
	return findAuthors(ctx, r.coll, ids)
}

func (r *mongoAdminRepository) taken(ctx context.Context, field, value string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{field: value}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoAdminRepository) UsernameTaken(ctx context.Context, username string, exclude primitive.ObjectID) (bool, error) {
	return r.taken(ctx, "username", username, exclude)
}

func (r *mongoAdminRepository) EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	return r.taken(ctx, "email", email, exclude)
}

func (r *mongoAdminRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, changes ProfileChanges) (*models.Admin, error) {
	set := profileSet(changes)
	set["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var admin models.Admin
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&admin)
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *mongoAdminRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
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

func (r *mongoAdminRepository) AddFollower(ctx context.Context, adminID, userID primitive.ObjectID) error {
	return r.updateFollowers(ctx, adminID, bson.M{"$addToSet": bson.M{"followers": userID}})
}

func (r *mongoAdminRepository) RemoveFollower(ctx context.Context, adminID, userID primitive.ObjectID) error {
	return r.updateFollowers(ctx, adminID, bson.M{"$pull": bson.M{"followers": userID}})
}

func (r *mongoAdminRepository) updateFollowers(ctx context.Context, adminID primitive.ObjectID, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": adminID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
