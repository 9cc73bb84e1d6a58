package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sentinel errors the storage layer reports; services translate them into
// domain errors.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByProvider(ctx context.Context, provider, providerID string) (*User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*User, error)
	UpdateSettings(ctx context.Context, id primitive.ObjectID, settings UserSettings) (*User, error)
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error
	AddPhotos(ctx context.Context, id primitive.ObjectID, urls []string) error
	RemovePhoto(ctx context.Context, id primitive.ObjectID, url string) error
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = "user"
	}
	if user.PlansCreated == nil {
		user.PlansCreated = []primitive.ObjectID{}
	}
	if user.PlansJoined == nil {
		user.PlansJoined = []primitive.ObjectID{}
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}

	_, err := mdb.Collection(UsersCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return mdb.findUser(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return mdb.findUser(ctx, bson.M{"email": email})
}

func (mdb *MongodbRepo) GetUserByProvider(ctx context.Context, provider, providerID string) (*User, error) {
	var field string
	switch provider {
	case "google":
		field = "google_id"
	case "facebook":
		field = "facebook_id"
	default:
		return nil, fmt.Errorf("unknown oauth provider %q", provider)
	}
	return mdb.findUser(ctx, bson.M{field: providerID})
}

func (mdb *MongodbRepo) findUser(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := mdb.Collection(UsersCollection).FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated User
	err := mdb.Collection(UsersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) UpdateSettings(ctx context.Context, id primitive.ObjectID, settings UserSettings) (*User, error) {
	return mdb.UpdateProfile(ctx, id, map[string]interface{}{"settings": settings})
}

// AddFriend inserts the edge on both user documents inside one transaction
// so the relationship stays symmetric even across a crash.
func (mdb *MongodbRepo) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		users := mdb.Collection(UsersCollection)
		if _, err := users.UpdateByID(sc, userID, bson.M{"$addToSet": bson.M{"friends": friendID}}); err != nil {
			return fmt.Errorf("failed to add friend edge: %w", err)
		}
		if _, err := users.UpdateByID(sc, friendID, bson.M{"$addToSet": bson.M{"friends": userID}}); err != nil {
			return fmt.Errorf("failed to add reverse friend edge: %w", err)
		}
		return nil
	})
}

func (mdb *MongodbRepo) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		users := mdb.Collection(UsersCollection)
		if _, err := users.UpdateByID(sc, userID, bson.M{"$pull": bson.M{"friends": friendID}}); err != nil {
			return fmt.Errorf("failed to remove friend edge: %w", err)
		}
		if _, err := users.UpdateByID(sc, friendID, bson.M{"$pull": bson.M{"friends": userID}}); err != nil {
			return fmt.Errorf("failed to remove reverse friend edge: %w", err)
		}
		return nil
	})
}

func (mdb *MongodbRepo) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	res, err := mdb.Collection(UsersCollection).UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"avatar": url, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) AddPhotos(ctx context.Context, id primitive.ObjectID, urls []string) error {
	res, err := mdb.Collection(UsersCollection).UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"photos": bson.M{"$each": urls}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to add photos: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) RemovePhoto(ctx context.Context, id primitive.ObjectID, url string) error {
	res, err := mdb.Collection(UsersCollection).UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"photos": url},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to remove photo: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
