package models

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var Validate = validator.New()

const (
	UsersCollection = "users"
	PlansCollection = "plans"
	ChatsCollection = "chats"
)

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) Collection(name string) *mongo.Collection {
	return mdb.mongodbClient.Database(mdb.dbName).Collection(name)
}

// withTransaction runs fn inside a causally-consistent session with majority
// write concern. Multi-document invariants (friend symmetry, plan+chat
// co-creation, participant cap) rely on this boundary.
func (mdb *MongodbRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := mdb.mongodbClient.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().SetWriteConcern(writeconcern.Majority())
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// EnsureIndexes creates the secondary indexes the query paths depend on.
// Safe to call on every startup.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	users := mdb.Collection(UsersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "google_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "facebook_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	plans := mdb.Collection(PlansCollection)
	_, err = plans.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "date_time", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create plan indexes: %w", err)
	}

	chats := mdb.Collection(ChatsCollection)
	_, err = chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "plan", Value: 1}}},
		{Keys: bson.D{{Key: "participants", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create chat indexes: %w", err)
	}

	return nil
}
