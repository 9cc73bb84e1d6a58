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

type ChatRepo interface {
	GetChatByPlanID(ctx context.Context, planID primitive.ObjectID) (*Chat, error)
	AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg Message) error
	MarkMessagesRead(ctx context.Context, chatID, userID primitive.ObjectID) error
}

func (mdb *MongodbRepo) GetChatByPlanID(ctx context.Context, planID primitive.ObjectID) (*Chat, error) {
	var chat Chat
	err := mdb.Collection(ChatsCollection).FindOne(ctx, bson.M{"plan": planID}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}
	return &chat, nil
}

// AppendMessage pushes the message and keeps last_message in step with the
// tail of the message list.
func (mdb *MongodbRepo) AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg Message) error {
	res, err := mdb.Collection(ChatsCollection).UpdateByID(ctx, chatID, bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"last_message": msg,
			"updated_at":   time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkMessagesRead adds the user to every message's read_by set. Idempotent:
// messages already read by the user are left untouched.
func (mdb *MongodbRepo) MarkMessagesRead(ctx context.Context, chatID, userID primitive.ObjectID) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: bson.A{bson.M{"unread.read_by": bson.M{"$ne": userID}}},
	})
	res, err := mdb.Collection(ChatsCollection).UpdateOne(ctx,
		bson.M{"_id": chatID},
		bson.M{"$addToSet": bson.M{"messages.$[unread].read_by": userID}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
