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

var (
	ErrAlreadyParticipant = errors.New("user is already a participant")
	ErrPlanFull           = errors.New("plan has reached its participant cap")
)

type PlanRepo interface {
	CreatePlanWithChat(ctx context.Context, plan *Plan) (*Plan, error)
	GetPlanByID(ctx context.Context, id primitive.ObjectID) (*Plan, error)
	ListPlans(ctx context.Context, caller *primitive.ObjectID, filter PlanFilter) ([]*Plan, error)
	AddParticipant(ctx context.Context, planID primitive.ObjectID, p Participant) error
	RemoveParticipant(ctx context.Context, planID, userID primitive.ObjectID) error
	SetParticipantStatus(ctx context.Context, planID, participantID primitive.ObjectID, status ParticipantStatus) error
	UpdatePlan(ctx context.Context, planID primitive.ObjectID, fields map[string]interface{}) (*Plan, error)
}

// CreatePlanWithChat inserts the plan, its companion chat seeded with the
// creator, and the creator's plans_created reference in one transaction.
func (mdb *MongodbRepo) CreatePlanWithChat(ctx context.Context, plan *Plan) (*Plan, error) {
	now := time.Now().UTC()
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	plan.Chat = primitive.NewObjectID()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	chat := &Chat{
		ID:           plan.Chat,
		Plan:         plan.ID,
		Participants: []primitive.ObjectID{plan.Creator},
		Messages:     []Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := mdb.Collection(PlansCollection).InsertOne(sc, plan); err != nil {
			return fmt.Errorf("failed to insert plan: %w", err)
		}
		if _, err := mdb.Collection(ChatsCollection).InsertOne(sc, chat); err != nil {
			return fmt.Errorf("failed to insert chat: %w", err)
		}
		if _, err := mdb.Collection(UsersCollection).UpdateByID(sc, plan.Creator, bson.M{
			"$push": bson.M{"plans_created": plan.ID},
		}); err != nil {
			return fmt.Errorf("failed to record created plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (mdb *MongodbRepo) GetPlanByID(ctx context.Context, id primitive.ObjectID) (*Plan, error) {
	var plan Plan
	err := mdb.Collection(PlansCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	return &plan, nil
}

// ListPlans applies the visibility rule: anonymous callers see public plans
// only; a known caller additionally sees plans they created or participate in.
func (mdb *MongodbRepo) ListPlans(ctx context.Context, caller *primitive.ObjectID, filter PlanFilter) ([]*Plan, error) {
	var clauses []bson.M

	if caller != nil {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"privacy": PrivacyPublic},
			bson.M{"participants.user": *caller},
			bson.M{"creator": *caller},
		}})
	} else {
		clauses = append(clauses, bson.M{"privacy": PrivacyPublic})
	}

	if filter.Status != "" {
		clauses = append(clauses, bson.M{"status": filter.Status})
	}
	if filter.Category != "" {
		clauses = append(clauses, bson.M{"category": filter.Category})
	}
	if filter.Search != "" {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"title": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": filter.Search, "$options": "i"}},
		}})
	}
	if !filter.CreatedBy.IsZero() {
		clauses = append(clauses, bson.M{"creator": filter.CreatedBy})
	}
	if !filter.Participating.IsZero() {
		clauses = append(clauses, bson.M{"participants": bson.M{"$elemMatch": bson.M{
			"user":   filter.Participating,
			"status": ParticipantAccepted,
		}}})
	}

	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: -1}})
	cursor, err := mdb.Collection(PlansCollection).Find(ctx, bson.M{"$and": clauses}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer cursor.Close(ctx)

	plans := []*Plan{}
	for cursor.Next(ctx) {
		var plan Plan
		if err := cursor.Decode(&plan); err != nil {
			return nil, fmt.Errorf("failed to decode plan: %w", err)
		}
		plans = append(plans, &plan)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return plans, nil
}

// AddParticipant appends the entry and syncs the chat participant set. The
// duplicate and cap guards are part of the update filter so concurrent joins
// cannot overshoot the cap or double-insert, and the whole operation runs in
// a transaction.
func (mdb *MongodbRepo) AddParticipant(ctx context.Context, planID primitive.ObjectID, p Participant) error {
	return mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		filter := bson.M{
			"_id":               planID,
			"participants.user": bson.M{"$ne": p.User},
			"$expr": bson.M{"$or": bson.A{
				bson.M{"$lte": bson.A{bson.M{"$ifNull": bson.A{"$max_participants", 0}}, 0}},
				bson.M{"$lt": bson.A{bson.M{"$size": "$participants"}, "$max_participants"}},
			}},
		}
		res, err := mdb.Collection(PlansCollection).UpdateOne(sc, filter, bson.M{
			"$push": bson.M{"participants": p},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
		if res.MatchedCount == 0 {
			// Re-read inside the transaction to report the precise reason.
			plan, err := mdb.GetPlanByID(sc, planID)
			if err != nil {
				return err
			}
			if plan.FindParticipant(p.User) != nil {
				return ErrAlreadyParticipant
			}
			return ErrPlanFull
		}

		if _, err := mdb.Collection(ChatsCollection).UpdateOne(sc,
			bson.M{"plan": planID},
			bson.M{"$addToSet": bson.M{"participants": p.User}},
		); err != nil {
			return fmt.Errorf("failed to add chat participant: %w", err)
		}
		return nil
	})
}

// RemoveParticipant drops the entry and removes the user from the chat and
// from their plans_joined list.
func (mdb *MongodbRepo) RemoveParticipant(ctx context.Context, planID, userID primitive.ObjectID) error {
	return mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := mdb.Collection(PlansCollection).UpdateByID(sc, planID, bson.M{
			"$pull": bson.M{"participants": bson.M{"user": userID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
		if err != nil {
			return fmt.Errorf("failed to remove participant: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		if _, err := mdb.Collection(ChatsCollection).UpdateOne(sc,
			bson.M{"plan": planID},
			bson.M{"$pull": bson.M{"participants": userID}},
		); err != nil {
			return fmt.Errorf("failed to remove chat participant: %w", err)
		}
		if _, err := mdb.Collection(UsersCollection).UpdateByID(sc, userID, bson.M{
			"$pull": bson.M{"plans_joined": planID},
		}); err != nil {
			return fmt.Errorf("failed to remove joined plan: %w", err)
		}
		return nil
	})
}

// SetParticipantStatus updates the entry and mirrors the decision on the
// target user's plans_joined list.
func (mdb *MongodbRepo) SetParticipantStatus(ctx context.Context, planID, participantID primitive.ObjectID, status ParticipantStatus) error {
	return mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := mdb.Collection(PlansCollection).UpdateOne(sc,
			bson.M{"_id": planID, "participants.user": participantID},
			bson.M{"$set": bson.M{
				"participants.$.status": status,
				"updated_at":            time.Now().UTC(),
			}},
		)
		if err != nil {
			return fmt.Errorf("failed to set participant status: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}

		var userUpdate bson.M
		switch status {
		case ParticipantAccepted:
			userUpdate = bson.M{"$addToSet": bson.M{"plans_joined": planID}}
		case ParticipantRejected:
			userUpdate = bson.M{"$pull": bson.M{"plans_joined": planID}}
		default:
			return nil
		}
		if _, err := mdb.Collection(UsersCollection).UpdateByID(sc, participantID, userUpdate); err != nil {
			return fmt.Errorf("failed to update joined plans: %w", err)
		}
		return nil
	})
}

func (mdb *MongodbRepo) UpdatePlan(ctx context.Context, planID primitive.ObjectID, fields map[string]interface{}) (*Plan, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Plan
	err := mdb.Collection(PlansCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": planID}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return &updated, nil
}
