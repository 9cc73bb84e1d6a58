package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantAccepted ParticipantStatus = "accepted"
	ParticipantRejected ParticipantStatus = "rejected"
)

type ParticipantRole string

const (
	RoleCreator     ParticipantRole = "creator"
	RoleAdmin       ParticipantRole = "admin"
	RoleParticipant ParticipantRole = "participant"
)

type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCancelled PlanStatus = "cancelled"
	PlanCompleted PlanStatus = "completed"
)

type PlanPrivacy string

const (
	PrivacyPublic  PlanPrivacy = "public"
	PrivacyPrivate PlanPrivacy = "private"
	PrivacyFriends PlanPrivacy = "friends"
)

// Participant is a user's membership record on a plan. Role is set once
// when the entry is created; the creator entry is added at plan creation
// and never changes.
type Participant struct {
	User     primitive.ObjectID `bson:"user" json:"user"`
	Status   ParticipantStatus  `bson:"status" json:"status"`
	Role     ParticipantRole    `bson:"role" json:"role"`
	JoinedAt time.Time          `bson:"joined_at" json:"joinedAt"`
}

// PlanLocation is a GeoJSON point plus the human-readable address.
type PlanLocation struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city" json:"city"`
}

type PlanMedia struct {
	Type string `bson:"type" json:"type" validate:"required,oneof=image video"`
	URL  string `bson:"url" json:"url" validate:"required"`
}

type Plan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title" validate:"required"`
	Description     string             `bson:"description" json:"description" validate:"required"`
	Creator         primitive.ObjectID `bson:"creator" json:"creator"`
	Category        string             `bson:"category" json:"category" validate:"required"`
	Location        PlanLocation       `bson:"location" json:"location"`
	DateTime        time.Time          `bson:"date_time" json:"dateTime"`
	Duration        int                `bson:"duration" json:"duration"` // minutes
	MaxParticipants int                `bson:"max_participants,omitempty" json:"maxParticipants,omitempty"`
	Participants    []Participant      `bson:"participants" json:"participants"`
	Tags            []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Privacy         PlanPrivacy        `bson:"privacy" json:"privacy"`
	Status          PlanStatus         `bson:"status" json:"status"`
	Media           []PlanMedia        `bson:"media" json:"media" validate:"required,min=1,dive"`
	Chat            primitive.ObjectID `bson:"chat,omitempty" json:"chat,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FindParticipant returns the participant entry for the given user, or nil.
func (p *Plan) FindParticipant(userID primitive.ObjectID) *Participant {
	for i := range p.Participants {
		if p.Participants[i].User == userID {
			return &p.Participants[i]
		}
	}
	return nil
}

// CanManage reports whether the user holds the creator or admin role.
func (p *Plan) CanManage(userID primitive.ObjectID) bool {
	pt := p.FindParticipant(userID)
	return pt != nil && (pt.Role == RoleCreator || pt.Role == RoleAdmin)
}

// IsFull reports whether the participant cap has been reached. A zero cap
// means unlimited.
func (p *Plan) IsFull() bool {
	return p.MaxParticipants > 0 && len(p.Participants) >= p.MaxParticipants
}

// PlanFilter narrows a plan listing. Zero values mean "no filter".
type PlanFilter struct {
	Status        PlanStatus
	Category      string
	Search        string
	CreatedBy     primitive.ObjectID
	Participating primitive.ObjectID
}
