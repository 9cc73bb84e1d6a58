package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationSettings struct {
	Enabled      bool `bson:"enabled" json:"enabled"`
	ChatMessages bool `bson:"chat_messages" json:"chatMessages"`
	PlanUpdates  bool `bson:"plan_updates" json:"planUpdates"`
	Reminders    bool `bson:"reminders" json:"reminders"`
}

type PrivacySettings struct {
	ShareLocation bool `bson:"share_location" json:"shareLocation"`
	PublicProfile bool `bson:"public_profile" json:"publicProfile"`
}

type UserSettings struct {
	Notifications NotificationSettings `bson:"notifications" json:"notifications"`
	Privacy       PrivacySettings      `bson:"privacy" json:"privacy"`
}

// DefaultUserSettings is applied on registration and on first OAuth login.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Notifications: NotificationSettings{
			Enabled:      true,
			ChatMessages: true,
			PlanUpdates:  true,
			Reminders:    true,
		},
		Privacy: PrivacySettings{
			ShareLocation: true,
			PublicProfile: true,
		},
	}
}

type UserAvailability struct {
	Days       []string `bson:"days,omitempty" json:"days,omitempty"`
	TimeRanges []string `bson:"time_ranges,omitempty" json:"timeRanges,omitempty"`
}

// User is a registered account. Password is empty for OAuth-only accounts;
// either Password or one of GoogleID/FacebookID must be present.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email        string               `bson:"email" json:"email" validate:"required,email"`
	Password     string               `bson:"password,omitempty" json:"-"`
	Name         string               `bson:"name" json:"name" validate:"required"`
	Avatar       string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Photos       []string             `bson:"photos,omitempty" json:"photos,omitempty"`
	Bio          string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Interests    []string             `bson:"interests,omitempty" json:"interests,omitempty"`
	Availability *UserAvailability    `bson:"availability,omitempty" json:"availability,omitempty"`
	PlansCreated []primitive.ObjectID `bson:"plans_created" json:"plansCreated"`
	PlansJoined  []primitive.ObjectID `bson:"plans_joined" json:"plansJoined"`
	Friends      []primitive.ObjectID `bson:"friends" json:"friends"`
	GoogleID     string               `bson:"google_id,omitempty" json:"-"`
	FacebookID   string               `bson:"facebook_id,omitempty" json:"-"`
	Settings     UserSettings         `bson:"settings" json:"settings"`
	Role         string               `bson:"role" json:"role"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the projection returned to other users.
type PublicUser struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Avatar    string             `json:"avatar,omitempty"`
	Bio       string             `json:"bio,omitempty"`
	Interests []string           `json:"interests,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Interests: u.Interests,
	}
}

// HasFriend reports whether the given user is in the friend list.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
