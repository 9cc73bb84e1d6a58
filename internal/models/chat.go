package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageLocation MessageType = "location"
)

type Message struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Sender    primitive.ObjectID   `bson:"sender" json:"sender"`
	Content   string               `bson:"content" json:"content"`
	Type      MessageType          `bson:"type" json:"type"`
	ReadBy    []primitive.ObjectID `bson:"read_by" json:"readBy"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
}

// ReadByUser reports whether the given user has read the message.
func (m *Message) ReadByUser(userID primitive.ObjectID) bool {
	for _, r := range m.ReadBy {
		if r == userID {
			return true
		}
	}
	return false
}

// Chat is the group conversation attached one-to-one to a plan. Its
// participant set mirrors the plan's participant list.
type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Plan         primitive.ObjectID   `bson:"plan" json:"plan"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Messages     []Message            `bson:"messages" json:"messages"`
	LastMessage  *Message             `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

// HasParticipant reports whether the user belongs to the chat.
func (c *Chat) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// UnreadCount is the number of messages the user has not read yet.
func (c *Chat) UnreadCount(userID primitive.ObjectID) int {
	n := 0
	for i := range c.Messages {
		if !c.Messages[i].ReadByUser(userID) {
			n++
		}
	}
	return n
}
