// Package queue defines the notification events published to the message
// broker. Consumers (push delivery, analytics) live outside this service.
package queue

const (
	PlanUpdatedQueue = "plan.updated"
	ChatMessageQueue = "chat.message"
)

// PlanUpdatedEvent is published when a plan's fields or a participant's
// status change.
type PlanUpdatedEvent struct {
	PlanID    string `json:"plan_id"`
	Title     string `json:"title"`
	Action    string `json:"action"`
	ActorID   string `json:"actor_id"`
	UpdatedAt string `json:"updated_at"`
}

// ChatMessageEvent is published when a message lands in a plan's chat.
type ChatMessageEvent struct {
	PlanID   string `json:"plan_id"`
	ChatID   string `json:"chat_id"`
	SenderID string `json:"sender_id"`
	Type     string `json:"type"`
	SentAt   string `json:"sent_at"`
}
