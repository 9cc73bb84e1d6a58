package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/models"
	"github.com/goplan-app/goplan-server/internal/queue"
)

type ChatService struct {
	chatRepo  models.ChatRepo
	publisher queue.Publisher
	logger    *slog.Logger
}

func NewChatService(chatRepo models.ChatRepo, publisher queue.Publisher, logger *slog.Logger) *ChatService {
	return &ChatService{
		chatRepo:  chatRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// GetChat returns the plan's chat. Only participants may read it.
func (cs *ChatService) GetChat(ctx context.Context, user *models.User, planID primitive.ObjectID) (*models.Chat, error) {
	chat, err := cs.loadChat(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(user.ID) {
		return nil, apperrors.Chat(apperrors.KindPermissionDenied, "you do not have access to this chat")
	}
	return chat, nil
}

// SendMessage appends a message to the plan's chat. The sender is marked as
// having already read their own message.
func (cs *ChatService) SendMessage(ctx context.Context, user *models.User, planID primitive.ObjectID, content string, msgType models.MessageType) (*models.Message, error) {
	if content == "" {
		return nil, &apperrors.Error{
			Domain:  apperrors.DomainChat,
			Kind:    apperrors.KindInvalid,
			Message: "message content is required",
			Fields:  []string{"content"},
		}
	}
	if msgType == "" {
		msgType = models.MessageText
	}
	switch msgType {
	case models.MessageText, models.MessageImage, models.MessageLocation:
	default:
		return nil, apperrors.Chat(apperrors.KindInvalid, "invalid message type")
	}

	chat, err := cs.loadChat(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(user.ID) {
		return nil, apperrors.Chat(apperrors.KindPermissionDenied, "you do not have access to this chat")
	}

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		Sender:    user.ID,
		Content:   content,
		Type:      msgType,
		ReadBy:    []primitive.ObjectID{user.ID},
		CreatedAt: time.Now().UTC(),
	}
	if err := cs.chatRepo.AppendMessage(ctx, chat.ID, msg); err != nil {
		return nil, apperrors.Server("failed to send message")
	}

	event := queue.ChatMessageEvent{
		PlanID:   planID.Hex(),
		ChatID:   chat.ID.Hex(),
		SenderID: user.ID.Hex(),
		Type:     string(msgType),
		SentAt:   msg.CreatedAt.Format(time.RFC3339),
	}
	if err := cs.publisher.Publish(ctx, queue.ChatMessageQueue, event); err != nil {
		cs.logger.Warn("failed to publish chat event", "chat_id", event.ChatID, "error", err)
	}

	return &msg, nil
}

// MarkMessagesAsRead adds the caller to every message's read-by set.
// Calling it again is a no-op.
func (cs *ChatService) MarkMessagesAsRead(ctx context.Context, user *models.User, planID primitive.ObjectID) error {
	chat, err := cs.loadChat(ctx, planID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(user.ID) {
		return apperrors.Chat(apperrors.KindPermissionDenied, "you do not have access to this chat")
	}
	if err := cs.chatRepo.MarkMessagesRead(ctx, chat.ID, user.ID); err != nil {
		return apperrors.Server("failed to mark messages as read")
	}
	return nil
}

// GetUnreadCount counts the messages the caller has not read yet.
func (cs *ChatService) GetUnreadCount(ctx context.Context, user *models.User, planID primitive.ObjectID) (int, error) {
	chat, err := cs.loadChat(ctx, planID)
	if err != nil {
		return 0, err
	}
	return chat.UnreadCount(user.ID), nil
}

func (cs *ChatService) loadChat(ctx context.Context, planID primitive.ObjectID) (*models.Chat, error) {
	chat, err := cs.chatRepo.GetChatByPlanID(ctx, planID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperrors.Chat(apperrors.KindNotFound, "chat not found")
		}
		return nil, apperrors.Server("failed to load chat")
	}
	return chat, nil
}
