package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agromarket/internal/broker"
	"agromarket/internal/models"
	"agromarket/internal/policy"
	"agromarket/internal/redisclient"
	"agromarket/internal/store"
	"agromarket/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageService handles direct messages between participants
type MessageService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewMessageService creates a new message service
func NewMessageService(store *store.Store, redis *redisclient.Client, eventPublisher *broker.EventPublisher) *MessageService {
	return &MessageService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// SendMessageRequest carries a new message. The sender is always the
// authenticated principal.
type SendMessageRequest struct {
	ReceiverID uuid.UUID  `json:"receiver_id" binding:"required"`
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	Content    string     `json:"content" binding:"required"`
}

// SendMessage records a message from the requester to the receiver.
func (s *MessageService) SendMessage(ctx context.Context, requester policy.Requester, req *SendMessageRequest) (*models.Message, error) {
	ctx, span := util.StartSpan(ctx, "MessageService.SendMessage")
	defer span.End()

	if strings.TrimSpace(req.Content) == "" {
		return nil, validationError("content is required")
	}

	msg := &models.Message{
		SenderID:   requester.ID,
		ReceiverID: req.ReceiverID,
		ProductID:  req.ProductID,
		Content:    req.Content,
	}

	if !policy.CanInsertMessage(requester, msg) {
		util.PolicyDenialsTotal.WithLabelValues("messages", "insert").Inc()
		return nil, ErrNotPermitted
	}

	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	util.MessagesSentTotal.Inc()

	event := &models.MessageSentEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeMessageSent,
			Timestamp: time.Now(),
		},
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
	}
	if err := s.eventPublisher.PublishMessageSent(ctx, event); err != nil {
		s.logger.Error("Failed to publish MessageSent event", zap.Error(err))
	}

	return msg, nil
}

// GetConversation returns the messages between the requester and a peer,
// optionally scoped to a product. The pair query already restricts rows to
// the requester's own conversations; the post-filter stays as the final word.
func (s *MessageService) GetConversation(ctx context.Context, requester policy.Requester, peerID uuid.UUID, productID *uuid.UUID) ([]models.Message, error) {
	messages, err := s.store.ListConversation(ctx, requester.ID, peerID, productID)
	if err != nil {
		return nil, err
	}
	return policy.FilterMessages(requester, messages), nil
}

// MarkRead flags a message as read. Only the receiver may do this.
func (s *MessageService) MarkRead(ctx context.Context, requester policy.Requester, id uuid.UUID) (*models.Message, error) {
	msg, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadMessage(requester, msg) {
		return nil, store.ErrNotFound
	}

	updated := *msg
	updated.IsRead = true
	if !policy.CanUpdateMessage(requester, msg, &updated) {
		util.PolicyDenialsTotal.WithLabelValues("messages", "update").Inc()
		return nil, ErrNotPermitted
	}

	if msg.IsRead {
		return msg, nil
	}

	if err := s.store.MarkMessageRead(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}

	if err := s.redis.DecrUnread(ctx, requester.ID); err != nil {
		s.logger.Warn("Unread counter decrement failed", zap.Error(err))
	}

	return &updated, nil
}

// UnreadCount returns the number of unread messages for the requester, from
// the Redis counter when it is warm, falling back to the database.
func (s *MessageService) UnreadCount(ctx context.Context, requester policy.Requester) (int64, error) {
	count, err := s.redis.GetUnread(ctx, requester.ID)
	if err != nil {
		s.logger.Warn("Unread counter read failed", zap.Error(err))
	}
	if count >= 0 {
		return count, nil
	}

	count, err = s.store.CountUnread(ctx, requester.ID)
	if err != nil {
		return 0, err
	}
	if err := s.redis.SetUnread(ctx, requester.ID, count); err != nil {
		s.logger.Warn("Unread counter seed failed", zap.Error(err))
	}
	return count, nil
}
