package worker

import (
	"context"
	"log"

	"agromarket/internal/broker"
	"agromarket/internal/models"
	"agromarket/internal/redisclient"
	"agromarket/internal/util"

	"go.uber.org/zap"
)

// EventWorker keeps derived state in step with domain events: unread-message
// counters and the product cache live in Redis and are maintained here, off
// the request path.
type EventWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewEventWorker creates a new event worker
func NewEventWorker(consumer *broker.Consumer, redis *redisclient.Client) *EventWorker {
	logger := util.GetLogger()
	eventHandler := broker.NewEventHandler()

	eventHandler.OnMessageSent(func(ctx context.Context, event *models.MessageSentEvent) error {
		return redis.IncrUnread(ctx, event.ReceiverID)
	})

	eventHandler.OnProductUpdated(func(ctx context.Context, event *models.ProductUpdatedEvent) error {
		return redis.InvalidateProduct(ctx, event.ProductID)
	})

	eventHandler.OnProductDeleted(func(ctx context.Context, event *models.ProductDeletedEvent) error {
		return redis.InvalidateProduct(ctx, event.ProductID)
	})

	eventHandler.OnOrderStatusChanged(func(ctx context.Context, event *models.OrderStatusChangedEvent) error {
		logger.Info("Order status change observed",
			zap.String("order_id", event.OrderID.String()),
			zap.String("from", event.From),
			zap.String("to", event.To),
			zap.String("actor_id", event.ActorID.String()))
		return nil
	})

	return &EventWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// Start starts the worker
func (w *EventWorker) Start(ctx context.Context) error {
	log.Println("Starting event worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *EventWorker) Stop() error {
	log.Println("Stopping event worker...")
	return w.consumer.Close()
}
