package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stocklane/inventory-service/internal/auth"
	"github.com/stocklane/inventory-service/internal/inventory"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/model"
	"github.com/stocklane/inventory-service/pkg/broker"
	"github.com/stocklane/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// OrderListener deducts stock when the order service publishes a sale.
type OrderListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewOrderListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, log logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("starting order events listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping order events listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID         string             `json:"id"`
	OwnerID    string             `json:"owner_id"`
	LocationID string             `json:"location_id"`
	Items      []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID  string `json:"product_id"`
	VariantSKU string `json:"variant_sku"`
	Quantity   int64  `json:"quantity"`
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal order event", zap.Error(err))
		return
	}

	if event.EventType != "OrderCreated" {
		return
	}

	l.logger.Info("processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	scope := auth.Scope{OwnerID: event.Payload.OwnerID}
	for _, item := range event.Payload.Items {
		_, err := l.uc.ProductStockOperation(ctx, scope, &dto.StockOperationInput{
			ProductID:   item.ProductID,
			LocationID:  event.Payload.LocationID,
			VariantSKU:  item.VariantSKU,
			Type:        model.MovementRemove,
			Amount:      item.Quantity,
			Reason:      "order sale",
			Notes:       "order " + event.Payload.ID,
			ReferenceID: event.Payload.ID,
		})
		if err != nil {
			l.logger.Error("failed to deduct stock for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}
