package order

import (
	"context"
	"encoding/json"
	"strconv"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event is the orders.created payload consumed by the payment gateway.
type Event struct {
	OrderID    int64          `json:"orderId"`
	CustomerID int64          `json:"customerId"`
	Username   string         `json:"username"`
	Products   []EventProduct `json:"products"`
	TotalPrice float64        `json:"totalPrice"`
}

type EventProduct struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, ev Event) error
}

// KafkaPublisher writes order events to a single topic, keyed by order id
// so per-order ordering is preserved.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// NopPublisher is used when no brokers are configured; it only logs.
type NopPublisher struct {
	Log *zap.Logger
}

func (p NopPublisher) PublishOrderCreated(_ context.Context, ev Event) error {
	if p.Log != nil {
		p.Log.Debug("order event dropped, no brokers configured", zap.Int64("order_id", ev.OrderID))
	}
	return nil
}
