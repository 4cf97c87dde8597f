package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"storefront/internal/domain/event"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderEventType = "event-type"
	HeaderOrderID   = "order-id"
)

var tracer = otel.Tracer("storefront/messaging")

var ErrMissingOrderNumber = errors.New("order event without order number")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// order.created をKafkaへ送る。
// keyは注文番号（同じ注文のイベントは同じパーティションに載る）
type OrderEventPublisher struct {
	writer messageWriter
}

func NewOrderEventPublisher(brokers []string) *OrderEventPublisher {
	return &OrderEventPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  event.TopicOrderCreated,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireAll,
			WriteTimeout:           5 * time.Second,
		},
	}
}

func (p *OrderEventPublisher) PublishOrderCreated(ctx context.Context, ev event.OrderCreated) error {
	if ev.OrderNumber == "" {
		return ErrMissingOrderNumber
	}

	ctx, span := tracer.Start(ctx, "publish "+event.TopicOrderCreated,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(event.TopicOrderCreated),
			semconv.MessagingKafkaMessageKey(ev.OrderNumber),
			attribute.Int64("storefront.order_id", ev.OrderID),
		),
	)
	defer span.End()

	msg, err := orderCreatedMessage(ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return err
	}
	otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&msg))

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

func orderCreatedMessage(ev event.OrderCreated) (kafka.Message, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.OrderNumber),
		Value: body,
		Time:  ev.Timestamp,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(event.TopicOrderCreated)},
			{Key: HeaderOrderID, Value: []byte(strconv.FormatInt(ev.OrderID, 10))},
		},
	}, nil
}
