package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/typemnm/Mornoningo/internal/service"
)

const publishTimeout = 5 * time.Second

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Forwarder relays study events to a RabbitMQ topic exchange. Routing keys are the event types,
// e.g. "session.finished".
type Forwarder struct {
	conn     *amqp091.Connection
	channel  amqpChannel
	exchange string
	logger   *zap.Logger
}

// NewForwarder dials RabbitMQ and declares a durable topic exchange.
func NewForwarder(url, exchange string, logger *zap.Logger) (*Forwarder, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()   //nolint:errcheck
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	f := newForwarder(ch, exchange, logger)
	f.conn = conn
	return f, nil
}

func newForwarder(ch amqpChannel, exchange string, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{channel: ch, exchange: exchange, logger: logger}
}

// Run forwards events until ctx is cancelled or the subscription closes. Publish failures are
// logged and the event is dropped.
func (f *Forwarder) Run(ctx context.Context, events <-chan service.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := f.Publish(ctx, evt); err != nil {
				f.logger.Warn("failed to forward event", zap.String("type", string(evt.Type)), zap.Error(err))
			}
		}
	}
}

// Publish sends one event.
func (f *Forwarder) Publish(ctx context.Context, evt service.Event) error {
	msg, err := buildPublishing(evt)
	if err != nil {
		return err
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := f.channel.PublishWithContext(pubCtx, f.exchange, string(evt.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Close releases the channel and connection.
func (f *Forwarder) Close() error {
	if f.channel != nil {
		if err := f.channel.Close(); err != nil {
			f.logger.Warn("failed to close rabbitmq channel", zap.Error(err))
		}
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}

func buildPublishing(evt service.Event) (amqp091.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	ts := evt.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    ts,
		Type:         string(evt.Type),
		Body:         body,
	}, nil
}
