package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"sales-inventory/app/domain"
	"sales-inventory/pkg/rabbitmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

// prefetchCount bounds unacknowledged deliveries to one. Raising it requires
// per-product serialization of stock mutations first.
const prefetchCount = 1

type State int32

const (
	StateDisconnected State = iota
	StateConsuming
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConsuming:
		return "consuming"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type MessageHandler interface {
	Handle(ctx context.Context, body []byte) domain.DeliveryOutcome
}

// OrderConfirmedConsumer is a long-running subscription to the order queue.
// It reconnects on its own and settles every delivery exactly once.
type OrderConfirmedConsumer struct {
	manager  *rabbitmq.Manager
	handler  MessageHandler
	tag      string
	state    atomic.Int32
	inFlight atomic.Bool
}

func NewOrderConfirmedConsumer(manager *rabbitmq.Manager, handler MessageHandler, tag string) *OrderConfirmedConsumer {
	return &OrderConfirmedConsumer{
		manager: manager,
		handler: handler,
		tag:     tag,
	}
}

func (c *OrderConfirmedConsumer) State() State {
	return State(c.state.Load())
}

func (c *OrderConfirmedConsumer) setState(ctx context.Context, s State) {
	if prev := State(c.state.Swap(int32(s))); prev != s {
		slog.InfoContext(ctx, "[orderConfirmedConsumer] state", "from", prev.String(), "to", s.String())
	}
}

// Run consumes until ctx is cancelled. It always returns nil.
func (c *OrderConfirmedConsumer) Run(ctx context.Context) error {
	defer c.manager.Close()
	defer c.setState(ctx, StateShuttingDown)

	interval := c.manager.Policy().Interval
	for ctx.Err() == nil {
		c.setState(ctx, StateDisconnected)

		if !c.manager.Connect(ctx) {
			rabbitmq.Sleep(ctx, interval)
			continue
		}

		deliveries, err := c.subscribe()
		if err != nil {
			slog.WarnContext(ctx, "[orderConfirmedConsumer] Run", "subscribe", err)
			c.manager.Reset()
			rabbitmq.Sleep(ctx, interval)
			continue
		}

		c.setState(ctx, StateConsuming)
		c.drain(ctx, deliveries)
		if ctx.Err() != nil {
			break
		}

		slog.WarnContext(ctx, "[orderConfirmedConsumer] Run", "deliveries", "channel closed, reconnecting", "in", interval.String())
		c.manager.Reset()
		rabbitmq.Sleep(ctx, interval)
	}

	return nil
}

func (c *OrderConfirmedConsumer) subscribe() (<-chan amqp.Delivery, error) {
	var deliveries <-chan amqp.Delivery
	err := c.manager.Do(func(ch rabbitmq.Channel) error {
		if err := ch.Qos(prefetchCount, 0, false); err != nil {
			return fmt.Errorf("qos: %w", err)
		}
		d, err := ch.Consume(c.manager.Queue().Name, c.tag, false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume: %w", err)
		}
		deliveries = d
		return nil
	})
	return deliveries, err
}

// drain returns when the delivery channel closes or ctx is done.
func (c *OrderConfirmedConsumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.process(ctx, d)
		}
	}
}

func (c *OrderConfirmedConsumer) process(ctx context.Context, d amqp.Delivery) {
	if !c.inFlight.CompareAndSwap(false, true) {
		panic("orderConfirmedConsumer: concurrent delivery handling with prefetch 1")
	}
	defer c.inFlight.Store(false)

	// Shutdown must not turn an in-flight mutation into a reject.
	outcome := c.handle(context.WithoutCancel(ctx), d.Body)

	var err error
	switch outcome {
	case domain.OutcomeAck:
		err = d.Ack(false)
	default:
		err = d.Reject(false)
	}
	if err != nil {
		slog.WarnContext(ctx, "[orderConfirmedConsumer] process", "settle", err,
			"outcome", outcome.String(), "deliveryTag", d.DeliveryTag)
	}
}

func (c *OrderConfirmedConsumer) handle(ctx context.Context, body []byte) (outcome domain.DeliveryOutcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "[orderConfirmedConsumer] handle", "panic", fmt.Sprint(r))
			outcome = domain.OutcomeReject
		}
	}()
	return c.handler.Handle(ctx, body)
}
