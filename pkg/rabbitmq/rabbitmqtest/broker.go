// Package rabbitmqtest provides an in-memory broker that satisfies the
// rabbitmq.Connection and rabbitmq.Channel interfaces. Unresolved deliveries
// go back to the queue when their channel closes, as on a real broker.
package rabbitmqtest

import (
	"context"
	"errors"
	"sync"

	"sales-inventory/pkg/rabbitmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrDown = errors.New("rabbitmqtest: broker unreachable")

type Published struct {
	Key string
	Msg amqp.Publishing
}

type pending struct {
	ch   *channel
	body []byte
}

type Broker struct {
	mu sync.Mutex

	down     bool
	dials    int
	nextTag  uint64
	conns    []*conn
	consumer *channel
	backlog  [][]byte
	pending  map[uint64]pending

	declared  map[string]amqp.Table
	published []Published
	acked     []uint64
	rejected  []uint64
	prefetch  int
	autoAck   bool

	fail Failures
}

// Failures are returned by the matching channel operations while set.
type Failures struct {
	Channel error
	Declare error
	Publish error
	Consume error
}

func (b *Broker) SetFailures(f Failures) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = f
}

func NewBroker() *Broker {
	return &Broker{
		pending:  make(map[uint64]pending),
		declared: make(map[string]amqp.Table),
	}
}

// Dial satisfies rabbitmq.Dialer.
func (b *Broker) Dial(context.Context, rabbitmq.Config) (rabbitmq.Connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dials++
	if b.down {
		return nil, ErrDown
	}
	c := &conn{b: b}
	b.conns = append(b.conns, c)
	return c, nil
}

// SetDown makes future dials fail. It does not touch open connections; use
// Drop for that.
func (b *Broker) SetDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

// Drop closes every open connection and requeues unresolved deliveries.
func (b *Broker) Drop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.conns {
		c.closeLocked()
	}
	b.conns = nil
}

// Enqueue adds a message to the queue and delivers it if a consumer is
// attached.
func (b *Broker) Enqueue(body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.backlog = append(b.backlog, body)
	b.flushLocked()
}

func (b *Broker) Dials() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

func (b *Broker) Consuming() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consumer != nil && !b.consumer.closed
}

func (b *Broker) Declared(name string) (amqp.Table, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	args, ok := b.declared[name]
	return args, ok
}

func (b *Broker) Published() []Published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Published(nil), b.published...)
}

func (b *Broker) Acked() []uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint64(nil), b.acked...)
}

func (b *Broker) Rejected() []uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint64(nil), b.rejected...)
}

// Unresolved counts deliveries handed out and neither acked nor rejected,
// plus messages waiting in the queue.
func (b *Broker) Unresolved() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) + len(b.backlog)
}

func (b *Broker) Prefetch() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.prefetch
}

func (b *Broker) AutoAck() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.autoAck
}

func (b *Broker) flushLocked() {
	if b.consumer == nil || b.consumer.closed {
		return
	}
	for len(b.backlog) > 0 {
		body := b.backlog[0]
		b.backlog = b.backlog[1:]
		b.nextTag++
		tag := b.nextTag
		b.pending[tag] = pending{ch: b.consumer, body: body}
		b.consumer.deliveries <- amqp.Delivery{
			Acknowledger: b.consumer,
			DeliveryTag:  tag,
			Body:         body,
			ContentType:  "application/json",
		}
	}
}

type conn struct {
	b        *Broker
	closed   bool
	channels []*channel
}

func (c *conn) Channel() (rabbitmq.Channel, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if c.closed {
		return nil, amqp.ErrClosed
	}
	if c.b.fail.Channel != nil {
		return nil, c.b.fail.Channel
	}
	ch := &channel{b: c.b, conn: c}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *conn) IsClosed() bool {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	return c.closed
}

func (c *conn) Close() error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	c.closeLocked()
	return nil
}

func (c *conn) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	for _, ch := range c.channels {
		ch.closeLocked()
	}
}

type channel struct {
	b          *Broker
	conn       *conn
	closed     bool
	deliveries chan amqp.Delivery
}

func (ch *channel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	ch.b.mu.Lock()
	defer ch.b.mu.Unlock()
	if ch.closed {
		return amqp.Queue{}, amqp.ErrClosed
	}
	if ch.b.fail.Declare != nil {
		return amqp.Queue{}, ch.b.fail.Declare
	}
	if !durable || autoDelete || exclusive {
		return amqp.Queue{}, errors.New("rabbitmqtest: queue must be durable, shared and persistent")
	}
	ch.b.declared[name] = args
	return amqp.Queue{Name: name}, nil
}

func (ch *channel) Qos(prefetchCount, prefetchSize int, global bool) error {
	ch.b.mu.Lock()
	defer ch.b.mu.Unlock()
	if ch.closed {
		return amqp.ErrClosed
	}
	ch.b.prefetch = prefetchCount
	return nil
}

func (ch *channel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	ch.b.mu.Lock()
	defer ch.b.mu.Unlock()
	if ch.closed {
		return nil, amqp.ErrClosed
	}
	if ch.b.fail.Consume != nil {
		return nil, ch.b.fail.Consume
	}
	ch.b.autoAck = autoAck
	ch.deliveries = make(chan amqp.Delivery, 64)
	ch.b.consumer = ch
	ch.b.flushLocked()
	return ch.deliveries, nil
}

func (ch *channel) PublishWithContext(_ context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	ch.b.mu.Lock()
	defer ch.b.mu.Unlock()
	if ch.closed {
		return amqp.ErrClosed
	}
	if ch.b.fail.Publish != nil {
		return ch.b.fail.Publish
	}
	ch.b.published = append(ch.b.published, Published{Key: key, Msg: msg})
	ch.b.backlog = append(ch.b.backlog, msg.Body)
	ch.b.flushLocked()
	return nil
}

func (ch *channel) IsClosed() bool {
	ch.b.mu.Lock()
	defer ch.b.mu.Unlock()
	return ch.closed
}

func (ch *channel) Close() error {
	ch.b.mu.Lock()
	defer ch.b.mu.Unlock()
	ch.closeLocked()
	return nil
}

func (ch *channel) closeLocked() {
	if ch.closed {
		return
	}
	ch.closed = true
	if ch.deliveries != nil {
		close(ch.deliveries)
	}
	for tag, p := range ch.b.pending {
		if p.ch == ch {
			ch.b.backlog = append(ch.b.backlog, p.body)
			delete(ch.b.pending, tag)
		}
	}
	if ch.b.consumer == ch {
		ch.b.consumer = nil
	}
}

// Ack, Nack and Reject make channel an amqp.Acknowledger.
func (ch *channel) Ack(tag uint64, multiple bool) error {
	return ch.resolve(tag, true)
}

func (ch *channel) Nack(tag uint64, multiple, requeue bool) error {
	if requeue {
		return errors.New("rabbitmqtest: requeue is not expected")
	}
	return ch.resolve(tag, false)
}

func (ch *channel) Reject(tag uint64, requeue bool) error {
	if requeue {
		return errors.New("rabbitmqtest: requeue is not expected")
	}
	return ch.resolve(tag, false)
}

func (ch *channel) resolve(tag uint64, ack bool) error {
	ch.b.mu.Lock()
	defer ch.b.mu.Unlock()
	if ch.closed {
		return amqp.ErrClosed
	}
	p, ok := ch.b.pending[tag]
	if !ok || p.ch != ch {
		return errors.New("rabbitmqtest: unknown delivery tag")
	}
	delete(ch.b.pending, tag)
	if ack {
		ch.b.acked = append(ch.b.acked, tag)
	} else {
		ch.b.rejected = append(ch.b.rejected, tag)
	}
	return nil
}
