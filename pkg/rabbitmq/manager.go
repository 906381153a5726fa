package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrNotReady = errors.New("rabbitmq: channel not ready")

// RetryPolicy controls Manager.Connect. MaxAttempts == 0 retries until the
// context is done.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

var (
	PublishRetry = RetryPolicy{MaxAttempts: 3, Interval: 500 * time.Millisecond}
	ConsumeRetry = RetryPolicy{MaxAttempts: 0, Interval: 5 * time.Second}
)

func (p RetryPolicy) Bounded() bool { return p.MaxAttempts > 0 }

// Manager owns one connection and one channel to the broker. Both handles
// are replaced together; a half-open pair is never reused.
type Manager struct {
	cfg    Config
	queue  QueueSpec
	policy RetryPolicy
	dial   Dialer
	name   string

	mu   sync.Mutex
	conn Connection
	ch   Channel
}

func NewManager(name string, cfg Config, queue QueueSpec, policy RetryPolicy, dial Dialer) *Manager {
	if dial == nil {
		dial = Dial
	}
	return &Manager{
		cfg:    cfg,
		queue:  queue,
		policy: policy,
		dial:   dial,
		name:   name,
	}
}

func (m *Manager) Policy() RetryPolicy { return m.policy }

func (m *Manager) Queue() QueueSpec { return m.queue }

// EnsureReady makes a single attempt to have an open connection and channel
// with the queue declared. Connectivity failures are logged, never returned.
func (m *Manager) EnsureReady(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.healthy() {
		return true
	}

	m.teardown()

	conn, err := m.dial(ctx, m.cfg)
	if err != nil {
		slog.WarnContext(ctx, "["+m.name+"] EnsureReady", "dial", err, "endpoint", m.cfg.Endpoint())
		return false
	}

	ch, err := conn.Channel()
	if err != nil {
		slog.WarnContext(ctx, "["+m.name+"] EnsureReady", "channel", err)
		_ = conn.Close()
		return false
	}

	if err := m.declare(ch, m.queue.Name); err != nil {
		slog.WarnContext(ctx, "["+m.name+"] EnsureReady", "queueDeclare", err, "queue", m.queue.Name)
		_ = ch.Close()
		_ = conn.Close()
		return false
	}

	m.conn, m.ch = conn, ch
	slog.InfoContext(ctx, "["+m.name+"] EnsureReady", "connected", m.cfg.Endpoint(), "queue", m.queue.Name)
	return true
}

// Connect calls EnsureReady according to the retry policy.
func (m *Manager) Connect(ctx context.Context) bool {
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		if m.EnsureReady(ctx) {
			return true
		}
		if m.policy.Bounded() && attempt >= m.policy.MaxAttempts {
			return false
		}
		if !Sleep(ctx, m.policy.Interval) {
			return false
		}
	}
}

// Do runs fn against the live channel while holding the manager lock.
func (m *Manager) Do(fn func(ch Channel) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ch == nil {
		return ErrNotReady
	}
	return fn(m.ch)
}

// Publish declares queue and sends msg to it through the default exchange.
// It returns ErrNotReady when there is no live channel.
func (m *Manager) Publish(ctx context.Context, queue string, msg amqp.Publishing) error {
	return m.Do(func(ch Channel) error {
		if err := m.declare(ch, queue); err != nil {
			return err
		}
		return ch.PublishWithContext(ctx, "", queue, false, false, msg)
	})
}

// Reset drops the current connection and channel so the next EnsureReady
// starts from scratch.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardown()
}

func (m *Manager) Close() {
	m.Reset()
}

func (m *Manager) healthy() bool {
	return m.conn != nil && !m.conn.IsClosed() && m.ch != nil && !m.ch.IsClosed()
}

func (m *Manager) teardown() {
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		_ = m.conn.Close()
	}
	m.ch, m.conn = nil, nil
}

// declare makes name a durable, non-exclusive, non-auto-delete queue. Only the
// configured queue gets dead-letter arguments.
func (m *Manager) declare(ch Channel, name string) error {
	var args = m.queue.arguments()
	if name != m.queue.Name {
		args = nil
	}

	if m.queue.DeadLetterQueue != "" && name == m.queue.Name {
		if _, err := ch.QueueDeclare(m.queue.DeadLetterQueue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", m.queue.DeadLetterQueue, err)
		}
	}

	if _, err := ch.QueueDeclare(name, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare %s: %w", name, err)
	}
	return nil
}

// Sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
