package rabbitmq

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultDialTimeout applies when Config.DialTimeout is unset.
const DefaultDialTimeout = 2 * time.Second

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// DialTimeout bounds the TCP connect and the AMQP handshake together.
	DialTimeout time.Duration
}

// URL builds the amqp:// address for the default vhost.
func (c Config) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/",
	}
	return u.String()
}

// Endpoint is the host:port pair, safe to log.
func (c Config) Endpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// QueueSpec describes the durable queue a manager declares after every
// (re)connect. DeadLetterQueue is optional.
type QueueSpec struct {
	Name            string
	DeadLetterQueue string
}

func (q QueueSpec) arguments() amqp.Table {
	if q.DeadLetterQueue == "" {
		return nil
	}
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": q.DeadLetterQueue,
	}
}

// Connection is the part of *amqp.Connection the manager relies on.
type Connection interface {
	Channel() (Channel, error)
	IsClosed() bool
	Close() error
}

// Channel is the part of *amqp.Channel used by the publisher and consumer.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type Dialer func(ctx context.Context, cfg Config) (Connection, error)

type amqpConnection struct {
	*amqp.Connection
}

func (c *amqpConnection) Channel() (Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Dial opens a real broker connection. The attempt gives up at the earlier
// of cfg.DialTimeout and the ctx deadline.
func Dial(ctx context.Context, cfg Config) (Connection, error) {
	conn, err := amqp.DialConfig(cfg.URL(), amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      dialContext(ctx, cfg.DialTimeout),
	})
	if err != nil {
		return nil, err
	}
	return &amqpConnection{conn}, nil
}

// dialContext sets a deadline on the socket for the handshake. amqp091 clears
// it once the connection is open, so ctx does not outlive the dial.
func dialContext(ctx context.Context, timeout time.Duration) func(network, addr string) (net.Conn, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}

		dialer := net.Dialer{Deadline: deadline}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
