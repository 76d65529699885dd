package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"resume-tailor/internal/shared/telemetry"
)

var errPublisherClosed = errors.New("amqp publisher is closed")

type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpSession is one connection and channel. closed fires when the broker
// drops either of them.
type amqpSession struct {
	conn   io.Closer
	ch     amqpChannel
	closed <-chan *amqp.Error
}

func (s *amqpSession) alive() bool {
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}

func (s *amqpSession) close() error {
	return errors.Join(s.ch.Close(), s.conn.Close())
}

// AMQPPublisher publishes events to a durable topic exchange. A dropped
// connection is redialed on the next Publish.
type AMQPPublisher struct {
	mu       sync.Mutex
	url      string
	exchange string
	dial     func(url, exchange string) (*amqpSession, error)
	sess     *amqpSession
	closed   bool
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url is required")
	}
	if exchange = strings.TrimSpace(exchange); exchange == "" {
		return nil, errors.New("amqp exchange is required")
	}
	p := &AMQPPublisher{url: url, exchange: exchange, dial: dialSession}
	if err := p.connect(); err != nil {
		return nil, err
	}
	telemetry.Info("events.amqp_connected", map[string]any{"exchange": exchange})
	return p, nil
}

func dialSession(url, exchange string) (*amqpSession, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	closed := make(chan *amqp.Error, 2)
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		select {
		case err := <-connClosed:
			closed <- err
		case err := <-chClosed:
			closed <- err
		}
		close(closed)
	}()
	return &amqpSession{conn: conn, ch: ch, closed: closed}, nil
}

// connect replaces a dead session. Callers hold mu.
func (p *AMQPPublisher) connect() error {
	if p.closed {
		return errPublisherClosed
	}
	if p.sess != nil {
		if p.sess.alive() {
			return nil
		}
		_ = p.sess.close()
		p.sess = nil
	}
	sess, err := p.dial(p.url, p.exchange)
	if err != nil {
		return err
	}
	p.sess = sess
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := publishing(e)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	err = p.sess.ch.Publish(p.exchange, e.Type, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		telemetry.Warn("events.amqp_reconnect", map[string]any{"exchange": p.exchange, "error": err})
		_ = p.sess.close()
		p.sess = nil
		if err = p.connect(); err == nil {
			err = p.sess.ch.Publish(p.exchange, e.Type, false, false, msg)
		}
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Close releases the channel and connection. Later publishes fail.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.sess == nil {
		return nil
	}
	err := p.sess.close()
	p.sess = nil
	return err
}

func publishing(e Event) (amqp.Publishing, error) {
	if strings.TrimSpace(e.Type) == "" {
		return amqp.Publishing{}, errors.New("event type is required")
	}
	body, err := Encode(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	}, nil
}
