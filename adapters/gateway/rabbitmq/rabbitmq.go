package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

const (
	queueSize      = 16
	reconnectDelay = 5 * time.Second
)

var ErrQueueFull = errors.New("rabbitmq publish queue is full")

type RabbitMQConfig struct {
	ConnectionString string `yaml:"ConnectionString"`
	QueueName        string `yaml:"QueueName"`
}

type message struct {
	id   string
	at   time.Time
	body []byte
}

// session is an open connection with its declared publishing channel.
type session interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpSession struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (s *amqpSession) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return s.ch.Publish(exchange, key, mandatory, immediate, msg)
}

// Close closes the connection, which also closes its channel.
func (s *amqpSession) Close() error {
	return s.conn.Close()
}

// RabbitMQ queues alert batches and publishes them from a single goroutine.
type RabbitMQ struct {
	ConnectionString string
	QueueName        string
	msgs             chan message
	logger           zerolog.Logger
	sess             session
	dial             func() (session, error)
	retryDelay       time.Duration
}

func NewRabbitMQ(config RabbitMQConfig, logger zerolog.Logger) *RabbitMQ {
	r := &RabbitMQ{
		msgs:             make(chan message, queueSize),
		ConnectionString: config.ConnectionString,
		QueueName:        config.QueueName,
		logger:           logger.With().Str("component", "rabbitmq").Logger(),
		retryDelay:       reconnectDelay,
	}
	r.dial = r.dialAMQP
	return r
}

// SendAlerts never blocks: a full queue drops the batch.
func (r *RabbitMQ) SendAlerts(batch model.AlertBatch) error {
	var (
		msg []byte
		err error
	)

	msg, err = json.Marshal(batch)
	if err != nil {
		return errors.Join(err, errors.New("failed to marshal alert batch"))
	}
	select {
	case r.msgs <- message{id: batch.BatchID, at: batch.GeneratedAt, body: msg}:
		return nil
	default:
		return ErrQueueFull
	}
}

// dialAMQP opens a connection and channel and declares the queue.
// The connection is closed again when any step after the dial fails.
func (r *RabbitMQ) dialAMQP() (session, error) {
	conn, err := amqp.Dial(r.ConnectionString)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		r.QueueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &amqpSession{conn: conn, ch: ch}, nil
}

// connect closes the current session, if any, and establishes a new one
func (r *RabbitMQ) connect() error {
	if err := r.Close(); err != nil {
		r.logger.Debug().Err(err).Msg("closing previous connection")
	}
	r.sess = nil

	sess, err := r.dial()
	if err != nil {
		return err
	}
	r.sess = sess
	return nil
}

// reconnect retries until it succeeds or ctx is done.
func (r *RabbitMQ) reconnect(ctx context.Context) bool {
	for {
		r.logger.Info().Msg("Attempting to reconnect to RabbitMQ...")
		err := r.connect()
		if err == nil {
			r.logger.Info().Msg("Successfully reconnected to RabbitMQ...")
			return true
		}
		r.logger.Error().Err(err).Msg("Reconnect failed")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(r.retryDelay):
		}
	}
}

// Start connects and runs the publish loop until ctx is cancelled.
func (r *RabbitMQ) Start(ctx context.Context, wg *sync.WaitGroup) error {
	if err := r.connect(); err != nil {
		return errors.Join(err, errors.New("failed to connect to RabbitMQ"))
	}

	wg.Add(1)
	go r.publishLoop(ctx, wg)
	return nil
}

// Close gracefully shuts down the connection and channel
func (r *RabbitMQ) Close() error {
	if r.sess == nil {
		return nil
	}
	return r.sess.Close()
}

func (r *RabbitMQ) publishLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			if err := r.Close(); err != nil {
				r.logger.Error().Err(err).Msg("failed to close connection")
			}
			r.logger.Info().Msg("Received interrupt signal, closing connection")
			return
		case msg := <-r.msgs:
			if !r.deliver(ctx, msg) {
				return
			}
		}
	}
}

// deliver publishes msg. After a failure it reconnects and retries once.
// It returns false when ctx ended while reconnecting.
func (r *RabbitMQ) deliver(ctx context.Context, msg message) bool {
	err := r.publish(msg)
	if err == nil {
		return true
	}
	r.logger.Error().Err(err).Str("batch", msg.id).Msg("Failed to publish a message")
	if !r.reconnect(ctx) {
		return false
	}
	if err = r.publish(msg); err != nil {
		r.logger.Error().Err(err).Str("batch", msg.id).Msg("Retry failed, alert batch dropped")
	}
	return true
}

func (r *RabbitMQ) publish(msg message) error {
	if r.sess == nil {
		return errors.New("not connected to RabbitMQ")
	}
	return r.sess.Publish(
		"",          // Exchange
		r.QueueName, // Routing key (queue name)
		false,       // Mandatory
		false,       // Immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   msg.id,
			Timestamp:   msg.at,
			Body:        msg.body,
		},
	)
}
