package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/logger"
)

// amqpChannel is the subset of *amqp.Channel the queue uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// AMQPQueue maps each topic to a durable RabbitMQ queue on the default
// exchange. Payloads are JSON encoded; subscribers receive the raw body.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   amqpChannel
	log  *zap.Logger

	// amqp channels are not safe for concurrent publishing
	mu       sync.Mutex
	declared map[string]bool
}

// DialAMQP connects to the broker and opens one channel.
func DialAMQP(url string, log *zap.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	q := newAMQPQueue(ch, log)
	q.conn = conn
	return q, nil
}

func newAMQPQueue(ch amqpChannel, log *zap.Logger) *AMQPQueue {
	return &AMQPQueue{
		ch:       ch,
		log:      logger.OrNop(log),
		declared: map[string]bool{},
	}
}

func (q *AMQPQueue) declare(topic string) error {
	if q.declared[topic] {
		return nil
	}
	_, err := q.ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	q.declared[topic] = true
	return nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.declare(topic); err != nil {
		return err
	}
	return q.ch.Publish(
		"",    // default exchange
		topic, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Subscribe consumes the topic's queue with manual acks. A delivery whose
// handler fails is requeued once and dropped on the second failure.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	err := q.declare(topic)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer for %s: %w", topic, err)
	}

	go func() {
		for d := range msgs {
			q.handleDelivery(topic, d, handler)
		}
		q.log.Info("consumer channel closed", zap.String("topic", topic))
	}()
	return nil
}

func (q *AMQPQueue) handleDelivery(topic string, d amqp.Delivery, handler func(payload any) error) {
	if err := handler(d.Body); err != nil {
		requeue := !d.Redelivered
		q.log.Warn("failed to handle delivery",
			zap.String("topic", topic),
			zap.String("message_id", d.MessageId),
			zap.Bool("requeue", requeue),
			zap.Error(err))
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			q.log.Error("nack failed", zap.Error(nackErr))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		q.log.Error("ack failed", zap.Error(err))
	}
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	err := q.ch.Close()
	if q.conn != nil {
		if cerr := q.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
