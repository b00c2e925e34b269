package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/stagebook/internal/queue"
)

// AMQPSender publishes messages as queue.EmailJob to a durable RabbitMQ
// queue.  A connection is opened per message; volume is a handful of
// mails per workflow call.
type AMQPSender struct {
	URL   string
	Queue string
	From  string

	publish func(ctx context.Context, pub amqp.Publishing) error
	now     func() time.Time
}

// NewAMQPSender returns a sender for the given broker and queue.
func NewAMQPSender(url, queueName, from string) *AMQPSender {
	s := &AMQPSender{URL: url, Queue: queueName, From: from, now: time.Now}
	s.publish = s.dialAndPublish
	return s
}

// Send publishes msg as a persistent JSON message.
func (s *AMQPSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.validate(); err != nil {
		return Receipt{}, err
	}
	id := uuid.NewString()
	body, err := json.Marshal(queue.EmailJob{
		MessageID: id,
		From:      s.From,
		To:        msg.To,
		Subject:   msg.Subject,
		HTML:      msg.HTML,
		Text:      msg.Text,
		Kind:      msg.Kind,
		QueuedAt:  s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal email job: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    id,
		Timestamp:    s.now().UTC(),
		Body:         body,
	}
	if err := s.publish(ctx, pub); err != nil {
		return Receipt{}, err
	}
	return Receipt{OK: true, ID: id}, nil
}

func (s *AMQPSender) dialAndPublish(ctx context.Context, pub amqp.Publishing) error {
	conn, err := amqp.Dial(s.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(s.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: queue declare: %w", err)
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		s.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}
