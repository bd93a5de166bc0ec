package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes checkout events to a RabbitMQ queue.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func NewAMQPNotifier(url, queue string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	return &AMQPNotifier{conn: conn, channel: ch, queue: queue}, nil
}

func (n *AMQPNotifier) CheckoutInitiated(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = n.channel.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish to %q: %w", n.queue, err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	if err := n.channel.Close(); err != nil {
		n.conn.Close()
		return err
	}
	return n.conn.Close()
}
