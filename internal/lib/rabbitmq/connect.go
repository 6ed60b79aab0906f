// Package rabbitmq содержит подключение к RabbitMQ, объявление топологии,
// публикацию заданий и конкурентного потребителя очереди.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Topology описывает exchange и очередь заданий.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
	Prefetch   int
}

// Connect подключается к брокеру, повторяя попытки retries раз с паузой delay.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	if retries < 1 {
		retries = 1
	}
	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет durable direct exchange, очередь и привязку.
func SetupChannel(conn *amqp.Connection, t Topology) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if t.Prefetch > 0 {
		if err := ch.Qos(t.Prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("%s: set qos: %w", op, err)
		}
	}

	if err = ch.ExchangeDeclare(t.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = ch.QueueDeclare(t.Queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, t.Queue, err)
	}
	if err = ch.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, t.Queue, t.RoutingKey, err)
	}
	return ch, nil
}
