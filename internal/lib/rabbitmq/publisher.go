package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

// Publisher часть amqp.Channel, нужная для публикации.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishMessage публикует сообщение в JSON с persistent-доставкой.
func PublishMessage(ch Publisher, exchange string, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// JobQueue отправляет задания на рассылку уведомлений об обновлении курса.
type JobQueue struct {
	ch         Publisher
	exchange   string
	routingKey string
}

// NewJobQueue создает очередь заданий поверх канала.
func NewJobQueue(ch Publisher, exchange, routingKey string) *JobQueue {
	return &JobQueue{ch: ch, exchange: exchange, routingKey: routingKey}
}

// Submit ставит задание в очередь.
func (q *JobQueue) Submit(ctx context.Context, job models.CourseUpdatedJob) error {
	const op = "rabbitmq.Submit"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := PublishMessage(q.ch, q.exchange, q.routingKey, job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
