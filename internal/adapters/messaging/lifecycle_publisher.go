package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

var _ ports.LifecycleEventPublisher = (*RabbitMQBroker)(nil)

// PublishStatusChanged sends evt to the lifecycle queue as a persistent JSON
// message. The AMQP type header carries "<entity>.status_changed".
func (rmq *RabbitMQBroker) PublishStatusChanged(ctx context.Context, evt ports.StatusChangedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	// Respect context deadline
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Type:         evt.Type(),
				Timestamp:    evt.OccurredAt,
				Body:         body,
			},
		)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("publish %s %s: %w", evt.Entity, evt.EntityID, err)
	}

	rmq.logger.Debug("status change published",
		zap.String("entity", string(evt.Entity)),
		zap.String("entity_id", evt.EntityID),
		zap.String("to", evt.To),
	)
	return nil
}
