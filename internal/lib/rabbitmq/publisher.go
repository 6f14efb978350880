package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publish сериализует сообщение в JSON и публикует его в exchange
// с устойчивым режимом доставки, чтобы события уведомлений переживали
// перезапуск брокера.
func Publish(ch *amqp.Channel, exchange, routingKey string, message any) error {
	const op = "rabbitmq.Publish"

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
