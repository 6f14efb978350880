// Package notification реализует отправку уведомлений по принципу
// «попытаться, записать исход, никогда не распространять ошибку».
// Сообщения публикуются в очередь RabbitMQ и рассылаются отдельным
// сервисом-потребителем; сбой публикации не влияет на основную операцию.
package notification

import (
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// RoutingKey — ключ маршрутизации очереди уведомлений.
const RoutingKey = "notifications.send"

// Publisher публикует сообщение в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// AMQPPublisher — публикация через канал RabbitMQ.
type AMQPPublisher struct {
	ch *amqp.Channel
}

// NewAMQPPublisher создает публикатор поверх открытого канала.
func NewAMQPPublisher(ch *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

// Publish отправляет сообщение в exchange уведомлений.
func (p *AMQPPublisher) Publish(routingKey string, message any) error {
	return rabbitmq.Publish(p.ch, rabbitmq.Exchange, routingKey, message)
}

// Result — исход попытки уведомления. Вызывающая сторона может залогировать
// его, но не должна трактовать неуспех как ошибку основной операции.
type Result struct {
	Sent bool
	Err  error
}

// Service ставит уведомления в очередь на отправку.
type Service struct {
	pub Publisher
	log *slog.Logger
}

// New создает новый экземпляр Service.
func New(pub Publisher, log *slog.Logger) *Service {
	return &Service{pub: pub, log: log}
}

// Send публикует событие уведомления. Ошибка публикации логируется
// и возвращается только внутри Result.
func (s *Service) Send(event models.NotificationEvent) Result {
	if s.pub == nil {
		s.log.Warn("notification publisher is not configured",
			slog.String("type", event.Type))
		return Result{Sent: false}
	}
	if err := s.pub.Publish(RoutingKey, event); err != nil {
		s.log.Warn("failed to enqueue notification",
			slog.String("type", event.Type), sl.Err(err))
		return Result{Sent: false, Err: err}
	}
	s.log.Info("notification enqueued", slog.String("type", event.Type))
	return Result{Sent: true}
}
