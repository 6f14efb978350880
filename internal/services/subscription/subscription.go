// Package subscription содержит бизнес-логику жизненного цикла подписок:
// создание с немедленным выставлением платежа, активация после успешной
// верификации, отмена и чтение действующей подписки.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
	"github.com/magabrotheeeer/subscription-billing/internal/services/notification"
	"github.com/magabrotheeeer/subscription-billing/internal/services/payment"
)

// Repository определяет методы хранилища для работы с подписками.
type Repository interface {
	// GetPlan возвращает тарифный план по ID.
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	// CreateSubscription вставляет подписку в статусе PENDING.
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	// GetSubscription возвращает подписку по ID.
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	// ActivateSubscription выставляет ACTIVE и период действия.
	ActivateSubscription(ctx context.Context, id string, startDate, endDate time.Time) (int, error)
	// CancelSubscription выставляет CANCELLED и снимает автопродление.
	CancelSubscription(ctx context.Context, id string) (int, error)
	// GetActiveSubscription возвращает действующую подписку пользователя.
	GetActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error)
}

// PaymentCreator создает платёж по подписке.
type PaymentCreator interface {
	Create(ctx context.Context, subscriptionID, gatewayName string, contact payment.Contact) (*models.Payment, error)
}

// Dispatcher рассылает событие на вебхуки пользователя.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID, eventType string, payload any)
}

// Notifier ставит уведомление в очередь, не возвращая ошибку наружу.
type Notifier interface {
	Send(event models.NotificationEvent) notification.Result
}

// Service реализует жизненный цикл подписки.
type Service struct {
	repo     Repository
	payments PaymentCreator
	webhooks Dispatcher
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, payments PaymentCreator, webhooks Dispatcher, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		payments: payments,
		webhooks: webhooks,
		notifier: notifier,
		log:      log,
	}
}

// Create создает подписку в статусе PENDING и сразу выставляет платёж
// по цене плана. Ошибка создания платежа возвращается вызывающему,
// подписка при этом остаётся PENDING без платежа; повторная попытка
// оплаты выполняется отдельным запросом на создание платежа.
func (s *Service) Create(ctx context.Context, req models.DummySubscription) (*models.Subscription, *models.Payment, error) {
	plan, err := s.repo.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, nil, err
	}
	if !plan.IsActive {
		return nil, nil, apperr.NewValidation("plan %s is not available for new subscriptions", plan.ID)
	}

	sub := models.Subscription{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusPending,
		AutoRenew: req.AutoRenew,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, nil, err
	}
	s.log.Info("subscription created",
		slog.String("subscription_id", sub.ID),
		slog.String("plan_id", plan.ID))

	paymentRow, err := s.payments.Create(ctx, sub.ID, req.Gateway, payment.Contact{
		Email: req.UserEmail,
		Phone: req.UserPhone,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("subscription %s is created but payment failed: %w", sub.ID, err)
	}

	return &sub, paymentRow, nil
}

// Activate активирует подписку после успешной верификации платежа:
// начало — текущий момент, окончание — начало плюс длительность плана.
// Уведомление и вебхук отправляются по возможности; активация считается
// успешной сразу после записи в базу.
func (s *Service) Activate(ctx context.Context, subscriptionID string, contact payment.Contact) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	startDate := time.Now().UTC()
	endDate := startDate.AddDate(0, 0, plan.DurationDays)

	updated, err := s.repo.ActivateSubscription(ctx, sub.ID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		return nil, apperr.NewNotFound("subscription", sub.ID)
	}

	sub.Status = models.SubscriptionStatusActive
	sub.StartDate = &startDate
	sub.EndDate = &endDate

	s.log.Info("subscription activated",
		slog.String("subscription_id", sub.ID),
		slog.String("user_id", sub.UserID),
		slog.Time("end_date", endDate))

	res := s.notifier.Send(models.NotificationEvent{
		Type:    models.EventSubscriptionActivated,
		Phone:   contact.Phone,
		Email:   contact.Email,
		Subject: "Подписка активирована",
		Body: fmt.Sprintf("Подписка на тариф %s активна до %s.",
			plan.Name, endDate.Format("02-01-2006")),
	})
	if res.Err != nil {
		s.log.Warn("activation notification was not sent", sl.Err(res.Err))
	}

	// Доставка вебхуков с повторными попытками не должна задерживать
	// ответ на верификацию платежа.
	go s.webhooks.Dispatch(context.WithoutCancel(ctx), sub.UserID, models.EventSubscriptionActivated, models.SubscriptionActivatedEvent{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		PlanID:         sub.PlanID,
		StartDate:      startDate.Format(time.RFC3339),
		EndDate:        endDate.Format(time.RFC3339),
	})

	return sub, nil
}

// Cancel отменяет подписку: статус CANCELLED, автопродление снято.
// Дата окончания не изменяется, доступ истекает по ней.
func (s *Service) Cancel(ctx context.Context, subscriptionID string) error {
	updated, err := s.repo.CancelSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if updated == 0 {
		return apperr.NewNotFound("subscription", subscriptionID)
	}
	s.log.Info("subscription cancelled", slog.String("subscription_id", subscriptionID))
	return nil
}

// Get возвращает подписку по ID.
func (s *Service) Get(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	return s.repo.GetSubscription(ctx, subscriptionID)
}

// GetActive возвращает действующую подписку пользователя:
// статус ACTIVE и дата окончания не раньше текущего момента.
func (s *Service) GetActive(ctx context.Context, userID string) (*models.Subscription, error) {
	return s.repo.GetActiveSubscription(ctx, userID, time.Now().UTC())
}
