// Package payment реализует бизнес-логику платежей: создание платежа
// через выбранный шлюз и идемпотентную верификацию со сменой статуса.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/gateway"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/metrics"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
	"github.com/magabrotheeeer/subscription-billing/internal/services/notification"
)

// Repository определяет методы хранилища, нужные платёжному сервису.
type Repository interface {
	// GetSubscription возвращает подписку по ID.
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	// GetPlan возвращает тарифный план по ID.
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	// CreatePayment вставляет новый платёж в статусе PENDING.
	CreatePayment(ctx context.Context, payment models.Payment) error
	// GetPaymentByAuthority возвращает платёж по authority.
	GetPaymentByAuthority(ctx context.Context, authority string) (*models.Payment, error)
	// ListPaymentsBySubscription возвращает платежи подписки.
	ListPaymentsBySubscription(ctx context.Context, subscriptionID string) ([]*models.Payment, error)
	// CompletePayment условно переводит платёж из PENDING в COMPLETED.
	CompletePayment(ctx context.Context, id, gatewayTxID string, paidAt, verifiedAt time.Time, metadata map[string]any) (int, error)
	// FailPayment условно переводит платёж из PENDING в FAILED.
	FailPayment(ctx context.Context, id string) (int, error)
}

// Notifier ставит уведомление в очередь, не возвращая ошибку наружу.
type Notifier interface {
	Send(event models.NotificationEvent) notification.Result
}

// Contact — контактные данные плательщика для шлюза и уведомлений.
type Contact struct {
	Email string
	Phone string
}

// Service реализует создание и верификацию платежей.
type Service struct {
	repo        Repository
	registry    *gateway.Registry
	notifier    Notifier
	callbackURL string
	defaultGW   string
	log         *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, registry *gateway.Registry, notifier Notifier, callbackURL, defaultGateway string, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		registry:    registry,
		notifier:    notifier,
		callbackURL: callbackURL,
		defaultGW:   defaultGateway,
		log:         log,
	}
}

// Create создает платёж по существующей подписке: загружает план ради
// цены и валюты, вызывает шлюз и сохраняет PENDING-платёж с authority.
// Уведомление отправляется по возможности и не влияет на результат.
func (s *Service) Create(ctx context.Context, subscriptionID, gatewayName string, contact Contact) (*models.Payment, error) {
	const op = "payment.Create"

	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	if gatewayName == "" {
		gatewayName = s.defaultGW
	}
	gw, err := s.registry.Resolve(gatewayName)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Оплата тарифа %s", plan.Name)
	result, err := gw.CreatePayment(ctx, gateway.CreateRequest{
		Amount:      plan.Price,
		Description: description,
		CallbackURL: s.callbackURL,
		Email:       contact.Email,
		Mobile:      contact.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paymentRow := models.Payment{
		ID:             uuid.New().String(),
		SubscriptionID: sub.ID,
		Amount:         plan.Price,
		Currency:       plan.Currency,
		Gateway:        gw.Name(),
		Authority:      result.Authority,
		PaymentURL:     result.PaymentURL,
		Status:         models.PaymentStatusPending,
		Metadata: map[string]any{
			"description": description,
		},
	}
	if result.Message != "" {
		paymentRow.Metadata["gateway_message"] = result.Message
	}
	if err := s.repo.CreatePayment(ctx, paymentRow); err != nil {
		return nil, err
	}
	metrics.PaymentsCreated.WithLabelValues(gw.Name()).Inc()
	s.log.Info("payment created",
		slog.String("payment_id", paymentRow.ID),
		slog.String("gateway", gw.Name()),
		slog.String("authority", result.Authority))

	res := s.notifier.Send(models.NotificationEvent{
		Type:    models.EventPaymentCreated,
		Phone:   contact.Phone,
		Email:   contact.Email,
		Subject: "Ссылка на оплату",
		Body:    fmt.Sprintf("Для оплаты тарифа %s перейдите по ссылке: %s", plan.Name, result.PaymentURL),
	})
	if res.Err != nil {
		s.log.Warn("payment notification was not sent", sl.Err(res.Err))
	}

	return &paymentRow, nil
}

// cancelledStatus определяет, сообщил ли колбэк шлюза о явной отмене
// или неуспехе оплаты.
func cancelledStatus(status string) bool {
	switch strings.ToUpper(status) {
	case "NOK", "FAILED", "CANCELED", "CANCELLED":
		return true
	}
	return false
}

// Verify выполняет идемпотентную верификацию платежа по authority.
//
// Уже завершённый платёж возвращается как есть без обращения к шлюзу.
// Явная отмена из колбэка переводит платёж в FAILED без вызова шлюза.
// Отказ шлюза при верификации также переводит платёж в FAILED, и ошибка
// возвращается вызывающему: политика повторов принадлежит клиенту.
func (s *Service) Verify(ctx context.Context, authority, status string) (*models.Payment, error) {
	const op = "payment.Verify"

	paymentRow, err := s.repo.GetPaymentByAuthority(ctx, authority)
	if err != nil {
		return nil, err
	}

	if cancelledStatus(status) {
		if paymentRow.Status == models.PaymentStatusPending {
			if _, err := s.repo.FailPayment(ctx, paymentRow.ID); err != nil {
				return nil, err
			}
		}
		metrics.PaymentsVerified.WithLabelValues(paymentRow.Gateway, "cancelled").Inc()
		return nil, apperr.NewGateway(paymentRow.Gateway, status, "payment was cancelled or rejected at the gateway")
	}

	if paymentRow.Status == models.PaymentStatusCompleted {
		return paymentRow, nil
	}
	if paymentRow.Status == models.PaymentStatusFailed {
		return nil, apperr.NewValidation("payment %s is already failed, create a new payment to retry", paymentRow.ID)
	}

	gw, err := s.registry.Resolve(paymentRow.Gateway)
	if err != nil {
		return nil, err
	}

	result, err := gw.VerifyPayment(ctx, paymentRow.Authority, paymentRow.Amount)
	if err != nil {
		if _, failErr := s.repo.FailPayment(ctx, paymentRow.ID); failErr != nil {
			s.log.Error("failed to mark payment as failed", sl.Err(failErr))
		}
		metrics.PaymentsVerified.WithLabelValues(paymentRow.Gateway, "failed").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metadata := make(map[string]any, len(paymentRow.Metadata)+4)
	for k, v := range paymentRow.Metadata {
		metadata[k] = v
	}
	metadata["ref_id"] = result.RefID
	if result.CardPan != "" {
		metadata["card_pan"] = result.CardPan
	}
	if result.CardHash != "" {
		metadata["card_hash"] = result.CardHash
	}
	if result.FeeType != "" {
		metadata["fee_type"] = result.FeeType
		metadata["fee"] = result.Fee
	}

	now := time.Now().UTC()
	updated, err := s.repo.CompletePayment(ctx, paymentRow.ID, result.RefID, now, now, metadata)
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		// Параллельная верификация успела первой, возвращаем её результат.
		return s.repo.GetPaymentByAuthority(ctx, authority)
	}

	metrics.PaymentsVerified.WithLabelValues(paymentRow.Gateway, "completed").Inc()
	s.log.Info("payment verified",
		slog.String("payment_id", paymentRow.ID),
		slog.String("ref_id", result.RefID))

	paymentRow.Status = models.PaymentStatusCompleted
	paymentRow.GatewayTxID = result.RefID
	paymentRow.PaidAt = &now
	paymentRow.VerifiedAt = &now
	paymentRow.Metadata = metadata
	return paymentRow, nil
}

// GetByAuthority возвращает платёж по authority без побочных эффектов.
func (s *Service) GetByAuthority(ctx context.Context, authority string) (*models.Payment, error) {
	return s.repo.GetPaymentByAuthority(ctx, authority)
}

// ListBySubscription возвращает платежи подписки без побочных эффектов.
func (s *Service) ListBySubscription(ctx context.Context, subscriptionID string) ([]*models.Payment, error) {
	return s.repo.ListPaymentsBySubscription(ctx, subscriptionID)
}
