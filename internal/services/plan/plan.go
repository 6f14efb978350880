// Package plan содержит бизнес-логику тарифных планов: создание,
// чтение списка действующих планов с кешированием и управление
// доступностью плана для новых подписок.
package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/cache"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Ключ и время жизни кеша списка действующих планов. Список меняется
// редко, при изменениях кеш инвалидируется явно.
const (
	activePlansCacheKey = "plans:active"
	activePlansCacheTTL = 5 * time.Minute
)

// Repository определяет методы хранилища для работы с планами.
type Repository interface {
	// CreatePlan вставляет новый план.
	CreatePlan(ctx context.Context, plan models.Plan) error
	// GetPlan возвращает план по ID.
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	// ListActivePlans возвращает действующие планы.
	ListActivePlans(ctx context.Context) ([]*models.Plan, error)
	// SetPlanActive переключает доступность плана.
	SetPlanActive(ctx context.Context, id string, isActive bool) (int, error)
}

// Service реализует операции над тарифными планами.
type Service struct {
	repo  Repository
	cache *cache.Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service. Кеш может быть nil,
// тогда чтение всегда идёт в базу.
func New(repo Repository, c *cache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, log: log}
}

// Create создает тарифный план. Цена и длительность плана после
// создания не меняются, управляется только признак доступности.
func (s *Service) Create(ctx context.Context, req models.DummyPlan) (*models.Plan, error) {
	plan := models.Plan{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Price:        req.Price,
		Currency:     req.Currency,
		DurationDays: req.DurationDays,
		IsActive:     true,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	s.invalidateCache()

	s.log.Info("plan created",
		slog.String("plan_id", plan.ID), slog.String("name", plan.Name))
	return &plan, nil
}

// Get возвращает план по ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

// ListActive возвращает действующие планы. Список кешируется,
// сбой кеша не мешает чтению из базы.
func (s *Service) ListActive(ctx context.Context) ([]*models.Plan, error) {
	if s.cache != nil {
		var cached []*models.Plan
		found, err := s.cache.Get(activePlansCacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read plans from cache", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(activePlansCacheKey, plans, activePlansCacheTTL); err != nil {
			s.log.Warn("failed to cache plans", sl.Err(err))
		}
	}
	return plans, nil
}

// SetActive переключает доступность плана для новых подписок.
// Существующие подписки на план продолжают действовать.
func (s *Service) SetActive(ctx context.Context, id string, isActive bool) error {
	updated, err := s.repo.SetPlanActive(ctx, id, isActive)
	if err != nil {
		return err
	}
	if updated == 0 {
		return apperr.NewNotFound("plan", id)
	}
	s.invalidateCache()

	s.log.Info("plan availability changed",
		slog.String("plan_id", id), slog.Bool("is_active", isActive))
	return nil
}

func (s *Service) invalidateCache() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(activePlansCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", sl.Err(err))
	}
}
