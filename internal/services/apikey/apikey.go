// Package apikey реализует выпуск, проверку, отзыв и ротацию ключей API.
// В базе хранятся только bcrypt-хэши; открытое значение ключа
// возвращается клиенту ровно один раз при выпуске.
package apikey

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/secret"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Repository определяет методы хранилища для работы с ключами API.
type Repository interface {
	// CreateAPIKey вставляет новый ключ.
	CreateAPIKey(ctx context.Context, key models.APIKey) error
	// ListActiveAPIKeys возвращает все действующие ключи.
	ListActiveAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	// DeactivateAPIKey отзывает ключ.
	DeactivateAPIKey(ctx context.Context, id string) (int, error)
	// TouchAPIKey обновляет момент последнего использования.
	TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error
}

// Service реализует операции над ключами API.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Issue выпускает новый ключ. Возвращает запись и открытое значение,
// которое больше нигде не будет доступно.
func (s *Service) Issue(ctx context.Context, label string, userID *string) (*models.APIKey, string, error) {
	plaintext, err := secret.NewKey()
	if err != nil {
		return nil, "", err
	}
	hash, err := secret.GetHash(plaintext)
	if err != nil {
		return nil, "", err
	}

	key := models.APIKey{
		ID:       uuid.New().String(),
		Hash:     hash,
		Label:    label,
		UserID:   userID,
		IsActive: true,
	}
	if err := s.repo.CreateAPIKey(ctx, key); err != nil {
		return nil, "", err
	}
	s.log.Info("api key issued", slog.String("key_id", key.ID), slog.String("label", label))
	return &key, plaintext, nil
}

// Verify проверяет предъявленный ключ по действующим записям.
// При совпадении лучшим образом обновляет last_used_at и возвращает запись,
// иначе — UnauthorizedError.
func (s *Service) Verify(ctx context.Context, presented string) (*models.APIKey, error) {
	keys, err := s.repo.ListActiveAPIKeys(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if secret.CompareHash(key.Hash, presented) == nil {
			if err := s.repo.TouchAPIKey(ctx, key.ID, time.Now().UTC()); err != nil {
				s.log.Warn("failed to update api key last_used_at", sl.Err(err))
			}
			return key, nil
		}
	}
	return nil, apperr.NewUnauthorized("invalid api key")
}

// Revoke отзывает ключ. Запись остаётся в базе с is_active = false.
func (s *Service) Revoke(ctx context.Context, id string) error {
	updated, err := s.repo.DeactivateAPIKey(ctx, id)
	if err != nil {
		return err
	}
	if updated == 0 {
		return apperr.NewNotFound("api key", id)
	}
	s.log.Info("api key revoked", slog.String("key_id", id))
	return nil
}

// Rotate отзывает ключ и выпускает новый с той же меткой и владельцем.
func (s *Service) Rotate(ctx context.Context, id string) (*models.APIKey, string, error) {
	keys, err := s.repo.ListActiveAPIKeys(ctx)
	if err != nil {
		return nil, "", err
	}
	var current *models.APIKey
	for _, key := range keys {
		if key.ID == id {
			current = key
			break
		}
	}
	if current == nil {
		return nil, "", apperr.NewNotFound("api key", id)
	}
	if err := s.Revoke(ctx, id); err != nil {
		return nil, "", err
	}
	return s.Issue(ctx, current.Label, current.UserID)
}
