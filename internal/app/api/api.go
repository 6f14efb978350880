// Package api собирает HTTP-сервис биллинга: хранилище, кеш, брокер
// уведомлений, платёжные шлюзы и маршруты.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-billing/internal/cache"
	"github.com/magabrotheeeer/subscription-billing/internal/config"
	"github.com/magabrotheeeer/subscription-billing/internal/gateway"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/migrations"
	"github.com/magabrotheeeer/subscription-billing/internal/ratelimit"
	"github.com/magabrotheeeer/subscription-billing/internal/storage/repository"

	apikeyservice "github.com/magabrotheeeer/subscription-billing/internal/services/apikey"
	authservice "github.com/magabrotheeeer/subscription-billing/internal/services/auth"
	notificationservice "github.com/magabrotheeeer/subscription-billing/internal/services/notification"
	paymentservice "github.com/magabrotheeeer/subscription-billing/internal/services/payment"
	planservice "github.com/magabrotheeeer/subscription-billing/internal/services/plan"
	subscriptionservice "github.com/magabrotheeeer/subscription-billing/internal/services/subscription"
	webhookservice "github.com/magabrotheeeer/subscription-billing/internal/services/webhook"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
	amqpCh *amqp.Channel
}

// New собирает приложение из конфигурации: подключает базу, применяет
// миграции, подключает Redis и RabbitMQ, регистрирует шлюзы и маршруты.
// Redis и RabbitMQ необязательны: без них кеш и уведомления отключаются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	var cacheRedis *cache.Cache
	var limiterStore ratelimit.Store = ratelimit.NewMemoryStore(nil)
	if cfg.RedisConnection.AddressRedis != "" {
		cacheRedis, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		limiterStore = ratelimit.NewRedisStore(cacheRedis.Db)
	}

	var amqpConn *amqp.Connection
	var amqpCh *amqp.Channel
	var publisher notificationservice.Publisher
	if cfg.RabbitMQ.ConnectionString != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQ.ConnectionString,
			cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.ConnectDelay)
		if err != nil {
			return nil, err
		}
		amqpCh, err = rabbitmq.SetupChannel(amqpConn, []rabbitmq.QueueConfig{
			{QueueName: "notifications_queue", RoutingKey: notificationservice.RoutingKey},
		})
		if err != nil {
			amqpConn.Close()
			return nil, err
		}
		publisher = notificationservice.NewAMQPPublisher(amqpCh)
	} else {
		logger.Warn("rabbitmq is not configured, notifications are disabled")
	}

	registry := buildGatewayRegistry(cfg.Gateways, logger)

	notifier := notificationservice.New(publisher, logger)
	webhooks := webhookservice.New(db, logger)
	payments := paymentservice.New(db, registry, notifier,
		cfg.Gateways.CallbackURL, cfg.Gateways.DefaultGateway, logger)
	subscriptions := subscriptionservice.New(db, payments, webhooks, notifier, logger)
	plans := planservice.New(db, cacheRedis, logger)
	keys := apikeyservice.New(db, logger)

	otpLimiter := ratelimit.New(limiterStore, cfg.OTP.RateMax, cfg.OTP.RateWindow)
	auth := authservice.New(db, otpLimiter, keys, notifier, cfg.OTP, nil, logger)

	httpLimiter := rate.NewLimiter(rate.Limit(50), 100)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:          auth,
		Plans:         plans,
		Subscriptions: subscriptions,
		Payments:      payments,
		Webhooks:      webhooks,
		Keys:          keys,
		Users:         db,
		Health:        db,
	}, cfg, httpLimiter)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
		amqpCh: amqpCh,
	}, nil
}

// buildGatewayRegistry регистрирует платёжные шлюзы, на которые есть
// учётные данные в конфигурации.
func buildGatewayRegistry(cfg config.Gateways, logger *slog.Logger) *gateway.Registry {
	var gateways []gateway.Gateway
	if cfg.ZarinpalMerchant != "" {
		gateways = append(gateways, gateway.NewZarinpalGateway(cfg.ZarinpalMerchant, cfg.ZarinpalSandbox))
	}
	if cfg.IDPayAPIKey != "" {
		gateways = append(gateways, gateway.NewIDPayGateway(cfg.IDPayAPIKey, cfg.IDPaySandbox))
	}
	if cfg.EnableMockGateway || len(gateways) == 0 {
		logger.Warn("mock payment gateway is enabled")
		gateways = append(gateways, gateway.NewMockGateway(nil))
	}
	return gateway.NewRegistry(gateways...)
}

// Run запускает HTTP-сервер и ждёт отмены контекста для мягкой остановки.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.amqpCh != nil {
			if cerr := a.amqpCh.Close(); cerr != nil {
				a.logger.Error("failed to close amqp channel", sl.Err(cerr))
			}
		}
		if a.amqp != nil {
			if cerr := a.amqp.Close(); cerr != nil {
				a.logger.Error("failed to close amqp connection", sl.Err(cerr))
			}
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close database", sl.Err(cerr))
		}
		return err
	}
}
