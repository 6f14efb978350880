package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-billing/internal/config"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/apikey/apikeyissue"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/apikey/apikeyrevoke"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/apikey/apikeyrotate"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/auth/requestotp"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/auth/verifyotp"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/payment/paymentcallback"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/payment/paymentread"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/payment/paymentverify"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/plan/plancreate"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/plan/planlist"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/plan/planupdate"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/subscription/active"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/webhook/webhooklist"
	"github.com/magabrotheeeer/subscription-billing/internal/http/handlers/webhook/webhookregister"
	"github.com/magabrotheeeer/subscription-billing/internal/http/middlewarectx"

	apikeyservice "github.com/magabrotheeeer/subscription-billing/internal/services/apikey"
	authservice "github.com/magabrotheeeer/subscription-billing/internal/services/auth"
	paymentservice "github.com/magabrotheeeer/subscription-billing/internal/services/payment"
	planservice "github.com/magabrotheeeer/subscription-billing/internal/services/plan"
	subscriptionservice "github.com/magabrotheeeer/subscription-billing/internal/services/subscription"
	webhookservice "github.com/magabrotheeeer/subscription-billing/internal/services/webhook"
)

// Services — собранные сервисы приложения для регистрации маршрутов.
type Services struct {
	Auth          *authservice.Service
	Plans         *planservice.Service
	Subscriptions *subscriptionservice.Service
	Payments      *paymentservice.Service
	Webhooks      *webhookservice.Dispatcher
	Keys          *apikeyservice.Service
	Users         paymentverify.UserReader
	Health        health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services, cfg *config.Config, httpLimiter *rate.Limiter) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(middlewarectx.RateLimitMiddleware(httpLimiter, logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, s.Health).ServeHTTP)
		r.Get("/plans", planlist.New(logger, s.Plans).ServeHTTP)
		r.Post("/auth/otp/request", requestotp.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/otp/verify", verifyotp.New(logger, s.Auth).ServeHTTP)

		// Колбэк и верификация вызываются шлюзом и фронтендом без ключа
		r.Get("/payments/callback", paymentcallback.New(logger, cfg.FrontendURL).ServeHTTP)
		r.Post("/payments/verify", paymentverify.New(logger, s.Payments, s.Subscriptions, s.Users).ServeHTTP)

		// Группа с проверкой ключа API
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.APIKeyMiddleware(s.Keys, cfg.Auth.MasterKey, logger))

			r.Get("/me", profile.New(logger, s.Users).ServeHTTP)

			r.Post("/subscriptions", create.New(logger, s.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/active", active.New(logger, s.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, s.Subscriptions).ServeHTTP)
			r.Delete("/subscriptions/{id}", cancel.New(logger, s.Subscriptions).ServeHTTP)

			r.Post("/payments", paymentcreate.New(logger, s.Payments).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, s.Payments).ServeHTTP)
			r.Get("/payments/{authority}", paymentread.New(logger, s.Payments).ServeHTTP)

			r.Post("/webhooks", webhookregister.New(logger, s.Webhooks).ServeHTTP)
			r.Get("/webhooks", webhooklist.New(logger, s.Webhooks).ServeHTTP)

			// Административные операции только под мастер-ключом
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireMaster(logger))

				r.Post("/plans", plancreate.New(logger, s.Plans).ServeHTTP)
				r.Patch("/plans/{id}", planupdate.New(logger, s.Plans).ServeHTTP)
				r.Post("/apikeys", apikeyissue.New(logger, s.Keys).ServeHTTP)
				r.Delete("/apikeys/{id}", apikeyrevoke.New(logger, s.Keys).ServeHTTP)
				r.Post("/apikeys/{id}/rotate", apikeyrotate.New(logger, s.Keys).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
