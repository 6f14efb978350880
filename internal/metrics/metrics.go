// Package metrics регистрирует счётчики Prometheus бизнес-операций.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsCreated — счётчик созданных платежей по шлюзам.
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_payments_created_total",
		Help: "Number of payments created, by gateway.",
	}, []string{"gateway"})

	// PaymentsVerified — счётчик верификаций по шлюзам и исходу.
	PaymentsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_payments_verified_total",
		Help: "Number of payment verifications, by gateway and result.",
	}, []string{"gateway", "result"})

	// OtpRequests — счётчик запросов одноразовых кодов по исходу.
	OtpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_otp_requests_total",
		Help: "Number of OTP requests, by result.",
	}, []string{"result"})
)
