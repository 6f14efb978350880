package models

// Типы событий, публикуемых в очередь уведомлений и рассылаемых вебхуками.
const (
	EventOtpRequested          = "otp.requested"
	EventPaymentCreated        = "payment.created"
	EventSubscriptionActivated = "subscription.activated"
)

// NotificationEvent — сообщение очереди уведомлений. Потребитель решает
// по типу события, отправлять SMS, письмо или и то и другое.
type NotificationEvent struct {
	Type    string `json:"type"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// SubscriptionActivatedEvent — полезная нагрузка вебхука subscription.activated.
type SubscriptionActivatedEvent struct {
	SubscriptionID string `json:"subscription_id"`
	UserID         string `json:"user_id"`
	PlanID         string `json:"plan_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}
