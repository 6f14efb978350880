// Package sender реализует обработку сообщений очереди уведомлений:
// отправку SMS через провайдера и писем через SMTP.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	libsmtp "github.com/magabrotheeeer/subscription-billing/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// SMSSender отправляет текст на номер телефона.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// Service отправляет уведомления по каналам, указанным в событии.
type Service struct {
	transport libsmtp.TransportInterface
	sms       SMSSender
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport libsmtp.TransportInterface, sms SMSSender, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		sms:       sms,
		log:       log,
	}
}

// HandleMessage обрабатывает одно сообщение очереди уведомлений.
// SMS отправляется при заполненном Phone, письмо — при заполненном Email.
func (s *Service) HandleMessage(body []byte) error {
	const op = "sender.HandleMessage"

	var event models.NotificationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal notification event", sl.Err(err))
		// Нечитаемое сообщение переотправлять бессмысленно.
		return nil
	}

	if event.Phone != "" {
		if err := s.sms.Send(context.Background(), event.Phone, event.Body); err != nil {
			s.log.Error("failed to send sms",
				slog.String("type", event.Type), sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("sms sent", slog.String("type", event.Type))
	}

	if event.Email != "" {
		if err := s.sendEmail([]string{event.Email}, event.Subject, event.Body); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("email sent", slog.String("type", event.Type))
	}

	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	return nil
}
