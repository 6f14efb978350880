// Package sms реализует клиент REST API SMS-провайдера.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/subscription-billing/internal/config"
)

// Client отправляет SMS через HTTP API провайдера.
type Client struct {
	apiURL     string
	apiKey     string
	sender     string
	httpClient *http.Client
}

// NewClient создает новый SMS-клиент из конфигурации.
func NewClient(cfg config.SMS) *Client {
	return &Client{
		apiURL:     cfg.SMSAPIURL,
		apiKey:     cfg.SMSAPIKey,
		sender:     cfg.SMSSender,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	Sender   string `json:"sender"`
	Receptor string `json:"receptor"`
	Message  string `json:"message"`
}

type sendResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Send отправляет текст на номер телефона.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	const op = "sms.Send"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(sendRequest{
		Sender:   c.sender,
		Receptor: phone,
		Message:  message,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if parsed.Status != 200 {
		return fmt.Errorf("%s: provider status %d: %s", op, parsed.Status, parsed.Message)
	}
	return nil
}
