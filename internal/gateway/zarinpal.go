package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
)

// Коды ZarinPal: 100 — успех, 101 — платёж уже верифицирован ранее.
const (
	zarinpalCodeOK              = 100
	zarinpalCodeAlreadyVerified = 101
)

// ZarinpalGateway — адаптер платёжного шлюза ZarinPal (REST API v4).
type ZarinpalGateway struct {
	merchantID string
	apiURL     string
	payURL     string
	httpClient *http.Client
}

// NewZarinpalGateway создаёт новый клиент ZarinPal. В режиме sandbox
// запросы идут на тестовый контур провайдера.
func NewZarinpalGateway(merchantID string, sandbox bool) *ZarinpalGateway {
	apiURL := "https://payment.zarinpal.com/pg/v4/payment"
	payURL := "https://payment.zarinpal.com/pg/StartPay/"
	if sandbox {
		apiURL = "https://sandbox.zarinpal.com/pg/v4/payment"
		payURL = "https://sandbox.zarinpal.com/pg/StartPay/"
	}
	return &ZarinpalGateway{
		merchantID: merchantID,
		apiURL:     apiURL,
		payURL:     payURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name возвращает ключ адаптера в реестре.
func (g *ZarinpalGateway) Name() string { return "zarinpal" }

type zarinpalRequest struct {
	MerchantID  string            `json:"merchant_id"`
	Amount      int64             `json:"amount"`
	CallbackURL string            `json:"callback_url"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type zarinpalVerifyRequest struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Authority  string `json:"authority"`
}

type zarinpalResponse struct {
	Data struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		Authority string `json:"authority"`
		RefID     int64  `json:"ref_id"`
		CardPan   string `json:"card_pan"`
		CardHash  string `json:"card_hash"`
		FeeType   string `json:"fee_type"`
		Fee       int64  `json:"fee"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

func (g *ZarinpalGateway) post(ctx context.Context, path string, body any) (*zarinpalResponse, error) {
	const op = "gateway.zarinpal.post"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var parsed zarinpalResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &parsed, nil
}

// CreatePayment создает платёж и возвращает authority со ссылкой StartPay.
func (g *ZarinpalGateway) CreatePayment(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	metadata := make(map[string]string)
	if req.Email != "" {
		metadata["email"] = req.Email
	}
	if req.Mobile != "" {
		metadata["mobile"] = req.Mobile
	}

	parsed, err := g.post(ctx, "/request.json", zarinpalRequest{
		MerchantID:  g.merchantID,
		Amount:      req.Amount,
		CallbackURL: req.CallbackURL,
		Description: req.Description,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	if parsed.Data.Code != zarinpalCodeOK {
		return nil, apperr.NewGateway(g.Name(), strconv.Itoa(parsed.Data.Code), parsed.Data.Message)
	}

	return &CreateResult{
		Authority:  parsed.Data.Authority,
		PaymentURL: g.payURL + parsed.Data.Authority,
		Message:    parsed.Data.Message,
	}, nil
}

// VerifyPayment подтверждает платёж. Код 101 (уже верифицирован)
// трактуется как успех, чтобы верификация была идемпотентной
// и на уровне провайдера.
func (g *ZarinpalGateway) VerifyPayment(ctx context.Context, authority string, amount int64) (*VerifyResult, error) {
	parsed, err := g.post(ctx, "/verify.json", zarinpalVerifyRequest{
		MerchantID: g.merchantID,
		Amount:     amount,
		Authority:  authority,
	})
	if err != nil {
		return nil, err
	}

	if parsed.Data.Code != zarinpalCodeOK && parsed.Data.Code != zarinpalCodeAlreadyVerified {
		return nil, apperr.NewGateway(g.Name(), strconv.Itoa(parsed.Data.Code), parsed.Data.Message)
	}

	return &VerifyResult{
		RefID:    strconv.FormatInt(parsed.Data.RefID, 10),
		CardPan:  parsed.Data.CardPan,
		CardHash: parsed.Data.CardHash,
		FeeType:  parsed.Data.FeeType,
		Fee:      parsed.Data.Fee,
	}, nil
}
