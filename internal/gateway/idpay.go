package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
)

// Статусы IDPay: 100 — оплачен, 101 — уже верифицирован ранее.
const (
	idpayStatusPaid            = 100
	idpayStatusAlreadyVerified = 101
)

// IDPayGateway — адаптер платёжного шлюза IDPay (REST API v1.1).
// Аутентификация через заголовок X-API-KEY; в режиме sandbox добавляется
// заголовок X-SANDBOX.
type IDPayGateway struct {
	apiKey     string
	sandbox    bool
	apiURL     string
	httpClient *http.Client
}

// NewIDPayGateway создаёт новый клиент IDPay.
func NewIDPayGateway(apiKey string, sandbox bool) *IDPayGateway {
	return &IDPayGateway{
		apiKey:     apiKey,
		sandbox:    sandbox,
		apiURL:     "https://api.idpay.ir/v1.1/payment",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name возвращает ключ адаптера в реестре.
func (g *IDPayGateway) Name() string { return "idpay" }

type idpayCreateRequest struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Callback string `json:"callback"`
	Desc     string `json:"desc,omitempty"`
	Mail     string `json:"mail,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type idpayCreateResponse struct {
	ID      string `json:"id"`
	Link    string `json:"link"`
	ErrCode int    `json:"error_code"`
	ErrMsg  string `json:"error_message"`
}

type idpayVerifyRequest struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
}

type idpayVerifyResponse struct {
	Status  int         `json:"status"`
	TrackID json.Number `json:"track_id"`
	Payment struct {
		TrackID      json.Number `json:"track_id"`
		CardNo       string      `json:"card_no"`
		HashedCardNo string      `json:"hashed_card_no"`
	} `json:"payment"`
	ErrCode int    `json:"error_code"`
	ErrMsg  string `json:"error_message"`
}

func (g *IDPayGateway) post(ctx context.Context, path string, body any, out any) error {
	const op = "gateway.idpay.post"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+path, &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", g.apiKey)
	if g.sandbox {
		req.Header.Set("X-SANDBOX", "1")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreatePayment создает платёж. Authority для IDPay — это id транзакции,
// выданный провайдером.
func (g *IDPayGateway) CreatePayment(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	var parsed idpayCreateResponse
	err := g.post(ctx, "", idpayCreateRequest{
		OrderID:  uuid.New().String(),
		Amount:   req.Amount,
		Callback: req.CallbackURL,
		Desc:     req.Description,
		Mail:     req.Email,
		Phone:    req.Mobile,
	}, &parsed)
	if err != nil {
		return nil, err
	}

	if parsed.ID == "" {
		return nil, apperr.NewGateway(g.Name(), strconv.Itoa(parsed.ErrCode), parsed.ErrMsg)
	}

	return &CreateResult{
		Authority:  parsed.ID,
		PaymentURL: parsed.Link,
	}, nil
}

// VerifyPayment подтверждает платёж. Статус 101 (уже верифицирован)
// трактуется как успех.
func (g *IDPayGateway) VerifyPayment(ctx context.Context, authority string, _ int64) (*VerifyResult, error) {
	var parsed idpayVerifyResponse
	err := g.post(ctx, "/verify", idpayVerifyRequest{ID: authority}, &parsed)
	if err != nil {
		return nil, err
	}

	if parsed.Status != idpayStatusPaid && parsed.Status != idpayStatusAlreadyVerified {
		code := parsed.ErrCode
		if code == 0 {
			code = parsed.Status
		}
		return nil, apperr.NewGateway(g.Name(), strconv.Itoa(code), parsed.ErrMsg)
	}

	refID := parsed.TrackID.String()
	if parsed.Payment.TrackID.String() != "" {
		refID = parsed.Payment.TrackID.String()
	}
	return &VerifyResult{
		RefID:    refID,
		CardPan:  parsed.Payment.CardNo,
		CardHash: parsed.Payment.HashedCardNo,
	}, nil
}
