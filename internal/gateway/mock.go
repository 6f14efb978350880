package gateway

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// MockGateway — детерминированный шлюз-песочница для тестов и локальной
// разработки. Всегда успешно создает и верифицирует платежи, не выполняя
// сетевых вызовов. Authority имеет вид AUTH-<timestamp>.
type MockGateway struct {
	now func() time.Time

	createCalls atomic.Int64
	verifyCalls atomic.Int64
}

// NewMockGateway создает шлюз-песочницу. nowFn позволяет подменить часы
// в тестах; при nil используется time.Now.
func NewMockGateway(nowFn func() time.Time) *MockGateway {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MockGateway{now: nowFn}
}

// Name возвращает ключ адаптера в реестре.
func (g *MockGateway) Name() string { return "mock" }

// CreatePayment детерминированно создает платёж с синтетическим authority.
func (g *MockGateway) CreatePayment(_ context.Context, _ CreateRequest) (*CreateResult, error) {
	g.createCalls.Add(1)
	authority := fmt.Sprintf("AUTH-%d", g.now().UnixNano())
	return &CreateResult{
		Authority:  authority,
		PaymentURL: "https://sandbox.local/pay/" + authority,
		Message:    "sandbox payment created",
	}, nil
}

// VerifyPayment всегда подтверждает платёж.
func (g *MockGateway) VerifyPayment(_ context.Context, authority string, _ int64) (*VerifyResult, error) {
	g.verifyCalls.Add(1)
	return &VerifyResult{
		RefID:   "REF-" + authority,
		CardPan: "502229******1234",
	}, nil
}

// CreateCalls возвращает количество вызовов CreatePayment.
func (g *MockGateway) CreateCalls() int64 { return g.createCalls.Load() }

// VerifyCalls возвращает количество вызовов VerifyPayment.
func (g *MockGateway) VerifyCalls() int64 { return g.verifyCalls.Load() }
