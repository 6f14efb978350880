// Package gateway абстрагирует внешние платёжные провайдеры за единым
// контрактом из двух операций: создание платежа и его верификация.
// Адаптеры только ходят по сети и нормализуют ответы провайдера,
// ничего не сохраняя сами.
package gateway

import "context"

// CreateRequest — обобщённый запрос на создание платежа у провайдера.
type CreateRequest struct {
	Amount      int64          // Сумма в минимальных единицах валюты
	Description string         // Описание, отображаемое на странице оплаты
	CallbackURL string         // Адрес возврата после оплаты
	Email       string         // Необязательная почта плательщика
	Mobile      string         // Необязательный телефон плательщика
	Metadata    map[string]any // Произвольные данные для провайдера
}

// CreateResult — нормализованный ответ провайдера на создание платежа.
type CreateResult struct {
	Authority   string // Корреляционный идентификатор платежа у провайдера
	PaymentURL  string // Ссылка для перехода на страницу оплаты
	GatewayTxID string // Идентификатор транзакции, если провайдер его выдаёт сразу
	Message     string // Сообщение провайдера, если есть
}

// VerifyResult — нормализованный ответ провайдера на верификацию платежа.
// Повторная верификация уже подтверждённого платежа считается успехом.
type VerifyResult struct {
	RefID    string // Референс успешной транзакции
	CardPan  string // Маскированный номер карты
	CardHash string // Хэш карты
	FeeType  string // Тип комиссии
	Fee      int64  // Комиссия
}

// Gateway — контракт адаптера платёжного провайдера.
type Gateway interface {
	// Name возвращает ключ адаптера в реестре.
	Name() string
	// CreatePayment создает платёж у провайдера и возвращает authority и ссылку.
	CreatePayment(ctx context.Context, req CreateRequest) (*CreateResult, error)
	// VerifyPayment подтверждает платёж по authority. Статус провайдера
	// "уже верифицирован" трактуется как успех.
	VerifyPayment(ctx context.Context, authority string, amount int64) (*VerifyResult, error)
}
