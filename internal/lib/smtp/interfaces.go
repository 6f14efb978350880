// Package smtp оборачивает net/smtp в интерфейсы, подменяемые в тестах.
package smtp

import "io"

// TransportInterface устанавливает соединение с почтовым сервером
// и знает адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}

// Client покрывает команды SMTP-сессии, используемые при отправке письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
