package mail

import (
	"fmt"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"

	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

// Mailer contrato mínimo de envío de correo. El fan-out de reportes a
// administradores es de mejor esfuerzo: un fallo aquí nunca afecta la
// operación que lo originó.
type Mailer interface {
	Enviar(destinatario, asunto, cuerpo string) error
}

// smtpMailer implementación con gomail protegida por un circuit breaker:
// si el servidor SMTP se degrada, el breaker corta los intentos en lugar de
// acumular timeouts en el pool asíncrono.
type smtpMailer struct {
	dialer  *gomail.Dialer
	from    string
	breaker *gobreaker.CircuitBreaker
}

// NewSMTPMailer crea el mailer SMTP con breaker.
func NewSMTPMailer(cfg config.MailConfig) Mailer {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-notificaciones",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &smtpMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		breaker: breaker,
	}
}

// Enviar envía un correo a través del breaker.
func (m *smtpMailer) Enviar(destinatario, asunto, cuerpo string) error {
	_, err := m.breaker.Execute(func() (interface{}, error) {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", destinatario)
		msg.SetHeader("Subject", asunto)
		msg.SetBody("text/plain", cuerpo)
		return nil, m.dialer.DialAndSend(msg)
	})
	if err == gobreaker.ErrOpenState {
		return fmt.Errorf("circuito de correo abierto: %w", err)
	}
	return err
}

// nopMailer descarta los correos. Se usa cuando el correo está deshabilitado
// en configuración y en pruebas.
type nopMailer struct{}

// NewNopMailer crea un mailer que no envía nada.
func NewNopMailer() Mailer { return nopMailer{} }

func (nopMailer) Enviar(string, string, string) error { return nil }
