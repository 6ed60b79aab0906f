// Package sendgrid отправляет письма через HTTP API SendGrid.
package sendgrid

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrRejected API вернуло статус ошибки.
var ErrRejected = errors.New("sendgrid rejected message")

const sendEndpoint = "/v3/mail/send"

// Mailer клиент отправки писем.
type Mailer struct {
	apiKey string
	host   string
	from   *mail.Email
}

// NewMailer создает Mailer. Пустой host означает публичный API SendGrid.
func NewMailer(apiKey, from, host string) *Mailer {
	return &Mailer{
		apiKey: apiKey,
		host:   host,
		from:   mail.NewEmail("", from),
	}
}

// Send отправляет текстовое письмо одному получателю.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	const op = "sendgrid.Send"

	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), body, "")

	req := sg.GetRequest(m.apiKey, sendEndpoint, m.host)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(message)

	resp, err := sg.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %w: status %d: %s", op, ErrRejected, resp.StatusCode, resp.Body)
	}
	return nil
}
