package smtp

import (
	"context"
	"fmt"
	"strings"
)

// headerSafe заменяет переводы строк, чтобы значение не разорвало заголовок.
var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

// Mailer отправляет по одному письму на соединение.
type Mailer struct {
	transport TransportInterface
}

// NewMailer создает Mailer поверх транспорта.
func NewMailer(transport TransportInterface) *Mailer {
	return &Mailer{transport: transport}
}

// Send отправляет текстовое письмо одному получателю.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	const op = "smtp.Send"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	from := m.transport.Sender()
	msg := strings.Join([]string{
		"From: " + headerSafe.Replace(from),
		"To: " + headerSafe.Replace(to),
		"Subject: " + headerSafe.Replace(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	client, err := m.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("%s: rcpt to: %w", op, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
