package email

import (
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"MAIL_FROM" default:"library@library-api.local"`
}

// Sender dispatches one message to a batch of recipients.
type Sender interface {
	SendMails(subject, message string, to []string) error
}

type client struct {
	dialer *gomail.Dialer
	from   string
}

func NewClient(cfg Config) Sender {
	return &client{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendMails builds a single message addressed to every recipient at once.
// There is no per-recipient personalization and no retry.
func (c *client) SendMails(subject, message string, to []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", message)

	return c.dialer.DialAndSend(m)
}
