package service

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends critical-alert emails over SMTP. Left unconfigured it is
// simply disabled; alerting never depends on it.
type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   []string
}

func (m Mailer) Enabled() bool {
	return m.Host != "" && len(m.To) > 0
}

func (m Mailer) Send(subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}
