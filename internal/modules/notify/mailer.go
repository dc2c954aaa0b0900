// README: SMTP mailer for booking confirmations.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

type Mailer interface {
	Send(to []string, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(to []string, subject, htmlBody string) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		return fmt.Errorf("email configuration not set")
	}
	headers := []string{
		"From: Travelbook <" + m.cfg.From + ">",
		"To: " + strings.Join(to, ","),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	return m.send(addr, auth, m.cfg.From, to, []byte(msg))
}

const confirmationSubject = "Your surprise trip is booked"

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<h2>Hi {{.TravelerName}},</h2>
	<p>Your surprise trip (order #{{.OrderID}}) is confirmed. The destination stays a secret until the day!</p>
	<ul>
		<li>Date: {{.TripDate}}</li>
		<li>Pickup address: {{.TripAddress}}</li>
		<li>Participants: {{.Participants}}</li>
		<li>Driver: {{.DriverName}} ({{.DriverPhone}})</li>
	</ul>
	<p style="font-size: 12px; color: #666;">This is an automated message, please do not reply to this email.</p>
</body>
</html>`))

func renderConfirmation(ev OrderCreated) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, ev); err != nil {
		return "", err
	}
	return buf.String(), nil
}
