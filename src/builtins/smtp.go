package builtins

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// SMTPBuilder implements `SMTP(server).port(...).credentials(...)
// .smtp_tls()/.smtp_starttls().send(msg)` (spec §4.3 table).
type SMTPBuilder struct {
	server       string
	port         int
	username     string
	password     string
	useTLS       bool
	useStartTLS  bool
	from, to     string
}

// SMTP starts a new builder for server.
func SMTP(server string) *SMTPBuilder {
	return &SMTPBuilder{server: server, port: 25}
}

func (b *SMTPBuilder) Port(p int64) *SMTPBuilder { b.port = int(p); return b }

func (b *SMTPBuilder) Credentials(user, pass string) *SMTPBuilder {
	b.username, b.password = user, pass
	return b
}

func (b *SMTPBuilder) SmtpTLS() *SMTPBuilder      { b.useTLS = true; return b }
func (b *SMTPBuilder) SmtpStartTLS() *SMTPBuilder { b.useStartTLS = true; return b }
func (b *SMTPBuilder) From(addr string) *SMTPBuilder { b.from = addr; return b }
func (b *SMTPBuilder) To(addr string) *SMTPBuilder   { b.to = addr; return b }

// Send delivers msg as the message body, returning true/false per spec
// §4.3's table — transport failures are RuntimeIO (spec §7): logged and
// reported as false, never an abort.
func (b *SMTPBuilder) Send(msg string) (*primitive.Literal, error) {
	addr := net.JoinHostPort(b.server, fmt.Sprintf("%d", b.port))
	auth := smtp.PlainAuth("", b.username, b.password, b.server)

	body := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: CSML\r\n\r\n%s\r\n", b.from, b.to, msg))

	var err error
	switch {
	case b.useTLS:
		err = sendTLS(addr, b.server, auth, b.from, []string{b.to}, body)
	default:
		// net/smtp.SendMail negotiates STARTTLS itself when the server
		// advertises it, covering the .smtp_starttls() case with no extra
		// dial logic.
		err = smtp.SendMail(addr, auth, b.from, []string{b.to}, body)
	}
	if err != nil {
		Logger.Debug("smtp send failed", zap.String("server", b.server), zap.Error(err))
		return primitive.Bool(false), err
	}
	return primitive.Bool(true), nil
}

func sendTLS(addr, host string, auth smtp.Auth, from string, to []string, body []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host, InsecureSkipVerify: disableSSLVerify()})
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer c.Close()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, addr := range to {
		if err := c.Rcpt(addr); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return w.Close()
}
