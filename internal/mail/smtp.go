package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"slices"
	"time"

	simplemail "github.com/xhit/go-simple-mail/v2"
)

// Encryption modes of the SMTP connection.
const (
	EncryptionNone     = "none"
	EncryptionTLS      = "tls"
	EncryptionStartTLS = "starttls"
)

// Auth types of the SMTP login.
const (
	AuthPlain   = "plain"
	AuthLogin   = "login"
	AuthCramMD5 = "crammd5"
)

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	Encryption     string
	AuthType       string
	CertValidation bool
	From           string
	Timeout        time.Duration
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg}
}

// Configured reports whether a relay host is set.
func (s *SMTPSender) Configured() bool {
	return s != nil && s.cfg.Host != ""
}

// Send connects, delivers msg and disconnects.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	email := s.compose(msg)
	if email.Error != nil {
		return fmt.Errorf("mail: compose: %w", email.Error)
	}
	client, err := s.server().Connect()
	if err != nil {
		return fmt.Errorf("mail: connect to %s: %w", s.cfg.Host, err)
	}
	defer func() {
		_ = client.Close()
	}()
	if err := email.Send(client); err != nil {
		return fmt.Errorf("mail: send %q: %w", msg.Subject, err)
	}
	return nil
}

func (s *SMTPSender) compose(msg Message) *simplemail.Email {
	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = s.cfg.From
	}
	to := slices.Clone(msg.To)
	slices.Sort(to)
	to = slices.Compact(to)

	email := simplemail.NewMSG()
	email.SetFrom(s.cfg.From).
		AddTo(to...).
		SetReplyTo(replyTo).
		SetSubject(msg.Subject)
	switch {
	case msg.HTML != "" && msg.Text != "":
		email.SetBody(simplemail.TextPlain, msg.Text)
		email.AddAlternative(simplemail.TextHTML, msg.HTML)
	case msg.HTML != "":
		email.SetBody(simplemail.TextHTML, msg.HTML)
	default:
		email.SetBody(simplemail.TextPlain, msg.Text)
	}
	return email
}

func (s *SMTPSender) server() *simplemail.SMTPServer {
	srv := simplemail.NewSMTPClient()
	srv.Host = s.cfg.Host
	srv.Port = s.cfg.Port
	srv.Username = s.cfg.Username
	srv.Password = s.cfg.Password
	srv.ConnectTimeout = s.cfg.Timeout
	srv.SendTimeout = s.cfg.Timeout

	switch s.cfg.Encryption {
	case EncryptionTLS:
		srv.Encryption = simplemail.EncryptionSSLTLS
	case EncryptionStartTLS:
		srv.Encryption = simplemail.EncryptionSTARTTLS
	default:
		srv.Encryption = simplemail.EncryptionNone
	}
	srv.TLSConfig = &tls.Config{ServerName: s.cfg.Host, InsecureSkipVerify: !s.cfg.CertValidation}
	switch s.cfg.AuthType {
	case AuthLogin:
		srv.Authentication = simplemail.AuthLogin
	case AuthCramMD5:
		srv.Authentication = simplemail.AuthCRAMMD5
	case AuthPlain:
		srv.Authentication = simplemail.AuthPlain
	default:
		if s.cfg.Username == "" {
			srv.Authentication = simplemail.AuthNone
		}
	}
	return srv
}
