package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	simplemail "github.com/xhit/go-simple-mail/v2"
)

func TestMessageValidate(t *testing.T) {
	assert.Error(t, Message{Subject: "s", HTML: "b"}.Validate())
	assert.Error(t, Message{To: []string{"a@b.c"}, HTML: "b"}.Validate())
	assert.Error(t, Message{To: []string{"a@b.c"}, Subject: "s"}.Validate())
	assert.NoError(t, Message{To: []string{"a@b.c"}, Subject: "s", Text: "b"}.Validate())
}

func TestSMTPServerSettings(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{
		Host:       "smtp.example.com",
		Port:       465,
		Username:   "robot",
		Password:   "secret",
		Encryption: EncryptionTLS,
		AuthType:   AuthLogin,
	})
	srv := s.server()
	assert.Equal(t, "smtp.example.com", srv.Host)
	assert.Equal(t, 465, srv.Port)
	assert.Equal(t, simplemail.EncryptionSSLTLS, srv.Encryption)
	assert.Equal(t, simplemail.AuthLogin, srv.Authentication)
	assert.True(t, srv.TLSConfig.InsecureSkipVerify)
	assert.Equal(t, "smtp.example.com", srv.TLSConfig.ServerName)

	s = NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025, Encryption: EncryptionStartTLS, CertValidation: true})
	srv = s.server()
	assert.Equal(t, simplemail.EncryptionSTARTTLS, srv.Encryption)
	assert.Equal(t, simplemail.AuthNone, srv.Authentication)
	assert.False(t, srv.TLSConfig.InsecureSkipVerify)
}

func TestSMTPSenderRejectsInvalidMessage(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025})
	require.Error(t, s.Send(context.Background(), Message{}))
	assert.True(t, s.Configured())
	assert.False(t, NewSMTPSender(SMTPConfig{}).Configured())
}

func TestComposeDeduplicatesRecipients(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{From: "noreply@sakura-salon.ru"})
	email := s.compose(Message{
		To:      []string{"b@example.com", "a@example.com", "b@example.com"},
		Subject: "Новая запись",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, email.Error)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, email.GetRecipients())
}
