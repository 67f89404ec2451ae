package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSMTPClient struct {
	from     string
	rcpts    []string
	data     bytes.Buffer
	quit     bool
	authUsed bool
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (c *fakeSMTPClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeSMTPClient) Rcpt(rcpt string) error { c.rcpts = append(c.rcpts, rcpt); return nil }
func (c *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&c.data}, nil
}
func (c *fakeSMTPClient) Quit() error                      { c.quit = true; return nil }
func (c *fakeSMTPClient) Close() error                     { return nil }
func (c *fakeSMTPClient) StartTLS(*tls.Config) error       { return nil }
func (c *fakeSMTPClient) Auth(smtp.Auth) error             { c.authUsed = true; return nil }
func (c *fakeSMTPClient) Extension(string) (bool, string)  { return false, "" }

func newFakeMailer(cfg SMTPSettings, client *fakeSMTPClient) *smtpMailer {
	server, conn := net.Pipe()
	_ = server.Close()
	return &smtpMailer{
		cfg: cfg,
		dialFn: func(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error) {
			return conn, client, nil
		},
		authFn: defaultAuthFunc,
	}
}

func TestSMTPMailerSend(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.edu",
		Port:    587,
		From:    "noreply@example.edu",
	}, client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"student@example.edu", "student@example.edu", " "},
		Subject: "Hello\r\nthere",
		Body:    "welcome aboard",
	})
	require.NoError(t, err)

	require.Equal(t, "noreply@example.edu", client.from)
	require.Equal(t, []string{"student@example.edu"}, client.rcpts)
	require.True(t, client.quit)

	payload := client.data.String()
	require.Contains(t, payload, "Subject: Hello there")
	require.Contains(t, payload, "Content-Type: text/plain; charset=UTF-8")
	require.Contains(t, payload, "\r\n\r\nwelcome aboard")
}

func TestSMTPMailerHTMLContentType(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.edu",
		Port:    587,
		From:    "noreply@example.edu",
	}, client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"student@example.edu"},
		Subject: "Hello",
		Body:    "<p>welcome</p>",
		HTML:    true,
	})
	require.NoError(t, err)
	require.Contains(t, client.data.String(), "Content-Type: text/html; charset=UTF-8")
}

func TestSMTPMailerDisabled(t *testing.T) {
	mailer := newFakeMailer(SMTPSettings{Enabled: false}, &fakeSMTPClient{})

	err := mailer.Send(context.Background(), Message{To: []string{"student@example.edu"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSMTPMailerValidation(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.edu",
		Port:    587,
	}, client)

	// No sender configured anywhere.
	err := mailer.Send(context.Background(), Message{To: []string{"student@example.edu"}})
	require.Error(t, err)

	// No recipients at all.
	mailer.cfg.From = "noreply@example.edu"
	err = mailer.Send(context.Background(), Message{})
	require.Error(t, err)

	// Malformed recipient.
	err = mailer.Send(context.Background(), Message{To: []string{"not an address"}})
	require.Error(t, err)
}

func TestNewSMTPMailerConfigValidation(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.edu"})
	require.Error(t, err)

	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, mailer)
}
