package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// smtpClient is the part of *smtp.Client SMTP uses.
type smtpClient interface {
	Auth(a sasl.Client) error
	SendMail(from string, to []string, r io.Reader) error
	Noop() error
	Quit() error
	Close() error
}

type smtpDialer func(addr string, startTLS bool, host string, timeout time.Duration) (smtpClient, error)

// SMTP relays messages to an SMTP submission server.
type SMTP struct {
	addr     string
	host     string
	username string
	password string
	startTLS bool
	timeout  time.Duration
	dial     smtpDialer
	now      func() time.Time
}

// NewSMTP returns a relay provider for cfg.SMTPHost:cfg.SMTPPort.
func NewSMTP(cfg ProviderConfig) *SMTP {
	return &SMTP{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:     cfg.SMTPHost,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		startTLS: cfg.SMTPStartTLS,
		timeout:  cfg.Timeout,
		dial:     dialSMTP,
		now:      time.Now,
	}
}

func (s *SMTP) GetName() string { return "smtp" }

// Send opens a connection, authenticates when credentials are set, and
// submits one message.
func (s *SMTP) Send(ctx context.Context, msg *Message) (*DeliveryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := BuildMIME(msg, s.now())
	if err != nil {
		return nil, fmt.Errorf("smtp: build message: %w", err)
	}

	c, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := c.SendMail(msg.From, msg.To, bytes.NewReader(raw)); err != nil {
		return nil, classifySMTPError(err)
	}
	// The relay accepted the message before QUIT; a failed QUIT does not
	// undo that.
	_ = c.Quit()

	return &DeliveryResult{
		ProviderMessageID: msg.ID,
		Status:            StatusSent,
		Timestamp:         s.now(),
		Metadata:          map[string]string{"relay": s.addr},
	}, nil
}

// HealthCheck connects and issues NOOP.
func (s *SMTP) HealthCheck(_ context.Context) error {
	c, err := s.connect()
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Noop(); err != nil {
		return fmt.Errorf("smtp: noop: %w", err)
	}
	return c.Quit()
}

func (s *SMTP) connect() (smtpClient, error) {
	c, err := s.dial(s.addr, s.startTLS, s.host, s.timeout)
	if err != nil {
		return nil, &ProviderError{Provider: "smtp", Message: "dial " + s.addr + ": " + err.Error()}
	}
	if s.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			c.Close()
			return nil, classifySMTPError(fmt.Errorf("auth: %w", err))
		}
	}
	return c, nil
}

// classifySMTPError maps reply codes onto ProviderError: 5xx replies are
// permanent, everything else is transient.
func classifySMTPError(err error) error {
	var se *smtp.SMTPError
	if errors.As(err, &se) {
		return &ProviderError{
			Provider:   "smtp",
			StatusCode: se.Code,
			Message:    se.Message,
			Permanent:  se.Code >= 500 && se.Code < 600,
		}
	}
	return &ProviderError{Provider: "smtp", Message: err.Error()}
}

func dialSMTP(addr string, startTLS bool, host string, timeout time.Duration) (smtpClient, error) {
	var (
		c   *smtp.Client
		err error
	)
	if startTLS {
		c, err = smtp.DialStartTLS(addr, &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	} else {
		c, err = smtp.Dial(addr)
	}
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		c.CommandTimeout = timeout
		c.SubmissionTimeout = timeout
	}
	return c, nil
}
