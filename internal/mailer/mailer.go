// Package mailer implements the SMTP transport behind the email queue
// dispatcher. Sends are rate limited, retried with exponential backoff, and
// wrapped in a circuit breaker so an SMTP outage fails fast instead of
// tying up queue workers.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
	gomail "gopkg.in/mail.v2"

	"treasurehunt/internal/platform/config"
	"treasurehunt/pkg/platform/circuit"
)

// Dialer is the gomail surface the mailer depends on.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// ErrCircuitOpen is returned without attempting a send while the SMTP
// breaker is open. The queue keeps the entry retriable.
var ErrCircuitOpen = fmt.Errorf("smtp circuit open")

const (
	sendAttempts    = 3
	initialInterval = 500 * time.Millisecond
	probeInterval   = 30 * time.Second
)

// Mailer sends HTML email over SMTP. It satisfies the dispatcher's
// Transport interface.
type Mailer struct {
	dialer  Dialer
	from    string
	limiter *rate.Limiter
	breaker *circuit.Breaker
	logger  *slog.Logger

	mu        sync.Mutex
	lastProbe time.Time
}

// New constructs a Mailer from SMTP configuration.
func New(cfg config.SMTPConfig, logger *slog.Logger) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	dialer.RetryFailure = false
	return NewWithDialer(dialer, cfg, logger)
}

// NewWithDialer constructs a Mailer around an existing dialer. Tests inject
// a fake one.
func NewWithDialer(dialer Dialer, cfg config.SMTPConfig, logger *slog.Logger) *Mailer {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Mailer{
		dialer:  dialer,
		from:    cfg.From,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		breaker: circuit.New("smtp", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:  logger,
	}
}

// Send delivers one message. It blocks on the rate limiter, short-circuits
// while the breaker is open, and retries transient failures with backoff
// inside the caller's deadline.
func (m *Mailer) Send(ctx context.Context, to, toName, subject, htmlBody string) error {
	if m.breaker.IsOpen() && !m.allowProbe() {
		return ErrCircuitOpen
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	if toName != "" {
		msg.SetAddressHeader("To", to, toName)
	} else {
		msg.SetHeader("To", to)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(backoff.WithInitialInterval(initialInterval)),
		sendAttempts-1,
	), ctx)

	err := backoff.Retry(func() error {
		return m.dialer.DialAndSend(msg)
	}, policy)
	if err != nil {
		if _, change := m.breaker.RecordFailure(); change.Opened {
			m.logger.Warn("smtp circuit opened", "host_error", err.Error())
		}
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	if _, change := m.breaker.RecordSuccess(); change.Closed {
		m.logger.Info("smtp circuit closed")
	}
	return nil
}

// allowProbe lets one send through an open breaker every probeInterval so
// the circuit can close again once SMTP recovers.
func (m *Mailer) allowProbe() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastProbe) < probeInterval {
		return false
	}
	m.lastProbe = time.Now()
	return true
}

// BreakerState exposes the circuit state for health reporting.
func (m *Mailer) BreakerState() circuit.State {
	return m.breaker.State()
}
