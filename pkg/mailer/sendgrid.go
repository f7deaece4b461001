package mailer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/circuitbreaker"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Sender dispatches transactional HTML email.
// Defined as an interface so services can be tested against a mock.
type Sender interface {
	Send(ctx context.Context, to, toName, subject, htmlContent string) error
}

// SendGridMailer sends email through the SendGrid v3 API with circuit breaker
// protection against provider outages.
type SendGridMailer struct {
	client         *sendgrid.Client
	from           *mail.Email
	circuitBreaker *gobreaker.CircuitBreaker
}

var _ Sender = (*SendGridMailer)(nil)

// NewSendGridMailer creates a new SendGrid mailer
func NewSendGridMailer(apiKey, fromEmail, fromName string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("empty SendGrid API key provided")
	}
	if fromEmail == "" {
		return nil, fmt.Errorf("empty sender address provided")
	}

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("sendgrid"))

	logger.Info("SendGrid mailer initialized",
		zap.String("from", fromEmail))

	return &SendGridMailer{
		client:         sendgrid.NewSendClient(apiKey),
		from:           mail.NewEmail(fromName, fromEmail),
		circuitBreaker: cb,
	}, nil
}

// Send dispatches a single HTML email
func (m *SendGridMailer) Send(ctx context.Context, to, toName, subject, htmlContent string) error {
	start := time.Now()
	const kind = "transactional"

	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, to), "", htmlContent)

	_, err := circuitbreaker.Execute(m.circuitBreaker, func() (*struct{}, error) {
		sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		resp, sendErr := m.client.SendWithContext(sendCtx, message)
		if sendErr != nil {
			return nil, sendErr
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
		}
		return &struct{}{}, nil
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		metrics.EmailDeliveries.WithLabelValues(kind, "error").Inc()
		logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Float64("duration", duration),
			zap.Error(err))
		return circuitbreaker.FormatError("sendgrid", err)
	}

	metrics.EmailDeliveries.WithLabelValues(kind, "success").Inc()
	logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Float64("duration", duration))

	return nil
}
