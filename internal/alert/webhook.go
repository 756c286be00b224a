package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const userAgent = "tariffwatch-alert/1"

// errRetryable marks a delivery failure worth another attempt.
var errRetryable = errors.New("retryable")

// Sender delivers formatted alert payloads over HTTP. Transport errors and
// 5xx responses are retried with exponential backoff; any other non-2xx
// status ends delivery at once.
type Sender struct {
	Client *http.Client
	// Attempts is the total number of tries per delivery, including the first.
	Attempts int
	// Interval is the delay before the first retry; later retries back off
	// exponentially from it.
	Interval time.Duration
	// AttemptTimeout bounds each individual POST.
	AttemptTimeout time.Duration
}

// DefaultSender is used by Send and by dispatchers built without a Sender.
var DefaultSender = &Sender{
	Client:         &http.Client{},
	Attempts:       3,
	Interval:       time.Second,
	AttemptTimeout: 5 * time.Second,
}

// Send delivers event to cfg using DefaultSender.
func Send(cfg AlertConfig, event AlertEvent) error {
	return DefaultSender.Send(context.Background(), cfg, event)
}

// Send formats event for cfg and posts it, retrying as described on Sender.
func (s *Sender) Send(ctx context.Context, cfg AlertConfig, event AlertEvent) error {
	body, err := FormatPayload(cfg.Format, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	attempts := 0
	err = backoff.Retry(func() error {
		attempts++
		return s.post(ctx, cfg, body)
	}, s.policy(ctx))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errRetryable):
		return fmt.Errorf("webhook failed after %d attempts: %w", attempts, err)
	default:
		return err
	}
}

func (s *Sender) policy(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.Interval
	eb.MaxElapsedTime = 0
	retries := s.Attempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// post makes one delivery attempt. Errors not wrapping errRetryable are
// returned as backoff.Permanent so Retry stops.
func (s *Sender) post(ctx context.Context, cfg AlertConfig, body []byte) error {
	if s.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AttemptTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errRetryable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return classifyStatus(resp.StatusCode)
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500:
		return fmt.Errorf("%w: webhook server error: HTTP %d", errRetryable, code)
	default:
		return backoff.Permanent(fmt.Errorf("webhook rejected: HTTP %d", code))
	}
}
