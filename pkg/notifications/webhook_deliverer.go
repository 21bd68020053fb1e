package notifications

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Webhook headers set on every delivery. The signature is
// hex(HMAC-SHA256(secret, "<timestamp>.<body>")).
const (
	HeaderWebhookID        = "X-Transitionkit-Delivery"
	HeaderWebhookTimestamp = "X-Transitionkit-Timestamp"
	HeaderWebhookSignature = "X-Transitionkit-Signature"
)

var (
	ErrInvalidWebhookURL = errors.New("invalid webhook url")
	ErrWebhookRejected   = errors.New("webhook endpoint rejected the notification")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrSignatureExpired  = errors.New("webhook signature expired")
)

// WebhookDeliverer posts notifications as JSON to an HTTP endpoint.
// Network failures, 5xx, 408, 425 and 429 responses are retried with
// exponential backoff; other 4xx responses fail immediately. All attempts
// of one delivery share a deadline.
type WebhookDeliverer struct {
	url        string
	secret     string
	client     *http.Client
	maxRetries int
	initial    time.Duration
	maxDelay   time.Duration
	deadline   time.Duration
	now        func() time.Time
}

type WebhookOption func(*WebhookDeliverer)

// WithWebhookSecret enables request signing.
func WithWebhookSecret(secret string) WebhookOption {
	return func(d *WebhookDeliverer) { d.secret = secret }
}

func WithWebhookClient(c *http.Client) WebhookOption {
	return func(d *WebhookDeliverer) {
		if c != nil {
			d.client = c
		}
	}
}

// WithWebhookRetries sets how many times a failed delivery is retried and
// the backoff bounds between attempts.
func WithWebhookRetries(n int, initial, maxDelay time.Duration) WebhookOption {
	return func(d *WebhookDeliverer) {
		d.maxRetries = max(n, 0)
		if initial > 0 {
			d.initial = initial
		}
		if maxDelay > 0 {
			d.maxDelay = maxDelay
		}
	}
}

// WithWebhookDeadline bounds the total time one delivery may take,
// retries and backoff included. Zero disables the bound.
func WithWebhookDeadline(d time.Duration) WebhookOption {
	return func(w *WebhookDeliverer) { w.deadline = max(d, 0) }
}

func NewWebhookDeliverer(endpoint string, opts ...WebhookOption) (*WebhookDeliverer, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWebhookURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWebhookURL, endpoint)
	}

	d := &WebhookDeliverer{
		url:        endpoint,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		initial:    500 * time.Millisecond,
		maxDelay:   10 * time.Second,
		deadline:   15 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *WebhookDeliverer) Deliver(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}

	if d.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.deadline)
		defer cancel()
	}

	deliveryID := uuid.NewString()
	var lastErr error
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(ErrDeliveryFailed, ctx.Err())
			case <-time.After(d.backoff(attempt)):
			}
		}

		status, err := d.post(ctx, deliveryID, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if permanent(status) {
			return errors.Join(ErrDeliveryFailed, ErrWebhookRejected, err)
		}
	}

	return errors.Join(ErrDeliveryFailed, fmt.Errorf("after %d attempts: %w", d.maxRetries+1, lastErr))
}

func (d *WebhookDeliverer) post(ctx context.Context, deliveryID string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderWebhookID, deliveryID)
	if d.secret != "" {
		ts := d.now().Unix()
		req.Header.Set(HeaderWebhookTimestamp, strconv.FormatInt(ts, 10))
		req.Header.Set(HeaderWebhookSignature, SignWebhook(d.secret, ts, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return resp.StatusCode, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func (d *WebhookDeliverer) backoff(attempt int) time.Duration {
	delay := d.initial << (attempt - 1)
	if delay <= 0 || delay > d.maxDelay {
		return d.maxDelay
	}
	return delay
}

func permanent(status int) bool {
	if status < 400 || status >= 500 {
		return false
	}
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	default:
		return true
	}
}

// SignWebhook computes the signature header value for body sent at ts.
func SignWebhook(secret string, ts int64, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", ts)
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyWebhook checks a received delivery. Signatures older than maxAge
// are rejected; a zero maxAge disables the age check.
func VerifyWebhook(secret string, header http.Header, body []byte, maxAge time.Duration) error {
	ts, err := strconv.ParseInt(header.Get(HeaderWebhookTimestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	if maxAge > 0 && time.Since(time.Unix(ts, 0)) > maxAge {
		return ErrSignatureExpired
	}
	want := SignWebhook(secret, ts, body)
	if !hmac.Equal([]byte(want), []byte(header.Get(HeaderWebhookSignature))) {
		return ErrInvalidSignature
	}
	return nil
}
