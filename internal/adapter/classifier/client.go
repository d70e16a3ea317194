package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
	"github.com/bertygi/HibiLog-EmotionScore/internal/platform/retry"
)

const (
	componentName      = "classifier"
	maxErrorBodyLength = 512
)

// BreakerObserver receives circuit breaker transitions. value encodes the
// new state as 0=closed, 1=half-open, 2=open.
type BreakerObserver interface {
	Transition(component, state string, value float64)
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int

	InitialBackoff   time.Duration // default 200ms
	RateLimitBackoff time.Duration // default 2s

	// Consecutive failed calls that open the breaker (default 5) and how
	// long it stays open before probing again (default 30s).
	BreakerFailures int
	BreakerTimeout  time.Duration

	HTTPClient *http.Client
	Clock      clockwork.Clock
	Observer   BreakerObserver
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.RateLimitBackoff <= 0 {
		c.RateLimitBackoff = 2 * time.Second
	}
	if c.BreakerFailures < 1 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// Client is a loaded classifier. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	policy  retry.Policy
	breaker *gobreaker.CircuitBreaker

	modelID string
	labels  []string
	index   map[string]int
}

var _ domain.Classifier = (*Client)(nil)

// StatusError is a non-2xx answer from the model server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("model server returned %d", e.Code)
	}
	return fmt.Sprintf("model server returned %d: %s", e.Code, e.Body)
}

type infoResponse struct {
	ModelID   string `json:"model_id"`
	ModelType struct {
		Classifier *struct {
			ID2Label map[string]string `json:"id2label"`
		} `json:"classifier"`
	} `json:"model_type"`
}

type predictRequest struct {
	Inputs    string `json:"inputs"`
	RawScores bool   `json:"raw_scores"`
	Truncate  bool   `json:"truncate"`
}

type prediction struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// Load fetches the model description and returns a ready Client. Any failure
// is a *domain.ModelLoadError and the process should not start serving.
func Load(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.BaseURL == "" {
		return nil, &domain.ModelLoadError{Component: componentName, Err: errors.New("base URL is empty")}
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		policy: retry.Policy{
			MaxAttempts:      cfg.MaxAttempts,
			InitialBackoff:   cfg.InitialBackoff,
			RateLimitBackoff: cfg.RateLimitBackoff,
			MaxBackoff:       cfg.Timeout,
			Clock:            cfg.Clock,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("Retrying classifier request", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}
	c.breaker = newBreaker(cfg)

	info, err := retry.Do(ctx, c.policy, classifyError, func(ctx context.Context, _ int) (infoResponse, error) {
		var info infoResponse
		err := c.do(ctx, http.MethodGet, "/info", nil, &info)
		return info, err
	})
	if err != nil {
		return nil, &domain.ModelLoadError{Component: componentName, Err: err}
	}

	labels, err := labelsFromInfo(info)
	if err != nil {
		return nil, &domain.ModelLoadError{Component: componentName, Err: err}
	}

	c.modelID = info.ModelID
	c.labels = labels
	c.index = make(map[string]int, len(labels))
	for i, label := range labels {
		c.index[label] = i
	}

	if n := len(labels); n != domain.EmotionCount && n != 2*domain.EmotionCount {
		slog.Warn("Classifier label count does not match the emotion layout, requests will fail",
			"model_id", c.modelID, "labels", n)
	}
	slog.Info("Classifier loaded", "model_id", c.modelID, "labels", len(labels))

	return c, nil
}

func labelsFromInfo(info infoResponse) ([]string, error) {
	if info.ModelType.Classifier == nil {
		return nil, errors.New("model server is not serving a sequence classifier")
	}
	id2label := info.ModelType.Classifier.ID2Label
	if len(id2label) == 0 {
		return nil, errors.New("classifier reports no labels")
	}

	labels := make([]string, len(id2label))
	seen := make(map[string]bool, len(id2label))
	for key, label := range id2label {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(id2label) {
			return nil, fmt.Errorf("id2label has non-contiguous index %q", key)
		}
		if seen[label] {
			return nil, fmt.Errorf("id2label repeats label %q", label)
		}
		seen[label] = true
		labels[idx] = label
	}
	return labels, nil
}

func (c *Client) ModelID() string { return c.modelID }

// Labels returns the model's labels in index order.
func (c *Client) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Classify returns the raw logits for text in the model's index order.
// An open breaker yields domain.ErrClassifierUnavailable without a request.
func (c *Client) Classify(ctx context.Context, text string) ([]float64, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return retry.Do(ctx, c.policy, classifyError, func(ctx context.Context, _ int) ([]prediction, error) {
			var preds []prediction
			err := c.do(ctx, http.MethodPost, "/predict", predictRequest{Inputs: text, RawScores: true, Truncate: true}, &preds)
			return preds, err
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, err)
		}
		return nil, err
	}

	return c.reorder(result.([]prediction))
}

// reorder maps (label, score) pairs back to index order. Every label must
// appear exactly once.
func (c *Client) reorder(preds []prediction) ([]float64, error) {
	if len(preds) != len(c.labels) {
		return nil, &domain.InvalidModelOutputError{
			Width:  len(preds),
			Reason: fmt.Sprintf("got %d scores for %d labels", len(preds), len(c.labels)),
		}
	}

	out := make([]float64, len(c.labels))
	filled := make([]bool, len(c.labels))
	for _, p := range preds {
		idx, ok := c.index[p.Label]
		if !ok {
			return nil, &domain.InvalidModelOutputError{Width: len(preds), Reason: fmt.Sprintf("unknown label %q", p.Label)}
		}
		if filled[idx] {
			return nil, &domain.InvalidModelOutputError{Width: len(preds), Reason: fmt.Sprintf("duplicate label %q", p.Label)}
		}
		out[idx] = p.Score
		filled[idx] = true
	}
	return out, nil
}

// Check reports whether the model server is healthy. It fails fast while the
// breaker is open.
func (c *Client) Check(ctx context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return domain.ErrClassifierUnavailable
	}
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// BreakerState reports the breaker state as "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "failed to decode model server response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// classifyError decides retry behaviour: 429 waits longer, 5xx and network
// errors retry, everything else (4xx, bad payloads, cancellation) stops.
func classifyError(err error) retry.Action {
	if errors.Is(err, context.Canceled) {
		return retry.Stop
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code == http.StatusTooManyRequests:
			return retry.After
		case statusErr.Code >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}

	var decodeErr *decodeError
	if errors.As(err, &decodeErr) {
		return retry.Stop
	}
	return retry.Retry
}

// countsAsFailure reports whether err says something about the server's health.
// Caller mistakes and cancellations must not open the breaker.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	var decodeErr *decodeError
	return !errors.As(err, &decodeErr)
}

func newBreaker(cfg Config) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        componentName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
		},
		IsSuccessful: func(err error) bool {
			return !countsAsFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			if cfg.Observer != nil {
				cfg.Observer.Transition(name, to.String(), stateToFloat(to))
			}
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
