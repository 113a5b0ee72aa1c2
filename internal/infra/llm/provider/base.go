package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/llm/credential"
	"github.com/vietddude/ecoscout/internal/infra/llm/parse"
	"github.com/vietddude/ecoscout/internal/metrics"
)

const defaultTimeout = 60 * time.Second

// callFunc performs one HTTP call for model with key and returns the text payload.
type callFunc func(ctx context.Context, key, model string, prompt Prompt) (string, error)

// BaseBackend implements the attempt loop shared by every backend.
type BaseBackend struct {
	id      domain.BackendID
	models  []string
	pool    *credential.Pool
	limiter Waiter
	http    *resty.Client
	log     *slog.Logger

	Monitor *ProviderMonitor
}

// NewBaseBackend creates a BaseBackend. The pool and limiter must be non-nil.
func NewBaseBackend(id domain.BackendID, baseURL string, opts Options) *BaseBackend {
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pool := opts.Pool
	if pool == nil {
		pool = credential.New(nil)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	b := &BaseBackend{
		id:      id,
		models:  append([]string(nil), opts.Models...),
		pool:    pool,
		limiter: opts.Limiter,
		http:    client,
		log:     slog.Default().With("backend", string(id)),
		Monitor: NewProviderMonitor(),
	}
	metrics.CredentialsAvailable.WithLabelValues(string(id)).Set(float64(pool.Len()))
	return b
}

// ID returns the backend identifier.
func (b *BaseBackend) ID() domain.BackendID {
	return b.id
}

// Status returns pool and monitor state.
func (b *BaseBackend) Status() Status {
	n := b.pool.Len()
	return Status{
		Backend:     b.id,
		Models:      append([]string(nil), b.models...),
		Credentials: n,
		Monitor:     b.Monitor.GetStats(n),
	}
}

// classifyWithModels tries each model once, in order, with the next credential
// from the pool. Quota and auth failures evict the credential; any other
// failure moves on to the next model. Only a cancelled context stops early.
func (b *BaseBackend) classifyWithModels(
	ctx context.Context,
	req domain.ClassificationRequest,
	call callFunc,
) (domain.Classification, error) {
	prompt := BuildPrompt(req)

	for _, model := range b.models {
		if err := ctx.Err(); err != nil {
			return domain.Classification{}, err
		}

		key, ok := b.pool.Next()
		if !ok {
			b.log.Debug("credential pool empty, skipping model", "model", model)
			continue
		}

		if b.limiter != nil {
			if err := b.limiter.Wait(ctx, b.id); err != nil {
				return domain.Classification{}, fmt.Errorf("%s rate limit wait: %w", b.id, err)
			}
		}

		start := time.Now()
		text, err := call(ctx, key, model, prompt)
		latency := time.Since(start)
		metrics.LLMLatency.WithLabelValues(string(b.id), model).Observe(latency.Seconds())

		if err != nil {
			action := ClassifyError(err)
			if action == ActionAbort && ctx.Err() != nil {
				return domain.Classification{}, err
			}

			if action == ActionEvict {
				evicted := b.pool.Evict(key)
				b.Monitor.RecordThrottle(evicted)
				metrics.LLMCallsTotal.WithLabelValues(string(b.id), model, metrics.OutcomeQuota).Inc()
				if evicted {
					metrics.CredentialsEvicted.WithLabelValues(string(b.id)).Inc()
				}
				metrics.CredentialsAvailable.WithLabelValues(string(b.id)).Set(float64(b.pool.Len()))
				b.log.Warn("credential rejected, evicted from pool",
					"model", model,
					"action", action,
					"key", credential.Mask(key),
					"remaining", b.pool.Len(),
					"error", err)
				continue
			}

			b.Monitor.RecordFailure(latency)
			metrics.LLMCallsTotal.WithLabelValues(string(b.id), model, metrics.OutcomeError).Inc()
			b.log.Warn("backend call failed, trying next model", "model", model, "action", action, "error", err)
			continue
		}

		c, err := parse.Parse(text)
		if err == nil {
			cat, sub, ok := domain.Canonicalize(c.Category, c.Subcategory)
			if !ok {
				err = fmt.Errorf("%w: %q/%q not in taxonomy", parse.ErrInvalidField, c.Category, c.Subcategory)
			} else {
				c.Category, c.Subcategory = cat, sub
			}
		}
		if err != nil {
			b.Monitor.RecordFailure(latency)
			metrics.LLMCallsTotal.WithLabelValues(string(b.id), model, metrics.OutcomeParseError).Inc()
			b.log.Warn("unusable backend response, trying next model", "model", model, "error", err)
			continue
		}

		b.Monitor.RecordSuccess(latency)
		metrics.LLMCallsTotal.WithLabelValues(string(b.id), model, metrics.OutcomeSuccess).Inc()

		c.Provider = string(b.id)
		c.Model = model
		return c, nil
	}

	return domain.Classification{}, fmt.Errorf("%s: %w", b.id, ErrExhausted)
}

// post sends body to path and returns the raw response body of a 2xx reply.
func (b *BaseBackend) post(ctx context.Context, r *resty.Request, path string, body any) ([]byte, error) {
	resp, err := r.SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", b.id, err)
	}

	if resp.IsError() {
		return nil, &StatusError{
			Backend:    b.id,
			Code:       resp.StatusCode(),
			Body:       truncate(resp.String(), 512),
			RetryAfter: resp.Header().Get("Retry-After"),
		}
	}
	return resp.Body(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// apiError is the error object shape shared by the supported APIs.
type apiError struct {
	Code    any    `json:"code"`
	Status  string `json:"status"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *apiError) err(backend domain.BackendID) error {
	msg := fmt.Sprintf("%s api error: code=%v status=%s %s", backend, e.Code, e.Status, e.Message)
	if code, ok := e.Code.(float64); ok && (code == 429 || code == 402) {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
	}
	if DetectThrottlePattern(e.Status + " " + e.Type + " " + e.Message) {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
	}
	return errors.New(msg)
}
