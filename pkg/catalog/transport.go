package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rmax-ai/collabgraph/pkg/backoff"
	"github.com/rmax-ai/collabgraph/pkg/logger"
)

// ErrStatusNotFound is returned by Transport.GetJSON on a 404 response.
var ErrStatusNotFound = errors.New("resource not found")

var errAuthorize = errors.New("authorize request")

// Transport issues rate-limited JSON GET requests with retries on 429 and
// 5xx responses.
type Transport struct {
	Source     string
	HTTP       *http.Client
	Limiter    *rate.Limiter
	Backoff    backoff.Strategy
	MaxRetries int
	Header     http.Header
	Log        *zap.Logger
}

// NewTransport returns a transport for source with a 10s timeout, the
// default backoff and 3 retries. A nil limiter disables rate limiting.
func NewTransport(source string, limiter *rate.Limiter) *Transport {
	return &Transport{
		Source:     source,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		Limiter:    limiter,
		Backoff:    backoff.Default(),
		MaxRetries: 3,
		Header:     make(http.Header),
		Log:        zap.NewNop(),
	}
}

// GetJSON fetches url and decodes the body into out. authorize, if non-nil,
// may add per-request headers (tokens).
func (t *Transport) GetJSON(ctx context.Context, op, url string, authorize func(*http.Request) error, out interface{}) error {
	log := logger.OrNop(t.Log)
	var lastErr error

	for attempt := 0; attempt <= t.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := t.Backoff.Next(attempt - 1)
			if ra, ok := retryAfter(lastErr); ok && ra > wait {
				wait = ra
			}
			log.Debug("catalog_retry", zap.String("source", t.Source), zap.String("op", op), zap.Int("attempt", attempt), zap.Duration("wait", wait))
			if err := backoff.Sleep(ctx, wait); err != nil {
				return err
			}
		}

		if t.Limiter != nil {
			if err := t.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		err := t.do(ctx, url, authorize, out)
		if err == nil {
			ObserveRequest(t.Source, op, "ok")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var se *statusError
		switch {
		case errors.Is(err, ErrStatusNotFound):
			ObserveRequest(t.Source, op, "not_found")
			return err
		case errors.As(err, &se) && !se.retryable():
			ObserveRequest(t.Source, op, "error")
			return Unavailable(err, "%s %s", t.Source, op)
		case errors.Is(err, errAuthorize) && !errors.Is(err, ErrCatalogUnavailable):
			ObserveRequest(t.Source, op, "error")
			return err
		}
		lastErr = err
	}

	ObserveRequest(t.Source, op, "unavailable")
	return Unavailable(lastErr, "%s %s after %d attempts", t.Source, op, t.MaxRetries+1)
}

func (t *Transport) do(ctx context.Context, url string, authorize func(*http.Request) error, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	for k, vs := range t.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if authorize != nil {
		if err := authorize(req); err != nil {
			return errors.Mark(err, errAuthorize)
		}
	}

	resp, err := t.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrStatusNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{
			code:       resp.StatusCode,
			body:       string(body),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Unavailable(err, "decode %s response", t.Source)
	}
	return nil
}

type statusError struct {
	code       int
	body       string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func retryAfter(err error) (time.Duration, bool) {
	var se *statusError
	if errors.As(err, &se) && se.retryAfter > 0 {
		return se.retryAfter, true
	}
	return 0, false
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
