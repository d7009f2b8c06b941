package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// Fetcher issues outbound GET/HEAD requests for one upstream provider. Each
// call is a single attempt guarded by a circuit breaker; a failed attempt is
// final for the enclosing request. Adapters convert every error into an
// absent result, so nothing here escapes past the adapter boundary.
type Fetcher struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewFetcher builds a Fetcher with a named breaker for the provider.
func NewFetcher(client *http.Client, name string) *Fetcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Fetcher{client: client, circuit: cb}
}

// RequestOption customizes one outbound request.
type RequestOption func(*http.Request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// WithBasicAuth attaches basic-auth credentials.
func WithBasicAuth(username, password string) RequestOption {
	return func(r *http.Request) {
		r.SetBasicAuth(username, password)
	}
}

// GetText fetches url and returns the response body as text. Non-2xx
// statuses are errors.
func (f *Fetcher) GetText(ctx context.Context, url string, opts ...RequestOption) (string, error) {
	resp, err := f.do(ctx, http.MethodGet, url, opts...)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetJSON fetches url and decodes the JSON response body into out.
func (f *Fetcher) GetJSON(ctx context.Context, url string, out any, opts ...RequestOption) error {
	resp, err := f.do(ctx, http.MethodGet, url, opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

// Head issues a HEAD request and returns the status code. Used by the
// availability probe; non-5xx statuses count as reachable.
func (f *Fetcher) Head(ctx context.Context, url string, opts ...RequestOption) (int, error) {
	resp, err := f.do(ctx, http.MethodHead, url, opts...)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (f *Fetcher) do(ctx context.Context, method, url string, opts ...RequestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(req)
	}

	result, err := f.circuit.Execute(func() (interface{}, error) {
		resp, execErr := f.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, errServerError
		}
		if method != http.MethodHead && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
