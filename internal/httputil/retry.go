// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across acquisition strategies.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// TrialDelay is the pause between failed trials in FetchWithTrials.
var TrialDelay = 1 * time.Second

const (
	defaultMaxRetries = 5
	defaultMaxTrials  = 3
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Reason returns the status text without the code, e.g. "Not Found".
func (e *StatusError) Reason() string {
	if t := http.StatusText(e.StatusCode); t != "" {
		return t
	}
	return e.Status
}

// IsSuccess reports whether code is in the 2xx range.
func IsSuccess(code int) bool {
	return code >= 200 && code <= 299
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) with exponential backoff. The delay starts at RetryBaseDelay
// and doubles each attempt.
//
// When maxRetries is 0 the default (5) is used. On each 429 the response
// body is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last 429 response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// FetchWithTrials issues req up to maxTrials times and returns the body of
// the first 2xx response. A transport error or a non-2xx status each use up
// one trial. After the last trial the most recent error is returned; for
// status failures it is a *StatusError.
//
// When maxTrials is 0 the default (3) is used.
func FetchWithTrials(ctx context.Context, client *http.Client, req *http.Request, maxTrials int) ([]byte, error) {
	if maxTrials <= 0 {
		maxTrials = defaultMaxTrials
	}

	var lastErr error
	for trial := 1; trial <= maxTrials; trial++ {
		body, err := fetchOnce(ctx, client, req)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if trial == maxTrials {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(TrialDelay):
		}
	}
	return nil, fmt.Errorf("after %d trial(s): %w", maxTrials, lastErr)
}

func fetchOnce(ctx context.Context, client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req.Clone(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !IsSuccess(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: req.URL.String()}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}
