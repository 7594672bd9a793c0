package retryablehttp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/die-net/lrucache"
	"github.com/gregjones/httpcache"
	"github.com/hashicorp/go-cleanhttp"
	hashicorphttp "github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"
)

type NewClientInput struct {
	// The maximum size, in bytes, of the response cache. A cache
	// will only be used if this value is non-zero.
	CacheMaxSizeBytes int64
	// 0 for never expiring
	CacheMaxAgeSeconds int64
	// The base transport to use. Defaults to a pooled transport
	// from go-cleanhttp.
	RoundTripper http.RoundTripper
	// The maximum number of retries for each request. If less
	// than 0, it will be treated as unlimited (technically,
	// max int32)
	MaxRetries int
	// The minimum amount of time to wait between retries
	RetryWaitMin time.Duration
	// The maximum amount of time to wait between retries
	RetryWaitMax time.Duration
	// The overall timeout of a request, retries included.
	// Zero means no timeout.
	Timeout time.Duration
	// The logger to use. If not provided, the default one
	// will be used.
	Logger hashicorphttp.LeveledLogger
}

var goAwayErrorType reflect.Type = reflect.TypeOf(http2.GoAwayError{})
var goAwayErrorPtrType reflect.Type = reflect.TypeOf(&http2.GoAwayError{})

// isRetryableBodyError reports whether err, or anything it wraps, is one of
// the connection failures that only surface while reading a response body.
func isRetryableBodyError(err error) bool {
	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		errType := reflect.TypeOf(unwrapped)
		msg := unwrapped.Error()
		if errType == goAwayErrorType ||
			errType == goAwayErrorPtrType ||
			strings.Contains(msg, "http2: server sent GOAWAY") ||
			strings.Contains(msg, "http2: client connection force closed") ||
			strings.Contains(msg, "unexpected EOF") {
			return true
		}
	}
	return false
}

// checkRetry is the default retry policy, extended to read the body of
// responses it would accept so that failures while reading it are retried.
func checkRetry(ctx context.Context, resp *http.Response, httpErr error) (bool, error) {
	shouldRetry, err := hashicorphttp.DefaultRetryPolicy(ctx, resp, httpErr)
	if err == nil && httpErr != nil {
		err = httpErr
	}
	if !shouldRetry {
		if err == nil {
			_, err = GetAndRewindHttpResponseBody(resp)
		}
		if err != nil && isRetryableBodyError(err) {
			shouldRetry = true
		}
	}
	if shouldRetry && err == nil && resp != nil {
		return true, stackerr.Errorf("%d: %s", resp.StatusCode, resp.Status)
	}
	if err != nil {
		return shouldRetry, stackerr.Wrap(err)
	}
	return shouldRetry, nil
}

// logBackoff logs the failed attempt before waiting the default backoff.
func logBackoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp == nil {
		log.Debugw("Failed HTTP request, cause unknown (response is nil)", "attempt_number", attemptNum)
	} else {
		body, _ := GetAndRewindHttpResponseBody(resp)
		log.Debugw(
			"Failed HTTP request",
			"url", resp.Request.URL.String(),
			"status_code", resp.StatusCode,
			"body", string(body),
			"attempt_number", attemptNum,
		)
	}
	return hashicorphttp.DefaultBackoff(min, max, attemptNum, resp)
}

// NewClient returns an HTTP client that retries failed requests with
// backoff and, if configured, caches responses in memory.
func NewClient(input NewClientInput) *http.Client {
	retryableClient := hashicorphttp.NewClient()
	retryableClient.HTTPClient.Transport = input.RoundTripper
	if retryableClient.HTTPClient.Transport == nil {
		retryableClient.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	}

	retryableClient.Logger = input.Logger
	if retryableClient.Logger == nil {
		retryableClient.Logger = GetRetryhttpLeveledLogger(nil)
	}
	switch {
	case input.MaxRetries < 0:
		retryableClient.RetryMax = math.MaxInt32
	case input.MaxRetries > 0:
		retryableClient.RetryMax = input.MaxRetries
	}
	if input.RetryWaitMin != 0 {
		retryableClient.RetryWaitMin = input.RetryWaitMin
	}
	if input.RetryWaitMax != 0 {
		retryableClient.RetryWaitMax = input.RetryWaitMax
	}
	retryableClient.Backoff = logBackoff
	retryableClient.CheckRetry = checkRetry

	if input.CacheMaxSizeBytes > 0 {
		cacheTransport := httpcache.NewTransport(lrucache.New(input.CacheMaxSizeBytes, input.CacheMaxAgeSeconds))
		cacheTransport.Transport = retryableClient.HTTPClient.Transport
		retryableClient.HTTPClient.Transport = cacheTransport
	}

	client := retryableClient.StandardClient()
	client.Timeout = input.Timeout
	return client
}

// Get fetches url and returns the body. Any final response other than a
// 2xx is an error.
func Get(ctx context.Context, client *http.Client, url string) ([]byte, stackerr.Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, stackerr.Wrap(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, stackerr.Wrap(err)
	}
	body, serr := GetAndRewindHttpResponseBody(resp)
	if serr != nil {
		return nil, serr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, stackerr.Errorf("GET %s: %s", url, resp.Status)
	}
	return body, nil
}

// IsHttpUrl reports whether location is an http or https URL.
func IsHttpUrl(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func GetAndRewindHttpResponseBody(resp *http.Response) ([]byte, stackerr.Error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	// Ensure that there's always a body, even if it's empty
	if b == nil {
		b = []byte{}
	}
	// Rewind the body. Always do this, even on an error,
	// as an error does not necessarily mean we don't need the body later.
	resp.Body = io.NopCloser(bytes.NewBuffer(b))
	if err != nil {
		return nil, stackerr.Wrap(err)
	}
	return b, nil
}
