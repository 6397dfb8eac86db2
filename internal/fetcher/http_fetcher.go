package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	_maxImageSize   = 64 * 1024 * 1024 // 64 MB
	_maxJSONSize    = 8 * 1024 * 1024
	_requestTimeout = 15 * time.Second
	_maxRetries     = 2
	_initialBackoff = 300 * time.Millisecond
	_userAgent      = "kitowall/1.0"
)

// retryableStatus lists the HTTP statuses worth another attempt
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// StatusError is a non-200 HTTP response
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// HTTPFetcher downloads wallpapers and source indexes over HTTP(S).
// Transient failures are retried with exponential backoff.
type HTTPFetcher struct {
	logger         *zap.Logger
	client         *http.Client
	maxRetries     uint64
	initialBackoff time.Duration
	maxImageSize   int64
}

// NewHTTPFetcher creates a new HTTP-based fetcher instance
func NewHTTPFetcher(logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		logger: logger,
		client: &http.Client{
			Timeout: _requestTimeout,
		},
		maxRetries:     _maxRetries,
		initialBackoff: _initialBackoff,
		maxImageSize:   _maxImageSize,
	}
}

// Fetch downloads image data from the given URL
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := f.get(ctx, url, f.maxImageSize, func(contentType string) error {
		// some CDNs serve images as octet-stream or without a type at all
		if contentType == "" ||
			strings.HasPrefix(contentType, "image/") ||
			strings.HasPrefix(contentType, "application/octet-stream") {
			return nil
		}
		return fmt.Errorf("url is not an image: %s", contentType)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Image fetched successfully",
		zap.String("size", humanize.Bytes(uint64(len(data)))),
		zap.String("url", url))
	return data, nil
}

// FetchJSON downloads a JSON document, typically a remote source listing
func (f *HTTPFetcher) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	return f.get(ctx, url, _maxJSONSize, func(string) error { return nil })
}

func (f *HTTPFetcher) get(ctx context.Context, url string, limit int64, checkType func(string) error) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialBackoff
	b.MaxElapsedTime = 0

	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		return f.once(ctx, url, limit, checkType)
	}
	notify := func(err error, wait time.Duration) {
		f.logger.Debug("Retrying download",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx)
	return backoff.RetryNotifyWithData(op, policy, notify)
}

// once performs a single attempt. Errors that cannot improve on retry are marked permanent.
func (f *HTTPFetcher) once(ctx context.Context, url string, limit int64, checkType func(string) error) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", _userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{URL: url, Code: resp.StatusCode}
		if retryableStatus[resp.StatusCode] {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	if err := checkType(resp.Header.Get("Content-Type")); err != nil {
		return nil, backoff.Permanent(err)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, backoff.Permanent(fmt.Errorf("response exceeds %s", humanize.IBytes(uint64(limit))))
	}
	return data, nil
}

// IsStatus reports whether err is an HTTP response with the given status
func IsStatus(err error, code int) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.Code == code
}
