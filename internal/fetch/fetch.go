// Package fetch performs blocking HTTP GETs against data providers. Every
// failure is logged and reported as ErrUnavailable; callers skip the cycle.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

// ErrUnavailable is returned for any transport, status or decode failure.
var ErrUnavailable = errors.New("temporarily unavailable")

// Client issues GET requests with a fixed set of headers
type Client struct {
	client *http.Client
	header http.Header
	log    *zap.SugaredLogger
}

// NewClient creates a client. A zero timeout means requests never time out.
func NewClient(timeout time.Duration, userAgent string, log *zap.SugaredLogger) *Client {
	header := make(http.Header)
	if userAgent != "" {
		header.Set("User-Agent", userAgent)
	}
	return &Client{
		client: &http.Client{Timeout: timeout},
		header: header,
		log:    log,
	}
}

// With returns a copy of the client that also sends the given header.
// An empty value leaves the header unset.
func (c *Client) With(key, value string) *Client {
	header := c.header.Clone()
	if value != "" {
		header.Set(key, value)
	}
	return &Client{client: c.client, header: header, log: c.log}
}

// Get fetches url and returns the response body of a 2xx response. The
// request is aborted when ctx is done.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		c.failed(ctx, url, err)
		return nil, ErrUnavailable
	}
	return body, nil
}

// GetJSON fetches url and decodes the body into a T.
func GetJSON[T any](ctx context.Context, c *Client, url string) (T, error) {
	var value T

	body, err := c.get(ctx, url)
	if err == nil {
		if jsonErr := json.Unmarshal(body, &value); jsonErr != nil {
			err = fmt.Errorf("decoding response: %w", jsonErr)
		}
	}
	if err != nil {
		c.failed(ctx, url, err)
		var zero T
		return zero, ErrUnavailable
	}
	return value, nil
}

// GetProto fetches url and unmarshals the protobuf body into msg.
func GetProto(ctx context.Context, c *Client, url string, msg proto.Message) error {
	body, err := c.get(ctx, url)
	if err == nil {
		if protoErr := proto.Unmarshal(body, msg); protoErr != nil {
			err = fmt.Errorf("parsing protobuf: %w", protoErr)
		}
	}
	if err != nil {
		c.failed(ctx, url, err)
		return ErrUnavailable
	}
	return nil
}

// failed logs a fetch error. Requests aborted by shutdown are not warnings.
func (c *Client) failed(ctx context.Context, url string, err error) {
	if ctx.Err() != nil {
		c.log.Debugw("fetch cancelled", "url", url, "error", err)
		return
	}
	c.log.Warnw("fetch failed", "url", url, "error", err)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header = c.header.Clone()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
