package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes bounds how much of an upstream body is buffered.
const maxBodyBytes = 16 << 20

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Do performs req under its own deadline and buffers the body before the
// deadline is released. A deadline hit becomes *TimeoutError; cancellation of
// ctx itself is returned as ctx.Err().
func Do(ctx context.Context, client *http.Client, req *http.Request, service string, timeout time.Duration) (*Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	resp, err := client.Do(req.WithContext(callCtx))
	if err != nil {
		return nil, classify(ctx, callCtx, err, service, timeout)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(ctx, callCtx, err, service, timeout)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func classify(parent, call context.Context, err error, service string, timeout time.Duration) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Service: service, After: timeout}
	}
	return fmt.Errorf("%s request failed: %w", service, err)
}
