// Package fetch performs a single HTTP GET, buffers the whole response body and
// optionally persists it and hands a copy back to the caller.
//
// A body is persisted only when a destination was given, the status is below 400
// and the body is not empty; in every other case the destination is left as it
// was. HTTP error statuses are ordinary outcomes, not errors. Failures are always
// one of the kinds defined in package errors: network failures abort before
// anything is written, persistence failures replace the otherwise successful
// outcome.
package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/glorpus-work/reqfile/pkg/errors"
	"github.com/glorpus-work/reqfile/pkg/header"
	"github.com/glorpus-work/reqfile/pkg/sink"
)

// Request describes one fetch. An empty Dest means the body is not persisted.
type Request struct {
	URL        string
	Header     http.Header
	Dest       string
	ReturnBody bool
}

// Outcome is the result of a completed fetch.
type Outcome struct {
	// Status is the HTTP status code of the final response.
	Status uint16
	// Size is the length of the buffered body, whether or not it was persisted or returned.
	Size uint64
	// Payload is a private copy of the body when the request asked for it, nil otherwise.
	Payload []byte
	// Persisted reports whether the body was written to the destination.
	Persisted bool
}

// Fetcher executes requests. The zero value is not usable; use NewFetcher.
type Fetcher struct {
	client Doer
	sink   sink.Sink
}

// NewFetcher creates a Fetcher. A nil client means an http.Client with library
// defaults; a nil sink means destinations are treated as local file paths.
func NewFetcher(client Doer, s sink.Sink) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if s == nil {
		s = sink.File{}
	}
	return &Fetcher{client: client, sink: s}
}

// Fetch runs req to completion on the calling goroutine.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Outcome, error) {
	return f.run(ctx, req, nil)
}

func (f *Fetcher) run(ctx context.Context, req Request, track func(State)) (*Outcome, error) {
	enter := func(s State) {
		if track != nil {
			track(s)
		}
	}

	enter(StateRequesting)
	status, body, err := f.get(ctx, req)
	if err != nil {
		enter(StateFailed)
		return nil, err
	}
	enter(StateResponded)

	enter(StateFinalizing)
	out := &Outcome{
		Status: status,
		Size:   uint64(len(body)),
	}

	if ShouldPersist(req.Dest, status, len(body)) {
		if err := f.sink.Write(ctx, req.Dest, body); err != nil {
			enter(StateFailed)
			return nil, errors.Persistence(req.Dest, err)
		}
		out.Persisted = true
	}

	if req.ReturnBody {
		out.Payload = bytes.Clone(body)
		if out.Payload == nil {
			out.Payload = []byte{}
		}
	}

	enter(StateDone)
	return out, nil
}

// get performs the request and reads the whole body.
func (f *Fetcher) get(ctx context.Context, req Request) (uint16, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, http.NoBody)
	if err != nil {
		return 0, nil, errors.Network(err)
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return 0, nil, errors.Network(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Network(errors.Wrap(err, "failed to read response body"))
	}

	return uint16(resp.StatusCode), body, nil
}

// ShouldPersist reports whether a body of size bytes answered with status is
// written to dest.
func ShouldPersist(dest string, status uint16, size int) bool {
	return dest != "" && status < http.StatusBadRequest && size > 0
}

// Option adjusts a Request built by Get.
type Option func(*Request)

// WithDest persists the body at dest.
func WithDest(dest string) Option {
	return func(r *Request) { r.Dest = dest }
}

// WithReturnBody returns a copy of the body in the outcome.
func WithReturnBody() Option {
	return func(r *Request) { r.ReturnBody = true }
}

// Get translates headers and fetches url. Invalid headers are reported before
// any network activity.
func (f *Fetcher) Get(ctx context.Context, url string, headers map[string]string, opts ...Option) (*Outcome, error) {
	h, err := header.FromMap(headers)
	if err != nil {
		return nil, err
	}
	req := Request{URL: url, Header: h}
	for _, opt := range opts {
		opt(&req)
	}
	return f.Fetch(ctx, req)
}

// Get is Fetcher.Get on a Fetcher with library defaults.
func Get(ctx context.Context, url string, headers map[string]string, opts ...Option) (*Outcome, error) {
	return NewFetcher(nil, nil).Get(ctx, url, headers, opts...)
}
