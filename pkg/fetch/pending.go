package fetch

import (
	"context"
	"sync/atomic"
)

// State is the pipeline stage of a fetch.
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateResponded
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateResponded:
		return "responded"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Pending is a fetch running in the background.
type Pending struct {
	done  chan struct{}
	state atomic.Int32
	out   *Outcome
	err   error
}

// Go starts req on a new goroutine and returns immediately. Cancelling ctx
// abandons the in-flight request.
func (f *Fetcher) Go(ctx context.Context, req Request) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.out, p.err = f.run(ctx, req, p.setState)
	}()
	return p
}

func (p *Pending) setState(s State) {
	p.state.Store(int32(s))
}

// State returns the stage the fetch has reached so far.
func (p *Pending) State() State {
	return State(p.state.Load())
}

// Done is closed once the outcome or the failure is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the fetch completes or ctx is done. Giving up through ctx
// does not cancel the fetch itself.
func (p *Pending) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-p.done:
		return p.out, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
