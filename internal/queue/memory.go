package queue

import (
	"context"
	"errors"
	"sync"
)

// Handler processes one message. The context it receives is detached from the
// request that enqueued the message.
type Handler func(ctx context.Context, msg Message)

// Dispatcher is the in-process queue backend: every Send launches its own
// goroutine. There is no admission control; an unbounded number of runs can
// be in flight at once.
type Dispatcher struct {
	handler Handler
	wg      sync.WaitGroup
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(handler Handler) *Dispatcher {
	return &Dispatcher{handler: handler}
}

// Send launches the handler in a fresh goroutine and returns immediately.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	if d.handler == nil {
		return errors.New("dispatcher has no handler")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.handler(context.Background(), msg)
	}()
	return nil
}

// Wait blocks until all in-flight messages finish. Used at shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

var _ Client = (*Dispatcher)(nil)
