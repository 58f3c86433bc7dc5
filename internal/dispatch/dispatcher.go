package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/splitbot-dev/splitbot/internal/dependencies/clock"
	"github.com/splitbot-dev/splitbot/internal/gateway"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// Status tags the outcome of a message wait
type Status int

const (
	// Matched means a qualifying message arrived before the deadline
	Matched Status = iota
	// TimedOut means the deadline elapsed with no qualifying message
	TimedOut
	// Canceled means the wait's context was canceled
	Canceled
)

// Result is the outcome of AwaitMessage
type Result struct {
	Status  Status
	Message model.TextMessage
}

// waiter is one suspended AwaitMessage call. claimed is the commit
// point between a qualifying message and the deadline: whichever side
// wins the compare-and-swap owns the outcome.
type waiter struct {
	pred    func(model.TextMessage) bool
	matched chan model.TextMessage
	claimed atomic.Bool
}

// Dispatcher fans gateway events out to at most one consumer: the first
// open message wait whose predicate accepts the message, or the control
// handler for button presses. Waits suspend on channels, so any number
// of them make progress concurrently.
type Dispatcher struct {
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	nextID  int64
	waiters map[int64]*waiter

	controlMu      sync.RWMutex
	controlHandler func(context.Context, model.ControlActivated)
}

// Ensure Dispatcher implements the gateway handler
var _ gateway.Handler = (*Dispatcher)(nil)

// New creates a new Dispatcher
func New(clk clock.Clock, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		clock:   clk,
		logger:  logger.With(slog.String("component", "dispatch")),
		waiters: make(map[int64]*waiter),
	}
}

// SetControlHandler registers the handler for control activations
func (d *Dispatcher) SetControlHandler(h func(context.Context, model.ControlActivated)) {
	d.controlMu.Lock()
	defer d.controlMu.Unlock()
	d.controlHandler = h
}

// HandleMessage routes a chat message to the first open wait that
// accepts it. Messages nobody is waiting for are dropped.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg model.TextMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, w := range d.waiters {
		if !w.pred(msg) {
			continue
		}
		if !w.claimed.CompareAndSwap(false, true) {
			// This wait already timed out; it is being torn down
			continue
		}
		w.matched <- msg
		delete(d.waiters, id)
		return
	}
}

// HandleControl routes a button press to the registered control handler
func (d *Dispatcher) HandleControl(ctx context.Context, ev model.ControlActivated) {
	d.controlMu.RLock()
	h := d.controlHandler
	d.controlMu.RUnlock()
	if h == nil {
		d.logger.Warn("control activation with no handler registered",
			slog.String("control_id", string(ev.ControlID)))
		return
	}
	h(ctx, ev)
}

// AwaitMessage suspends until the first message satisfying pred arrives,
// the deadline elapses, or ctx is canceled. Exactly one of the three
// outcomes is committed: a message that races the deadline either wins
// the claim and is returned, or loses and is ignored.
func (d *Dispatcher) AwaitMessage(ctx context.Context, pred func(model.TextMessage) bool, deadline time.Time) Result {
	w := &waiter{
		pred:    pred,
		matched: make(chan model.TextMessage, 1),
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.waiters[id] = w
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.waiters, id)
		d.mu.Unlock()
	}()

	timer := time.NewTimer(deadline.Sub(d.clock.Now()))
	defer timer.Stop()

	select {
	case msg := <-w.matched:
		return Result{Status: Matched, Message: msg}
	case <-timer.C:
		if w.claimed.CompareAndSwap(false, true) {
			return Result{Status: TimedOut}
		}
		// A message committed first; honor it
		return Result{Status: Matched, Message: <-w.matched}
	case <-ctx.Done():
		if w.claimed.CompareAndSwap(false, true) {
			return Result{Status: Canceled}
		}
		return Result{Status: Matched, Message: <-w.matched}
	}
}

// OpenWaits reports how many message waits are currently suspended
func (d *Dispatcher) OpenWaits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters)
}
