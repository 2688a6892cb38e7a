package aggregate

import (
	"context"
	"fmt"
	"sync"

	"hypoavg/internal"
)

// State is the coordinator's position in the single-flight state machine
type State string

const (
	StateIdle         State = "idle"
	StateRunning      State = "running"
	StatePendingRerun State = "pending_rerun"
)

// Runner executes one complete aggregation pass
type Runner interface {
	Run(ctx context.Context) (*PassResult, error)
}

// PassObserver is told about every finished pass, outside the coordinator lock
type PassObserver interface {
	PassFinished(status Status)
}

// Status is a snapshot of the coordinator
type Status struct {
	State     State       `json:"state"`
	Passes    int         `json:"passes"`
	Triggers  int         `json:"triggers"`
	Coalesced int         `json:"coalesced"`
	LastPass  *PassResult `json:"lastPass,omitempty"`
	LastError string      `json:"lastError,omitempty"`
}

// Coordinator serializes aggregation passes onto one worker goroutine.
//
//	Idle         + trigger -> Running (pass starts)
//	Running      + trigger -> PendingRerun
//	PendingRerun + trigger -> PendingRerun (coalesced)
//	pass done, rerun flag  -> Running (fresh pass starts immediately)
//	pass done, no flag     -> Idle
//
// At most one pass is in flight, and any burst of triggers arriving during a pass
// yields exactly one more pass after it.
type Coordinator struct {
	runner    Runner
	logger    *internal.Logger
	metrics   *Metrics
	observers []PassObserver

	mu        sync.Mutex
	state     State
	scheduled bool          // a pass was requested but has not started yet
	idle      chan struct{} // closed while state == StateIdle
	wake      chan struct{}
	started   bool
	stopped   bool

	passes    int
	triggers  int
	coalesced int
	last      *PassResult
	lastErr   error
}

// NewCoordinator creates an idle coordinator. Call Start to launch its worker.
func NewCoordinator(runner Runner, logger *internal.Logger, metrics *Metrics) *Coordinator {
	idle := make(chan struct{})
	close(idle)
	return &Coordinator{
		runner:  runner,
		logger:  logger.WithComponent("Coordinator"),
		metrics: metrics,
		state:   StateIdle,
		idle:    idle,
		wake:    make(chan struct{}, 1),
	}
}

// Observe registers o for pass notifications. Call before Start.
func (c *Coordinator) Observe(o PassObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Trigger requests a recompute. It never blocks and never starts a second concurrent pass.
// Once the worker has stopped, triggers are counted and otherwise ignored.
func (c *Coordinator) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggers++
	if c.stopped {
		c.logger.Debug("worker stopped, ignoring trigger")
		return
	}
	coalesced := false
	switch {
	case c.scheduled:
		// the requested pass has not started, so it will see this trigger's data
		coalesced = true
	case c.state == StateIdle:
		c.state = StateRunning
		c.scheduled = true
		c.idle = make(chan struct{})
		c.wake <- struct{}{}
	case c.state == StateRunning:
		c.state = StatePendingRerun
	default:
		coalesced = true
	}

	if coalesced {
		c.coalesced++
	}
	c.metrics.observeTrigger(coalesced)
	c.logger.Trace("trigger received, state=%s", c.state)
}

// Start launches the worker. It returns once the worker is running; the worker exits
// when ctx is cancelled, after finishing any pass already in flight.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.loop(ctx)
}

// WaitIdle blocks until no pass is running or scheduled, or ctx ends
func (c *Coordinator) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a snapshot of the state machine and the last pass
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// snapshot requires c.mu
func (c *Coordinator) snapshot() Status {
	s := Status{
		State:     c.state,
		Passes:    c.passes,
		Triggers:  c.triggers,
		Coalesced: c.coalesced,
	}
	if c.last != nil {
		last := *c.last
		s.LastPass = &last
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

func (c *Coordinator) loop(ctx context.Context) {
	c.logger.Debug("worker started")
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
		}
		if ctx.Err() != nil {
			return
		}
		for c.runOnce(ctx) {
		}
	}
}

// runOnce runs one pass and reports whether a coalesced rerun must follow
func (c *Coordinator) runOnce(ctx context.Context) bool {
	c.mu.Lock()
	c.scheduled = false
	c.mu.Unlock()

	c.metrics.setRunning(true)
	result, err := c.safeRun(ctx)
	c.metrics.setRunning(false)
	c.metrics.observePass(result, err)
	if err != nil {
		c.logger.Error("aggregation pass failed: %v", err)
	}

	c.mu.Lock()
	c.passes++
	c.lastErr = err
	if result != nil {
		c.last = result
	}

	rerun := false
	if c.state == StatePendingRerun {
		if ctx.Err() == nil {
			c.state = StateRunning
			c.scheduled = true
			rerun = true
		} else {
			c.logger.Info("shutting down, dropping pending rerun")
		}
	}
	var idle chan struct{}
	if !rerun {
		c.state = StateIdle
		idle = c.idle
	}
	observers := c.observers
	status := c.snapshot()
	c.mu.Unlock()

	for _, o := range observers {
		o.PassFinished(status)
	}
	// observers have been told before waiters are released
	if idle != nil {
		close(idle)
	}
	return rerun
}

func (c *Coordinator) safeRun(ctx context.Context) (result *PassResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("aggregation pass panicked: %v", r)
		}
	}()
	return c.runner.Run(ctx)
}

// shutdown releases a pass that was requested but will never start
func (c *Coordinator) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.scheduled {
		c.scheduled = false
		select {
		case <-c.wake:
		default:
		}
		c.state = StateIdle
		close(c.idle)
	}
	c.logger.Debug("worker stopped")
}
