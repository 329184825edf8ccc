package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/beanvault/coffee-journal/internal/scan"
)

// runState is the controller's explicit two-state machine.
type runState int

const (
	stateIdle runState = iota
	stateRunning
)

// Result is delivered once per completed scan run.
type Result struct {
	Fields scan.LabelFields
	Err    error
}

// Controller serializes scan runs and collapses re-invocations. Requesting a
// scan while one is running does not start a second run; it records a single
// pending rerun. When the active run completes, the rerun starts with the
// then-current inputs, so a burst of rapid photo changes yields exactly one
// follow-up run. In-flight runs are never cancelled; a stale run finishes and
// its result is immediately superseded by the rerun's.
type Controller struct {
	runner *Runner
	logger *slog.Logger

	mu      sync.Mutex
	state   runState
	pending bool
	latest  Inputs

	results chan Result
}

func NewController(runner *Runner, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		runner:  runner,
		logger:  logger,
		results: make(chan Result, 8),
	}
}

// Request asks for a scan of the given inputs. Returns immediately; results
// arrive on Results() in completion order.
func (c *Controller) Request(ctx context.Context, in Inputs) {
	c.mu.Lock()
	c.latest = in
	if c.state == stateRunning {
		c.pending = true
		c.mu.Unlock()
		c.logger.Debug("scan.controller.rerun_pending", "front", in.FrontPath)
		return
	}
	c.state = stateRunning
	c.mu.Unlock()

	go c.runLoop(ctx)
}

func (c *Controller) runLoop(ctx context.Context) {
	for {
		c.mu.Lock()
		in := c.latest
		c.mu.Unlock()

		fields, err := c.runner.RunScan(ctx, in)
		if err != nil {
			// engine-level failure: log and deliver an empty result; the
			// caller's form stays editable by hand
			c.logger.Error("scan.controller.run_failed", "front", in.FrontPath, "error", err)
		}

		select {
		case c.results <- Result{Fields: fields, Err: err}:
		default:
			c.logger.Warn("scan.controller.result_dropped", "front", in.FrontPath)
		}

		c.mu.Lock()
		if c.pending {
			c.pending = false
			c.mu.Unlock()
			continue // rerun with the latest inputs
		}
		c.state = stateIdle
		c.mu.Unlock()
		return
	}
}

// Results delivers one Result per completed run.
func (c *Controller) Results() <-chan Result {
	return c.results
}

// Running reports whether a scan run is in flight.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateRunning
}
