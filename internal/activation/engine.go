// Package activation implements the stochastic fault propagation engine.
// Each activation walks the invocation graph depth-first from a set of root
// components, sampling faults, inheriting errors down the call tree and
// truncating every branch that fails.
package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nvandessel/sflsim/internal/logging"
	"github.com/nvandessel/sflsim/internal/topology"
	"github.com/nvandessel/sflsim/internal/trace"
)

// ErrAttemptsExhausted is returned by ActivateUntilFailing when a configured
// attempt cap is reached before any trace failed.
var ErrAttemptsExhausted = errors.New("no failing trace within attempt cap")

// Source is the uniform random source consumed by the engine. Float64 must
// return values in [0, 1]. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Config holds tunable parameters for the activation engine.
type Config struct {
	// MaxAttempts caps ActivateUntilFailing. Zero means unbounded.
	MaxAttempts int

	// Logger receives per-trace records at debug and per-node records at
	// trace level. Nil silences the engine.
	Logger *slog.Logger

	// Events receives one JSONL event per produced trace. Nil is allowed.
	Events *logging.EventLog
}

// DefaultConfig returns the default engine configuration: unbounded retries
// and no logging.
func DefaultConfig() Config {
	return Config{}
}

// Engine samples traces over a topology. Every trace it produces is
// appended to the topology's history.
type Engine struct {
	topo   *topology.Topology
	rng    Source
	config Config
	logger *slog.Logger
}

// NewEngine creates an activation engine drawing from rng.
func NewEngine(t *topology.Topology, rng Source, config Config) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		topo:   t,
		rng:    rng,
		config: config,
		logger: logger,
	}
}

// Activate runs one test execution that invokes every named root in order
// and returns the resulting trace. All names are resolved before any sample
// is drawn, so an unknown root leaves the RNG stream and history untouched.
func (e *Engine) Activate(roots []string) (*trace.Trace, error) {
	idx, err := e.resolve(roots)
	if err != nil {
		return nil, err
	}
	return e.activate(idx), nil
}

// ActivateMany runs count activations. fn, if non-nil, is called with each
// trace as it is produced.
func (e *Engine) ActivateMany(roots []string, count int, fn func(i int, tr *trace.Trace)) ([]*trace.Trace, error) {
	return e.ActivateManyContext(context.Background(), roots, count, fn)
}

// ActivateManyContext is ActivateMany with cancellation. ctx is checked
// before each activation; on cancellation the traces produced so far are
// returned with ctx's error.
func (e *Engine) ActivateManyContext(ctx context.Context, roots []string, count int, fn func(i int, tr *trace.Trace)) ([]*trace.Trace, error) {
	idx, err := e.resolve(roots)
	if err != nil {
		return nil, err
	}
	traces := make([]*trace.Trace, 0, max(count, 0))
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return traces, fmt.Errorf("activate many after %d runs: %w", i, err)
		}
		tr := e.activate(idx)
		if fn != nil {
			fn(i, tr)
		}
		traces = append(traces, tr)
	}
	return traces, nil
}

// ActivateUntilFailing repeats activations until one produces a failing
// trace and returns every trace including that one. Without a MaxAttempts cap
// it does not return until a fault fires. When the cap is hit the traces
// produced so far are returned together with ErrAttemptsExhausted.
func (e *Engine) ActivateUntilFailing(roots []string, fn func(i int, tr *trace.Trace)) ([]*trace.Trace, error) {
	return e.ActivateUntilFailingContext(context.Background(), roots, fn)
}

// ActivateUntilFailingContext is ActivateUntilFailing with cancellation.
// ctx is checked before each attempt, so an uncapped search over a topology
// that never fails can still be stopped. The traces produced so far are
// returned with ctx's error.
func (e *Engine) ActivateUntilFailingContext(ctx context.Context, roots []string, fn func(i int, tr *trace.Trace)) ([]*trace.Trace, error) {
	idx, err := e.resolve(roots)
	if err != nil {
		return nil, err
	}
	var traces []*trace.Trace
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return traces, fmt.Errorf("activate until failing after %d attempts: %w", i, err)
		}
		if e.config.MaxAttempts > 0 && i >= e.config.MaxAttempts {
			return traces, fmt.Errorf("activate until failing after %d attempts: %w", i, ErrAttemptsExhausted)
		}
		tr := e.activate(idx)
		if fn != nil {
			fn(i, tr)
		}
		traces = append(traces, tr)
		if tr.Failing() {
			return traces, nil
		}
	}
}

func (e *Engine) resolve(roots []string) ([]int, error) {
	idx := make([]int, 0, len(roots))
	for _, name := range roots {
		c, err := e.topo.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("activate: %w", err)
		}
		idx = append(idx, c.Index())
	}
	return idx, nil
}

func (e *Engine) activate(roots []int) *trace.Trace {
	nodes := make([]*trace.Node, 0, len(roots))
	for _, r := range roots {
		nodes = append(nodes, e.walk(r))
	}
	tr := trace.New(nodes...)
	e.topo.AppendTrace(tr)

	index := e.topo.TraceCount() - 1
	verdict := tr.Verdict().String()
	e.logger.Debug("trace simulated", "index", index, "verdict", verdict, "failure", tr.HasFailure())
	e.config.Events.Log(map[string]any{
		"event":   "trace",
		"index":   index,
		"verdict": verdict,
		"error":   tr.HasError(),
		"failure": tr.HasFailure(),
	})
	return tr
}

// frame is one entry of the explicit depth-first stack.
type frame struct {
	node  *trace.Node
	peers []topology.Peer
	next  int
}

// walk activates the component at index root as a top-level invocation.
//
// Draw order matches a recursive depth-first activation: a node's health
// draw, then its failure draw if it carries an error, then for each peer in
// order the edge draw followed by the peer's entire subtree.
func (e *Engine) walk(root int) *trace.Node {
	rootNode := e.enter(root, false)
	stack := []frame{{node: rootNode, peers: e.topo.Peers(root)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.node.Failure || top.next >= len(top.peers) {
			stack = stack[:len(stack)-1]
			continue
		}
		p := top.peers[top.next]
		top.next++
		if e.rng.Float64() > p.Weight {
			continue
		}
		child := e.enter(p.Index, top.node.Error)
		top.node.Add(child)
		stack = append(stack, frame{node: child, peers: e.topo.Peers(p.Index)})
	}
	return rootNode
}

// enter samples the outcome bits of a single invocation.
func (e *Engine) enter(i int, parentError bool) *trace.Node {
	c := e.topo.Component(i)
	n := trace.NewNode(c.Name)

	// Links consume a health draw like any other component.
	u := e.rng.Float64()
	if u > c.Health && !c.IsLink() {
		n.Fault = true
	}
	n.Error = parentError || n.Fault

	if n.Error {
		if e.rng.Float64() <= c.FailureProbability {
			n.Failure = true
		}
		if c.IsFatal() {
			n.Failure = true
		}
	}

	e.logger.Log(context.Background(), logging.LevelTrace, "invocation",
		"component", c.Name, "fault", n.Fault, "error", n.Error, "failure", n.Failure)
	return n
}
