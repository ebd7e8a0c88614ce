// Package lifecycle coordinates startup, readiness and shutdown of the
// long-lived subsystems of the server.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Hook runs once during startup or shutdown.
type Hook func(ctx context.Context) error

// Probe reports whether a dependency is currently usable.
type Probe func(ctx context.Context) error

type shutdownHook struct {
	name string
	fn   Hook
}

// Coordinator collects lifecycle hooks from each subsystem. Startup hooks run
// concurrently; shutdown hooks run in reverse registration order so that
// consumers stop before the resources they depend on.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup    *errgroup.Group
	startupCtx context.Context

	mu       sync.RWMutex
	shutdown []shutdownHook
	probes   map[string]Probe
	ready    bool
}

// New creates a Coordinator whose context is cancelled on Shutdown.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	return &Coordinator{
		ctx:        ctx,
		cancel:     cancel,
		startup:    g,
		startupCtx: gctx,
		probes:     make(map[string]Probe),
	}
}

// Context returns the coordinator's context, cancelled on Shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup starts fn immediately. The first failing hook cancels the
// context passed to the others.
func (c *Coordinator) OnStartup(name string, fn Hook) {
	c.startup.Go(func() error {
		if err := fn(c.startupCtx); err != nil {
			return fmt.Errorf("startup %s: %w", name, err)
		}
		return nil
	})
}

// OnShutdown registers fn to run during Shutdown.
func (c *Coordinator) OnShutdown(name string, fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = append(c.shutdown, shutdownHook{name: name, fn: fn})
}

// AddProbe registers a readiness check under name.
func (c *Coordinator) AddProbe(name string, probe Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = probe
}

// WaitForStartup blocks until every startup hook returned. The coordinator
// becomes ready only if all of them succeeded.
func (c *Coordinator) WaitForStartup() error {
	if err := c.startup.Wait(); err != nil {
		return err
	}
	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	return nil
}

// Ready reports whether startup completed successfully and Shutdown has not
// begun.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Check runs every probe and returns the failures by name. An empty map means
// all dependencies are reachable.
func (c *Coordinator) Check(ctx context.Context) map[string]error {
	c.mu.RLock()
	probes := make(map[string]Probe, len(c.probes))
	for name, p := range c.probes {
		probes[name] = p
	}
	c.mu.RUnlock()

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
		wg     sync.WaitGroup
	)
	for name, p := range probes {
		wg.Go(func() {
			if err := p(ctx); err != nil {
				mu.Lock()
				failed[name] = err
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return failed
}

// Shutdown marks the coordinator not ready, cancels its context and runs the
// shutdown hooks in reverse order, giving all of them timeout in total.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.mu.Lock()
	c.ready = false
	hooks := slices.Clone(c.shutdown)
	c.mu.Unlock()

	c.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, h := range slices.Backward(hooks) {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: timeout after %v", h.name, timeout))
			continue
		}
		if err := h.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", h.name, err))
		}
	}
	return errors.Join(errs...)
}
