// Package script hosts the Lua hook runtime. User scripts subscribe
// to daemon events and invoke actions from Lua.
package script

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/nvezhov/eyeguardd/internal/actions"
)

// ErrRuntimeClosed is returned when the Lua runtime is closed
var ErrRuntimeClosed = fmt.Errorf("script runtime closed")

// Work represents work to be executed on the Lua VM
// All Lua execution MUST go through this to ensure thread safety
type Work func(ctx context.Context)

// Runtime manages the Lua VM with single-threaded execution
type Runtime struct {
	L        *lua.LState
	registry *actions.Registry

	// Event name -> registered Lua handlers. Only touched from the
	// worker goroutine and from LoadScript (which runs before Run).
	handlers map[string][]*lua.LFunction

	// Work queue for thread-safe Lua execution
	workQueue chan Work

	// Shutdown signaling - closing this channel signals senders to stop
	// Using a channel in select is race-free (unlike mutex + bool)
	closing   chan struct{}
	closeOnce sync.Once
}

// NewRuntime creates a new Lua runtime
func NewRuntime(registry *actions.Registry) *Runtime {
	r := &Runtime{
		L:         lua.NewState(),
		registry:  registry,
		handlers:  make(map[string][]*lua.LFunction),
		workQueue: make(chan Work, 100),
		closing:   make(chan struct{}),
	}

	r.L.PreloadModule("log", logLoader)
	r.L.PreloadModule("eyeguard", r.moduleLoader)

	return r
}

// Close signals the runtime to stop accepting new work and closes the Lua state.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		close(r.closing)
	})
	r.L.Close()
}

// Do queues work to be executed on the Lua VM (thread-safe, non-blocking)
// Returns false if the runtime is closing, queue is full, or context is cancelled.
func (r *Runtime) Do(ctx context.Context, work Work) bool {
	select {
	case <-r.closing:
		log.Warn().Msg("Script runtime closing, dropping work")
		return false
	case <-ctx.Done():
		log.Warn().Msg("Context cancelled, dropping script work")
		return false
	case r.workQueue <- work:
		return true
	default:
		log.Warn().Msg("Script work queue full, dropping work")
		return false
	}
}

// Dispatch queues a hook invocation for the named event. Handlers run
// on the worker goroutine; a missing handler is not an error.
func (r *Runtime) Dispatch(ctx context.Context, event string, data map[string]any) {
	r.Do(ctx, func(_ context.Context) {
		fns := r.handlers[event]
		if len(fns) == 0 {
			return
		}
		tbl := mapToLuaTable(r.L, data)
		for _, fn := range fns {
			err := r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LString(event), tbl)
			if err != nil {
				log.Error().Err(err).Str("event", event).Msg("Script hook failed")
			}
		}
	})
}

// Run starts the Lua worker goroutine - this is the ONLY goroutine that touches Lua
// It includes panic recovery to prevent crashes from killing the worker.
// Exits when context is cancelled or runtime is closed.
func (r *Runtime) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drainQueue(ctx)
			return
		case <-r.closing:
			r.drainQueue(ctx)
			return
		case work := <-r.workQueue:
			r.executeWork(ctx, work)
		}
	}
}

// drainQueue processes any remaining work in the queue before exiting
func (r *Runtime) drainQueue(ctx context.Context) {
	for {
		select {
		case work := <-r.workQueue:
			r.executeWork(ctx, work)
		default:
			return
		}
	}
}

// executeWork runs a single work item with panic recovery
func (r *Runtime) executeWork(ctx context.Context, work Work) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Msg("Script work panicked - worker continuing")
		}
	}()
	r.L.SetContext(ctx)
	work(ctx)
}

// LoadScript loads and executes a Lua script (must be called before Run)
func (r *Runtime) LoadScript(path string) error {
	log.Info().Str("path", path).Msg("Loading script")

	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}

	log.Info().Msg("Script loaded successfully")
	return nil
}
