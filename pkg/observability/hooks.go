// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about vertex program runs and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] implements every hook interface on top of a
// prometheus.Registerer.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetComputerHooks(hooks)
//	    observability.SetCacheHooks(hooks)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Computer().OnRunStart(ctx, "pageRank", vertexCount)
//	// ... run supersteps ...
//	observability.Computer().OnRunComplete(ctx, "pageRank", supersteps, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Computer Hooks
// =============================================================================

// ComputerHooks receives events from the vertex program engine.
type ComputerHooks interface {
	// OnRunStart is called after setup, before the first superstep.
	OnRunStart(ctx context.Context, program string, vertices int)

	// OnSuperstep is called after each superstep barrier.
	OnSuperstep(ctx context.Context, program string, superstep, messages int, duration time.Duration)

	// OnRunComplete is called once per run, with the error that aborted it.
	OnRunComplete(ctx context.Context, program string, supersteps int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopComputerHooks is a no-op implementation of ComputerHooks.
type NoopComputerHooks struct{}

func (NoopComputerHooks) OnRunStart(context.Context, string, int)                         {}
func (NoopComputerHooks) OnSuperstep(context.Context, string, int, int, time.Duration)    {}
func (NoopComputerHooks) OnRunComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	computerHooks ComputerHooks = NoopComputerHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetComputerHooks registers custom vertex program hooks.
// This should be called once at application startup before any computation.
func SetComputerHooks(h ComputerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		computerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Computer returns the registered vertex program hooks.
func Computer() ComputerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return computerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	computerHooks = NoopComputerHooks{}
	cacheHooks = NoopCacheHooks{}
}
