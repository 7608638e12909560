// Package registry provides a global registry for simulation core factories.
// Cores register themselves in init() functions, allowing the hosts to
// discover and instantiate them without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// ErrUnknownCore is returned by Create for an unregistered ID.
var ErrUnknownCore = errors.New("registry: unknown core")

// Core is the contract every simulation core must satisfy. The bridge treats
// the implementation as opaque and possibly globally stateful: it calls these
// methods from a single goroutine only and never concurrently.
type Core interface {
	// ID returns a unique identifier for this core (e.g., "corridor").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or restarts the simulation.
	Reset(cfg core.RuntimeConfig) error

	// Tick advances the simulation by exactly one fixed step using the given
	// command frame. A non-nil error is an unrecoverable fault.
	Tick(cmd core.CommandFrame) error

	// Render draws the current state. The returned buffer stays owned by
	// the core and is only valid until the next call into the core.
	Render() (*core.PixelBuffer, error)

	// PullAudio returns the audio frames mixed since the previous call.
	PullAudio() []core.AudioFrame
}

// CoreInfo contains metadata about a registered core.
type CoreInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a core.
type Factory func() Core

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a core factory to the registry.
// Typically called from a core's init() function.
// Panics if a core with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: core %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	titles[id] = f().Title()
}

// List returns information about all registered cores, sorted by ID.
func List() []CoreInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]CoreInfo, 0, len(factories))
	for id := range factories {
		result = append(result, CoreInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new core by its ID.
func Create(id string) (Core, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCore, id)
	}

	return f(), nil
}

// Exists checks if a core with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
