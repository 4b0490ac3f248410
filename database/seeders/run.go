// Package seeders provides a registry of seed functions run by
// `tailorshop seed`.
//
//	func init() {
//	    seeders.Register("admin", SeedAdmin)
//	}
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shashiranjanraj/tailorshop/app/services"
)

// Env is what a seeder may touch.
type Env struct {
	Auth          *services.AuthService
	AdminUsername string
	AdminPassword string
	Out           io.Writer
}

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, env Env) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry. Call it from init().
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order and stops
// on the first error.
func RunAll(ctx context.Context, env Env) error {
	if env.Out == nil {
		env.Out = io.Discard
	}

	mu.Lock()
	current := append([]seederEntry(nil), entries...)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Fprintln(env.Out, "  (no seeders registered)")
		return nil
	}

	for _, e := range current {
		fmt.Fprintf(env.Out, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, env); err != nil {
			fmt.Fprintln(env.Out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(env.Out, "done")
	}
	return nil
}
