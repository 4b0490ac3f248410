// Package migration runs and tracks MongoDB schema migrations (index
// creation, mostly). Applied migrations are recorded in the
// "schema_migrations" collection together with their batch number.
//
// Usage (in database/migrations):
//
//	func init() {
//	    migration.Register("20250101000000_users_username_unique", &UsersUsernameUnique{})
//	}
//
// Run from CLI:
//
//	tailorshop migrate             // run all pending
//	tailorshop migrate --rollback  // roll back the last batch
package migration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tailorshop/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(ctx context.Context, db *mongo.Database) error
	Down(ctx context.Context, db *mongo.Database) error
}

// Named pairs a migration with its registry name.
type Named struct {
	Name      string
	Migration Migration
}

var (
	mu       sync.Mutex
	registry []Named
)

// Register adds a migration to the global registry. name should be
// timestamp-prefixed; migrations run in name order.
func Register(name string, m Migration) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, Named{Name: name, Migration: m})
}

// Registered returns the registry sorted by name.
func Registered() []Named {
	mu.Lock()
	out := append([]Named(nil), registry...)
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Record is one applied migration.
type Record struct {
	Name  string    `bson:"name"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"run_at"`
}

// Ledger stores which migrations have run.
type Ledger interface {
	Applied(ctx context.Context) ([]Record, error)
	Add(ctx context.Context, rec Record) error
	Remove(ctx context.Context, name string) error
}

// Runner executes and tracks migrations.
type Runner struct {
	db         *mongo.Database
	ledger     Ledger
	migrations []Named
	out        io.Writer
	now        func() time.Time
}

// New returns a Runner over every registered migration, tracking progress
// in db's schema_migrations collection. Progress lines go to out.
func New(db *mongo.Database, out io.Writer) *Runner {
	return newRunner(db, NewMongoLedger(db), Registered(), out)
}

func newRunner(db *mongo.Database, ledger Ledger, migrations []Named, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, ledger: ledger, migrations: migrations, out: out, now: time.Now}
}

// Pending returns the migrations that have not yet run, in name order.
func (r *Runner) Pending(ctx context.Context) ([]Named, error) {
	applied, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}
	ran := make(map[string]bool, len(applied))
	for _, rec := range applied {
		ran[rec.Name] = true
	}

	var pending []Named
	for _, m := range r.migrations {
		if !ran[m.Name] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Run executes all pending migrations as a single batch and returns how
// many ran.
func (r *Runner) Run(ctx context.Context) (int, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("migration: fetch pending: %w", err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return 0, nil
	}

	applied, err := r.ledger.Applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("migration: fetch applied: %w", err)
	}
	batch := lastBatch(applied) + 1

	for i, m := range pending {
		logger.Info("migration: running", "name", m.Name, "batch", batch)
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", m.Name)

		if err := m.Migration.Up(ctx, r.db); err != nil {
			return i, fmt.Errorf("migration: %s up: %w", m.Name, err)
		}
		if err := r.ledger.Add(ctx, Record{Name: m.Name, Batch: batch, RunAt: r.now()}); err != nil {
			return i, fmt.Errorf("migration: record %s: %w", m.Name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", m.Name)
	}
	return len(pending), nil
}

// Rollback reverses every migration of the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) (int, error) {
	applied, err := r.ledger.Applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("migration: fetch applied: %w", err)
	}
	last := lastBatch(applied)
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var batch []Record
	for _, rec := range applied {
		if rec.Batch == last {
			batch = append(batch, rec)
		}
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Name > batch[j].Name })

	known := make(map[string]Migration, len(r.migrations))
	for _, m := range r.migrations {
		known[m.Name] = m.Migration
	}

	for i, rec := range batch {
		m, ok := known[rec.Name]
		if !ok {
			return i, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		if err := m.Down(ctx, r.db); err != nil {
			return i, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.ledger.Remove(ctx, rec.Name); err != nil {
			return i, err
		}
	}
	return len(batch), nil
}

// Status writes every migration and whether it has run.
func (r *Runner) Status(ctx context.Context) error {
	applied, err := r.ledger.Applied(ctx)
	if err != nil {
		return err
	}
	ran := make(map[string]Record, len(applied))
	for _, rec := range applied {
		ran[rec.Name] = rec
	}

	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Fprintln(r.out, strings.Repeat("-", 80))
	for _, m := range r.migrations {
		if rec, ok := ran[m.Name]; ok {
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", m.Name, "Ran", rec.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", m.Name, "Pending")
		}
	}
	return nil
}

func lastBatch(applied []Record) int {
	max := 0
	for _, rec := range applied {
		if rec.Batch > max {
			max = rec.Batch
		}
	}
	return max
}
