// Package snapshot tracks the current workspace snapshot.
package snapshot

import (
	"context"
	"sync"

	tally "github.com/uber-go/tally/v4"
	"github.com/tintoy/docfx/src/docfx/entity"
	"github.com/tintoy/docfx/src/docfx/internal/errors"
	"go.uber.org/fx"
)

// Module provides a new Repository.
var Module = fx.Provide(New)

// Repository holds the accumulating workspace state. Folds replace the
// current snapshot atomically, one project at a time.
type Repository interface {
	Current(ctx context.Context) *entity.Snapshot
	Apply(ctx context.Context, next *entity.Snapshot) error
	ProjectByPath(ctx context.Context, path string) (*entity.Project, bool)
}

type repository struct {
	mu      sync.Mutex
	current *entity.Snapshot
	stats   tally.Scope
}

// New returns a repository holding an empty snapshot.
func New(stats tally.Scope) Repository {
	return &repository{
		current: entity.NewSnapshot(),
		stats:   stats,
	}
}

// Current returns the current snapshot.
func (r *repository) Current(ctx context.Context) *entity.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// Apply atomically replaces the current snapshot with the folded result.
func (r *repository) Apply(ctx context.Context, next *entity.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if next == nil {
		return errors.New("can't apply nil snapshot")
	}
	r.current = next
	r.stats.Gauge("workspace_projects").Update(float64(next.Len()))
	return nil
}

// ProjectByPath returns the project with the given normalized file path from
// the current snapshot, if present.
func (r *repository) ProjectByPath(ctx context.Context, path string) (*entity.Project, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current.ProjectByPath(path)
}
