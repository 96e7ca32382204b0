package check

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Func is a registered check function.
type Func func(ctx context.Context) []Message

// Tags used when registering checks.
const (
	TagFields   = "fields"
	TagModels   = "models"
	TagDatabase = "database"
)

type registered struct {
	fn   Func
	tags []string
}

// Registry holds the registered checks.
type Registry struct {
	mu     sync.RWMutex
	checks []registered
	limit  int
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithConcurrency limits how many checks run at the same time.
// Zero or a negative value means no limit.
func WithConcurrency(n int) RegistryOption {
	return func(r *Registry) {
		r.limit = n
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a check function with the given tags.
func (r *Registry) Register(fn Func, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, registered{fn: fn, tags: tags})
}

// RegisterChecker adds a Checker with the given tags.
func (r *Registry) RegisterChecker(c Checker, tags ...string) {
	r.Register(func(context.Context) []Message {
		return c.Check()
	}, tags...)
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.checks)
}

// Run executes the checks matching any of the given tags (all checks when no
// tag is given). Messages are returned in registration order.
func (r *Registry) Run(ctx context.Context, tags ...string) (*Result, error) {
	r.mu.RLock()
	var selected []registered
	for _, c := range r.checks {
		if matches(c.tags, tags) {
			selected = append(selected, c)
		}
	}
	limit := r.limit
	r.mu.RUnlock()

	out := make([][]Message, len(selected))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, c := range selected {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = c.fn(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := &Result{}
	for _, msgs := range out {
		res.Messages = append(res.Messages, msgs...)
	}
	slog.Debug("checks completed", "checks", len(selected), "messages", len(res.Messages), "errors", len(res.Errors()))
	return res, nil
}

func matches(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, t := range want {
		if slices.Contains(have, t) {
			return true
		}
	}
	return false
}

// Default is the registry used by the package-level functions.
var Default = NewRegistry()

// Register adds a check function to the Default registry.
func Register(fn Func, tags ...string) {
	Default.Register(fn, tags...)
}

// RegisterChecker adds a Checker to the Default registry.
func RegisterChecker(c Checker, tags ...string) {
	Default.RegisterChecker(c, tags...)
}

// Run executes the checks of the Default registry.
func Run(ctx context.Context, tags ...string) (*Result, error) {
	return Default.Run(ctx, tags...)
}
