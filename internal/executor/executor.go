package executor

import (
	"context"
	"errors"
	"sort"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
)

// ErrUnobtainableID is returned by a latest-item fetch when the upstream
// responded but no stable identifier could be extracted. The detector treats
// it as an unchanged observation without touching the stored state.
var ErrUnobtainableID = errors.New("latest item id unobtainable")

// ActionExecutor evaluates one action's condition for one area.
type ActionExecutor interface {
	// Name is the catalog action name this executor implements.
	Name() string

	// Detect runs one poll and reports the tri-state outcome. A missing
	// linked account is a signal, never an error.
	Detect(ctx context.Context, area *domain.Area) (domain.Signal, error)
}

// ReactionExecutor performs one reaction's side effect.
type ReactionExecutor interface {
	// Name is the catalog reaction name this executor implements.
	Name() string

	// Execute performs the side effect with the trigger payload.
	Execute(ctx context.Context, area *domain.Area, payload string) error
}

// ActionRegistry maps catalog action names to executors. Built at startup,
// read-only afterwards.
type ActionRegistry struct {
	executors map[string]ActionExecutor
}

// NewActionRegistry builds a registry from the given executors.
func NewActionRegistry(executors ...ActionExecutor) *ActionRegistry {
	r := &ActionRegistry{executors: make(map[string]ActionExecutor, len(executors))}
	for _, e := range executors {
		r.executors[e.Name()] = e
	}
	return r
}

// Get looks up the executor for an action name.
func (r *ActionRegistry) Get(name string) (ActionExecutor, bool) {
	e, ok := r.executors[name]
	return e, ok
}

// Names returns the registered action names, sorted.
func (r *ActionRegistry) Names() []string {
	names := make([]string, 0, len(r.executors))
	for n := range r.executors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReactionRegistry maps catalog reaction names to executors.
type ReactionRegistry struct {
	executors map[string]ReactionExecutor
}

// NewReactionRegistry builds a registry from the given executors.
func NewReactionRegistry(executors ...ReactionExecutor) *ReactionRegistry {
	r := &ReactionRegistry{executors: make(map[string]ReactionExecutor, len(executors))}
	for _, e := range executors {
		r.executors[e.Name()] = e
	}
	return r
}

// Get looks up the executor for a reaction name.
func (r *ReactionRegistry) Get(name string) (ReactionExecutor, bool) {
	e, ok := r.executors[name]
	return e, ok
}

// Names returns the registered reaction names, sorted.
func (r *ReactionRegistry) Names() []string {
	names := make([]string, 0, len(r.executors))
	for n := range r.executors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
