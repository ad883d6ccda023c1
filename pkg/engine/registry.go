package engine

import (
	"fmt"
	"strings"
)

// Registry holds the closed set of engines for one build invocation.
// Selection happens at configuration time; nothing dispatches on runtime
// type inspection.
type Registry struct {
	engines []Engine
}

// NewRegistry builds the engine family against the given search path.
func NewRegistry(paths PathList) *Registry {
	return &Registry{engines: []Engine{
		NewSlurm(paths),
		NewSGE(paths),
	}}
}

// All returns every known engine in declaration order.
func (r *Registry) All() []Engine {
	out := make([]Engine, len(r.engines))
	copy(out, r.engines)
	return out
}

// Select resolves the configured engine name. "auto" (or "") picks the
// first available engine.
func (r *Registry) Select(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		for _, e := range r.engines {
			if e.Available() {
				return e, nil
			}
		}
		return nil, fmt.Errorf("no scheduler engine available on PATH")
	}
	for _, e := range r.engines {
		if e.Name() == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown engine %q", name)
}
