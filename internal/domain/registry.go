// Package domain implements the policy evaluation engine: classification of
// changed paths, new-test detection, dual-revision test execution and the
// per-module policy state machine.
package domain

import (
	"fmt"

	m "testgate.dev/pkg/testgate/internal/model"
)

// Registry holds the compiled module definitions for one run. Read-only
// after construction.
type Registry struct {
	modules []m.Module
	byName  map[string]int
}

// NewRegistry constructs a Registry from compiled modules. Module names
// must be unique and at least one module must be configured.
func NewRegistry(modules []m.Module) (*Registry, error) {
	if len(modules) == 0 {
		return nil, &m.ConfigError{Reason: "no modules configured"}
	}

	byName := make(map[string]int, len(modules))

	for i, module := range modules {
		if _, ok := byName[module.Name]; ok {
			return nil, &m.ConfigError{Reason: fmt.Sprintf("duplicate module name %q", module.Name)}
		}

		byName[module.Name] = i
	}

	return &Registry{modules: modules, byName: byName}, nil
}

// Modules returns the modules in configuration order.
func (r *Registry) Modules() []m.Module {
	out := make([]m.Module, len(r.modules))
	copy(out, r.modules)

	return out
}

// Lookup finds a module by name.
func (r *Registry) Lookup(name string) (m.Module, bool) {
	i, ok := r.byName[name]
	if !ok {
		return m.Module{}, false
	}

	return r.modules[i], true
}

// Len returns the number of configured modules.
func (r *Registry) Len() int {
	return len(r.modules)
}
