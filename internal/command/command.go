// Package command implements the command registry and the interpreter that
// turns one line of user input into a repository mutation and a uniform
// result envelope.
package command

import (
	"context"
	"strings"
)

// Result is the uniform envelope returned by every command invocation.
// Data is command-specific; callers treat it as opaque unless they know the
// command that produced it.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Handler executes a command given its positional string arguments.
// The tokenizer does not understand quoting; handlers that accept multi-word
// values re-join trailing tokens themselves.
type Handler func(ctx context.Context, args []string) (*Result, error)

// Definition describes one named command.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Usage       string  `json:"usage"`
	Handler     Handler `json:"-"`
}

// Registry is a fixed catalog of command definitions, built once at startup.
// Lookup is case-insensitive exact match; listing preserves registration
// order for display purposes only.
type Registry struct {
	byName  map[string]*Definition
	ordered []*Definition
}

// NewRegistry builds a registry from the given definitions.
func NewRegistry(defs []*Definition) *Registry {
	r := &Registry{
		byName:  make(map[string]*Definition, len(defs)),
		ordered: defs,
	}
	for _, def := range defs {
		r.byName[strings.ToLower(def.Name)] = def
	}
	return r
}

// Lookup finds a definition by name, case-insensitively.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.byName[strings.ToLower(name)]
	return def, ok
}

// List returns all definitions in registration order.
func (r *Registry) List() []*Definition {
	return r.ordered
}
