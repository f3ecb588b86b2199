package command

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hpungsan/quill/internal/errors"
)

// Interpreter dispatches one line of input to a registered command handler
// and converts every fault into a failed Result. Nothing escapes Execute as
// an error or a panic.
//
// Execute holds a mutex for the duration of the command, so concurrent
// callers cannot interleave the repositories' read-modify-write cycles.
type Interpreter struct {
	registry *Registry
	mu       sync.Mutex
}

// NewInterpreter creates an interpreter over the given registry.
func NewInterpreter(registry *Registry) *Interpreter {
	return &Interpreter{registry: registry}
}

// Registry returns the command catalog, for help/discovery surfaces.
func (i *Interpreter) Registry() *Registry {
	return i.registry
}

// Execute trims and tokenizes the input on runs of whitespace, looks up the
// first token as the command name, and invokes the handler with the rest.
func (i *Interpreter) Execute(ctx context.Context, line string) *Result {
	i.mu.Lock()
	defer i.mu.Unlock()

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return failure(errors.NewInvalidRequest(`Please enter a command. Use "help" to see available commands.`))
	}

	def, ok := i.registry.Lookup(tokens[0])
	if !ok {
		return failure(errors.NewUnknownCommand(tokens[0]))
	}

	result, err := invoke(ctx, def, tokens[1:])
	if err != nil {
		return failure(err)
	}
	return result
}

// invoke runs the handler, converting a panic into an internal error so the
// fault boundary in Execute holds even for programming mistakes.
func invoke(ctx context.Context, def *Definition, args []string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewInternal(fmt.Errorf("command %s panicked: %v", def.Name, r))
		}
	}()
	return def.Handler(ctx, args)
}

// failure converts an error into a failed Result with a human-readable
// message.
func failure(err error) *Result {
	if qErr, ok := err.(*errors.QuillError); ok {
		return &Result{Success: false, Message: qErr.Message}
	}
	return &Result{Success: false, Message: fmt.Sprintf("Error executing command: %v", err)}
}
