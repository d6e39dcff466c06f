// Package processor provides the annotation-processor plugin registry.
//
// Processors are registered by name with a factory. An invocation that
// names a processor the registry does not know, or whose factory fails,
// aborts with a *LoadError before any compilation happens. That failure
// is deliberately distinct from a compile error: a missing plugin is a
// deployment problem, not a problem with the sources.
package processor

import (
	"errors"
	"fmt"
)

// ErrUnknownProcessor indicates a processor name with no registered factory.
var ErrUnknownProcessor = errors.New("unknown processor")

// Context carries the inputs a processor may inspect and the directory it
// writes generated sources into.
type Context struct {
	// GeneratedSourceDir is the sink for generated source files.
	GeneratedSourceDir string

	// SourceNames lists the display names of the sources being compiled.
	SourceNames []string
}

// Processor generates sources before compilation.
type Processor interface {
	Name() string
	Generate(ctx Context) error
}

// Factory constructs one processor instance.
type Factory func() (Processor, error)

// LoadError reports a processor that could not be instantiated.
// Use errors.As to distinguish it from compile failures.
type LoadError struct {
	Processor string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load processor %s: %v", e.Processor, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Registry maps processor names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous registration.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Load instantiates one processor per name, in order. The first name that
// is unknown or whose factory fails aborts the load with a *LoadError.
func (r *Registry) Load(names []string) ([]Processor, error) {
	processors := make([]Processor, 0, len(names))

	for _, name := range names {
		factory, ok := r.factories[name]
		if !ok {
			return nil, &LoadError{Processor: name, Err: ErrUnknownProcessor}
		}

		p, err := factory()
		if err != nil {
			return nil, &LoadError{Processor: name, Err: err}
		}

		processors = append(processors, p)
	}

	return processors, nil
}
