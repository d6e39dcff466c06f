// Package toolchain abstracts the compiler backend behind a task
// interface, so the build orchestrator never depends on how the compiler
// is invoked. The default backend shells out to javac; tests substitute
// in-process fakes.
package toolchain

import (
	"io"

	"jbuild/internal/processor"
)

// SourceUnit is one compilable input: either a loose file on disk or an
// entry inside a source archive. Archive-backed units read their content
// on demand through Open; they are never spooled to disk by the caller.
type SourceUnit struct {
	// Name identifies the source in diagnostics, e.g. "Foo.java" or
	// "lib-src.jar!/com/example/Foo.java".
	Name string

	// Path is the on-disk location for loose files; empty for
	// archive-backed units.
	Path string

	// Open yields the source content.
	Open func() (io.ReadCloser, error)
}

// Locations holds the search paths and output directories for one task.
type Locations struct {
	ClassPath []string

	// PlatformClassPath combines boot entries followed by extension
	// entries, in that order.
	PlatformClassPath []string

	ProcessorPath []string

	// ClassOutputDir receives compiled classes. Always set.
	ClassOutputDir string

	// GeneratedSourceDir receives processor-generated sources; empty
	// when no generated-source output was requested.
	GeneratedSourceDir string
}

// Task is one configured compilation, ready to run.
type Task interface {
	// Attach adds annotation processors to run as part of the task.
	Attach(procs []processor.Processor)

	// Run executes the compilation. The returned bool reports compile
	// success; compile errors are diagnostics, not Go errors. A non-nil
	// error means the task could not be executed at all.
	Run() (bool, error)
}

// Toolchain creates compile tasks.
type Toolchain interface {
	// NewTask builds a task over the given sources. Banner and free-form
	// compiler output goes to out; structured diagnostics are reported
	// to diags.
	NewTask(out io.Writer, diags *Collector, loc Locations, flags []string, sources []SourceUnit) (Task, error)
}

// Collector accumulates diagnostics in the order they are reported.
type Collector struct {
	diags []Diagnostic
}

// Report appends a diagnostic.
func (c *Collector) Report(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Diagnostics returns the reported diagnostics in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diags
}
