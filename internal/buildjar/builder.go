package buildjar

import (
	"fmt"
	"os"
	"strings"

	"jbuild/internal/archive"
	"jbuild/internal/metadata"
	"jbuild/internal/processor"
	"jbuild/internal/toolchain"
)

// Builder runs one or more invocations against a toolchain. It owns an
// archive handle cache which must be released with Close before the
// builder is discarded; a persistent worker creates a fresh Builder per
// request.
type Builder struct {
	toolchain toolchain.Toolchain
	registry  *processor.Registry
	archives  *archive.Cache
	suppress  toolchain.Suppressions

	sourcePattern string
	extraFlags    []string
}

// New creates a builder over the given toolchain and processor registry.
func New(tc toolchain.Toolchain, registry *processor.Registry) *Builder {
	return &Builder{
		toolchain: tc,
		registry:  registry,
		archives:  archive.NewCache(),
		suppress:  toolchain.DefaultSuppressions,
	}
}

// SetSourcePattern overrides the glob selecting compilable sources.
func (b *Builder) SetSourcePattern(pattern string) {
	b.sourcePattern = pattern
}

// SetExtraFlags sets compiler flags prepended to every invocation's own.
func (b *Builder) SetExtraFlags(flags []string) {
	b.extraFlags = flags
}

// Close releases all archive handles opened during Run. It must be called
// on every exit path, including after a failed Run.
func (b *Builder) Close() error {
	return b.archives.CloseAll()
}

// Run executes one invocation described by args.
//
// Argument errors and compile errors are reported through the Result; a
// non-nil error means the invocation could not complete at all (processor
// load failure, I/O failure writing outputs).
func (b *Builder) Run(args []string) (*Result, error) {
	opts, err := ParseOptions(args)
	if err != nil {
		return &Result{OK: false, Output: err.Error() + "\n"}, nil
	}

	if b.sourcePattern != "" {
		opts.SourcePattern = b.sourcePattern
	}

	loc, err := b.setLocations(opts)
	if err != nil {
		return nil, err
	}

	sources, err := CollectSources(opts, b.archives)
	if err != nil {
		return nil, err
	}

	var out strings.Builder
	diags := &toolchain.Collector{}

	// an invocation with no sources never fails
	ok := true
	if len(sources) > 0 {
		ok, err = b.compile(&out, diags, loc, opts, sources)
		if err != nil {
			return nil, err
		}
	}

	// only the class jar is gated on success
	if ok && opts.OutputJar != "" {
		if err := archive.WriteJar(opts.OutputJar, opts.ClassDir, opts.CompressJar); err != nil {
			return nil, err
		}
	}

	if opts.GeneratedSourcesJar != "" {
		if err := archive.WriteJar(opts.GeneratedSourcesJar, opts.SourceGenDir, opts.CompressJar); err != nil {
			return nil, err
		}
	}

	// the descriptor carries no dependency edges, but consumers still
	// require the file to exist
	if opts.OutputDepsFile != "" {
		if err := metadata.WriteDependencies(opts.OutputDepsFile, opts.TargetLabel, ok); err != nil {
			return nil, err
		}
	}

	if opts.OutputManifestFile != "" {
		if err := metadata.WriteManifest(opts.OutputManifestFile); err != nil {
			return nil, err
		}
	}

	toolchain.Render(&out, diags.Diagnostics(), b.suppress)

	return &Result{OK: ok, Output: out.String()}, nil
}

// setLocations prepares output directories and assembles the toolchain
// search paths. Output directories are emptied of any prior run's files
// and recreated.
func (b *Builder) setLocations(opts *Options) (toolchain.Locations, error) {
	loc := toolchain.Locations{
		ClassPath:          opts.ClassPath,
		PlatformClassPath:  append(append([]string{}, opts.BootClassPath...), opts.ExtClassPath...),
		ProcessorPath:      opts.ProcessorPath,
		ClassOutputDir:     opts.ClassDir,
		GeneratedSourceDir: opts.SourceGenDir,
	}

	if opts.SourceGenDir != "" {
		if err := recreateDir(opts.SourceGenDir); err != nil {
			return toolchain.Locations{}, err
		}
	}

	if err := recreateDir(opts.ClassDir); err != nil {
		return toolchain.Locations{}, err
	}

	return loc, nil
}

// compile builds one task, attaches any requested processors, and runs it.
func (b *Builder) compile(out *strings.Builder, diags *toolchain.Collector, loc toolchain.Locations, opts *Options, sources []toolchain.SourceUnit) (bool, error) {
	flags := append(append([]string{}, b.extraFlags...), opts.JavacOpts...)

	task, err := b.toolchain.NewTask(out, diags, loc, toolchain.SanitizeFlags(flags), sources)
	if err != nil {
		return false, err
	}

	if len(opts.Processors) > 0 {
		procs, err := b.registry.Load(opts.Processors)
		if err != nil {
			// a missing processor aborts the whole invocation
			return false, err
		}

		task.Attach(procs)
	}

	return task.Run()
}

// recreateDir empties dir of all files and subdirectories and recreates
// it, so only the current run's outputs survive.
func recreateDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("cannot clean output directory %q: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %q: %w", dir, err)
	}

	return nil
}
