// Package buildjar turns one argument list into one compilation: it
// parses invocation options, collects sources from loose files and source
// jars, drives the compiler toolchain, and writes the output jar plus
// side-outputs.
package buildjar

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// DefaultSourcePattern matches the archive entries and files treated as
// compilable sources.
const DefaultSourcePattern = "**/*.java"

// Options is the immutable snapshot of one invocation's parameters.
type Options struct {
	// Sources are loose source files, in the order supplied.
	Sources []string

	// SourceJars are archives whose matching entries are compiled, in
	// the order supplied.
	SourceJars []string

	ClassPath     []string
	BootClassPath []string
	ExtClassPath  []string

	ProcessorPath []string
	Processors    []string

	// ClassDir is the class output directory. Required.
	ClassDir string

	// SourceGenDir receives processor-generated sources. Optional.
	SourceGenDir string

	// OutputJar is the class jar path. Optional.
	OutputJar string

	// GeneratedSourcesJar is the generated-sources jar path. Optional.
	GeneratedSourcesJar string

	// OutputDepsFile is the dependency descriptor path. Optional.
	OutputDepsFile string

	// OutputManifestFile is the manifest descriptor path. Optional.
	OutputManifestFile string

	TargetLabel string
	CompressJar bool

	// JavacOpts are passed to the toolchain after sanitizing.
	JavacOpts []string

	// SourcePattern selects source entries; defaults to DefaultSourcePattern.
	SourcePattern string
}

// ParseOptions decodes an invocation argument list. A parse error is
// returned to the caller so it can be reported as a failed result rather
// than crashing the process.
func ParseOptions(args []string) (*Options, error) {
	opts := &Options{}

	fs := pflag.NewFlagSet("jbuild", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringArrayVar(&opts.Sources, "sources", nil, "source files to compile")
	fs.StringArrayVar(&opts.SourceJars, "source_jars", nil, "archives of sources to compile")
	fs.StringArrayVar(&opts.ClassPath, "classpath", nil, "compilation classpath entries")
	fs.StringArrayVar(&opts.BootClassPath, "bootclasspath", nil, "boot classpath entries")
	fs.StringArrayVar(&opts.ExtClassPath, "extclasspath", nil, "extension classpath entries")
	fs.StringArrayVar(&opts.ProcessorPath, "processorpath", nil, "annotation processor classpath entries")
	fs.StringSliceVar(&opts.Processors, "processors", nil, "annotation processors to run")
	fs.StringVar(&opts.ClassDir, "classdir", "", "class output directory")
	fs.StringVar(&opts.SourceGenDir, "sourcegendir", "", "generated-source output directory")
	fs.StringVar(&opts.OutputJar, "output", "", "output class jar")
	fs.StringVar(&opts.GeneratedSourcesJar, "generated_sources_output", "", "generated-sources jar")
	fs.StringVar(&opts.OutputDepsFile, "output_deps", "", "dependency descriptor file")
	fs.StringVar(&opts.OutputManifestFile, "output_manifest", "", "manifest descriptor file")
	fs.StringVar(&opts.TargetLabel, "target_label", "", "label of the target being compiled")
	fs.BoolVar(&opts.CompressJar, "compress_jar", false, "compress output jar entries")
	fs.StringArrayVar(&opts.JavacOpts, "javacopt", nil, "extra compiler flags")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if len(fs.Args()) > 0 {
		return nil, fmt.Errorf("unexpected positional arguments: %v", fs.Args())
	}

	if opts.ClassDir == "" {
		return nil, fmt.Errorf("--classdir is required")
	}

	opts.SourcePattern = DefaultSourcePattern

	return opts, nil
}
