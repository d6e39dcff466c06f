package toolchain

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"jbuild/internal/processor"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// Javac is a Toolchain backed by an external javac binary. Raw
// diagnostics are requested from the compiler and parsed back into
// structured records.
type Javac struct {
	path        string
	execCommand func(name string, args ...string) Commander
}

// NewJavac creates a toolchain invoking the compiler at path.
func NewJavac(path string) *Javac {
	return &Javac{
		path: path,
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
	}
}

// NewTask implements Toolchain.
func (j *Javac) NewTask(out io.Writer, diags *Collector, loc Locations, flags []string, sources []SourceUnit) (Task, error) {
	if loc.ClassOutputDir == "" {
		return nil, fmt.Errorf("class output directory is required")
	}

	return &javacTask{
		tc:      j,
		out:     out,
		diags:   diags,
		loc:     loc,
		flags:   flags,
		sources: sources,
	}, nil
}

type javacTask struct {
	tc      *Javac
	out     io.Writer
	diags   *Collector
	loc     Locations
	flags   []string
	sources []SourceUnit
	procs   []processor.Processor
}

// Attach implements Task.
func (t *javacTask) Attach(procs []processor.Processor) {
	t.procs = append(t.procs, procs...)
}

// Run implements Task. Compile errors surface as diagnostics with a false
// return; only a failure to execute the compiler at all returns an error.
func (t *javacTask) Run() (bool, error) {
	if err := t.runProcessors(); err != nil {
		return false, err
	}

	args, cleanup, err := t.buildArgs()
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return false, err
	}

	var buf bytes.Buffer
	c := t.tc.execCommand(t.tc.path, args...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	runErr := c.Run()

	t.drainOutput(&buf)

	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); ok {
			return false, nil
		}

		return false, fmt.Errorf("failed to run compiler %s: %w", t.tc.path, runErr)
	}

	return true, nil
}

// runProcessors executes attached processors, which write generated
// sources into the generated-source directory before compilation.
func (t *javacTask) runProcessors() error {
	if len(t.procs) == 0 {
		return nil
	}

	names := make([]string, len(t.sources))
	for i, src := range t.sources {
		names[i] = src.Name
	}

	ctx := processor.Context{
		GeneratedSourceDir: t.loc.GeneratedSourceDir,
		SourceNames:        names,
	}

	for _, p := range t.procs {
		if err := p.Generate(ctx); err != nil {
			return fmt.Errorf("processor %s failed: %w", p.Name(), err)
		}
	}

	return nil
}

// buildArgs assembles the javac argument vector. Archive-backed sources
// are spooled into a scratch directory for the duration of the run; the
// returned cleanup removes it.
func (t *javacTask) buildArgs() ([]string, func(), error) {
	args := []string{"-XDrawDiagnostics", "-d", t.loc.ClassOutputDir}

	if t.loc.GeneratedSourceDir != "" {
		args = append(args, "-s", t.loc.GeneratedSourceDir)
	}

	if len(t.loc.ClassPath) > 0 {
		args = append(args, "-cp", strings.Join(t.loc.ClassPath, string(os.PathListSeparator)))
	}

	if len(t.loc.PlatformClassPath) > 0 {
		args = append(args, "-bootclasspath", strings.Join(t.loc.PlatformClassPath, string(os.PathListSeparator)))
	}

	if len(t.loc.ProcessorPath) > 0 {
		args = append(args, "-processorpath", strings.Join(t.loc.ProcessorPath, string(os.PathListSeparator)))
	}

	args = append(args, t.flags...)

	scratch, err := os.MkdirTemp("", "jbuild-src-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(scratch) }

	for _, src := range t.sources {
		if src.Path != "" {
			args = append(args, src.Path)
			continue
		}

		spooled, err := spoolSource(scratch, src)
		if err != nil {
			return nil, cleanup, err
		}

		args = append(args, spooled)
	}

	// sources emitted by in-process processors also get compiled
	if len(t.procs) > 0 && t.loc.GeneratedSourceDir != "" {
		generated, err := collectJavaFiles(t.loc.GeneratedSourceDir)
		if err != nil {
			return nil, cleanup, err
		}

		args = append(args, generated...)
	}

	return args, cleanup, nil
}

// spoolSource writes an archive-backed source into the scratch directory,
// preserving its internal path so package declarations still line up.
func spoolSource(scratch string, src SourceUnit) (string, error) {
	rel := src.Name
	if i := strings.Index(rel, "!/"); i >= 0 {
		rel = rel[i+2:]
	}

	dst := filepath.Join(scratch, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to spool %s: %w", src.Name, err)
	}

	r, err := src.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", src.Name, err)
	}
	defer r.Close()

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to spool %s: %w", src.Name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to spool %s: %w", src.Name, err)
	}

	return dst, nil
}

func collectJavaFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".java") {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	return files, nil
}

// drainOutput splits compiler output into structured diagnostics and
// free-form banner text.
func (t *javacTask) drainOutput(buf *bytes.Buffer) {
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		line := scanner.Text()

		if d, ok := parseRawDiagnostic(line); ok {
			t.diags.Report(d)
			continue
		}

		if strings.TrimSpace(line) != "" {
			fmt.Fprintln(t.out, line)
		}
	}
}

// parseRawDiagnostic decodes one -XDrawDiagnostics line, either
// "name:line:col: code: message" or "- code: message" for diagnostics
// with no source position.
func parseRawDiagnostic(line string) (Diagnostic, bool) {
	if rest, ok := strings.CutPrefix(line, "- "); ok {
		code, msg, found := strings.Cut(rest, ": ")
		if !found || !strings.HasPrefix(code, "compiler.") {
			return Diagnostic{}, false
		}

		return Diagnostic{Code: code, Severity: severityForCode(code), Message: msg}, true
	}

	i := strings.Index(line, ": compiler.")
	if i < 0 {
		return Diagnostic{}, false
	}

	pos := line[:i]
	code, msg, _ := strings.Cut(line[i+2:], ": ")

	d := Diagnostic{Code: code, Severity: severityForCode(code), Message: msg}

	parts := strings.Split(pos, ":")
	if len(parts) >= 3 {
		if n, err := strconv.ParseInt(parts[len(parts)-2], 10, 64); err == nil {
			d.Line = n
			d.Source = strings.Join(parts[:len(parts)-2], ":")
			return d, true
		}
	}

	d.Source = pos

	return d, true
}
