package toolchain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jbuild/internal/processor"
)

// mockCommander implements Commander interface for testing
type mockCommander struct {
	runFunc func() error
}

func (m *mockCommander) Run() error {
	return m.runFunc()
}

func TestParseRawDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Diagnostic
		ok   bool
	}{
		{
			name: "positioned error",
			line: "Foo.java:4:12: compiler.err.cant.resolve: cannot find symbol",
			want: Diagnostic{
				Code:     "compiler.err.cant.resolve",
				Severity: SeverityError,
				Source:   "Foo.java",
				Line:     4,
				Message:  "cannot find symbol",
			},
			ok: true,
		},
		{
			name: "positioned warning with path",
			line: "src/com/example/Bar.java:9:1: compiler.warn.raw.class.use: found raw type",
			want: Diagnostic{
				Code:     "compiler.warn.raw.class.use",
				Severity: SeverityWarning,
				Source:   "src/com/example/Bar.java",
				Line:     9,
				Message:  "found raw type",
			},
			ok: true,
		},
		{
			name: "sourceless note",
			line: "- compiler.note.deprecated.filename: Foo.java",
			want: Diagnostic{
				Code:     "compiler.note.deprecated.filename",
				Severity: SeverityNote,
				Message:  "Foo.java",
			},
			ok: true,
		},
		{
			name: "summary line",
			line: "1 error",
			ok:   false,
		},
		{
			name: "blank line",
			line: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRawDiagnostic(tt.line)
			require.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSanitizeFlags(t *testing.T) {
	flags := []string{
		"-g",
		"-Xep:SomeCheck:ERROR",
		"-parameters",
		"-Werror:all",
		"-XepDisableAllChecks",
		"-extra_checks:off",
		"-encoding", "UTF-8",
	}

	assert.Equal(t, []string{"-g", "-parameters", "-encoding", "UTF-8"}, SanitizeFlags(flags))
}

func TestJavacTaskRun(t *testing.T) {
	tempDir := t.TempDir()
	classDir := filepath.Join(tempDir, "classes")
	require.NoError(t, os.MkdirAll(classDir, 0o755))

	source := filepath.Join(tempDir, "Foo.java")
	require.NoError(t, os.WriteFile(source, []byte("class Foo {}"), 0o644))

	newTask := func(t *testing.T, runErr error) Task {
		tc := NewJavac("javac")
		tc.execCommand = func(name string, args ...string) Commander {
			assert.Equal(t, "javac", name)
			assert.Contains(t, args, "-XDrawDiagnostics")
			assert.Contains(t, args, source)
			return &mockCommander{runFunc: func() error { return runErr }}
		}

		var out strings.Builder
		task, err := tc.NewTask(&out, &Collector{}, Locations{ClassOutputDir: classDir}, nil, []SourceUnit{
			{Name: source, Path: source},
		})
		require.NoError(t, err)

		return task
	}

	t.Run("success", func(t *testing.T) {
		ok, err := newTask(t, nil).Run()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("execution failure", func(t *testing.T) {
		ok, err := newTask(t, errors.New("no such binary")).Run()
		require.Error(t, err)
		assert.False(t, ok)
	})
}

func TestJavacTaskRequiresClassDir(t *testing.T) {
	tc := NewJavac("javac")

	var out strings.Builder
	_, err := tc.NewTask(&out, &Collector{}, Locations{}, nil, nil)
	require.Error(t, err)
}

type fakeGenProcessor struct {
	generated string
}

func (p *fakeGenProcessor) Name() string { return "fakegen" }

func (p *fakeGenProcessor) Generate(ctx processor.Context) error {
	p.generated = filepath.Join(ctx.GeneratedSourceDir, "Gen.java")
	return os.WriteFile(p.generated, []byte("class Gen {}"), 0o644)
}

func TestJavacTaskRunsProcessors(t *testing.T) {
	tempDir := t.TempDir()
	classDir := filepath.Join(tempDir, "classes")
	genDir := filepath.Join(tempDir, "gensrc")
	require.NoError(t, os.MkdirAll(classDir, 0o755))
	require.NoError(t, os.MkdirAll(genDir, 0o755))

	source := filepath.Join(tempDir, "Foo.java")
	require.NoError(t, os.WriteFile(source, []byte("class Foo {}"), 0o644))

	var gotArgs []string
	tc := NewJavac("javac")
	tc.execCommand = func(name string, args ...string) Commander {
		gotArgs = args
		return &mockCommander{runFunc: func() error { return nil }}
	}

	var out strings.Builder
	task, err := tc.NewTask(&out, &Collector{}, Locations{
		ClassOutputDir:     classDir,
		GeneratedSourceDir: genDir,
	}, nil, []SourceUnit{{Name: source, Path: source}})
	require.NoError(t, err)

	proc := &fakeGenProcessor{}
	task.Attach([]processor.Processor{proc})

	ok, err := task.Run()
	require.NoError(t, err)
	assert.True(t, ok)

	assert.FileExists(t, proc.generated, "processor output should be written before compiling")
	assert.Contains(t, gotArgs, proc.generated, "generated sources should be compiled")
}
