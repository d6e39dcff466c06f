package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jbuild/internal/buildjar"
	"jbuild/internal/config"
	"jbuild/internal/processor"
	"jbuild/internal/toolchain"
	"jbuild/internal/version"
	"jbuild/internal/worker"
)

// registry holds the annotation processors compiled into this binary.
// Deployments that carry processors register them from their own main.
var registry = processor.NewRegistry()

// Flag parsing stays disabled: apart from --persistent_worker, the whole
// argument list belongs to the per-invocation options parser.
var rootCmd = &cobra.Command{
	Use:                "jbuild",
	Short:              "Builds Java jars for Bazel-style build tools",
	Long:               `A build-tool front end that compiles one target per invocation, either as a one-shot process or as a persistent worker serving framed requests over stdio.`,
	RunE:               run,
	SilenceUsage:       true,
	SilenceErrors:      true,
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
}

// Registry exposes the processor registry for deployment-specific mains.
func Registry() *processor.Registry {
	return registry
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader().LoadTool()
	if err != nil {
		fmt.Fprintf(os.Stderr, "jbuild: %v\n", err)
		os.Exit(1)
	}

	if len(args) == 1 && args[0] == "--persistent_worker" {
		os.Exit(runPersistentWorker(cfg))
	}

	result, err := runOne(cfg, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jbuild: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, result.Output)
	os.Exit(result.ExitCode())

	return nil
}

// runPersistentWorker serves framed requests on stdin/stdout until the
// stream ends. Logging goes to stderr only; stdout carries nothing but
// response frames.
func runPersistentWorker(cfg *config.Config) int {
	log := newLogger(cfg.LogLevel)
	defer log.Sync()

	w := worker.New(os.Stdin, os.Stdout, func(args []string) (*buildjar.Result, error) {
		return runOne(cfg, args)
	}, log)

	if err := w.Serve(); err != nil {
		return 1
	}

	return 0
}

// runOne executes a single invocation with a builder scoped to it. The
// builder's archive handles are released on every exit path.
func runOne(cfg *config.Config, args []string) (result *buildjar.Result, err error) {
	b := buildjar.New(toolchain.NewJavac(cfg.CompilerPath), registry)
	b.SetSourcePattern(cfg.SourcePattern)
	b.SetExtraFlags(cfg.JavacOpts)

	defer func() {
		if cerr := b.Close(); cerr != nil && err == nil {
			result, err = nil, cerr
		}
	}()

	return b.Run(args)
}

// newLogger builds a stderr console logger at the configured level.
func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	_ = lvl.Set(level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		lvl,
	)

	return zap.New(core)
}
