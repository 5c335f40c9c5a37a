package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"kestrel/interpreter-go/pkg/config"
	"kestrel/interpreter-go/pkg/interpreter"
	klog "kestrel/interpreter-go/pkg/log"
)

const cliToolVersion = "0.1.0-dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "load settings from a YAML or TOML file",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log.level",
		Usage: "diagnostic log level (debug, info, warn, error)",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log.format",
		Usage: "diagnostic log format (auto, text, json)",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "write diagnostics to a rotating log file",
	}
	maxDepthFlag = &cli.IntFlag{
		Name:  "max-depth",
		Usage: "maximum ordinary call depth (negative disables the limit)",
	}
	parallelFlag = &cli.BoolFlag{
		Name:  "parallel",
		Usage: "run the given scripts concurrently, one thread each",
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "worker pool size for --parallel",
	}
	labelsFlag = &cli.BoolFlag{
		Name:  "labels",
		Usage: "print a table of labels and how their verbs were classified",
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Value: "toml",
		Usage: "output format (toml, yaml)",
	}
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).Run(args)
	if err == nil {
		return exitOK
	}
	code := exitFailure
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		code = coder.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		color.New(color.FgRed).Fprintln(stderr, msg)
	}
	return code
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "kestrel",
		Usage:     "run and inspect Kestrel scripts",
		Version:   cliToolVersion,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     []cli.Flag{configFlag, logLevelFlag, logFormatFlag, logFileFlag},
		Commands: []*cli.Command{
			runCommand,
			checkCommand,
			disasmCommand,
			replCommand,
			configCommand,
		},
		OnUsageError:   usageError,
		ExitErrHandler: func(*cli.Context, error) {},
	}
	for _, cmd := range app.Commands {
		cmd.OnUsageError = usageError
	}
	return app
}

func usageError(_ *cli.Context, err error, _ bool) error {
	return cli.Exit(err.Error(), exitUsage)
}

func usagef(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), exitUsage)
}

// session is the per-invocation state built from the config file and flags.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
	interp *interpreter.Interpreter
}

func newSession(c *cli.Context) (*session, error) {
	cfg := config.Default()
	if path := c.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, cli.Exit(err.Error(), exitUsage)
		}
		cfg = loaded
	}
	if c.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = c.String(logLevelFlag.Name)
	}
	if c.IsSet(logFormatFlag.Name) {
		cfg.Log.Format = c.String(logFormatFlag.Name)
	}
	if c.IsSet(logFileFlag.Name) {
		cfg.Log.File = c.String(logFileFlag.Name)
	}
	if c.IsSet(maxDepthFlag.Name) {
		cfg.Engine.MaxCallDepth = c.Int(maxDepthFlag.Name)
	}
	if c.IsSet(workersFlag.Name) {
		cfg.Parallel.Workers = c.Int(workersFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}

	logger, closer, err := klog.New(cfg.Log)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}
	interp, err := interpreter.New(interpreter.Options{
		MaxCallDepth:       cfg.Engine.MaxCallDepth,
		CheckpointInterval: cfg.Engine.CheckpointInterval,
		CacheSize:          cfg.Engine.CacheSize,
		Logger:             logger,
		Stdout:             c.App.Writer,
	})
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, closer: closer, interp: interp}, nil
}

func (s *session) Close() {
	if s.closer != nil {
		s.closer.Close()
	}
}
