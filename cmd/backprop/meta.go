package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/born-ml/backprop/internal/problem"
)

// logLevelEnv overrides the default log level when -log-level is not given.
const logLevelEnv = "BACKPROP_LOG"

// Meta holds the state shared by every command.
type Meta struct {
	Ui        cli.Ui
	LogOutput io.Writer

	logLevel string
}

// flagSet returns a flag set carrying the common flags.
func (m *Meta) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&m.logLevel, "log-level", "", "log level: trace, debug, info, warn, error or off")
	fs.SetOutput(io.Discard)
	return fs
}

// logger builds the command logger from -log-level or the environment.
func (m *Meta) logger() hclog.Logger {
	level := m.logLevel
	if level == "" {
		level = os.Getenv(logLevelEnv)
	}
	if level == "" {
		level = "warn"
	}
	out := m.LogOutput
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "backprop",
		Level:  hclog.LevelFromString(level),
		Output: out,
	})
}

// load parses flags and reads the single problem file argument.
func (m *Meta) load(fs *flag.FlagSet, args []string) (*problem.Problem, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one problem file, got %d arguments", fs.NArg())
	}
	return problem.LoadFile(fs.Arg(0), problem.Config{Logger: m.logger()})
}

// guard runs fn and reports its error or panic. Panics from the engine signal
// malformed problems such as incompatible shapes.
func (m *Meta) guard(fn func() error) (code int) {
	defer func() {
		if r := recover(); r != nil {
			m.Ui.Error(fmt.Sprintf("Error: %v", r))
			code = 1
		}
	}()
	if err := fn(); err != nil {
		m.Ui.Error(fmt.Sprintf("Error: %s", err))
		return 1
	}
	return 0
}

const commonHelp = `
Common options:

  -log-level=level    Log level (trace, debug, info, warn, error, off).
                      Defaults to $BACKPROP_LOG, then warn.
`

func helpText(usage, body string) string {
	return strings.TrimSpace(usage+"\n\n"+strings.TrimSpace(body)) + "\n" + commonHelp
}
