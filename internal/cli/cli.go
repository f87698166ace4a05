// Package cli implements the gojexp command line: the kong command tree,
// flag handling, and the session shared by the eval, dump and repl
// commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/sandrolain/gojexp"
	"github.com/sandrolain/gojexp/internal/cli/repl"
	"github.com/sandrolain/gojexp/pkg/document"
	"github.com/sandrolain/gojexp/pkg/evaluator"
	"github.com/sandrolain/gojexp/pkg/ext"
	"github.com/sandrolain/gojexp/pkg/log"
	"github.com/sandrolain/gojexp/pkg/parser"
	"github.com/sandrolain/gojexp/pkg/types"
)

const (
	name        = "gojexp"
	description = "Evaluate expressions over JSON, YAML and TOML documents."
)

// Exit codes.
const (
	ExitEvaluation = 1
	ExitParse      = 2
)

// CLI is the top-level command-line interface.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Optimize bool              `help:"Use the forward-scanning parser."`
	Ext      bool              `help:"Enable every extension function."`
	Doc      string            `help:"Document bound to _ ('-' for stdin)." short:"d"`
	Format   string            `help:"Document format." default:"auto" enum:"auto,json,yaml,toml"`
	Var      map[string]string `help:"Bind a variable; values are decoded as JSON, else taken as strings." short:"v"`

	Eval Eval `cmd:"" default:"withargs" help:"Evaluate expressions and print each result."`
	Dump Dump `cmd:"" help:"Print the tree built by both parsers."`
	Repl Repl `cmd:"" help:"Start an interactive session."`
}

// Session is the state shared by commands.
type Session struct {
	Out      io.Writer
	Context  *gojexp.Context
	Options  []gojexp.Option
	Logger   log.Logger
	Optimize bool
}

// Run parses args and executes the selected command, writing results to
// out.
func Run(ctx context.Context, out io.Writer, exit func(code int), args ...string) error {
	var cli CLI

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	k, err := kong.New(&cli,
		kong.Name(name),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(out, os.Stderr),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.DefaultEnvars(strings.ToUpper(name)),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		cli.Pprof.vars(),
	)
	if err != nil {
		return err
	}

	ktx, err := k.Parse(args)
	if err != nil {
		return err
	}

	logger := cli.Log.logger(os.Stderr)
	defer cli.Pprof.start(ctx, logger)()

	sess, err := cli.session(ctx, out, logger)
	if err != nil {
		return err
	}
	ktx.Bind(sess)
	return ktx.Run()
}

func (c *CLI) session(ctx context.Context, out io.Writer, logger log.Logger) (*Session, error) {
	sess := &Session{
		Out:      out,
		Logger:   logger,
		Optimize: c.Optimize,
		Options: []gojexp.Option{
			gojexp.WithOptimize(c.Optimize),
			gojexp.WithLogger(logger),
		},
	}
	if c.Ext {
		sess.Options = append(sess.Options, ext.WithAll())
	}

	var err error
	if sess.Context, err = c.context(); err != nil {
		return nil, err
	}
	for k, v := range c.Var {
		sess.Context.Set(k, decodeVar(v))
	}
	logger.DebugContext(ctx, "session ready",
		slog.String("doc", c.Doc),
		slog.Int("vars", len(c.Var)),
		slog.Bool("optimize", c.Optimize))
	return sess, nil
}

func (c *CLI) context() (*gojexp.Context, error) {
	if c.Doc == "" {
		return gojexp.NewContext(), nil
	}
	f, err := document.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	if c.Doc == "-" {
		return gojexp.BuildContextFrom(os.Stdin, f)
	}
	if f == document.Auto {
		f = document.FormatOf(c.Doc)
	}
	r, err := os.Open(c.Doc)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return gojexp.BuildContextFrom(r, f)
}

// decodeVar decodes s as a JSON value, falling back to the plain string.
func decodeVar(s string) types.Value {
	raw, err := document.Parse([]byte(s), document.JSON)
	if err != nil {
		return types.Str(s)
	}
	v, err := types.Of(raw)
	if err != nil {
		return types.Str(s)
	}
	return v
}

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	if types.IsParseError(err) {
		return ExitParse
	}
	return ExitEvaluation
}

// Eval evaluates each argument in order against the session context, so
// later expressions see variables assigned by earlier ones.
type Eval struct {
	Exprs []string `arg:"" help:"Expressions to evaluate." name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, s *Session) error {
	for _, src := range e.Exprs {
		r, err := gojexp.EvalWithContext(ctx, src, s.Context, s.Options...)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(s.Out, r.String()); err != nil {
			return err
		}
	}
	return nil
}

// ErrAlgorithmsDisagree is returned by dump when the two parsers build
// different trees.
var ErrAlgorithmsDisagree = errors.New("parsers disagree")

// Dump prints the tree of every statement as built by both parsers.
type Dump struct {
	Expr string `arg:"" help:"Expression to parse." name:"expr"`
}

// Run executes the dump command.
func (d *Dump) Run(s *Session) error {
	reg := evaluator.New(s.Options...).Functions()
	simple, err := parser.Compile(d.Expr, parser.WithFunctions(reg))
	if err != nil {
		return err
	}
	forward, err := parser.Compile(d.Expr, parser.WithFunctions(reg), parser.WithOptimize(true))
	if err != nil {
		return err
	}
	if len(simple) != len(forward) {
		return fmt.Errorf("%w: %d statements vs %d", ErrAlgorithmsDisagree, len(simple), len(forward))
	}
	for i := range simple {
		a, b := simple[i].String(), forward[i].String()
		if a != b {
			return fmt.Errorf("%w on statement %d: %s vs %s", ErrAlgorithmsDisagree, i+1, a, b)
		}
		if _, err := fmt.Fprintln(s.Out, a); err != nil {
			return err
		}
	}
	return nil
}

// Repl starts an interactive session.
type Repl struct {
	History string `help:"History file." type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context, s *Session) error {
	return repl.Run(ctx, repl.Config{
		Context:     s.Context,
		Options:     s.Options,
		Functions:   evaluator.New(s.Options...).Functions(),
		HistoryPath: r.History,
		Logger:      s.Logger,
	})
}
