// Package maincmd implements the command-line interface of the lotus
// binary: with no argument it starts the REPL, with a script path it runs
// it, and it exposes the pipeline phases as debugging subcommands.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "lotus"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<command>] [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<command>] [<path>...]
       %[1]s <path>
       %[1]s
       %[1]s -h|--help
       %[1]s -v|--version

Interpreter and all-in-one tool for the %[1]s scripting language. With no
command and no path, an interactive session starts (an empty line exits);
with a single path, the script is run.

The <command> can be one of:
       run                       Run the script files.
       repl                      Start an interactive session.
       tokenize                  Execute the scanner phase and print the
                                 resulting tokens.
       parse                     Execute the parser phase and print the
                                 resulting abstract syntax tree (AST).
       resolve                   Execute the resolver phase and print the
                                 AST annotated with the resolved hop
                                 distances.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

The LOTUS_HEAP_LIMIT environment variable sets the byte ceiling of the
runtime heap before a collection is forced.

More information on the %[1]s repository:
       https://github.com/mna/lotus
`, binName)
)

// errFailed signals a failure already reported to stderr by the command.
var errFailed = errors.New("failed")

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		// no command and no path: interactive session
		c.cmdFn = c.Repl
		return nil
	}

	commands := buildCmds(c)
	if fn := commands[c.args[0]]; fn != nil {
		c.cmdFn = fn
		cmdName := c.args[0]
		c.args = c.args[1:]

		switch cmdName {
		case "run", "tokenize", "parse", "resolve":
			if len(c.args) == 0 {
				return fmt.Errorf("%s: at least one file must be provided", cmdName)
			}
		}
		return nil
	}

	if len(c.args) == 1 {
		// a single non-command argument is a script path
		c.cmdFn = c.Run
		return nil
	}

	// anything else: report the observed argument count (including the
	// program name, as argc would)
	return fmt.Errorf("argc = %d", len(c.args)+1)
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n%s", err, shortUsage)
		return mainer.ExitCode(1)
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args); err != nil {
		// each command takes care of printing its errors, just return with
		// an error code
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a context, a mainer.Stdio and a slice
// of strings as input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
