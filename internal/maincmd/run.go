package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/lotus/lang/interp"
	"github.com/mna/mainer"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(ctx, stdio, args...)
}

// RunFiles runs each script file in its own interpreter. It stops at the
// first file that fails and reports the failure through the exit code; the
// interpreter has already printed the diagnostics.
func RunFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	cfg, err := interp.ConfigFromEnv()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	for _, file := range files {
		it := interp.New(cfg)
		it.Stdout, it.Stderr, it.Stdin = stdio.Stdout, stdio.Stderr, stdio.Stdin

		if err := it.RunFile(file); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		if it.HadError() || it.HadRuntimeError() {
			return errFailed
		}
	}
	return nil
}

func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := interp.ConfigFromEnv()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	it := interp.New(cfg)
	it.Stdout, it.Stderr, it.Stdin = stdio.Stdout, stdio.Stderr, stdio.Stdin
	it.RunPrompt()
	if it.HadError() || it.HadRuntimeError() {
		return errFailed
	}
	return nil
}
