package sheaf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// osExit is swapped out in tests.
var osExit = os.Exit

// RunOptions specifies options for running a command.
type RunOptions struct {
	// Stdin, Stdout, and Stderr are the standard input, output, and error
	// streams for the command. If any of these are nil, the command will use
	// the default streams ([os.Stdin], [os.Stdout], and [os.Stderr],
	// respectively).
	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// Run resolves args and dispatches exactly one handler. Help requests print
// the target command's help to stdout and return a *HelpRequest; resolution
// and validation failures print the error followed by contextual help to
// stderr and return a *ResolveError. Use [ExitCode] to map the returned
// error to a process status, or [Registry.Main] to do both.
//
// The options parameter may be nil, in which case default values are used.
func (r *Registry) Run(ctx context.Context, args []string, options *RunOptions) error {
	options = checkAndSetRunOptions(options)

	inv, err := r.Resolve(args)
	if err != nil {
		var help *HelpRequest
		if errors.As(err, &help) {
			fmt.Fprintln(options.Stdout, r.Usage(help.Path))
			return err
		}
		var rerr *ResolveError
		if errors.As(err, &rerr) {
			fmt.Fprintf(options.Stderr, "Error: %v\n\n", err)
			fmt.Fprintln(options.Stderr, r.Usage(rerr.Path))
		}
		return err
	}

	cmd := r.commands[pathKey(inv.Path)]
	if cmd == nil || cmd.Exec == nil {
		// A namespace command (children but no handler) and a bare root both
		// render their own help. Anything else is a registration mistake.
		if len(inv.Path) > 0 && len(r.children(inv.Path)) == 0 {
			return &NoExecError{Command: r.displayPath(inv.Path)}
		}
		fmt.Fprintln(options.Stdout, r.Usage(inv.Path))
		return &HelpRequest{Path: inv.Path}
	}

	s := &State{
		Args:   inv.Args,
		Stdin:  options.Stdin,
		Stdout: options.Stdout,
		Stderr: options.Stderr,
		inv:    inv,
	}
	return cmd.Exec(ctx, s)
}

// Main is the process entry point: it runs the argument vector and exits
// with status 0 for success and help requests, non-zero otherwise. Handler
// errors are printed to stderr; resolution errors have already been printed
// by [Registry.Run] with their contextual help.
func (r *Registry) Main(ctx context.Context, args []string) {
	err := r.Run(ctx, args, nil)
	code := ExitCode(err)
	if code != 0 {
		var rerr *ResolveError
		if !errors.As(err, &rerr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	osExit(code)
}

func checkAndSetRunOptions(opt *RunOptions) *RunOptions {
	if opt == nil {
		opt = &RunOptions{}
	}
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	return opt
}
