// Command sheaf is the framework's own CLI, built on the framework itself.
// Its one substantial subcommand, bundle, flattens a multi-file script tool
// into a single dependency-ordered artifact.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sheafdev/sheaf"
	"github.com/sheafdev/sheaf/bundle"
	"github.com/sheafdev/sheaf/core"
)

var version = "devel"

func main() {
	r := sheaf.New("sheaf")

	r.RegisterGlobalFlag(&sheaf.Flag{
		Name:  "verbose",
		Short: "v",
		Type:  sheaf.FlagBool,
		Usage: "enable debug logging",
	})

	r.Register("", &sheaf.Command{
		ShortHelp: "sheaf builds hierarchical command-line tools and bundles them into single-file scripts",
	})
	r.Register("version", &sheaf.Command{
		ShortHelp: "print the sheaf version",
		Exec: func(ctx context.Context, s *sheaf.State) error {
			fmt.Fprintln(s.Stdout, version)
			return nil
		},
	})
	r.Register("bundle", &sheaf.Command{
		ShortHelp: "flatten a multi-file script into one dependency-ordered artifact",
		LongHelp: "bundle walks the #include directives of the main script, orders every " +
			"reachable file so dependencies precede dependents, hoists the sheaf runtime " +
			"core to the top, and writes a single executable artifact.",
		Usage: "sheaf bundle <main-script> [--output <file>] [--keep-shebang]",
		Exec:  bundleCmd,
	})
	r.RegisterFlag("bundle", &sheaf.Flag{
		Name:  "output",
		Short: "o",
		Type:  sheaf.FlagString,
		Usage: "write the artifact to this path instead of next to the main script",
	})
	r.RegisterFlag("bundle", &sheaf.Flag{
		Name:  "keep-shebang",
		Short: "k",
		Type:  sheaf.FlagBool,
		Usage: "reuse the main script's shebang line as the artifact header",
	})

	r.Main(context.Background(), os.Args[1:])
}

func bundleCmd(ctx context.Context, s *sheaf.State) error {
	if sheaf.GetGlobalFlag[bool](s, "verbose") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if len(s.Args) != 1 {
		return fmt.Errorf("bundle takes exactly one main script, got %d arguments", len(s.Args))
	}

	b := bundle.New(bundle.Options{
		Output:      sheaf.GetFlag[string](s, "output"),
		KeepShebang: sheaf.GetFlag[bool](s, "keep-shebang"),
		Core:        core.Script,
		CoreName:    core.FileName,
	})
	out, err := b.Bundle(s.Args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Stdout, "wrote %s\n", out)
	return nil
}
