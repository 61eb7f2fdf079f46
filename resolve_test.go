package sheaf

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRegistry builds the registry used across resolution tests:
//
//	todo --verbose(-v) --format            (global flags)
//	├── add
//	└── serve --port(-p) --host --format   (--format shadows the global)
//	    └── start --env(-e) --background(-b) --quiet(-q)
func newTestRegistry() *Registry {
	r := New("todo", WithLogger(discardLogger()))
	exec := func(ctx context.Context, s *State) error { return errors.New("not implemented") }

	r.RegisterGlobalFlag(&Flag{Name: "verbose", Short: "v", Type: FlagBool, Usage: "enable verbose mode"})
	r.RegisterGlobalFlag(&Flag{Name: "format", Type: FlagString, Default: "text", Usage: "output format"})

	r.Register("", &Command{ShortHelp: "manage todos", Exec: exec})
	r.Register("add", &Command{ShortHelp: "add an item", Exec: exec})
	r.Register("serve", &Command{ShortHelp: "run the server", Exec: exec})
	r.RegisterFlag("serve", &Flag{Name: "port", Short: "p", Type: FlagString, Default: "8000", Usage: "listen port"})
	r.RegisterFlag("serve", &Flag{Name: "host", Type: FlagString, Default: "127.0.0.1", Usage: "bind address"})
	r.RegisterFlag("serve", &Flag{Name: "format", Type: FlagString, Default: "json", Usage: "server output format"})
	r.Register("serve start", &Command{ShortHelp: "start serving", Exec: exec})
	r.RegisterFlag("serve start", &Flag{Name: "env", Short: "e", Type: FlagString, Required: true, Usage: "deployment environment"})
	r.RegisterFlag("serve start", &Flag{Name: "background", Short: "b", Type: FlagBool, Usage: "run in the background"})
	r.RegisterFlag("serve start", &Flag{Name: "quiet", Short: "q", Type: FlagBool, Usage: "suppress output"})
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveCommandPath(t *testing.T) {
	t.Parallel()

	t.Run("registered paths resolve to themselves", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		for _, path := range [][]string{nil, {"add"}, {"serve"}} {
			inv, err := r.Resolve(path)
			require.NoError(t, err)
			assert.Equal(t, path, inv.Path)
			assert.Empty(t, inv.Args)
		}
	})
	t.Run("matching is case insensitive", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"SERVE"})
		require.NoError(t, err)
		assert.Equal(t, []string{"serve"}, inv.Path)
	})
	t.Run("unregistered token becomes positional", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "nope", "start"})
		require.NoError(t, err)
		assert.Equal(t, []string{"serve"}, inv.Path)
		// "start" no longer extends the path once matching has stopped.
		assert.Equal(t, []string{"nope", "start"}, inv.Args)
	})
	t.Run("flag token ends command matching", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "-p", "9999", "start"})
		require.NoError(t, err)
		assert.Equal(t, []string{"serve"}, inv.Path)
		assert.Equal(t, "9999", inv.Flags["port"])
		assert.Equal(t, []string{"start"}, inv.Args)
	})
	t.Run("no tokens resolves root", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve(nil)
		require.NoError(t, err)
		assert.Empty(t, inv.Path)
	})
}

func TestResolveFlags(t *testing.T) {
	t.Parallel()

	t.Run("inherited defaults alongside a set flag", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "start", "--env", "prod"})
		require.NoError(t, err)
		assert.Equal(t, []string{"serve", "start"}, inv.Path)
		assert.Empty(t, inv.Args)
		assert.Equal(t, "prod", inv.Flags["env"])
		assert.Equal(t, "false", inv.Flags["background"])
		assert.Equal(t, "8000", inv.Flags["port"])
		assert.Equal(t, "127.0.0.1", inv.Flags["host"])
	})
	t.Run("defaults applied for unset flags", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve"})
		require.NoError(t, err)
		assert.Equal(t, "8000", inv.Flags["port"])
		assert.Equal(t, "127.0.0.1", inv.Flags["host"])
		assert.Equal(t, "false", inv.Flags["verbose"])
	})
	t.Run("equals form and value consumption", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "--port=7070", "--host", "0.0.0.0"})
		require.NoError(t, err)
		assert.Equal(t, "7070", inv.Flags["port"])
		assert.Equal(t, "0.0.0.0", inv.Flags["host"])
	})
	t.Run("explicit empty value is legal", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "--host="})
		require.NoError(t, err)
		assert.Equal(t, "", inv.Flags["host"])
	})
	t.Run("string flag without value is fatal", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"serve", "--port"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `flag --port requires a value`)

		_, err = r.Resolve([]string{"serve", "--port", "--host", "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `flag --port requires a value`)
	})
	t.Run("bool presence and explicit literals", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "start", "--env", "dev", "--background"})
		require.NoError(t, err)
		assert.Equal(t, "true", inv.Flags["background"])

		inv, err = r.Resolve([]string{"serve", "start", "--env", "dev", "--background=false"})
		require.NoError(t, err)
		assert.Equal(t, "false", inv.Flags["background"])

		_, err = r.Resolve([]string{"serve", "start", "--env", "dev", "--background=yes"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid boolean value "yes"`)
	})
	t.Run("bool flag never consumes the next token", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"--verbose", "extra"})
		require.NoError(t, err)
		assert.Equal(t, "true", inv.Flags["verbose"])
		assert.Equal(t, []string{"extra"}, inv.Args)
	})
	t.Run("unknown flag names the command and suggests", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"serve", "--prot", "1"})
		require.Error(t, err)
		var rerr *ResolveError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "todo serve", rerr.Command)
		assert.Contains(t, err.Error(), `unknown flag "--prot"`)
		assert.Contains(t, err.Error(), "--port")
	})
	t.Run("positionals keep their original order", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "one", "--port", "9", "two"})
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, inv.Args)
		assert.Equal(t, "9", inv.Flags["port"])
	})
}

func TestResolveShortFlags(t *testing.T) {
	t.Parallel()

	t.Run("single alias", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "-p", "9090"})
		require.NoError(t, err)
		assert.Equal(t, "9090", inv.Flags["port"])
	})
	t.Run("alias with equals value", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "-p=9091"})
		require.NoError(t, err)
		assert.Equal(t, "9091", inv.Flags["port"])
	})
	t.Run("grouped bools equal separate flags", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		grouped, err := r.Resolve([]string{"serve", "start", "--env", "dev", "-qb"})
		require.NoError(t, err)
		separate, err2 := r.Resolve([]string{"serve", "start", "--env", "dev", "-q", "-b"})
		require.NoError(t, err2)
		assert.Equal(t, grouped.Flags, separate.Flags)
		assert.Equal(t, "true", grouped.Flags["quiet"])
		assert.Equal(t, "true", grouped.Flags["background"])
	})
	t.Run("trailing string flag consumes next token", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "start", "-qbe", "prod"})
		require.NoError(t, err)
		assert.Equal(t, "true", inv.Flags["quiet"])
		assert.Equal(t, "true", inv.Flags["background"])
		assert.Equal(t, "prod", inv.Flags["env"])
	})
	t.Run("string flag not last in group is fatal", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"serve", "start", "-eq", "prod"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "string flag -e must be last in its group")
	})
	t.Run("unknown alias is fatal", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"serve", "-z"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown flag "-z"`)
	})
	t.Run("alias out of scope is fatal", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		// -e resolves to serve start's env flag, which add cannot see.
		_, err := r.Resolve([]string{"add", "-e", "prod"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown flag "-e"`)
	})
}

func TestResolveDelimiter(t *testing.T) {
	t.Parallel()

	t.Run("everything after -- is positional", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "--", "--port", "start", "-v"})
		require.NoError(t, err)
		assert.Equal(t, []string{"serve"}, inv.Path)
		assert.Equal(t, []string{"--port", "start", "-v"}, inv.Args)
		assert.Equal(t, "8000", inv.Flags["port"])
	})
	t.Run("leading -- stops command matching at root", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"--", "serve", "start"})
		require.NoError(t, err)
		assert.Empty(t, inv.Path)
		assert.Equal(t, []string{"serve", "start"}, inv.Args)
	})
}

func TestResolveRequired(t *testing.T) {
	t.Parallel()

	t.Run("missing required flag is fatal", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		for _, args := range [][]string{
			{"serve", "start"},
			{"serve", "start", "--background"},
			{"serve", "start", "-q", "--background"},
		} {
			_, err := r.Resolve(args)
			require.Error(t, err, "args: %v", args)
			var rerr *ResolveError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, "todo serve start", rerr.Command)
			assert.Contains(t, err.Error(), `required flag(s) "env" not set`)
		}
	})
	t.Run("required satisfied by explicit empty is still fatal", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"serve", "start", "--env="})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `required flag(s) "env" not set`)
	})
	t.Run("required not enforced outside its scope", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"serve"})
		require.NoError(t, err)
	})
}

func TestResolveShadowing(t *testing.T) {
	t.Parallel()

	t.Run("local default wins within the command", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve"})
		require.NoError(t, err)
		assert.Equal(t, "json", inv.Flags["format"])
	})
	t.Run("global definition keeps its own value", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "--format", "xml"})
		require.NoError(t, err)
		assert.Equal(t, "xml", inv.Flags["format"])
		assert.Equal(t, "text", inv.globalValues["format"])
	})
	t.Run("global visible where not shadowed", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"add", "--format", "xml"})
		require.NoError(t, err)
		assert.Equal(t, "xml", inv.Flags["format"])
		assert.Equal(t, "xml", inv.globalValues["format"])
	})
	t.Run("ancestor flags reachable from descendants", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "start", "--env", "dev", "--port", "9999"})
		require.NoError(t, err)
		assert.Equal(t, "9999", inv.Flags["port"])
	})
}

func TestResolveHelp(t *testing.T) {
	t.Parallel()

	t.Run("help verb resolves the deepest path", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"help", "serve", "start"})
		var help *HelpRequest
		require.ErrorAs(t, err, &help)
		assert.Equal(t, []string{"serve", "start"}, help.Path)
	})
	t.Run("bare help targets root", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"help"})
		var help *HelpRequest
		require.ErrorAs(t, err, &help)
		assert.Empty(t, help.Path)
	})
	t.Run("help verb rejects unknown segments", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		_, err := r.Resolve([]string{"help", "serve", "stort"})
		require.Error(t, err)
		var rerr *ResolveError
		require.ErrorAs(t, err, &rerr)
		assert.Contains(t, err.Error(), `unknown command "stort"`)
		assert.Contains(t, err.Error(), "start")
	})
	t.Run("help flag short-circuits scanning", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		for _, args := range [][]string{
			{"serve", "--help"},
			{"serve", "-h"},
			{"serve", "--port", "1", "--help"},
		} {
			_, err := r.Resolve(args)
			var help *HelpRequest
			require.ErrorAs(t, err, &help, "args: %v", args)
			assert.Equal(t, []string{"serve"}, help.Path)
		}
	})
	t.Run("help flag after delimiter is positional", func(t *testing.T) {
		t.Parallel()
		r := newTestRegistry()

		inv, err := r.Resolve([]string{"serve", "--", "--help"})
		require.NoError(t, err)
		assert.Equal(t, []string{"--help"}, inv.Args)
	})
}
