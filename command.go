package sheaf

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sheafdev/sheaf/pkg/suggest"
)

// Command holds the metadata registered for one command path. The path itself
// is the registry key and is not stored on the command.
type Command struct {
	// Exec defines the command's execution logic. It receives the resolved
	// [State] and returns an error if execution fails. A command with no Exec
	// and registered children acts as a namespace and renders its help when
	// invoked directly.
	Exec func(ctx context.Context, s *State) error

	// ShortHelp is a brief description of the command's purpose, shown in the
	// parent's command table and at the top of the command's own help.
	ShortHelp string

	// LongHelp is an optional extended description shown only on the
	// command's own help page.
	LongHelp string

	// Usage is an optional explicit usage line.
	//
	// Example: "sheaf bundle <main-script> [--output <file>]"
	//
	// When empty, a usage line is synthesized from the program name, the
	// command path, and whether the command has flags or children.
	Usage string
}

// Registry maps command paths to commands and owns the flag definitions
// attached to them. Build it once during startup; it is not safe for
// concurrent mutation and is treated as read-only once resolution begins.
type Registry struct {
	name     string
	commands map[string]*Command
	flags    map[string]map[string]*Flag
	globals  map[string]*Flag
	aliases  map[string]string
	logger   *slog.Logger
}

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger sets the logger used for registration and help warnings. The
// default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates an empty registry for a program with the given name. The name
// is used as the root of every usage line and error message.
func New(name string, opts ...Option) *Registry {
	r := &Registry{
		name:     name,
		commands: make(map[string]*Command),
		flags:    make(map[string]map[string]*Flag),
		globals:  make(map[string]*Flag),
		aliases:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Register binds cmd to path. The path is a space-separated list of segments
// ("serve start"); the empty string registers the root command. Segments are
// lowercased; a segment containing anything other than letters, digits,
// hyphens, or underscores is a registration error: the registration is logged
// and skipped. Registering a path twice overwrites the earlier command with a
// warning.
func (r *Registry) Register(path string, cmd *Command) {
	segments, ok := r.splitPath(path)
	if !ok {
		return
	}
	key := pathKey(segments)
	if _, exists := r.commands[key]; exists {
		r.logger.Warn("overwriting previously registered command", "path", r.displayPath(segments))
	}
	r.commands[key] = cmd
}

// Lookup returns the command registered at path, or nil.
func (r *Registry) Lookup(path string) *Command {
	segments, ok := r.splitPath(path)
	if !ok {
		return nil
	}
	return r.commands[pathKey(segments)]
}

// childCommand is one row of the derived children view.
type childCommand struct {
	name      string
	shortHelp string
}

// children returns the direct children of path: every registered path exactly
// one segment longer that shares path as a strict prefix. The relationship is
// computed on demand so the flat map stays the single source of truth.
func (r *Registry) children(path []string) []childCommand {
	prefix := pathKey(path)
	if prefix != "" {
		prefix += " "
	}
	var out []childCommand
	for key, cmd := range r.commands {
		rest, found := strings.CutPrefix(key, prefix)
		if !found || rest == "" || strings.Contains(rest, " ") {
			continue
		}
		out = append(out, childCommand{name: rest, shortHelp: cmd.ShortHelp})
	}
	slices.SortFunc(out, func(a, b childCommand) int {
		return cmp.Compare(a.name, b.name)
	})
	return out
}

func (r *Registry) formatUnknownCommandError(path []string, unknown string) error {
	var known []string
	for _, child := range r.children(path) {
		known = append(known, child.name)
	}
	suggestions := suggest.FindSimilar(unknown, known, 3)
	if len(suggestions) > 0 {
		return fmt.Errorf("unknown command %q. Did you mean one of these?\n\t%s",
			unknown,
			strings.Join(suggestions, "\n\t"))
	}
	return fmt.Errorf("unknown command %q", unknown)
}

// splitPath lowercases and splits a space-separated path, validating each
// segment. The second return value reports whether the path is usable.
func (r *Registry) splitPath(path string) ([]string, bool) {
	segments := strings.Fields(strings.ToLower(path))
	for _, segment := range segments {
		if !validSegment(segment) {
			r.logger.Warn("skipping registration: invalid path segment", "path", path, "segment", segment)
			return nil, false
		}
	}
	return segments, true
}

func validSegment(segment string) bool {
	for _, c := range segment {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return segment != ""
}

// pathKey joins segments into the canonical registry key. The root command's
// key is the empty string.
func pathKey(segments []string) string {
	return strings.Join(segments, " ")
}

// displayPath renders a command path for help and error text, always prefixed
// with the program name.
func (r *Registry) displayPath(segments []string) string {
	if len(segments) == 0 {
		return r.name
	}
	return r.name + " " + strings.Join(segments, " ")
}
