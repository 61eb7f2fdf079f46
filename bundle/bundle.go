// Package bundle flattens a multi-file script tool into one self-contained,
// dependency-ordered artifact. Files name their dependencies with textual
// inclusion directives; the bundler builds the file dependency graph with a
// lexical line scan, orders files so every dependency's content precedes its
// dependent's, and emits a single artifact with the runtime core hoisted to
// the top and duplicate inclusions elided.
package bundle

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

const (
	// DirPlaceholder inside a directive path expands, textually, to the
	// including file's own directory.
	DirPlaceholder = "__DIR__"

	coreBeginMarker = "# sheaf-core-begin"
	coreEndMarker   = "# sheaf-core-end"

	defaultHeader = "#!/usr/bin/env bash"
	shebangPrefix = "#!"
)

// directiveRe matches one inclusion directive: a line requesting another
// file's content be treated as part of the current one. The argument may be
// shell-quoted.
var directiveRe = regexp.MustCompile(`^\s*#include\s+(.+?)\s*$`)

// runRe matches the terminal invocation statement of a main script.
var runRe = regexp.MustCompile(`^\s*sheaf_main\b`)

// Options configures a bundling run.
type Options struct {
	// Output is the artifact destination. When empty, the artifact is
	// written next to the main script as <stem>.bundled.sh.
	Output string

	// KeepShebang reuses the main script's own shebang line as the artifact
	// header instead of the default bash header.
	KeepShebang bool

	// Core is the content of the framework's runtime core file. The region
	// between the core markers is emitted once, ahead of everything else.
	Core []byte

	// CoreName is the file name inclusion directives use for the core.
	// Directives naming it are skipped, since the core is always hoisted.
	CoreName string

	// Logger receives skip warnings and progress. Defaults to
	// [slog.Default].
	Logger *slog.Logger
}

// Bundler performs one bundling run. The visited set and ordering queue are
// local to the run; nothing is shared across runs.
type Bundler struct {
	opts    Options
	logger  *slog.Logger
	visited map[string]bool
	order   []string
	content map[string][]byte
}

// New creates a bundler for one run with the given options.
func New(opts Options) *Bundler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bundler{
		opts:    opts,
		logger:  logger,
		visited: make(map[string]bool),
		content: make(map[string][]byte),
	}
}

// Bundle builds the dependency graph rooted at mainPath, assembles the
// artifact in memory, and writes it in one shot with the executable bit set.
// It returns the output path. On any failure nothing is written: a missing or
// unreadable file, an unresolvable dependency (reported with its referrer),
// and an unwritable destination all abort the run.
func (b *Bundler) Bundle(mainPath string) (string, error) {
	mainAbs, err := filepath.Abs(mainPath)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", mainPath, err)
	}
	if err := b.walk(mainAbs, ""); err != nil {
		return "", err
	}

	artifact, err := b.assemble(mainAbs)
	if err != nil {
		return "", err
	}

	out := b.opts.Output
	if out == "" {
		out = defaultOutput(mainAbs)
	}
	if err := os.WriteFile(out, artifact, 0o755); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	b.logger.Debug("bundle written", "output", out, "files", len(b.order))
	return out, nil
}

// walk processes one file depth-first: mark visited before recursing (which
// makes diamonds and cycles terminate), recurse into every dependency, then
// append the file to the ordering queue. The post-order append is what
// yields the topological order.
func (b *Bundler) walk(path, referrer string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if b.visited[abs] {
		return nil
	}
	b.visited[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		if referrer != "" {
			return fmt.Errorf("reading %s (included from %s): %w", path, referrer, err)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	for _, line := range strings.Split(string(data), "\n") {
		m := directiveRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		target, err := directiveTarget(m[1])
		if err != nil {
			return fmt.Errorf("%s: malformed include directive %q: %w", abs, strings.TrimSpace(line), err)
		}
		if b.opts.CoreName != "" && filepath.Base(target) == b.opts.CoreName {
			b.logger.Warn("skipping include of the runtime core; the core is always bundled first",
				"file", abs, "target", target)
			continue
		}
		target = strings.ReplaceAll(target, DirPlaceholder, dir)
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		if err := b.walk(target, abs); err != nil {
			return err
		}
	}

	b.order = append(b.order, abs)
	b.content[abs] = data
	return nil
}

// directiveTarget extracts the path from a directive argument, honoring
// shell quoting so paths with spaces work.
func directiveTarget(arg string) (string, error) {
	fields, err := shlex.Split(arg)
	if err != nil {
		return "", err
	}
	if len(fields) != 1 {
		return "", fmt.Errorf("expected exactly one path, got %d tokens", len(fields))
	}
	return fields[0], nil
}

func defaultOutput(mainAbs string) string {
	base := filepath.Base(mainAbs)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(mainAbs), stem+".bundled.sh")
}
