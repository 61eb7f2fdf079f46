package bundle

import (
	"bytes"
	"fmt"
	"strings"
)

// assemble renders the whole artifact in memory: header, hoisted core block,
// every queued file with shebangs and directives stripped, and the main
// file's final run statement appended exactly once at the end. Every run
// statement is stripped from the body; only the last one survives.
func (b *Bundler) assemble(mainAbs string) ([]byte, error) {
	core, err := coreBlock(b.opts.Core)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(b.header(mainAbs))
	buf.WriteString("\n\n")
	buf.WriteString(core)
	buf.WriteString("\n")

	var runStatement string
	for _, abs := range b.order {
		lines := splitLines(b.content[abs])
		for i, line := range lines {
			if i == 0 && strings.HasPrefix(line, shebangPrefix) {
				continue
			}
			if directiveRe.MatchString(line) {
				continue
			}
			if abs == mainAbs && runRe.MatchString(line) {
				runStatement = strings.TrimSpace(line)
				continue
			}
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}

	buf.WriteString("\n")
	if runStatement == "" {
		// Not fatal: the artifact may still be loadable as a library.
		b.logger.Warn("main script has no sheaf_main invocation; emitting a warning comment instead")
		buf.WriteString("# sheaf: no sheaf_main invocation found in the main script; this artifact\n")
		buf.WriteString("# sheaf: defines functions only and must be sourced by its caller.\n")
	} else {
		buf.WriteString(runStatement)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// header picks the artifact's first line: the main script's own shebang when
// KeepShebang is set and one exists, the default bash shebang otherwise.
func (b *Bundler) header(mainAbs string) string {
	if b.opts.KeepShebang {
		lines := splitLines(b.content[mainAbs])
		if len(lines) > 0 && strings.HasPrefix(lines[0], shebangPrefix) {
			return lines[0]
		}
	}
	return defaultHeader
}

// coreBlock extracts the fixed textual region of the core file located
// between the two core markers.
func coreBlock(core []byte) (string, error) {
	var (
		collected []string
		inside    bool
		found     bool
	)
	for _, line := range splitLines(core) {
		switch strings.TrimSpace(line) {
		case coreBeginMarker:
			inside = true
			found = true
			continue
		case coreEndMarker:
			inside = false
			continue
		}
		if inside {
			collected = append(collected, line)
		}
	}
	if !found {
		return "", fmt.Errorf("runtime core is missing the %q marker", coreBeginMarker)
	}
	if inside {
		return "", fmt.Errorf("runtime core is missing the %q marker", coreEndMarker)
	}
	return strings.Join(collected, "\n") + "\n", nil
}

func splitLines(data []byte) []string {
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
