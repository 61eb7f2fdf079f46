package sheaf

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/sheafdev/sheaf/pkg/textutil"
)

const usageWidth = 80

// Usage renders the help text for the command at path: description, usage
// line, direct children, then the command's own flags followed by inherited
// and global flags not shadowed by a local definition. It is a pure function
// of the registries; an unknown path falls back to root help with a warning,
// never an error.
func (r *Registry) Usage(path []string) string {
	cmd, ok := r.commands[pathKey(path)]
	if !ok && len(path) > 0 {
		r.logger.Warn("no help for unknown command, showing root help", "path", strings.Join(path, " "))
		path = nil
		cmd = r.commands[""]
	}
	children := r.children(path)

	var b strings.Builder

	if cmd != nil && cmd.ShortHelp != "" {
		for _, line := range textutil.Wrap(cmd.ShortHelp, usageWidth) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if cmd != nil && cmd.LongHelp != "" {
		for _, line := range textutil.Wrap(cmd.LongHelp, usageWidth) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Usage:\n")
	if cmd != nil && cmd.Usage != "" {
		b.WriteString("  " + cmd.Usage + "\n")
	} else {
		usage := r.displayPath(path)
		if len(r.reachable(path)) > 0 {
			usage += " [flags]"
		}
		if len(children) > 0 {
			usage += " <command>"
		}
		b.WriteString("  " + usage + "\n")
	}
	b.WriteString("\n")

	if len(children) > 0 {
		b.WriteString("Available Commands:\n")
		rows := make([]textutil.Row, 0, len(children))
		for _, child := range children {
			rows = append(rows, textutil.Row{Name: child.name, Desc: child.shortHelp})
		}
		textutil.WriteRows(&b, rows, usageWidth)
		b.WriteString("\n")
	}

	local, global := r.flagRows(path)
	if len(local) > 0 {
		b.WriteString("Flags:\n")
		textutil.WriteRows(&b, local, usageWidth)
		b.WriteString("\n")
	}
	if len(global) > 0 {
		b.WriteString("Global Flags:\n")
		textutil.WriteRows(&b, global, usageWidth)
		b.WriteString("\n")
	}

	if len(children) > 0 {
		fmt.Fprintf(&b, "Use \"%s [command] --help\" for more information about a command.\n",
			r.displayPath(path))
	}

	return strings.TrimRight(b.String(), "\n")
}

// flagRows splits the reachable definitions into the command's own flags and
// everything inherited (ancestor-local or global scope, minus shadowed
// names), both sorted by flag name.
func (r *Registry) flagRows(path []string) (local, global []textutil.Row) {
	own := r.flags[pathKey(path)]
	for name, bound := range r.reachable(path) {
		row := textutil.Row{Name: flagLabel(bound.def), Desc: flagDescription(bound.def)}
		if own[name] == bound.def {
			local = append(local, row)
		} else {
			global = append(global, row)
		}
	}
	sortRows(local)
	sortRows(global)
	return local, global
}

func sortRows(rows []textutil.Row) {
	slices.SortFunc(rows, func(a, b textutil.Row) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

func flagLabel(f *Flag) string {
	if f.Short != "" {
		return fmt.Sprintf("--%s, -%s", f.Name, f.Short)
	}
	return "--" + f.Name
}

// flagDescription renders the usage text with the required marker and the
// default value, bool defaults shown as enabled/disabled.
func flagDescription(f *Flag) string {
	desc := f.Usage
	if f.Required {
		desc = strings.TrimSpace(desc + " (required)")
	}
	switch {
	case f.Type == FlagBool && f.Default == "true":
		desc = strings.TrimSpace(desc + " (default: enabled)")
	case f.Type == FlagBool:
		desc = strings.TrimSpace(desc + " (default: disabled)")
	case f.Default != "":
		desc = strings.TrimSpace(desc + fmt.Sprintf(" (default: %s)", f.Default))
	}
	return desc
}
