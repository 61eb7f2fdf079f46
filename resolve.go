package sheaf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sheafdev/sheaf/pkg/suggest"
)

// Invocation is the result of resolving an argument vector: exactly one
// command path, a value for every reachable flag definition, and the leftover
// positional arguments. It is created once per run and consumed once by the
// dispatcher.
type Invocation struct {
	// Path is the resolved command path; empty means the root command.
	Path []string

	// Flags maps every reachable flag name to its resolved value, with
	// defaults applied. Bool values are the strings "true" and "false".
	Flags map[string]string

	// Args holds the positional arguments in their original order.
	Args []string

	command      string
	defs         map[string]boundFlag
	globalDefs   map[string]*Flag
	globalValues map[string]string
}

// Resolve parses args (typically os.Args[1:]) against the registry. It
// returns a terminating error for help requests (*HelpRequest, status 0) and
// for resolution or validation failures (*ResolveError, non-zero status).
// Resolve mutates nothing: it is a pure function of the registry and args.
func (r *Registry) Resolve(args []string) (*Invocation, error) {
	if len(args) > 0 && args[0] == "help" {
		return nil, r.resolveHelpVerb(args[1:])
	}

	// Greedy longest-prefix command matching: a token extends the path only
	// while the extended path is itself registered. Flag-looking tokens,
	// including the bare -- separator, always end matching.
	var path []string
	i := 0
	for i < len(args) {
		tok := args[i]
		if strings.HasPrefix(tok, "-") {
			break
		}
		extended := append(path[:len(path):len(path)], strings.ToLower(tok))
		if _, ok := r.commands[pathKey(extended)]; !ok {
			break
		}
		path = extended
		i++
	}

	reachable := r.reachable(path)
	values := make(map[string]string)
	var positional []string

	for ; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if tok == "--help" || tok == "-h" {
			return nil, &HelpRequest{Path: path}
		}
		switch {
		case strings.HasPrefix(tok, "--"):
			consumed, err := r.scanLongFlag(path, reachable, values, tok, args[i+1:])
			if err != nil {
				return nil, err
			}
			i += consumed
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			consumed, err := r.scanShortGroup(path, reachable, values, tok, args[i+1:])
			if err != nil {
				return nil, err
			}
			i += consumed
		default:
			positional = append(positional, tok)
		}
	}

	// Defaulting happens over the full reachable set so later validation and
	// handler lookups see a value for every definition.
	for name, bound := range reachable {
		if _, ok := values[name]; !ok {
			values[name] = bound.def.Default
		}
	}
	if err := r.validateRequired(path, reachable, values); err != nil {
		return nil, err
	}

	// The global-scope view keeps each global definition's own value: when a
	// local definition shadows the name, the scanned value belongs to the
	// local flag and the global keeps its default.
	globalValues := make(map[string]string, len(r.globals))
	for name, f := range r.globals {
		if bound := reachable[name]; bound.def == f {
			globalValues[name] = values[name]
		} else {
			globalValues[name] = f.Default
		}
	}

	return &Invocation{
		Path:         path,
		Flags:        values,
		Args:         positional,
		command:      r.displayPath(path),
		defs:         reachable,
		globalDefs:   r.globals,
		globalValues: globalValues,
	}, nil
}

// resolveHelpVerb handles "help [segments...]": every token must extend a
// registered path, and flags are never consumed on this route.
func (r *Registry) resolveHelpVerb(args []string) error {
	var path []string
	for _, tok := range args {
		extended := append(path, strings.ToLower(tok))
		if _, ok := r.commands[pathKey(extended)]; !ok {
			return r.errorf(path, "%w", r.formatUnknownCommandError(path, tok))
		}
		path = extended
	}
	return &HelpRequest{Path: path}
}

// scanLongFlag handles --name and --name=value tokens. It returns how many
// extra tokens were consumed from rest (0 or 1).
func (r *Registry) scanLongFlag(path []string, reachable map[string]boundFlag, values map[string]string, tok string, rest []string) (int, error) {
	name, explicit, hasExplicit := strings.Cut(tok[2:], "=")
	bound, ok := reachable[name]
	if !ok {
		return 0, r.unknownFlagError(path, reachable, "--"+name)
	}
	return r.setFlagValue(path, values, bound.def, name, explicit, hasExplicit, rest)
}

// scanShortGroup handles -c, grouped -abc, and -c=value tokens. Every
// character except the last must resolve to a bool definition; the group's
// trailing flag may consume a value like its long form would.
func (r *Registry) scanShortGroup(path []string, reachable map[string]boundFlag, values map[string]string, tok string, rest []string) (int, error) {
	group, explicit, hasExplicit := strings.Cut(tok[1:], "=")
	if group == "" {
		return 0, r.errorf(path, "invalid flag %q", tok)
	}
	chars := []rune(group)
	for idx, c := range chars {
		short := string(c)
		name, ok := r.aliases[short]
		var bound boundFlag
		if ok {
			bound, ok = reachable[name]
		}
		if !ok {
			return 0, r.unknownFlagError(path, reachable, "-"+short)
		}
		if idx < len(chars)-1 {
			if bound.def.Type == FlagString {
				return 0, r.errorf(path, "string flag -%s must be last in its group", short)
			}
			values[name] = "true"
			continue
		}
		return r.setFlagValue(path, values, bound.def, name, explicit, hasExplicit, rest)
	}
	return 0, nil
}

// setFlagValue applies one definition's value policy: presence or an exact
// true/false literal for bools; an explicit =value, a following non-flag
// token, or a hard error for strings. A string flag never silently keeps its
// default when the value is missing.
func (r *Registry) setFlagValue(path []string, values map[string]string, def *Flag, name, explicit string, hasExplicit bool, rest []string) (int, error) {
	switch def.Type {
	case FlagBool:
		if !hasExplicit {
			values[name] = "true"
			return 0, nil
		}
		if explicit != "true" && explicit != "false" {
			return 0, r.errorf(path, "invalid boolean value %q for flag --%s", explicit, name)
		}
		values[name] = explicit
		return 0, nil
	default:
		if hasExplicit {
			values[name] = explicit
			return 0, nil
		}
		if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
			values[name] = rest[0]
			return 1, nil
		}
		return 0, r.errorf(path, "flag --%s requires a value", name)
	}
}

// validateRequired runs once, after defaulting, over the full reachable set,
// so the error is deterministic regardless of argument order.
func (r *Registry) validateRequired(path []string, reachable map[string]boundFlag, values map[string]string) error {
	var missing []string
	for name, bound := range reachable {
		if bound.def.Required && values[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return r.errorf(path, "required flag(s) %q not set", strings.Join(missing, ", "))
}

func (r *Registry) unknownFlagError(path []string, reachable map[string]boundFlag, given string) error {
	known := make([]string, 0, len(reachable))
	for name := range reachable {
		known = append(known, "--"+name)
	}
	suggestions := suggest.FindSimilar(given, known, 3)
	if len(suggestions) > 0 {
		return r.errorf(path, "unknown flag %q. Did you mean one of these?\n\t%s",
			given, strings.Join(suggestions, "\n\t"))
	}
	return r.errorf(path, "unknown flag %q", given)
}

func (r *Registry) errorf(path []string, format string, args ...any) error {
	return &ResolveError{
		Path:    path,
		Command: r.displayPath(path),
		Err:     fmt.Errorf(format, args...),
	}
}
