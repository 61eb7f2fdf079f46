package sheaf

// FlagType is the value type of a flag definition.
type FlagType int

const (
	// FlagString flags carry an arbitrary string value.
	FlagString FlagType = iota
	// FlagBool flags are set true by presence and accept an explicit
	// =true/=false suffix.
	FlagBool
)

func (t FlagType) String() string {
	switch t {
	case FlagString:
		return "string"
	case FlagBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Flag describes a single flag definition. A definition registered on a
// command path shadows a same-named global (or shallower) definition for that
// command only.
type Flag struct {
	// Name is the long name, matched as --name.
	Name string

	// Short is an optional one-character alias, matched as -c. Aliases live
	// in one flat namespace across the whole registry; the first registration
	// of an alias wins.
	Short string

	// Default is the value assigned when the flag is not present on the
	// command line. For bool flags it must be "true" or "false"; empty is
	// normalized to "false".
	Default string

	// Usage is the one-line description shown in help output.
	Usage string

	// Type selects string or bool semantics during scanning.
	Type FlagType

	// Required marks the flag as mandatory: an empty value after defaulting
	// is a fatal validation error.
	Required bool
}

// RegisterFlag attaches a flag definition to the command at path. The empty
// path attaches it to the root command; note root-local flags are still
// command-scoped, use [Registry.RegisterGlobalFlag] for flags that apply
// everywhere. Malformed definitions are logged and skipped, never fatal.
func (r *Registry) RegisterFlag(path string, f *Flag) {
	segments, ok := r.splitPath(path)
	if !ok {
		return
	}
	if !r.checkFlag(f) {
		return
	}
	key := pathKey(segments)
	if r.flags[key] == nil {
		r.flags[key] = make(map[string]*Flag)
	}
	if _, exists := r.flags[key][f.Name]; exists {
		r.logger.Warn("overwriting previously registered flag", "command", r.displayPath(segments), "flag", f.Name)
	}
	r.flags[key][f.Name] = f
	r.bindAlias(f)
}

// RegisterGlobalFlag attaches a flag definition visible to every command,
// unless a command-local definition with the same name shadows it.
func (r *Registry) RegisterGlobalFlag(f *Flag) {
	if !r.checkFlag(f) {
		return
	}
	if _, exists := r.globals[f.Name]; exists {
		r.logger.Warn("overwriting previously registered global flag", "flag", f.Name)
	}
	r.globals[f.Name] = f
	r.bindAlias(f)
}

// checkFlag validates a definition, normalizing the bool default in place.
// Registration errors are warnings, not failures: they happen at startup
// before any user-facing action.
func (r *Registry) checkFlag(f *Flag) bool {
	if f.Name == "" {
		r.logger.Warn("skipping registration: flag has no name")
		return false
	}
	if len(f.Short) > 1 {
		r.logger.Warn("skipping registration: short alias must be a single character", "flag", f.Name, "short", f.Short)
		return false
	}
	if f.Type == FlagBool {
		switch f.Default {
		case "":
			f.Default = "false"
		case "true", "false":
		default:
			r.logger.Warn("skipping registration: bool flag default must be true or false", "flag", f.Name, "default", f.Default)
			return false
		}
	}
	return true
}

// bindAlias records the short alias in the flat alias namespace. First
// registration wins; a clashing later binding is ignored with a warning.
func (r *Registry) bindAlias(f *Flag) {
	if f.Short == "" {
		return
	}
	if existing, ok := r.aliases[f.Short]; ok {
		if existing != f.Name {
			r.logger.Warn("short alias already bound, ignoring new binding",
				"short", f.Short, "bound", existing, "ignored", f.Name)
		}
		return
	}
	r.aliases[f.Short] = f.Name
}

// boundFlag pairs a reachable definition with whether it came from the
// explicit global scope, which [GetGlobalFlag] needs to distinguish.
type boundFlag struct {
	def    *Flag
	global bool
}

// reachable computes the flag definitions visible to a command: the global
// scope overlaid by each prefix of the path from root to leaf, so deeper
// definitions shadow shallower ones and any local definition shadows a
// same-named global.
func (r *Registry) reachable(path []string) map[string]boundFlag {
	m := make(map[string]boundFlag)
	for name, f := range r.globals {
		m[name] = boundFlag{def: f, global: true}
	}
	for i := 0; i <= len(path); i++ {
		for name, f := range r.flags[pathKey(path[:i])] {
			m[name] = boundFlag{def: f}
		}
	}
	return m
}
