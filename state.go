package sheaf

import (
	"fmt"
	"io"
	"strconv"
)

// State is the execution context handed to a command's Exec function: the
// positional arguments, the standard streams, and accessors for the resolved
// flag values.
type State struct {
	// Args contains the positional arguments left after resolution.
	Args []string

	// Standard I/O streams.
	Stdin          io.Reader
	Stdout, Stderr io.Writer

	inv *Invocation
}

// GetFlag retrieves a flag value by name, with type inference. The value is
// the one visible to the resolved command: a command-local definition shadows
// a global one of the same name. Example usage:
//
//	verbose := GetFlag[bool](s, "verbose")
//	output := GetFlag[string](s, "output")
//
// If the flag isn't found, or the requested type doesn't match the
// registered type, it panics.
//
// Why panic? Because a missing or mistyped flag here is a programming error,
// a missing definition, and it's better to fail LOUD and EARLY than to
// silently ignore the issue and cause unexpected behavior.
func GetFlag[T any](s *State, name string) T {
	bound, ok := s.inv.defs[name]
	if !ok {
		panic(fmt.Errorf("internal error: flag %q not found for command %q", "--"+name, s.inv.command))
	}
	return convertFlag[T](bound.def, name, s.inv.Flags[name], s.inv.command)
}

// GetGlobalFlag retrieves a flag registered at global scope, ignoring any
// command-local definition that shadows the name. It panics under the same
// conditions as [GetFlag].
func GetGlobalFlag[T any](s *State, name string) T {
	def, ok := s.inv.globalDefs[name]
	if !ok {
		panic(fmt.Errorf("internal error: global flag %q not found for command %q", "--"+name, s.inv.command))
	}
	return convertFlag[T](def, name, s.inv.globalValues[name], s.inv.command)
}

func convertFlag[T any](def *Flag, name, raw, command string) T {
	var out T
	switch p := any(&out).(type) {
	case *string:
		if def.Type != FlagString {
			panic(typeMismatch(def, name, "string", command))
		}
		*p = raw
	case *bool:
		if def.Type != FlagBool {
			panic(typeMismatch(def, name, "bool", command))
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			panic(fmt.Errorf("internal error: flag %q in command %q holds non-boolean value %q", "--"+name, command, raw))
		}
		*p = b
	default:
		panic(fmt.Errorf("internal error: unsupported type %T requested for flag %q; flags are string or bool", out, "--"+name))
	}
	return out
}

func typeMismatch(def *Flag, name, requested, command string) error {
	return fmt.Errorf("internal error: type mismatch for flag %q in command %q: registered %s, requested %s",
		"--"+name, command, def.Type, requested)
}
