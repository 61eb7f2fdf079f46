// Package sheaf provides a lightweight framework for building hierarchical
// command-line tools. Commands are registered against a path ("serve start"),
// flags are registered per command or globally, and a single resolution pass
// turns an argument vector into a resolved command, flag values, and
// positional arguments.
//
// The package prioritizes explicitness: the registry is built once at startup
// and never mutated afterwards, which makes resolution a pure function of the
// registry and the argument vector. A companion package, bundle, flattens a
// finished multi-file script tool into one dependency-ordered artifact.
package sheaf
