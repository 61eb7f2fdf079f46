// Package core embeds the sheaf shell runtime. The bundler hoists the
// marker-delimited definitions block of this script to the top of every
// artifact it emits.
package core

import _ "embed"

// FileName is the name inclusion directives use to reference the runtime;
// the bundler skips such directives because the core is always hoisted.
const FileName = "sheaf.sh"

// Script is the full runtime core file, markers included.
//
//go:embed sheaf.sh
var Script []byte
