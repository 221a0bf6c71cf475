// Package runtime carries the C runtime library every generated
// translation unit links against: the tagged Value representation, the
// mark-sweep collector, the scope-frame and print-frame stacks, and the
// primitive helpers generated code calls into. The driver copies these
// sources into its cache directory alongside each module's lowered C
// file before invoking the system compiler.
package runtime

import _ "embed"

//go:embed runtime.h
var Header []byte

//go:embed runtime.c
var Source []byte

// HeaderName and SourceName are the filenames the driver writes these
// under in the cache directory; generated units #include HeaderName.
const (
	HeaderName = "runtime.h"
	SourceName = "runtime.c"
)
