// Package interp implements the execution engine: the lexical upvalue chain,
// bound programs (closures), coroutine threads and the instruction dispatch
// loop with tail-call optimization.
package interp

// Version is the interpreter version string, reported on startup.
const Version = "0.006"
