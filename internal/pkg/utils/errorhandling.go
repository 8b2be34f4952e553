package utils

import (
	"log/slog"
	"runtime/debug"
)

// RecoverPanic logs a recovered panic with its stack. Use it directly in a
// defer statement.
func RecoverPanic() {
	r := recover()
	if r != nil {
		slog.Error("Recovered from panic", "panic", r, "stack", string(debug.Stack()))
	}
}
