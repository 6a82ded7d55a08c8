// Package goroutine provides panic-safe helpers for background work.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"cmms/internal/shared/logger"
)

// SafeGo launches fn in a goroutine that logs instead of crashing the
// process when fn panics.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		_ = Recover(log, name, fn)
	}()
}

// Recover runs fn synchronously and converts a panic into an error so loops
// can keep going after a bad iteration.
func Recover(log logger.Interface, name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", name, r)
			log.Errorw("goroutine panicked",
				"goroutine", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
	return nil
}
