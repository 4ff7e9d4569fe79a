//go:build !linux && !darwin && !windows

package platform

import (
	"errors"
	"runtime"
)

// Notify reports that the host has no notification service planboard can
// reach.
func Notify(title, body string, opts Options) error {
	return errors.New("notifications unsupported on " + runtime.GOOS)
}
