// Package platform sends desktop notifications through the host's
// notification service.
package platform

import "time"

// DefaultAppName is reported to the notification service when Options
// leaves AppName empty.
const DefaultAppName = "Planboard"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName is the sending application shown by the notification center.
	AppName string
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout is how long the notification stays up. Zero leaves it to the
	// notification service.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}
