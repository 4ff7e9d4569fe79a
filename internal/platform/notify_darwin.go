//go:build darwin

package platform

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// osascriptWait bounds how long Notify waits for Notification Center.
const osascriptWait = 5 * time.Second

// Notify posts to Notification Center through osascript. The app name is
// shown as the subtitle; icons are not supported by the AppleScript bridge.
func Notify(title, body string, opts Options) error {
	ctx, cancel := context.WithTimeout(context.Background(), osascriptWait)
	defer cancel()
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", body, title, opts.appName())
	if out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, out)
	}
	return nil
}
