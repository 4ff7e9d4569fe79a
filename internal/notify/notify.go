// Package notify turns board events into desktop notifications according to
// the user's preferences.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/example/planboard/assets"
	"github.com/example/planboard/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport fires when a board is written to a file.
	EventExport Event = "export"
	// EventCopy fires when an image or link is copied to the clipboard.
	EventCopy Event = "copy"
	// EventPeer fires when another participant joins the floor.
	EventPeer Event = "peers"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.DefaultAppName,
		Events: map[Event]EventPreference{
			EventExport: {Template: "Exported %s"},
			EventCopy:   {Template: "Copied %s to clipboard"},
			EventPeer:   {Template: "%s joined the floor"},
		},
	}
}

// LoadPreferences reads PLANBOARD_NOTIFY_* overrides from the environment.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("PLANBOARD_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for event := range prefs.Events {
		key := "PLANBOARD_NOTIFY_" + strings.ToUpper(string(event)) + "_TEXT"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	return prefs
}

// send is the platform hook; tests replace it.
var send = platform.Notify

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs Preferences

	mu      sync.Mutex
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.enabled[event] = enabled
	n.mu.Unlock()
}

// Export reports a written file. PNG exports show themselves as the icon.
func (n *Notifier) Export(path string) {
	if !n.enabledFor(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{IconPath: appIcon()}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if strings.EqualFold(filepath.Ext(abs), ".png") {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Copy reports a clipboard write, previewing img when given.
func (n *Notifier) Copy(detail string, img image.Image) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	opts := platform.Options{IconPath: appIcon()}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCopy, detail, opts)
}

// PeerJoined reports a participant arriving on the floor.
func (n *Notifier) PeerJoined(userID string) {
	if !n.enabledFor(EventPeer) {
		return
	}
	n.dispatch(EventPeer, userID, platform.Options{IconPath: appIcon()})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	opts.AppName = n.prefs.Title
	if err := send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

var (
	iconOnce sync.Once
	iconPath string
)

// appIcon writes the application icon to the temp dir once per process.
func appIcon() string {
	iconOnce.Do(func() {
		data, err := assets.IconPNG(assets.AppIcon, 64)
		if err != nil {
			log.Printf("notification icon: %v", err)
			return
		}
		path := filepath.Join(os.TempDir(), "planboard-icon.png")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Printf("notification icon: %v", err)
			return
		}
		iconPath = path
	})
	return iconPath
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "planboard-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
