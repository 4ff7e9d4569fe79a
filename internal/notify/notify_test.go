package notify

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/example/planboard/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func capture(t *testing.T, err error) *[]sent {
	t.Helper()
	var got []sent
	prev := send
	send = func(title, body string, opts platform.Options) error {
		got = append(got, sent{title, body, opts})
		return err
	}
	t.Cleanup(func() { send = prev })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t, nil)
	n := New(DefaultPreferences())
	n.Export("plan.png")
	n.Copy("link", nil)
	n.PeerJoined("bob")
	if len(*got) != 0 {
		t.Fatalf("sent %d notifications", len(*got))
	}
	var nilNotifier *Notifier
	nilNotifier.PeerJoined("bob")
}

func TestPeerJoined(t *testing.T) {
	got := capture(t, nil)
	n := New(DefaultPreferences())
	n.Enable(EventPeer, true)
	n.PeerJoined("bob")
	if len(*got) != 1 {
		t.Fatalf("sent %d notifications", len(*got))
	}
	if (*got)[0].body != "bob joined the floor" || (*got)[0].opts.AppName != platform.DefaultAppName {
		t.Errorf("notification = %+v", (*got)[0])
	}
}

func TestExportUsesAbsolutePath(t *testing.T) {
	got := capture(t, errors.New("no bus"))
	n := New(DefaultPreferences())
	n.Enable(EventExport, true)
	n.Export("plan.png")
	if len(*got) != 1 {
		t.Fatalf("sent %d notifications", len(*got))
	}
	body := (*got)[0].body
	if !strings.HasPrefix(body, "Exported /") || !strings.HasSuffix(body, "plan.png") {
		t.Errorf("body = %q", body)
	}
	if !strings.HasSuffix((*got)[0].opts.IconPath, "plan.png") {
		t.Errorf("icon = %q", (*got)[0].opts.IconPath)
	}
}

func TestCopyPreview(t *testing.T) {
	got := capture(t, nil)
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)
	n.Copy("", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if len(*got) != 1 {
		t.Fatalf("sent %d notifications", len(*got))
	}
	if (*got)[0].body != "Copied image to clipboard" {
		t.Errorf("body = %q", (*got)[0].body)
	}
	if !strings.Contains((*got)[0].opts.IconPath, "planboard-preview-") {
		t.Errorf("icon = %q", (*got)[0].opts.IconPath)
	}
}

func TestLoadPreferences(t *testing.T) {
	t.Setenv("PLANBOARD_NOTIFY_TITLE", "Ops")
	t.Setenv("PLANBOARD_NOTIFY_PEERS_TEXT", "%s is here")
	p := LoadPreferences()
	if p.Title != "Ops" || p.Events[EventPeer].Template != "%s is here" {
		t.Errorf("prefs = %+v", p)
	}
	if p.Events[EventExport].Template != "Exported %s" {
		t.Errorf("export template = %q", p.Events[EventExport].Template)
	}
}
