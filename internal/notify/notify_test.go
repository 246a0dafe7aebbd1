package notify

import (
	"image"
	"os"
	"testing"

	"github.com/example/photoclip/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	old := send
	send = func(title, body string, opts platform.Options) error {
		s := sent{title: title, body: body, opts: opts}
		if opts.IconPath != "" {
			_, err := os.Stat(opts.IconPath)
			s.iconExisted = err == nil
		}
		got = append(got, s)
		return nil
	}
	t.Cleanup(func() { send = old })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Copy("crop.png")
	n.Save("crop.png")
	n.Crop("300x300", nil)
	if len(*got) != 0 {
		t.Fatalf("expected nothing, got %+v", *got)
	}
}

func TestCropSendsPreview(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventCrop, true)
	n.Crop("300x300", image.NewRGBA(image.Rect(0, 0, 300, 300)))
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	s := (*got)[0]
	if s.title != "photoclip" || s.body != "Cropped 300x300" {
		t.Fatalf("unexpected %q %q", s.title, s.body)
	}
	if !s.iconExisted {
		t.Fatal("preview should exist while sending")
	}
	if _, err := os.Stat(s.opts.IconPath); !os.IsNotExist(err) {
		t.Fatalf("preview should be removed, stat err %v", err)
	}
}

func TestLoadPreferences(t *testing.T) {
	env := map[string]string{
		"PHOTOCLIP_NOTIFY_TITLE":     "Crops",
		"PHOTOCLIP_NOTIFY_COPY_TEXT": "%s on the clipboard",
	}
	prefs := LoadPreferences(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	got := capture(t)
	n := New(prefs)
	n.Enable(EventCopy, true)
	n.Copy("")
	if len(*got) != 1 || (*got)[0].title != "Crops" || (*got)[0].body != "image on the clipboard" {
		t.Fatalf("unexpected %+v", *got)
	}
}
