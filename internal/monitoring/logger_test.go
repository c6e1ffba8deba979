package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("track %d", 7)
	if got != "track 7" {
		t.Errorf("custom logger got %q, want %q", got, "track 7")
	}

	// nil installs a no-op; the previous logger must not be called.
	got = ""
	SetLogger(nil)
	Logf("track %d", 8)
	if got != "" {
		t.Errorf("no-op logger forwarded message %q", got)
	}
}

func TestWarnf(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Warnf("dropping track [%d] with reconstruction", 3)
	want := "[WARN] dropping track [3] with reconstruction"
	if got != want {
		t.Errorf("Warnf() logged %q, want %q", got, want)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}
