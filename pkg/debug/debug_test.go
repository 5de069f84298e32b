package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	prevEnabled, prevOut := enabled, out
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(true)
	t.Cleanup(func() {
		SetOutput(prevOut)
		SetEnabled(prevEnabled)
	})
	return &buf
}

func TestLog_Disabled(t *testing.T) {
	buf := capture(t)
	SetEnabled(false)

	Log("render: %d blocks", 4)
	LogTiming("build", time.Millisecond)
	Dump("cfg", struct{}{})

	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestLog_Enabled(t *testing.T) {
	buf := capture(t)

	Log("render: %d blocks", 4)
	LogTiming("build", 2*time.Millisecond)
	Dump("size", 3)

	got := buf.String()
	for _, want := range []string{
		"[STAGEBOARD]",
		"render: 4 blocks",
		"build took 2ms",
		"size: int = 3",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
