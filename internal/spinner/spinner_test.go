package spinner

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSpinnerWritesAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := Start(&buf, "probing llama-3.1-8b")
	time.Sleep(200 * time.Millisecond)
	s.SetMessage("scoring")
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	// The animation goroutine has exited once Stop returns, so reading
	// the buffer here is safe.
	out := buf.String()
	if !strings.Contains(out, "probing llama-3.1-8b") {
		t.Error("expected first message in output")
	}
	if !strings.Contains(out, "scoring") {
		t.Error("expected swapped message in output")
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("expected the line to end cleared")
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	var buf bytes.Buffer
	s := Start(&buf, "working")
	s.Stop()
	s.Stop() // must not panic or block
}
