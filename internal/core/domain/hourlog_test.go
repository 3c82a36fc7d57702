package domain

import "testing"

func TestAutoStopNote(t *testing.T) {
	if got := AutoStopNote(8); got != "Auto-stopped after 8 hours" {
		t.Fatalf("got %q", got)
	}
	if got := AutoStopNote(7.5); got != "Auto-stopped after 7.5 hours" {
		t.Fatalf("got %q", got)
	}
}

func TestAppendNote(t *testing.T) {
	if got := AppendNote("", "Auto-stopped after 8 hours"); got != "Auto-stopped after 8 hours" {
		t.Fatalf("empty notes: got %q", got)
	}
	if got := AppendNote("press 2 jam", "Auto-stopped after 8 hours"); got != "press 2 jam\nAuto-stopped after 8 hours" {
		t.Fatalf("existing notes: got %q", got)
	}
}
