// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"testing"

	"github.com/danielhkuo/voter-desk/models"
)

func TestRequestPrompter(t *testing.T) {
	ctx := context.Background()

	denied := NewRequestPrompter(false)
	if denied.Confirm(ctx, "Delete voter?") {
		t.Error("unapproved prompter confirmed")
	}
	if denied.Asked() != "Delete voter?" {
		t.Errorf("Asked() = %q", denied.Asked())
	}

	approved := NewRequestPrompter(true)
	if !approved.Confirm(ctx, "Delete voter?") {
		t.Error("approved prompter refused")
	}

	approved.Notify(ctx, "Photo deleted", models.LevelInfo)
	approved.Notify(ctx, "Reload failed", models.LevelError)
	notices := approved.Notices()
	if len(notices) != 2 || notices[1].Level != models.LevelError {
		t.Errorf("Notices() = %+v", notices)
	}

	// Notices returns a copy
	notices[0].Message = "changed"
	if approved.Notices()[0].Message != "Photo deleted" {
		t.Error("Notices() exposed internal slice")
	}
}

func TestRequestPrompter_NothingAsked(t *testing.T) {
	p := NewRequestPrompter(false)
	if p.Asked() != "" {
		t.Error("fresh prompter reports a question")
	}
	if len(p.Notices()) != 0 {
		t.Error("fresh prompter reports notices")
	}
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r := &Recorder{Answer: true}

	if !r.Confirm(ctx, "one") {
		t.Error("Recorder should return Answer")
	}
	r.Answer = false
	if r.Confirm(ctx, "two") {
		t.Error("Recorder should return Answer")
	}
	r.Notify(ctx, "hello", models.LevelWarning)

	if len(r.Confirms) != 2 || r.Confirms[1] != "two" {
		t.Errorf("Confirms = %v", r.Confirms)
	}
	if len(r.Notices) != 1 || r.Notices[0].Level != models.LevelWarning {
		t.Errorf("Notices = %v", r.Notices)
	}
}
