// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/danielhkuo/voter-desk/models"
)

// ErrNotConfirmed is returned by console actions the operator did not confirm
var ErrNotConfirmed = errors.New("action not confirmed")

// Prompter asks the operator to confirm destructive actions and shows
// banners
type Prompter interface {
	Confirm(ctx context.Context, message string) bool
	Notify(ctx context.Context, message, level string)
}

// RequestPrompter answers for a single HTTP request. Confirm returns the
// approval decided by the handler (a valid confirmation token) and records
// the question so the handler can ask for it when approval is missing.
type RequestPrompter struct {
	mu       sync.Mutex
	approved bool
	asked    string
	notices  []models.Notice
}

func NewRequestPrompter(approved bool) *RequestPrompter {
	return &RequestPrompter{approved: approved}
}

func (p *RequestPrompter) Confirm(ctx context.Context, message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = message
	return p.approved
}

func (p *RequestPrompter) Notify(ctx context.Context, message, level string) {
	p.mu.Lock()
	p.notices = append(p.notices, models.Notice{Level: level, Message: message})
	p.mu.Unlock()

	slog.Debug("notice", "level", level, "message", message)
}

// Asked returns the last confirmation question, or ""
func (p *RequestPrompter) Asked() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asked
}

// Notices returns the banners raised during the request
func (p *RequestPrompter) Notices() []models.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Notice, len(p.notices))
	copy(out, p.notices)
	return out
}

// Recorder answers every confirmation with Answer and keeps everything it
// was asked and told
type Recorder struct {
	mu       sync.Mutex
	Answer   bool
	Confirms []string
	Notices  []models.Notice
}

func (r *Recorder) Confirm(ctx context.Context, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Confirms = append(r.Confirms, message)
	return r.Answer
}

func (r *Recorder) Notify(ctx context.Context, message, level string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, models.Notice{Level: level, Message: message})
}
