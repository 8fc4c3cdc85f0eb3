// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"log/slog"
	"sync"
)

// PreviewWidth bounds preview thumbnails
const PreviewWidth = 320

// Slot is the camera owned by one wizard session
type Slot struct {
	Camera  *Camera
	Surface *PreviewSurface
	Feed    *FeedDevice // nil when frames come from a directory
}

// Registry holds one camera per wizard session
type Registry struct {
	mu        sync.Mutex
	slots     map[string]*Slot
	cameraDir string
}

// NewRegistry creates a registry. With an empty cameraDir every session
// gets a browser-fed device; otherwise all sessions read frames from
// cameraDir.
func NewRegistry(cameraDir string) *Registry {
	return &Registry{
		slots:     make(map[string]*Slot),
		cameraDir: cameraDir,
	}
}

// Acquire returns the session's slot, creating and binding it if needed
func (r *Registry) Acquire(sessionID string) *Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot, ok := r.slots[sessionID]; ok {
		return slot
	}

	slot := &Slot{Surface: NewPreviewSurface(PreviewWidth)}
	if r.cameraDir != "" {
		slot.Camera = NewCamera(NewDirDevice(r.cameraDir))
	} else {
		slot.Feed = NewFeedDevice()
		slot.Camera = NewCamera(slot.Feed)
	}
	slot.Camera.Bind(slot.Surface)

	r.slots[sessionID] = slot
	return slot
}

func (r *Registry) Get(sessionID string) (*Slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[sessionID]
	return slot, ok
}

// Release closes the session's camera and forgets it
func (r *Registry) Release(sessionID string) {
	r.mu.Lock()
	slot, ok := r.slots[sessionID]
	delete(r.slots, sessionID)
	r.mu.Unlock()

	if ok {
		slot.Camera.Close()
		slog.Info("camera released", "session_id", sessionID)
	}
}

// CloseAll releases every camera, used at shutdown
func (r *Registry) CloseAll() {
	r.mu.Lock()
	slots := r.slots
	r.slots = make(map[string]*Slot)
	r.mu.Unlock()

	for _, slot := range slots {
		slot.Camera.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
