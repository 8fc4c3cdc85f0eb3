// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
)

// Constraints describe the stream a device should open. Width and Height
// are minimums; zero means any.
type Constraints struct {
	FacingMode string `json:"facing_mode,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Audio      bool   `json:"audio"`
}

var (
	Preferred = Constraints{FacingMode: "user", Width: 1280, Height: 720}
	Relaxed   = Constraints{}
)

// Fallback still size when a stream reports no dimensions
const (
	FallbackWidth  = 640
	FallbackHeight = 480
)

type Stream interface {
	Frame() (image.Image, error)
	Size() (width, height int)
	Stop()
}

type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Surface is where the live stream is presented
type Surface interface {
	Attach(s Stream)
	Detach()
}

type Status struct {
	Active   bool `json:"active"`
	HasStill bool `json:"has_still"`
	Relaxed  bool `json:"relaxed"`
	Width    int  `json:"width,omitempty"`
	Height   int  `json:"height,omitempty"`
}

// Camera owns at most one live stream and at most one still.
// The stream is released when a still is taken, on re-acquisition and on
// Close, whatever the outcome of the preceding call.
type Camera struct {
	mu      sync.Mutex
	device  Device
	stream  Stream
	surface Surface
	still   *Still
	relaxed bool
}

func NewCamera(device Device) *Camera {
	return &Camera{device: device}
}

// Start acquires a stream with the preferred constraints, retrying once with
// relaxed constraints when the device cannot satisfy them. Failures are
// returned as *Failure.
func (c *Camera) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked()
	c.still = nil
	c.relaxed = false

	stream, err := c.device.Open(ctx, Preferred)
	if errors.Is(err, ErrOverconstrained) {
		slog.Warn("camera constraints unsatisfiable, retrying with defaults", "error", err)
		stream, err = c.device.Open(ctx, Relaxed)
		if err != nil {
			slog.Error("camera fallback failed", "error", err)
			return &Failure{Kind: Classify(err).Kind, Message: MsgFallbackFailed, Err: err}
		}
		c.relaxed = true
	}
	if err != nil {
		failure := Classify(err)
		slog.Warn("camera start failed", "kind", failure.Kind, "error", err)
		return failure
	}

	c.stream = stream
	if c.surface != nil {
		c.surface.Attach(stream)
	}
	return nil
}

// Bind presents the live stream on s. Binding before Start is remembered
// and applied when a stream arrives.
func (c *Camera) Bind(s Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface != nil && c.surface != s {
		c.surface.Detach()
	}
	c.surface = s
	if c.stream != nil {
		s.Attach(c.stream)
	}
}

// Capture freezes the current frame at the stream's native size and stops
// the stream
func (c *Camera) Capture() (Still, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return Still{}, ErrNoStream
	}

	frame, err := c.stream.Frame()
	if err != nil {
		return Still{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	w, h := c.stream.Size()
	if w == 0 || h == 0 {
		w, h = FallbackWidth, FallbackHeight
	}

	still, err := EncodeStill(frame, w, h)
	if err != nil {
		return Still{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	c.releaseLocked()
	c.still = &still
	return still, nil
}

// Retake discards the still and acquires a fresh stream
func (c *Camera) Retake(ctx context.Context) error {
	return c.Start(ctx)
}

// Still returns the captured still, if any
func (c *Camera) Still() (Still, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.still == nil {
		return Still{}, ErrNoStill
	}
	return *c.still, nil
}

func (c *Camera) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Active:   c.stream != nil,
		HasStill: c.still != nil,
		Relaxed:  c.relaxed,
	}
	if c.stream != nil {
		st.Width, st.Height = c.stream.Size()
	}
	return st
}

// Close stops the stream and detaches the surface. Safe to call repeatedly.
func (c *Camera) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked()
	if c.surface != nil {
		c.surface.Detach()
		c.surface = nil
	}
	c.still = nil
}

func (c *Camera) releaseLocked() {
	if c.stream == nil {
		return
	}
	if c.surface != nil {
		c.surface.Detach()
	}
	c.stream.Stop()
	c.stream = nil
}
