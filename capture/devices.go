// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

var ErrUnsupportedFrame = errors.New("frame must be a JPEG or PNG image")

func decodeFrame(data []byte) (image.Image, error) {
	mtype := mimetype.Detect(data)
	if !mtype.Is("image/jpeg") && !mtype.Is("image/png") {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedFrame, mtype.String())
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

func satisfies(c Constraints, w, h int) bool {
	if w == 0 || h == 0 {
		return true
	}
	return c.Width <= w && c.Height <= h
}

// FeedDevice is a camera whose frames are pushed by the browser. The
// browser reports the outcome of its own media request with Report, and the
// next Open replays it.
type FeedDevice struct {
	mu      sync.Mutex
	maxW    int
	maxH    int
	pending error
	stream  *feedStream
}

func NewFeedDevice() *FeedDevice {
	return &FeedDevice{}
}

// Report records the browser's media request result: a DOMException name on
// failure, or the largest resolution its camera offers
func (d *FeedDevice) Report(errName string, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = ErrorFromName(errName)
	if width > 0 && height > 0 {
		d.maxW, d.maxH = width, height
	}
}

func (d *FeedDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		err := d.pending
		d.pending = nil
		return nil, err
	}
	if d.stream != nil && !d.stream.isStopped() {
		return nil, ErrDeviceBusy
	}
	if !satisfies(c, d.maxW, d.maxH) {
		return nil, fmt.Errorf("%w: want %dx%d, camera offers %dx%d", ErrOverconstrained, c.Width, c.Height, d.maxW, d.maxH)
	}

	d.stream = &feedStream{w: d.maxW, h: d.maxH}
	return d.stream, nil
}

// Push delivers an encoded frame to the open stream
func (d *FeedDevice) Push(data []byte) error {
	img, err := decodeFrame(data)
	if err != nil {
		return err
	}

	d.mu.Lock()
	s := d.stream
	d.mu.Unlock()

	if s == nil {
		return ErrNoStream
	}
	return s.push(img)
}

type feedStream struct {
	mu      sync.Mutex
	frame   image.Image
	w, h    int
	stopped bool
}

func (s *feedStream) push(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrNoStream
	}
	s.frame = img
	return nil
}

func (s *feedStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrNoStream
	}
	if s.frame == nil {
		return nil, ErrNoFrame
	}
	return s.frame, nil
}

func (s *feedStream) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame != nil {
		b := s.frame.Bounds()
		return b.Dx(), b.Dy()
	}
	return s.w, s.h
}

func (s *feedStream) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.frame = nil
	s.mu.Unlock()
}

func (s *feedStream) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// LockFile marks a directory camera as held by another process
const LockFile = ".lock"

// DirDevice replays the images in a directory as camera frames, for kiosk
// terminals with an external capture daemon
type DirDevice struct {
	dir   string
	mu    sync.Mutex
	inUse bool
}

func NewDirDevice(dir string) *DirDevice {
	return &DirDevice{dir: dir}
}

func (d *DirDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(d.dir)
	switch {
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	case err != nil:
		return nil, fmt.Errorf("failed to read camera directory: %w", err)
	}

	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if e.Name() == LockFile {
			return nil, ErrDeviceBusy
		}
		path := filepath.Join(d.dir, e.Name())
		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			continue
		}
		if mtype.Is("image/jpeg") || mtype.Is("image/png") {
			frames = append(frames, path)
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames in %s", ErrNoDevice, d.dir)
	}
	sort.Strings(frames)

	first, err := loadFrame(frames[0])
	if err != nil {
		return nil, err
	}
	b := first.Bounds()
	if !satisfies(c, b.Dx(), b.Dy()) {
		return nil, fmt.Errorf("%w: want %dx%d, frames are %dx%d", ErrOverconstrained, c.Width, c.Height, b.Dx(), b.Dy())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inUse {
		return nil, ErrDeviceBusy
	}
	d.inUse = true

	return &dirStream{device: d, frames: frames, w: b.Dx(), h: b.Dy()}, nil
}

func loadFrame(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	return decodeFrame(data)
}

type dirStream struct {
	device  *DirDevice
	mu      sync.Mutex
	frames  []string
	next    int
	w, h    int
	stopped bool
}

// Frame returns the next image, cycling through the directory
func (s *dirStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrNoStream
	}
	path := s.frames[s.next%len(s.frames)]
	s.next++
	return loadFrame(path)
}

func (s *dirStream) Size() (int, int) {
	return s.w, s.h
}

func (s *dirStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true

	s.device.mu.Lock()
	s.device.inUse = false
	s.device.mu.Unlock()
}
