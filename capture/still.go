// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"sync"

	"github.com/nfnt/resize"
)

// JPEGQuality for stills and previews
const JPEGQuality = 90

// Still is a captured frame encoded as a JPEG data URL
type Still struct {
	DataURL string `json:"data_url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// EncodeStill draws frame onto a w x h surface and encodes it
func EncodeStill(frame image.Image, w, h int) (Still, error) {
	b := frame.Bounds()
	if b.Dx() != w || b.Dy() != h {
		frame = resize.Resize(uint(w), uint(h), frame, resize.Bilinear)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Still{}, fmt.Errorf("failed to encode still: %w", err)
	}

	return Still{
		DataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:   w,
		Height:  h,
	}, nil
}

// Mirror flips img horizontally so the voter sees themselves as in a mirror
func Mirror(img image.Image) *image.RGBA {
	b := img.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	out := image.NewRGBA(src.Bounds())
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(w-1-x, y, src.RGBAAt(x, y))
		}
	}
	return out
}

// PreviewSurface presents the live stream as mirrored JPEG thumbnails
type PreviewSurface struct {
	mu       sync.Mutex
	stream   Stream
	maxWidth uint
}

func NewPreviewSurface(maxWidth uint) *PreviewSurface {
	return &PreviewSurface{maxWidth: maxWidth}
}

func (p *PreviewSurface) Attach(s Stream) {
	p.mu.Lock()
	p.stream = s
	p.mu.Unlock()
}

func (p *PreviewSurface) Detach() {
	p.mu.Lock()
	p.stream = nil
	p.mu.Unlock()
}

func (p *PreviewSurface) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stream != nil
}

// Render returns the current frame as a mirrored JPEG no wider than the
// surface's max width
func (p *PreviewSurface) Render() ([]byte, error) {
	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()

	if stream == nil {
		return nil, ErrNoStream
	}

	frame, err := stream.Frame()
	if err != nil {
		return nil, err
	}

	thumb := resize.Thumbnail(p.maxWidth, p.maxWidth, frame, resize.Bilinear)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Mirror(thumb), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
