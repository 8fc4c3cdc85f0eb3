// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imagecheck

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// Photo constraints: a 4.5cm x 3.5cm print at the backend's scan density
const (
	MinKB        = 50
	MaxKB        = 100
	TargetWidth  = 530
	TargetHeight = 413
	Tolerance    = 0.1
)

const (
	MsgInvalidFormat = "Invalid format. Only JPG, JPEG, PNG allowed."
	MsgTooSmall      = "File too small. Minimum 50KB required."
	MsgTooLarge      = "File too large. Maximum 100KB required."
	MsgLoadFailed    = "Failed to load image for validation."
)

var ErrInProgress = errors.New("image validation already in progress")

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result is either an attachable payload (DataURL set, Reasons empty) or a
// list of rejection reasons.
type Result struct {
	DataURL     string   `json:"data_url,omitempty"`
	ContentType string   `json:"content_type"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Size        int64    `json:"size"`
	SizeText    string   `json:"size_text"`
	Reasons     []string `json:"reasons,omitempty"`
}

// OK reports whether the photo may be attached
func (r Result) OK() bool {
	return len(r.Reasons) == 0 && r.DataURL != ""
}

// Checker validates photos. A slot (one photo field on one form) runs at
// most one validation at a time.
type Checker struct {
	mu    sync.Mutex
	slots map[string]struct{}
}

func NewChecker() *Checker {
	return &Checker{slots: make(map[string]struct{})}
}

func (c *Checker) acquire(slot string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.slots[slot]; busy {
		return false
	}
	c.slots[slot] = struct{}{}
	return true
}

func (c *Checker) release(slot string) {
	c.mu.Lock()
	delete(c.slots, slot)
	c.mu.Unlock()
}

// Check validates data for slot. Returns ErrInProgress while another check
// for the same slot has not resolved.
func (c *Checker) Check(ctx context.Context, slot string, data []byte) (Result, error) {
	if !c.acquire(slot) {
		return Result{}, ErrInProgress
	}
	defer c.release(slot)

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("image check cancelled: %w", err)
	}

	return Validate(data), nil
}

// Validate runs every rule and collects all reasons
func Validate(data []byte) Result {
	mtype := mimetype.Detect(data)
	res := Result{
		ContentType: mtype.String(),
		Size:        int64(len(data)),
		SizeText:    humanize.IBytes(uint64(len(data))),
	}

	if !allowedTypes[baseType(mtype)] {
		res.Reasons = append(res.Reasons, MsgInvalidFormat)
	}

	sizeKB := float64(len(data)) / 1024
	if sizeKB < MinKB {
		res.Reasons = append(res.Reasons, MsgTooSmall)
	}
	if sizeKB > MaxKB {
		res.Reasons = append(res.Reasons, MsgTooLarge)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		res.Reasons = append(res.Reasons, MsgLoadFailed)
		return res
	}
	res.Width = cfg.Width
	res.Height = cfg.Height

	if outside(cfg.Width, TargetWidth) {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Width should be ~530px (4.5cm). Current: %dpx", cfg.Width))
	}
	if outside(cfg.Height, TargetHeight) {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Height should be ~413px (3.5cm). Current: %dpx", cfg.Height))
	}

	if len(res.Reasons) == 0 {
		res.DataURL = "data:" + baseType(mtype) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return res
}

func outside(got, want int) bool {
	return math.Abs(float64(got-want))/float64(want) > Tolerance
}

// baseType strips parameters such as charset from a detected type
func baseType(m *mimetype.MIME) string {
	t, _, _ := strings.Cut(m.String(), ";")
	return t
}

// DecodeDataURL splits a data URL produced by Validate back into bytes
// and content type
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, "", errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("data URL has no payload")
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", errors.New("data URL is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URL: %w", err)
	}
	return data, contentType, nil
}
