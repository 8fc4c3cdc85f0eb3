// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"errors"
)

// Device errors. Devices wrap one of these so Classify can tell them apart.
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrNoDevice         = errors.New("no camera found")
	ErrDeviceBusy       = errors.New("camera in use by another application")
	ErrOverconstrained  = errors.New("camera cannot satisfy constraints")
)

var (
	ErrNoStream      = errors.New("no active camera stream")
	ErrNoFrame       = errors.New("camera has not produced a frame yet")
	ErrNoStill       = errors.New("no still captured")
	ErrCaptureFailed = errors.New("failed to capture photo")
)

type Kind string

const (
	KindPermissionDenied Kind = "permission_denied"
	KindNoDevice         Kind = "no_device"
	KindDeviceBusy       Kind = "device_busy"
	KindOverconstrained  Kind = "overconstrained"
	KindUnknown          Kind = "unknown"
)

const (
	msgPrefix            = "Camera access failed. "
	MsgPermissionDenied  = msgPrefix + "Please allow camera access in your browser settings and try again."
	MsgNoDevice          = msgPrefix + "No camera found. Please connect a camera and try again."
	MsgDeviceBusy        = msgPrefix + "Camera is being used by another application. Please close other apps using the camera and try again."
	MsgOverconstrained   = msgPrefix + "Camera doesn't support required settings. Trying with default settings..."
	MsgFallbackFailed    = msgPrefix + "Please check your camera permissions and try again."
	MsgUnknown           = msgPrefix + "Unknown error occurred."
	MsgCaptureFailed     = "Failed to capture photo. Please try again."
	MsgPlaybackFailed    = "Failed to start video playback. Please try again."
	MsgCameraUnsupported = "Camera access is not supported in this browser. Please use a modern browser like Chrome, Firefox, or Edge."
)

// Failure is a classified device error with the text to show the voter.
// Every failure can be retried by starting the camera again.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Classify maps a device error to a Failure. A nil error gives nil.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	switch {
	case errors.Is(err, ErrPermissionDenied):
		return &Failure{Kind: KindPermissionDenied, Message: MsgPermissionDenied, Err: err}
	case errors.Is(err, ErrNoDevice):
		return &Failure{Kind: KindNoDevice, Message: MsgNoDevice, Err: err}
	case errors.Is(err, ErrDeviceBusy):
		return &Failure{Kind: KindDeviceBusy, Message: MsgDeviceBusy, Err: err}
	case errors.Is(err, ErrOverconstrained):
		return &Failure{Kind: KindOverconstrained, Message: MsgOverconstrained, Err: err}
	default:
		return &Failure{Kind: KindUnknown, Message: msgPrefix + err.Error(), Err: err}
	}
}

// ErrorFromName maps the DOMException names a browser reports from
// getUserMedia onto device errors
func ErrorFromName(name string) error {
	switch name {
	case "NotAllowedError", "PermissionDeniedError", "SecurityError":
		return ErrPermissionDenied
	case "NotFoundError", "DevicesNotFoundError":
		return ErrNoDevice
	case "NotReadableError", "TrackStartError", "AbortError":
		return ErrDeviceBusy
	case "OverconstrainedError", "ConstraintNotSatisfiedError":
		return ErrOverconstrained
	case "":
		return nil
	default:
		return errors.New(name)
	}
}
