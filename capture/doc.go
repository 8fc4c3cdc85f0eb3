// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package capture manages the camera used for the face verification step.

# Lifecycle

A Camera moves through acquire, bind, capture and release:

	cam := capture.NewCamera(device)
	cam.Bind(surface)              // may come before or after Start
	if err := cam.Start(ctx); err != nil {
		var f *capture.Failure
		errors.As(err, &f)         // f.Kind, f.Message for the voter
	}
	still, err := cam.Capture()    // stops the stream
	cam.Retake(ctx)                // discard still, fresh stream
	cam.Close()                    // always safe, always releases

A camera holds at most one live stream. Start stops any previous stream
before opening a new one, Capture stops the stream once a still exists,
and Close stops whatever is left.

# Constraints

Start asks for Preferred (front-facing, at least 1280x720, no audio). When
the device reports ErrOverconstrained it retries exactly once with Relaxed.
Other failures are classified and returned without retrying; calling Start
again is the retry.

# Devices

  - FeedDevice: the browser runs getUserMedia, reports the outcome with
    Report, and pushes encoded frames with Push
  - DirDevice: frames are image files in a directory, for kiosk terminals

# Stills and Previews

Stills are JPEG (quality 90) data URLs at the stream's native resolution,
falling back to 640x480. PreviewSurface renders mirrored thumbnails of the
live stream, scaled with nfnt/resize.

# Registry

Registry keeps one Slot (camera, preview surface, optional feed) per wizard
session and releases it when the session ends.
*/
package capture
