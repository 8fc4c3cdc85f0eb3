// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/voter-desk/capture"
	"github.com/danielhkuo/voter-desk/middleware"
	"github.com/danielhkuo/voter-desk/models"
)

// CameraHandler drives the camera of a wizard session. It shares the
// session lookup with WizardHandler.
type CameraHandler struct {
	wizard  *WizardHandler
	cameras *capture.Registry
}

func NewCameraHandler(wh *WizardHandler, cameras *capture.Registry) *CameraHandler {
	return &CameraHandler{wizard: wh, cameras: cameras}
}

// StartRequest carries the browser's own media request outcome when frames
// are fed over HTTP
type StartRequest struct {
	Error  string `json:"error,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type cameraResponse struct {
	Status  capture.Status   `json:"status"`
	Failure *capture.Failure `json:"failure,omitempty"`
	Still   *capture.Still   `json:"still,omitempty"`
}

var failureStatus = map[capture.Kind]int{
	capture.KindPermissionDenied: http.StatusForbidden,
	capture.KindNoDevice:         http.StatusNotFound,
	capture.KindDeviceBusy:       http.StatusConflict,
	capture.KindOverconstrained:  http.StatusUnprocessableEntity,
	capture.KindUnknown:          http.StatusServiceUnavailable,
}

// faceSession loads the session and checks it is on the face step
func (h *CameraHandler) faceSession(w http.ResponseWriter, r *http.Request) (*models.AuthSession, bool) {
	s, ok := h.wizard.load(w, r)
	if !ok {
		return nil, false
	}
	if s.Step != models.StepFaceVerify {
		middleware.ErrorResponse(w, http.StatusConflict, "Camera is only available on the face verification step")
		return nil, false
	}
	return s, true
}

func (h *CameraHandler) started(w http.ResponseWriter, slot *capture.Slot, err error) {
	if err != nil {
		failure := capture.Classify(err)
		middleware.JSONResponse(w, failureStatus[failure.Kind], cameraResponse{
			Status:  slot.Camera.Status(),
			Failure: failure,
		})
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cameraResponse{Status: slot.Camera.Status()})
}

// Start handles POST /api/wizard/{id}/camera. Calling it again after a
// failure retries.
func (h *CameraHandler) Start(w http.ResponseWriter, r *http.Request) {
	s, ok := h.faceSession(w, r)
	if !ok {
		return
	}

	var req StartRequest
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	slot := h.cameras.Acquire(s.ID)
	if slot.Feed != nil {
		slot.Feed.Report(req.Error, req.Width, req.Height)
	}

	err := slot.Camera.Start(r.Context())
	h.started(w, slot, err)
}

// PushFrame handles POST /api/wizard/{id}/camera/frames with a JPEG or PNG
// body
func (h *CameraHandler) PushFrame(w http.ResponseWriter, r *http.Request) {
	s, ok := h.faceSession(w, r)
	if !ok {
		return
	}

	slot, ok := h.cameras.Get(s.ID)
	if !ok || slot.Feed == nil {
		middleware.ErrorResponse(w, http.StatusConflict, capture.ErrNoStream.Error())
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, middleware.MaxBodyBytes))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Frame too large")
		return
	}

	err = slot.Feed.Push(data)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, capture.ErrNoStream):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, capture.ErrUnsupportedFrame):
		middleware.ErrorResponse(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	}
}

// Preview handles GET /api/wizard/{id}/camera/preview
func (h *CameraHandler) Preview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.faceSession(w, r)
	if !ok {
		return
	}

	slot, ok := h.cameras.Get(s.ID)
	if !ok {
		middleware.ErrorResponse(w, http.StatusConflict, capture.ErrNoStream.Error())
		return
	}

	img, err := slot.Surface.Render()
	if err != nil {
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

// Capture handles POST /api/wizard/{id}/camera/capture
func (h *CameraHandler) Capture(w http.ResponseWriter, r *http.Request) {
	s, ok := h.faceSession(w, r)
	if !ok {
		return
	}

	slot, ok := h.cameras.Get(s.ID)
	if !ok {
		middleware.ErrorResponse(w, http.StatusConflict, capture.ErrNoStream.Error())
		return
	}

	still, err := slot.Camera.Capture()
	if err != nil {
		slog.Warn("capture failed", "session_id", s.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusConflict, capture.MsgCaptureFailed)
		return
	}

	slog.Info("face captured", "session_id", s.ID, "width", still.Width, "height", still.Height)
	middleware.JSONResponse(w, http.StatusOK, cameraResponse{Status: slot.Camera.Status(), Still: &still})
}

// Retake handles POST /api/wizard/{id}/camera/retake
func (h *CameraHandler) Retake(w http.ResponseWriter, r *http.Request) {
	s, ok := h.faceSession(w, r)
	if !ok {
		return
	}

	slot := h.cameras.Acquire(s.ID)
	err := slot.Camera.Retake(r.Context())
	h.started(w, slot, err)
}

// Close handles DELETE /api/wizard/{id}/camera
func (h *CameraHandler) Close(w http.ResponseWriter, r *http.Request) {
	s, ok := h.wizard.load(w, r)
	if !ok {
		return
	}
	h.cameras.Release(s.ID)
	w.WriteHeader(http.StatusNoContent)
}
