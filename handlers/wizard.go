// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielhkuo/voter-desk/auth"
	"github.com/danielhkuo/voter-desk/capture"
	"github.com/danielhkuo/voter-desk/cliparse"
	"github.com/danielhkuo/voter-desk/db"
	"github.com/danielhkuo/voter-desk/middleware"
	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/validate"
	"github.com/danielhkuo/voter-desk/wizard"
)

const (
	msgSessionNotFound = "Session not found or expired. Please start over."
	msgInFlight        = "Please wait for the current step to finish"
)

type WizardHandler struct {
	store   *db.SessionStore
	flow    *wizard.Flow
	cameras *capture.Registry
	cfg     cliparse.Config
	now     func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewWizardHandler(store *db.SessionStore, flow *wizard.Flow, cameras *capture.Registry, cfg cliparse.Config) *WizardHandler {
	return &WizardHandler{
		store:    store,
		flow:     flow,
		cameras:  cameras,
		cfg:      cfg,
		now:      time.Now,
		inFlight: make(map[string]bool),
	}
}

// begin marks a transition running for id. A second transition for the same
// session is refused until end is called.
func (h *WizardHandler) begin(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFlight[id] {
		return false
	}
	h.inFlight[id] = true
	return true
}

func (h *WizardHandler) end(id string) {
	h.mu.Lock()
	delete(h.inFlight, id)
	h.mu.Unlock()
}

// load fetches the session named in the path, writing the error response
// when it cannot
func (h *WizardHandler) load(w http.ResponseWriter, r *http.Request) (*models.AuthSession, bool) {
	id := r.PathValue("id")
	if err := auth.ValidateSessionID(id); err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, msgSessionNotFound)
		return nil, false
	}

	s, err := h.store.Load(r.Context(), id)
	if errors.Is(err, db.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, msgSessionNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("failed to load session", "session_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return s, true
}

func (h *WizardHandler) save(w http.ResponseWriter, r *http.Request, s *models.AuthSession) bool {
	if err := h.store.Save(r.Context(), s); err != nil {
		slog.Error("failed to save session", "session_id", s.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	return true
}

func (h *WizardHandler) respond(w http.ResponseWriter, r *http.Request, s *models.AuthSession, status int) {
	if !h.save(w, r, s) {
		return
	}
	middleware.JSONResponse(w, status, wizard.Render(s, h.now()))
}

// rejected writes the response for an action the flow refused outright
func (h *WizardHandler) rejected(w http.ResponseWriter, r *http.Request, s *models.AuthSession, err error) {
	var fieldErrs validate.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		if h.save(w, r, s) {
			middleware.FieldErrorResponse(w, msgFixFields, fieldErrs)
		}
	case errors.Is(err, wizard.ErrWrongStep), errors.Is(err, wizard.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, wizard.ErrNoStill), errors.Is(err, wizard.ErrInvalidOTP), errors.Is(err, wizard.ErrOTPTimeUp):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("wizard transition failed", "session_id", s.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// claim takes the in-flight guard for the session named in the path before
// anything is read from the store. The caller must end the returned ID.
func (h *WizardHandler) claim(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := auth.ValidateSessionID(id); err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, msgSessionNotFound)
		return "", false
	}
	if !h.begin(id) {
		middleware.ErrorResponse(w, http.StatusConflict, msgInFlight)
		return "", false
	}
	return id, true
}

// transition runs fn on the loaded session under the in-flight guard, then
// saves and renders it
func (h *WizardHandler) transition(w http.ResponseWriter, r *http.Request, fn func(s *models.AuthSession) error) {
	id, ok := h.claim(w, r)
	if !ok {
		return
	}
	defer h.end(id)

	s, ok := h.load(w, r)
	if !ok {
		return
	}

	step := s.Step
	if err := fn(s); err != nil {
		h.rejected(w, r, s, err)
		return
	}

	// The camera is only needed on the face step
	if step == models.StepFaceVerify && s.Step != models.StepFaceVerify {
		h.cameras.Release(s.ID)
	}

	h.respond(w, r, s, http.StatusOK)
}

// Start handles POST /api/wizard
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	s := h.flow.New(auth.NewSessionID())

	slog.Info("wizard session started",
		"session_id", s.ID,
		"client", auth.HashIP(middleware.GetClientIP(r), h.cfg.ConfirmSalt),
	)
	h.respond(w, r, s, http.StatusCreated)
}

// Get handles GET /api/wizard/{id}
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, wizard.Render(s, h.now()))
}

// SubmitDetails handles POST /api/wizard/{id}/details
func (h *WizardHandler) SubmitDetails(w http.ResponseWriter, r *http.Request) {
	var req models.VoterDetails
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.transition(w, r, func(s *models.AuthSession) error {
		return h.flow.SubmitDetails(s, req)
	})
}

// VerifyGovernment handles POST /api/wizard/{id}/government
func (h *WizardHandler) VerifyGovernment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(s *models.AuthSession) error {
		return h.flow.VerifyGovernment(r.Context(), s)
	})
}

type faceRequest struct {
	LiveImageData string `json:"live_image_data"`
}

// SubmitFace handles POST /api/wizard/{id}/face. The still is the one the
// session's camera captured, or live_image_data when the browser sends its
// own capture.
func (h *WizardHandler) SubmitFace(w http.ResponseWriter, r *http.Request) {
	var req faceRequest
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	h.transition(w, r, func(s *models.AuthSession) error {
		still := req.LiveImageData
		if still == "" {
			if slot, ok := h.cameras.Get(s.ID); ok {
				if captured, err := slot.Camera.Still(); err == nil {
					still = captured.DataURL
				}
			}
		}
		return h.flow.SubmitFace(r.Context(), s, still)
	})
}

type otpRequest struct {
	OTP string `json:"otp"`
}

// SubmitOTP handles POST /api/wizard/{id}/otp
func (h *WizardHandler) SubmitOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.transition(w, r, func(s *models.AuthSession) error {
		return h.flow.SubmitOTP(r.Context(), s, req.OTP)
	})
}

// CastVote handles POST /api/wizard/{id}/vote
func (h *WizardHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(s *models.AuthSession) error {
		return h.flow.CastVote(r.Context(), s)
	})
}

// Dismiss handles POST /api/wizard/{id}/dismiss
func (h *WizardHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(s *models.AuthSession) error {
		h.flow.Dismiss(s)
		return nil
	})
}

// Reset handles DELETE /api/wizard/{id}
func (h *WizardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.claim(w, r)
	if !ok {
		return
	}
	defer h.end(id)

	s, ok := h.load(w, r)
	if !ok {
		return
	}

	h.cameras.Release(s.ID)
	fresh := h.flow.Reset(s)
	slog.Info("wizard session reset", "session_id", s.ID)
	h.respond(w, r, fresh, http.StatusOK)
}
