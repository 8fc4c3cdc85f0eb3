// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/voter-desk/admin"
	"github.com/danielhkuo/voter-desk/auth"
	"github.com/danielhkuo/voter-desk/cliparse"
	"github.com/danielhkuo/voter-desk/imagecheck"
	"github.com/danielhkuo/voter-desk/middleware"
	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/notify"
)

// Photo uploads larger than this are rejected before validation
const maxPhotoUpload = 1 << 20

type AdminHandler struct {
	console *admin.Console
	photos  *imagecheck.Checker
	cfg     cliparse.Config
}

func NewAdminHandler(console *admin.Console, photos *imagecheck.Checker, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{console: console, photos: photos, cfg: cfg}
}

// Load handles GET /api/admin with an optional ?q= search term
func (h *AdminHandler) Load(w http.ResponseWriter, r *http.Request) {
	snap, err := h.console.Load(r.Context())
	if err != nil {
		backendError(w, err, "Error loading admin data")
		return
	}

	snap.Voters = admin.Search(snap.Voters, r.URL.Query().Get("q"))
	middleware.JSONResponse(w, http.StatusOK, snap)
}

type addVoterRequest struct {
	models.Voter
	PhotoDataURL string `json:"photo_data_url,omitempty"`
}

// AddVoter handles POST /api/admin/voters
func (h *AdminHandler) AddVoter(w http.ResponseWriter, r *http.Request) {
	var req addVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.console.AddVoter(r.Context(), req.Voter, req.PhotoDataURL)
	var photoErr *admin.PhotoError
	if errors.As(err, &photoErr) {
		middleware.DetailErrorResponse(w, http.StatusBadRequest, "Photo does not meet requirements", photoErr.Reasons)
		return
	}
	if err != nil {
		backendError(w, err, "Error adding voter")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// DeleteVoter handles DELETE /api/admin/voters/{id}. Without a valid
// X-Confirm-Token it replies 428 with the question to ask.
func (h *AdminHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter id is required")
		return
	}

	target := "voter:" + id
	p := confirmPrompter(r, target, h.cfg.ConfirmSalt)

	resp, err := h.console.DeleteVoter(r.Context(), p, id)
	switch {
	case errors.Is(err, notify.ErrNotConfirmed):
		confirmRequired(w, p, target, h.cfg.ConfirmSalt)
	case errors.Is(err, admin.ErrVoterNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
	case err != nil:
		backendError(w, err, "Error deleting voter")
	default:
		middleware.JSONResponse(w, http.StatusOK, withNotices{Result: resp, Notices: p.Notices()})
	}
}

// AddBooth handles POST /api/admin/booths
func (h *AdminHandler) AddBooth(w http.ResponseWriter, r *http.Request) {
	var req models.Booth
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.console.AddBooth(r.Context(), req)
	if err != nil {
		backendError(w, err, "Error adding booth")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// CheckPhoto handles POST /api/admin/photo. The photo arrives as the "image"
// field of a multipart form or as the raw request body. One validation per
// client runs at a time.
func (h *AdminHandler) CheckPhoto(w http.ResponseWriter, r *http.Request) {
	data, err := readPhoto(w, r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	slot := auth.HashIP(middleware.GetClientIP(r), h.cfg.ConfirmSalt)
	result, err := h.photos.Check(r.Context(), slot, data)
	if errors.Is(err, imagecheck.ErrInProgress) {
		middleware.ErrorResponse(w, http.StatusConflict, "Please wait for the current photo check to finish")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusRequestTimeout, err.Error())
		return
	}

	if !result.OK() {
		slog.Info("photo rejected", "reasons", len(result.Reasons), "size", result.SizeText)
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, result)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}

func readPhoto(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUpload)

	if err := r.ParseMultipartForm(maxPhotoUpload); err == nil {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, errors.New("image field is required")
		}
		defer file.Close()
		return io.ReadAll(file)
	} else if !errors.Is(err, http.ErrNotMultipart) {
		return nil, errors.New("invalid upload")
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.New("invalid upload")
	}
	if len(data) == 0 {
		return nil, errors.New("image is required")
	}
	return data, nil
}

type addressRequest struct {
	Address string `json:"address"`
}

type smartAllocateResponse struct {
	PollingStation string          `json:"polling_station"`
	Notices        []models.Notice `json:"notices,omitempty"`
}

// SmartAllocate handles POST /api/admin/smart-allocate
func (h *AdminHandler) SmartAllocate(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p := notify.NewRequestPrompter(false)
	booth, err := h.console.SmartAllocate(r.Context(), p, req.Address)
	if err != nil {
		backendError(w, err, "Error allocating booth")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, smartAllocateResponse{PollingStation: booth, Notices: p.Notices()})
}
