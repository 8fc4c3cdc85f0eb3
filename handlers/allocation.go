// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/voter-desk/allocation"
	"github.com/danielhkuo/voter-desk/cliparse"
	"github.com/danielhkuo/voter-desk/middleware"
	"github.com/danielhkuo/voter-desk/notify"
)

type AllocationHandler struct {
	console *allocation.Console
	cfg     cliparse.Config
}

func NewAllocationHandler(console *allocation.Console, cfg cliparse.Config) *AllocationHandler {
	return &AllocationHandler{console: console, cfg: cfg}
}

// Load handles GET /api/allocation
func (h *AllocationHandler) Load(w http.ResponseWriter, r *http.Request) {
	snap, err := h.console.Load(r.Context())
	if err != nil {
		backendError(w, err, "Error loading data")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// CreateMapping handles POST /api/allocation/mappings
func (h *AllocationHandler) CreateMapping(w http.ResponseWriter, r *http.Request) {
	var form allocation.MappingForm
	if err := middleware.ParseJSONBody(r, &form); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.console.CreateMapping(r.Context(), form)
	if errors.Is(err, allocation.ErrBoothNotFound) {
		middleware.FieldErrorResponse(w, msgFixFields, map[string]string{"booth_id": "Unknown booth"})
		return
	}
	if err != nil {
		backendError(w, err, "Error creating mapping")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// DeleteMapping handles DELETE /api/allocation/mappings/{boothId}
func (h *AllocationHandler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	boothID := r.PathValue("boothId")
	if boothID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "booth id is required")
		return
	}

	target := "mapping:" + boothID
	p := confirmPrompter(r, target, h.cfg.ConfirmSalt)

	resp, err := h.console.DeleteMapping(r.Context(), p, boothID)
	switch {
	case errors.Is(err, notify.ErrNotConfirmed):
		confirmRequired(w, p, target, h.cfg.ConfirmSalt)
	case err != nil:
		backendError(w, err, "Error deleting mapping")
	default:
		middleware.JSONResponse(w, http.StatusOK, resp)
	}
}

// AutoGenerate handles POST /api/allocation/auto-generate
func (h *AllocationHandler) AutoGenerate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.console.AutoGenerate(r.Context())
	if err != nil {
		backendError(w, err, "Error generating mappings")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Allocate handles POST /api/allocation/allocate
func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.console.Allocate(r.Context(), req.Address)
	if err != nil {
		backendError(w, err, "Error allocating booth")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

type bulkRequest struct {
	Addresses []string `json:"addresses"`
}

// BulkAnalyze handles POST /api/allocation/bulk-analyze
func (h *AllocationHandler) BulkAnalyze(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	results, err := h.console.BulkAnalyze(r.Context(), req.Addresses)
	if err != nil {
		backendError(w, err, "Error analyzing addresses")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"results": results})
}
