// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/voter-desk/dashboard"
	"github.com/danielhkuo/voter-desk/middleware"
	"github.com/danielhkuo/voter-desk/models"
)

type DashboardHandler struct {
	dash *dashboard.Dashboard
}

func NewDashboardHandler(dash *dashboard.Dashboard) *DashboardHandler {
	return &DashboardHandler{dash: dash}
}

// Load handles GET /api/dashboard
func (h *DashboardHandler) Load(w http.ResponseWriter, r *http.Request) {
	view, err := h.dash.Load(r.Context())
	if err != nil {
		backendError(w, err, "Error loading dashboard")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Detect handles POST /api/dashboard/detect
func (h *DashboardHandler) Detect(w http.ResponseWriter, r *http.Request) {
	res, err := h.dash.Detect(r.Context())
	if err != nil {
		backendError(w, err, "AI detection failed")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// Navigation links shown on every page
var navLinks = []models.NavLink{
	{Label: "Voter Login", Path: "/"},
	{Label: "Dashboard", Path: "/dashboard"},
	{Label: "Admin Panel", Path: "/admin"},
	{Label: "Booth Allocation", Path: "/booth-allocation"},
}

// Shell handles GET /api/shell
func Shell(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"links": navLinks})
}
