// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/voter-desk/admin"
	"github.com/danielhkuo/voter-desk/allocation"
	"github.com/danielhkuo/voter-desk/apiclient"
	"github.com/danielhkuo/voter-desk/capture"
	"github.com/danielhkuo/voter-desk/cliparse"
	"github.com/danielhkuo/voter-desk/dashboard"
	"github.com/danielhkuo/voter-desk/db"
	"github.com/danielhkuo/voter-desk/handlers"
	"github.com/danielhkuo/voter-desk/imagecheck"
	"github.com/danielhkuo/voter-desk/middleware"
	"github.com/danielhkuo/voter-desk/validate"
	"github.com/danielhkuo/voter-desk/wizard"
)

// Services are the long-lived pieces the caller manages after routing:
// expired sessions are purged from Sessions and their cameras released.
type Services struct {
	Sessions *db.SessionStore
	Cameras  *capture.Registry
}

func NewRouter(conn *sql.DB, cfg cliparse.Config) (*http.ServeMux, Services) {
	mux := http.NewServeMux()

	// Shared dependencies
	api := apiclient.New(cfg.APIBaseURL)
	v := validate.New()
	sessions := db.NewSessionStore(conn, cfg.SessionTTL)
	cameras := capture.NewRegistry(cfg.CameraDir)

	// Initialize handlers
	wizardHandler := handlers.NewWizardHandler(sessions, wizard.NewFlow(api, v, cfg.Production), cameras, cfg)
	cameraHandler := handlers.NewCameraHandler(wizardHandler, cameras)
	adminHandler := handlers.NewAdminHandler(admin.NewConsole(api, v), imagecheck.NewChecker(), cfg)
	allocationHandler := handlers.NewAllocationHandler(allocation.NewConsole(api), cfg)
	dashboardHandler := handlers.NewDashboardHandler(dashboard.New(api))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/shell", middleware.WithLogging(handlers.Shell))

	// Voter authentication wizard
	mux.HandleFunc("POST /api/wizard", middleware.WithLogging(wizardHandler.Start))
	mux.HandleFunc("GET /api/wizard/{id}", middleware.WithLogging(wizardHandler.Get))
	mux.HandleFunc("DELETE /api/wizard/{id}", middleware.WithLogging(wizardHandler.Reset))
	mux.HandleFunc("POST /api/wizard/{id}/details", middleware.WithLogging(wizardHandler.SubmitDetails))
	mux.HandleFunc("POST /api/wizard/{id}/government", middleware.WithLogging(wizardHandler.VerifyGovernment))
	mux.HandleFunc("POST /api/wizard/{id}/face", middleware.WithLogging(wizardHandler.SubmitFace))
	mux.HandleFunc("POST /api/wizard/{id}/otp", middleware.WithLogging(wizardHandler.SubmitOTP))
	mux.HandleFunc("POST /api/wizard/{id}/vote", middleware.WithLogging(wizardHandler.CastVote))
	mux.HandleFunc("POST /api/wizard/{id}/dismiss", middleware.WithLogging(wizardHandler.Dismiss))

	// Face capture (preview is polled, so it is not logged)
	mux.HandleFunc("POST /api/wizard/{id}/camera", middleware.WithLogging(cameraHandler.Start))
	mux.HandleFunc("DELETE /api/wizard/{id}/camera", middleware.WithLogging(cameraHandler.Close))
	mux.HandleFunc("POST /api/wizard/{id}/camera/frames", cameraHandler.PushFrame)
	mux.HandleFunc("GET /api/wizard/{id}/camera/preview", cameraHandler.Preview)
	mux.HandleFunc("POST /api/wizard/{id}/camera/capture", middleware.WithLogging(cameraHandler.Capture))
	mux.HandleFunc("POST /api/wizard/{id}/camera/retake", middleware.WithLogging(cameraHandler.Retake))

	// Admin console
	mux.HandleFunc("GET /api/admin", middleware.WithLogging(adminHandler.Load))
	mux.HandleFunc("POST /api/admin/voters", middleware.WithLogging(adminHandler.AddVoter))
	mux.HandleFunc("DELETE /api/admin/voters/{id}", middleware.WithLogging(adminHandler.DeleteVoter))
	mux.HandleFunc("POST /api/admin/booths", middleware.WithLogging(adminHandler.AddBooth))
	mux.HandleFunc("POST /api/admin/photo", middleware.WithLogging(adminHandler.CheckPhoto))
	mux.HandleFunc("POST /api/admin/smart-allocate", middleware.WithLogging(adminHandler.SmartAllocate))

	// Booth allocation console
	mux.HandleFunc("GET /api/allocation", middleware.WithLogging(allocationHandler.Load))
	mux.HandleFunc("POST /api/allocation/mappings", middleware.WithLogging(allocationHandler.CreateMapping))
	mux.HandleFunc("DELETE /api/allocation/mappings/{boothId}", middleware.WithLogging(allocationHandler.DeleteMapping))
	mux.HandleFunc("POST /api/allocation/auto-generate", middleware.WithLogging(allocationHandler.AutoGenerate))
	mux.HandleFunc("POST /api/allocation/allocate", middleware.WithLogging(allocationHandler.Allocate))
	mux.HandleFunc("POST /api/allocation/bulk-analyze", middleware.WithLogging(allocationHandler.BulkAnalyze))

	// Dashboard
	mux.HandleFunc("GET /api/dashboard", middleware.WithLogging(dashboardHandler.Load))
	mux.HandleFunc("POST /api/dashboard/detect", middleware.WithLogging(dashboardHandler.Detect))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("voter-desk API v1"))
	})

	return mux, Services{Sessions: sessions, Cameras: cameras}
}
