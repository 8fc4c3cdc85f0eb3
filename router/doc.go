// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the voter-desk API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints, plus the
services the caller must maintain (session purging, camera shutdown):

	mux, services := router.NewRouter(db, cfg)

# Endpoints

Health and navigation:

	GET /health
	GET /api/shell - Navigation links

Voter authentication wizard:

	POST   /api/wizard                - Start a session
	GET    /api/wizard/{id}           - Current view
	DELETE /api/wizard/{id}           - Start over
	POST   /api/wizard/{id}/details    - Submit identity details
	POST   /api/wizard/{id}/government - Government ID check
	POST   /api/wizard/{id}/face       - Face authentication
	POST   /api/wizard/{id}/otp        - Verify OTP
	POST   /api/wizard/{id}/vote       - Cast vote
	POST   /api/wizard/{id}/dismiss    - Clear the error banner

Face capture:

	POST   /api/wizard/{id}/camera         - Start or retry the camera
	DELETE /api/wizard/{id}/camera         - Release the camera
	POST   /api/wizard/{id}/camera/frames  - Push a browser frame
	GET    /api/wizard/{id}/camera/preview - Mirrored JPEG preview
	POST   /api/wizard/{id}/camera/capture - Freeze a still
	POST   /api/wizard/{id}/camera/retake  - Discard the still

Admin console:

	GET    /api/admin                      - Voters (?q= search) and booths
	POST   /api/admin/voters               - Register voter
	DELETE /api/admin/voters/{id}          - Delete voter (confirmed)
	POST   /api/admin/booths               - Register booth
	POST   /api/admin/photo                - Validate an ID photo
	POST   /api/admin/smart-allocate       - Suggest a polling station

Booth allocation:

	GET    /api/allocation                   - Mappings and booths
	POST   /api/allocation/mappings          - Create mapping
	DELETE /api/allocation/mappings/{boothId} - Delete mapping (confirmed)
	POST   /api/allocation/auto-generate     - Derive mappings from voters
	POST   /api/allocation/allocate          - Match one address
	POST   /api/allocation/bulk-analyze      - Match many addresses

Dashboard:

	GET  /api/dashboard        - Stats and anomalies
	POST /api/dashboard/detect - Run anomaly detection

# Handler Initialization

Every console shares one backend client and one validator:

	api := apiclient.New(cfg.APIBaseURL)
	v := validate.New()
	adminHandler := handlers.NewAdminHandler(admin.NewConsole(api, v), imagecheck.NewChecker(), cfg)
*/
package router
