// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/voter-desk/admin"
	"github.com/danielhkuo/voter-desk/allocation"
	"github.com/danielhkuo/voter-desk/apiclient"
	"github.com/danielhkuo/voter-desk/capture"
	"github.com/danielhkuo/voter-desk/cliparse"
	"github.com/danielhkuo/voter-desk/dashboard"
	"github.com/danielhkuo/voter-desk/db"
	"github.com/danielhkuo/voter-desk/imagecheck"
	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/testutil"
	"github.com/danielhkuo/voter-desk/validate"
	"github.com/danielhkuo/voter-desk/wizard"
)

// testEnv wires every handler against one fake backend and one database
type testEnv struct {
	backend  *testutil.FakeBackend
	cfg      cliparse.Config
	sessions *db.SessionStore
	cameras  *capture.Registry

	wizard     *WizardHandler
	camera     *CameraHandler
	admin      *AdminHandler
	allocation *AllocationHandler
	dashboard  *DashboardHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := testutil.NewFakeBackend(t)
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(backend.URL)

	api := apiclient.New(cfg.APIBaseURL)
	v := validate.New()
	sessions := db.NewSessionStore(conn, cfg.SessionTTL)
	cameras := capture.NewRegistry("")
	t.Cleanup(cameras.CloseAll)

	wh := NewWizardHandler(sessions, wizard.NewFlow(api, v, false), cameras, cfg)

	return &testEnv{
		backend:    backend,
		cfg:        cfg,
		sessions:   sessions,
		cameras:    cameras,
		wizard:     wh,
		camera:     NewCameraHandler(wh, cameras),
		admin:      NewAdminHandler(admin.NewConsole(api, v), imagecheck.NewChecker(), cfg),
		allocation: NewAllocationHandler(allocation.NewConsole(api), cfg),
		dashboard:  NewDashboardHandler(dashboard.New(api)),
	}
}

// serve runs h on a JSON request, setting the named path values
func serve(h http.HandlerFunc, method, path string, body interface{}, pathValues map[string]string, headers map[string]string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest(method, path, body, headers)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func sessionPath(id string) map[string]string {
	return map[string]string{"id": id}
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) wizard.View {
	t.Helper()
	var view wizard.View
	testutil.AssertJSON(t, w, &view)
	return view
}

func validDetails() models.VoterDetails {
	return models.VoterDetails{
		VoterID:      "abc1234567",
		AadharNumber: "123456789012",
		PhoneNumber:  "9876543210",
		FullName:     "Asha Rao",
		DateOfBirth:  "1990-04-01",
	}
}

// startSession creates a wizard session and returns its id
func (e *testEnv) startSession(t *testing.T) string {
	t.Helper()

	w := serve(e.wizard.Start, "POST", "/api/wizard", nil, nil, nil)
	testutil.AssertStatus(t, w, http.StatusCreated)

	view := decodeView(t, w)
	if view.SessionID == "" {
		t.Fatal("Expected a session id")
	}
	if view.Step != models.StepDetails {
		t.Fatalf("Expected step %s, got %s", models.StepDetails, view.Step)
	}
	return view.SessionID
}

// toFaceStep walks a fresh session through details and government checks
func (e *testEnv) toFaceStep(t *testing.T) string {
	t.Helper()

	e.backend.JSON("POST /api/auth/verify-government-ids", http.StatusOK, map[string]any{
		"overall_status": "VERIFIED",
	})

	id := e.startSession(t)

	w := serve(e.wizard.SubmitDetails, "POST", "/api/wizard/"+id+"/details", validDetails(), sessionPath(id), nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = serve(e.wizard.VerifyGovernment, "POST", "/api/wizard/"+id+"/government", nil, sessionPath(id), nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	if view := decodeView(t, w); view.Step != models.StepFaceVerify {
		t.Fatalf("Expected step %s, got %s (error %q)", models.StepFaceVerify, view.Step, view.Error)
	}
	return id
}

// pngFrame encodes a solid w x h PNG
func pngFrame(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode frame: %v", err)
	}
	return buf.Bytes()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}
