// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/voter-desk/apiclient"
	"github.com/danielhkuo/voter-desk/auth"
	"github.com/danielhkuo/voter-desk/middleware"
	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/notify"
	"github.com/danielhkuo/voter-desk/validate"
)

const msgFixFields = "Please correct the highlighted fields"

// backendError reports a failed backend call. Client errors the backend
// raised (duplicate voter, validation details) are passed through verbatim;
// everything else becomes a 502 with the backend message or fallback.
func backendError(w http.ResponseWriter, err error, fallback string) {
	var fieldErrs validate.FieldErrors
	if errors.As(err, &fieldErrs) {
		middleware.FieldErrorResponse(w, msgFixFields, fieldErrs)
		return
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		slog.Warn("backend call failed", "status", apiErr.Status, "message", apiErr.Message)
		middleware.DetailErrorResponse(w, status, msg, apiErr.Details)
		return
	}

	slog.Error("backend unreachable", "error", err)
	middleware.ErrorResponse(w, http.StatusBadGateway, fallback)
}

// confirmPrompter approves the request only when it carries the token for
// target
func confirmPrompter(r *http.Request, target, salt string) *notify.RequestPrompter {
	token := r.Header.Get(middleware.HeaderConfirmToken)
	approved := token != "" && auth.ValidateConfirmToken(target, token, salt) == nil
	return notify.NewRequestPrompter(approved)
}

// confirmRequired asks the browser to repeat the request with the token
// once the operator agrees to the question
func confirmRequired(w http.ResponseWriter, p *notify.RequestPrompter, target, salt string) {
	middleware.JSONResponse(w, http.StatusPreconditionRequired, models.ConfirmResponse{
		Confirm:      p.Asked(),
		ConfirmToken: auth.ConfirmToken(target, salt),
	})
}

// withNotices is the body of a console response that may carry banners
type withNotices struct {
	Result  any             `json:"result,omitempty"`
	Notices []models.Notice `json:"notices,omitempty"`
}
