// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/danielhkuo/voter-desk/models"
)

// Voter authentication

// Authenticate submits the voter details with the captured face still
func (c *Client) Authenticate(ctx context.Context, req models.AuthenticateRequest) (models.AuthenticateResponse, error) {
	var resp models.AuthenticateResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/authenticate", req, &resp)
	return resp, err
}

func (c *Client) VerifyGovernmentIDs(ctx context.Context, details models.VoterDetails) (models.GovReport, error) {
	var resp models.GovReport
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify-government-ids", details, &resp)
	return resp, err
}

func (c *Client) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (models.VerifyOTPResponse, error) {
	var resp models.VerifyOTPResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify-otp", req, &resp)
	return resp, err
}

// Vote casts the vote and returns the updated voter record
func (c *Client) Vote(ctx context.Context, voterID string) (models.Voter, error) {
	var resp models.Voter
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/vote", models.VoteRequest{VoterID: voterID}, &resp)
	return resp, err
}

// Admin

func (c *Client) ListVoters(ctx context.Context) ([]models.Voter, error) {
	var resp []models.Voter
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/voters", nil, &resp)
	return resp, err
}

func (c *Client) AddVoter(ctx context.Context, voter models.Voter) (models.StatusResponse, error) {
	var resp models.StatusResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/voters", voter, &resp)
	return resp, err
}

// AddVoterWithPhoto uses the multipart add-voter endpoint so the backend
// stores the photo alongside the record
func (c *Client) AddVoterWithPhoto(ctx context.Context, voter models.Voter, photo []byte, contentType string) (models.StatusResponse, error) {
	var resp models.StatusResponse

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"voter_id", voter.VoterID},
		{"aadhar_number", voter.AadharNumber},
		{"phone_number", voter.PhoneNumber},
		{"full_name", voter.FullName},
		{"date_of_birth", voter.DateOfBirth},
		{"age", strconv.Itoa(voter.Age)},
		{"address", voter.Address},
		{"constituency", voter.Constituency},
		{"polling_station", voter.PollingStation},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return resp, fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+voter.VoterID+photoExt(contentType)+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return resp, fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return resp, fmt.Errorf("failed to write image part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return resp, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/admin/add-voter", &buf)
	if err != nil {
		return resp, fmt.Errorf("failed to build add-voter request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	err = c.send(req, &resp)
	return resp, err
}

func photoExt(contentType string) string {
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}

func (c *Client) DeleteVoter(ctx context.Context, id string) (models.StatusResponse, error) {
	var resp models.StatusResponse
	err := c.doJSON(ctx, http.MethodDelete, "/api/admin/voters/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

func (c *Client) ListBooths(ctx context.Context) ([]models.Booth, error) {
	var resp []models.Booth
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/booths", nil, &resp)
	return resp, err
}

func (c *Client) AddBooth(ctx context.Context, booth models.Booth) (models.StatusResponse, error) {
	var resp models.StatusResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/booths", booth, &resp)
	return resp, err
}

// Dashboard and anomaly analysis

func (c *Client) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var resp models.DashboardStats
	err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/stats", nil, &resp)
	return resp, err
}

func (c *Client) Anomalies(ctx context.Context) ([]models.Anomaly, error) {
	var resp []models.Anomaly
	err := c.doJSON(ctx, http.MethodGet, "/api/ai/anomalies", nil, &resp)
	return resp, err
}

func (c *Client) DetectAnomalies(ctx context.Context) (models.DetectResponse, error) {
	var resp models.DetectResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/ai/detect-anomalies", nil, &resp)
	return resp, err
}

// Booth allocation

func (c *Client) Mappings(ctx context.Context) ([]models.LocalityMapping, error) {
	var resp models.MappingsResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/booth-allocation/mappings", nil, &resp)
	return resp.Mappings, err
}

func (c *Client) CreateMapping(ctx context.Context, req models.CreateMappingRequest) (models.StatusResponse, error) {
	var resp models.StatusResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/booth-allocation/create-mapping", req, &resp)
	return resp, err
}

func (c *Client) DeleteMapping(ctx context.Context, boothID string) (models.StatusResponse, error) {
	var resp models.StatusResponse
	err := c.doJSON(ctx, http.MethodDelete, "/api/booth-allocation/delete-mapping/"+url.PathEscape(boothID), nil, &resp)
	return resp, err
}

// AutoAllocate asks the backend to match a single address against the mappings
func (c *Client) AutoAllocate(ctx context.Context, address string) (models.AllocateResponse, error) {
	var resp models.AllocateResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/booth-allocation/auto-allocate", models.AddressRequest{Address: address}, &resp)
	return resp, err
}

// AutoGenerate builds mappings from every registered voter address
func (c *Client) AutoGenerate(ctx context.Context) (models.AutoGenerateResponse, error) {
	var resp models.AutoGenerateResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/booth-allocation/auto-generate", nil, &resp)
	return resp, err
}

func (c *Client) BulkAnalyze(ctx context.Context, addresses []string) ([]models.BulkResult, error) {
	var resp models.BulkAnalyzeResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/booth-allocation/bulk-analyze", models.BulkAnalyzeRequest{Addresses: addresses}, &resp)
	return resp.Results, err
}
