// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package allocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/notify"
	"github.com/danielhkuo/voter-desk/validate"
)

const MsgDeleteMapping = "Are you sure you want to delete this mapping?"

var ErrBoothNotFound = errors.New("booth not found")

// API is the part of the backend the allocation console calls
type API interface {
	Mappings(ctx context.Context) ([]models.LocalityMapping, error)
	ListBooths(ctx context.Context) ([]models.Booth, error)
	CreateMapping(ctx context.Context, req models.CreateMappingRequest) (models.StatusResponse, error)
	DeleteMapping(ctx context.Context, boothID string) (models.StatusResponse, error)
	AutoAllocate(ctx context.Context, address string) (models.AllocateResponse, error)
	AutoGenerate(ctx context.Context) (models.AutoGenerateResponse, error)
	BulkAnalyze(ctx context.Context, addresses []string) ([]models.BulkResult, error)
}

type Snapshot struct {
	Mappings []models.LocalityMapping `json:"mappings"`
	Booths   []models.Booth           `json:"booths"`
}

// MappingForm is the create-mapping form as typed: localities arrive as one
// comma separated string
type MappingForm struct {
	BoothID    string `json:"booth_id"`
	BoothName  string `json:"booth_name"`
	Localities string `json:"locality_names"`
}

type Console struct {
	api API
}

func NewConsole(api API) *Console {
	return &Console{api: api}
}

// Load fetches mappings and booths concurrently
func (c *Console) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mappings, err := c.api.Mappings(gctx)
		if err != nil {
			return fmt.Errorf("failed to list mappings: %w", err)
		}
		snap.Mappings = mappings
		return nil
	})
	g.Go(func() error {
		booths, err := c.api.ListBooths(gctx)
		if err != nil {
			return fmt.Errorf("failed to list booths: %w", err)
		}
		snap.Booths = booths
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if snap.Mappings == nil {
		snap.Mappings = []models.LocalityMapping{}
	}
	if snap.Booths == nil {
		snap.Booths = []models.Booth{}
	}
	return snap, nil
}

// SplitLocalities splits a comma separated list, trimming names and
// dropping empties. Order is preserved.
func SplitLocalities(s string) []string {
	out := []string{}
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// CreateMapping links the localities to a booth. The booth ID is the booth
// number; a missing booth name is taken from the booth list.
func (c *Console) CreateMapping(ctx context.Context, form MappingForm) (models.StatusResponse, error) {
	req := models.CreateMappingRequest{
		BoothID:       strings.TrimSpace(form.BoothID),
		BoothName:     strings.TrimSpace(form.BoothName),
		LocalityNames: SplitLocalities(form.Localities),
	}

	errs := validate.FieldErrors{}
	if req.BoothID == "" {
		errs["booth_id"] = "This field is required"
	}
	if len(req.LocalityNames) == 0 {
		errs["locality_names"] = "Enter at least one locality"
	}
	if len(errs) > 0 {
		return models.StatusResponse{}, errs
	}

	if req.BoothName == "" {
		booths, err := c.api.ListBooths(ctx)
		if err != nil {
			return models.StatusResponse{}, fmt.Errorf("failed to list booths: %w", err)
		}
		for _, b := range booths {
			if b.BoothNumber == req.BoothID {
				req.BoothName = b.BoothName
				break
			}
		}
		if req.BoothName == "" {
			return models.StatusResponse{}, ErrBoothNotFound
		}
	}

	resp, err := c.api.CreateMapping(ctx, req)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("failed to create mapping: %w", err)
	}
	slog.Info("mapping created", "booth_id", req.BoothID, "localities", len(req.LocalityNames))
	return resp, nil
}

// DeleteMapping removes the booth's mapping once p confirms
func (c *Console) DeleteMapping(ctx context.Context, p notify.Prompter, boothID string) (models.StatusResponse, error) {
	if !p.Confirm(ctx, MsgDeleteMapping) {
		return models.StatusResponse{}, notify.ErrNotConfirmed
	}

	resp, err := c.api.DeleteMapping(ctx, boothID)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("failed to delete mapping: %w", err)
	}
	slog.Info("mapping deleted", "booth_id", boothID)
	return resp, nil
}

// AutoGenerate has the backend derive mappings from registered addresses
func (c *Console) AutoGenerate(ctx context.Context) (models.AutoGenerateResponse, error) {
	resp, err := c.api.AutoGenerate(ctx)
	if err != nil {
		return models.AutoGenerateResponse{}, fmt.Errorf("failed to auto-generate mappings: %w", err)
	}
	slog.Info("mappings generated",
		"voters_analyzed", resp.Summary.VotersAnalyzed,
		"booths_created", resp.Summary.BoothsCreated,
		"booths_updated", resp.Summary.BoothsUpdated)
	return resp, nil
}

// Allocate matches a single address
func (c *Console) Allocate(ctx context.Context, address string) (models.AllocateResponse, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.AllocateResponse{}, validate.FieldErrors{"address": "This field is required"}
	}

	resp, err := c.api.AutoAllocate(ctx, address)
	if err != nil {
		return models.AllocateResponse{}, fmt.Errorf("failed to allocate booth: %w", err)
	}
	return resp, nil
}

// BulkAnalyze matches many addresses at once. Blank lines are dropped.
func (c *Console) BulkAnalyze(ctx context.Context, addresses []string) ([]models.BulkResult, error) {
	clean := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if a = strings.TrimSpace(a); a != "" {
			clean = append(clean, a)
		}
	}
	if len(clean) == 0 {
		return nil, validate.FieldErrors{"addresses": "Enter at least one address"}
	}

	results, err := c.api.BulkAnalyze(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze addresses: %w", err)
	}
	return results, nil
}
