// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/voter-desk/models"
)

// API is the part of the backend the dashboard reads
type API interface {
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
	Anomalies(ctx context.Context) ([]models.Anomaly, error)
	DetectAnomalies(ctx context.Context) (models.DetectResponse, error)
}

type RecentVote struct {
	models.Voter
	VotedAgo string `json:"voted_ago,omitempty"`
}

type AnomalyView struct {
	models.Anomaly
	Confidence  string `json:"confidence,omitempty"`
	DetectedAgo string `json:"detected_ago,omitempty"`
}

type View struct {
	Stats        models.DashboardStats `json:"stats"`
	Turnout      string                `json:"turnout"`
	TotalText    string                `json:"total_text"`
	RecentVotes  []RecentVote          `json:"recent_votes"`
	Anomalies    []AnomalyView         `json:"anomalies"`
	AnomalyCount int                   `json:"anomaly_count"`
}

type DetectResult struct {
	AnomaliesFound int  `json:"anomalies_found"`
	View           View `json:"view"`
}

type Dashboard struct {
	api API
	now func() time.Time
}

func New(api API) *Dashboard {
	return &Dashboard{api: api, now: time.Now}
}

// WithClock replaces the clock used for relative times
func (d *Dashboard) WithClock(now func() time.Time) *Dashboard {
	d.now = now
	return d
}

// Load fetches the stats and anomalies concurrently
func (d *Dashboard) Load(ctx context.Context) (View, error) {
	var stats models.DashboardStats
	var anomalies []models.Anomaly

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = d.api.DashboardStats(gctx)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		anomalies, err = d.api.Anomalies(gctx)
		if err != nil {
			return fmt.Errorf("failed to load anomalies: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	return d.build(stats, anomalies), nil
}

func (d *Dashboard) build(stats models.DashboardStats, anomalies []models.Anomaly) View {
	now := d.now()

	v := View{
		Turnout:      humanize.FtoaWithDigits(stats.VotingPercentage, 1) + "%",
		TotalText:    humanize.Comma(int64(stats.TotalVoters)),
		RecentVotes:  make([]RecentVote, 0, len(stats.RecentVotes)),
		Anomalies:    make([]AnomalyView, 0, len(anomalies)),
		AnomalyCount: len(anomalies),
	}

	for _, voter := range stats.RecentVotes {
		v.RecentVotes = append(v.RecentVotes, RecentVote{Voter: voter, VotedAgo: relative(voter.VotingTimestamp, now)})
	}
	stats.RecentVotes = nil
	v.Stats = stats

	for _, a := range anomalies {
		av := AnomalyView{Anomaly: a, DetectedAgo: relative(a.DetectedAt, now)}
		if a.ConfidenceScore > 0 {
			av.Confidence = fmt.Sprintf("%.0f%%", a.ConfidenceScore*100)
		}
		v.Anomalies = append(v.Anomalies, av)
	}

	return v
}

// Detect runs anomaly detection and reloads
func (d *Dashboard) Detect(ctx context.Context) (DetectResult, error) {
	resp, err := d.api.DetectAnomalies(ctx)
	if err != nil {
		return DetectResult{}, fmt.Errorf("failed to run anomaly detection: %w", err)
	}
	slog.Info("anomaly detection finished", "anomalies_found", resp.AnomaliesFound)

	view, err := d.Load(ctx)
	if err != nil {
		return DetectResult{}, err
	}
	return DetectResult{AnomaliesFound: resp.AnomaliesFound, View: view}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	http.TimeFormat,
	time.RFC1123,
}

// relative renders a backend timestamp as "3 minutes ago", or "" when it
// does not parse
func relative(ts string, now time.Time) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return humanize.RelTime(t, now, "ago", "from now")
		}
	}
	slog.Debug("unparsed timestamp", "value", ts)
	return ""
}
