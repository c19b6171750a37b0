package service

import (
	"testing"

	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
)

func TestHighLowPeaks(t *testing.T) {
	tests := []struct {
		name     string
		scores   []PeakScore
		wantHigh string
		wantLow  string
	}{
		{
			name: "distinct scores",
			scores: []PeakScore{
				{Code: model.PeakCollaborativeCulture, Score: 40},
				{Code: model.PeakLeadershipAccountability, Score: 80},
				{Code: model.PeakStrategicMomentum, Score: 20},
				{Code: model.PeakTalentMagnetism, Score: 60},
			},
			wantHigh: model.PeakLeadershipAccountability,
			wantLow:  model.PeakStrategicMomentum,
		},
		{
			name: "high tie resolves to earliest canonical peak",
			scores: []PeakScore{
				{Code: model.PeakCollaborativeCulture, Score: 80},
				{Code: model.PeakLeadershipAccountability, Score: 80},
				{Code: model.PeakStrategicMomentum, Score: 20},
				{Code: model.PeakTalentMagnetism, Score: 60},
			},
			wantHigh: model.PeakCollaborativeCulture,
			wantLow:  model.PeakStrategicMomentum,
		},
		{
			name: "low tie resolves to earliest canonical peak",
			scores: []PeakScore{
				{Code: model.PeakCollaborativeCulture, Score: 70},
				{Code: model.PeakLeadershipAccountability, Score: 30},
				{Code: model.PeakStrategicMomentum, Score: 30},
				{Code: model.PeakTalentMagnetism, Score: 50},
			},
			wantHigh: model.PeakCollaborativeCulture,
			wantLow:  model.PeakLeadershipAccountability,
		},
		{
			name: "all equal picks first canonical for both",
			scores: []PeakScore{
				{Code: model.PeakTalentMagnetism, Score: 50},
				{Code: model.PeakStrategicMomentum, Score: 50},
				{Code: model.PeakLeadershipAccountability, Score: 50},
				{Code: model.PeakCollaborativeCulture, Score: 50},
			},
			wantHigh: model.PeakCollaborativeCulture,
			wantLow:  model.PeakCollaborativeCulture,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			high, low := HighLowPeaks(tt.scores)
			if high.Code != tt.wantHigh {
				t.Errorf("high = %s, want %s", high.Code, tt.wantHigh)
			}
			if low.Code != tt.wantLow {
				t.Errorf("low = %s, want %s", low.Code, tt.wantLow)
			}
		})
	}
}

func TestSummaryText(t *testing.T) {
	db := newTestDB(t)
	svc := NewInsightService(repository.NewInsightRepository(db))

	seed := []interface{}{
		&model.ResultsSummary{HighPeak: "LA", LowPeak: "SM", SummaryText: "Leadership carries, momentum lags."},
		&model.UniformRangeSummary{RangeLabel: model.RangeHigh, SummaryText: "Firing on all cylinders."},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	t.Run("high low pairing", func(t *testing.T) {
		got := svc.SummaryText([]PeakScore{
			{Code: "CC", Score: 50, Range: model.RangeMedium},
			{Code: "LA", Score: 80, Range: model.RangeHigh},
			{Code: "SM", Score: 20, Range: model.RangeLow},
			{Code: "TM", Score: 60, Range: model.RangeMedium},
		})
		if got != "Leadership carries, momentum lags." {
			t.Errorf("SummaryText = %q", got)
		}
	})

	t.Run("uniform range uses uniform narrative even with score spread", func(t *testing.T) {
		got := svc.SummaryText([]PeakScore{
			{Code: "CC", Score: 70, Range: model.RangeHigh},
			{Code: "LA", Score: 95, Range: model.RangeHigh},
			{Code: "SM", Score: 80, Range: model.RangeHigh},
			{Code: "TM", Score: 88, Range: model.RangeHigh},
		})
		if got != "Firing on all cylinders." {
			t.Errorf("SummaryText = %q", got)
		}
	})

	t.Run("missing pairing falls back to placeholder", func(t *testing.T) {
		got := svc.SummaryText([]PeakScore{
			{Code: "CC", Score: 80, Range: model.RangeHigh},
			{Code: "LA", Score: 50, Range: model.RangeMedium},
			{Code: "SM", Score: 60, Range: model.RangeMedium},
			{Code: "TM", Score: 20, Range: model.RangeLow},
		})
		if got != noSummaryText {
			t.Errorf("SummaryText = %q, want placeholder", got)
		}
	})

	t.Run("no scores", func(t *testing.T) {
		if got := svc.SummaryText(nil); got != noSummaryText {
			t.Errorf("SummaryText(nil) = %q, want placeholder", got)
		}
	})
}

func TestInsightAndActionPlaceholders(t *testing.T) {
	db := newTestDB(t)
	svc := NewInsightService(repository.NewInsightRepository(db))

	if err := db.Create(&model.PeakInsight{PeakCode: "CC", RangeLabel: model.RangeLow, InsightText: "Collaboration is strained."}).Error; err != nil {
		t.Fatalf("seed insight: %v", err)
	}

	if got := svc.InsightText("CC", model.RangeLow); got != "Collaboration is strained." {
		t.Errorf("InsightText = %q", got)
	}
	if got := svc.InsightText("CC", model.RangeHigh); got != noInsightText {
		t.Errorf("InsightText(miss) = %q, want placeholder", got)
	}
	if got := svc.ActionText("TM", model.RangeLow); got != noActionText {
		t.Errorf("ActionText(miss) = %q, want placeholder", got)
	}
}
