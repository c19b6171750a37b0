package service

import (
	"errors"

	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Placeholder strings for missing reference-table entries. Lookups never
// error: the report renders with these instead.
const (
	noInsightText = "No insights available."
	noActionText  = "No actions available."
	noSummaryText = "No summary available for this combination."
)

// PeakScore is one peak's computed result feeding the summary lookup.
type PeakScore struct {
	Code  string
	Name  string
	Score int
	Range string
}

// InsightService looks up canned narrative text for scored assessments.
type InsightService interface {
	InsightText(peakCode, rangeLabel string) string
	ActionText(peakCode, rangeLabel string) string
	SummaryText(scores []PeakScore) string
}

type insightService struct {
	insightRepo repository.InsightRepository
}

func NewInsightService(insightRepo repository.InsightRepository) InsightService {
	return &insightService{insightRepo: insightRepo}
}

func (s *insightService) InsightText(peakCode, rangeLabel string) string {
	insight, err := s.insightRepo.FindInsight(peakCode, rangeLabel)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Str("peak", peakCode).Str("range", rangeLabel).Msg("Insight lookup failed")
		}
		return noInsightText
	}
	return insight.InsightText
}

func (s *insightService) ActionText(peakCode, rangeLabel string) string {
	action, err := s.insightRepo.FindAction(peakCode, rangeLabel)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Str("peak", peakCode).Str("range", rangeLabel).Msg("Action lookup failed")
		}
		return noActionText
	}
	return action.ActionText
}

// SummaryText picks the highest- and lowest-scoring peaks and returns the
// narrative for that pairing. When all four peaks land in the same range the
// uniform-range narrative is used instead. Ties are broken by the canonical
// peak order so repeated computation is deterministic.
func (s *insightService) SummaryText(scores []PeakScore) string {
	if len(scores) == 0 {
		return noSummaryText
	}

	uniform := true
	for _, ps := range scores[1:] {
		if ps.Range != scores[0].Range {
			uniform = false
			break
		}
	}
	if uniform {
		summary, err := s.insightRepo.FindUniformSummary(scores[0].Range)
		if err == nil {
			return summary.SummaryText
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Str("range", scores[0].Range).Msg("Uniform summary lookup failed")
		}
		return noSummaryText
	}

	high, low := HighLowPeaks(scores)
	summary, err := s.insightRepo.FindSummary(high.Code, low.Code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Str("high", high.Code).Str("low", low.Code).Msg("Results summary lookup failed")
		}
		return noSummaryText
	}
	return summary.SummaryText
}

// HighLowPeaks returns the highest- and lowest-scoring peaks. Score ties are
// resolved by canonical peak order, earliest wins.
func HighLowPeaks(scores []PeakScore) (high, low PeakScore) {
	byCode := make(map[string]PeakScore, len(scores))
	for _, ps := range scores {
		byCode[ps.Code] = ps
	}

	first := true
	for _, code := range model.CanonicalPeakOrder {
		ps, ok := byCode[code]
		if !ok {
			continue
		}
		if first {
			high, low = ps, ps
			first = false
			continue
		}
		if ps.Score > high.Score {
			high = ps
		}
		if ps.Score < low.Score {
			low = ps
		}
	}
	return high, low
}
