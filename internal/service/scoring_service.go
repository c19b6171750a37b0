package service

import (
	"math"

	"github.com/orghealth/ascent/internal/repository"
)

// ScoringService aggregates submitted answers into per-peak rating
// distributions and 0-100 scores with LOW/MEDIUM/HIGH range labels.
type ScoringService interface {
	RatingDistribution(assessmentID uint, peakCode string) ([4]int, error)
	QuestionHealth(assessmentID, questionID uint) (int, [4]int64, error)
}

type scoringService struct {
	answerRepo repository.AnswerRepository
}

func NewScoringService(answerRepo repository.AnswerRepository) ScoringService {
	return &scoringService{answerRepo: answerRepo}
}

// RatingDistribution returns the percentage of submitted answers in each of
// the four rating buckets for all questions under one peak. An assessment
// with no answers yields [0,0,0,0].
func (s *scoringService) RatingDistribution(assessmentID uint, peakCode string) ([4]int, error) {
	counts, err := s.answerRepo.CountsByPeak(assessmentID, peakCode)
	if err != nil {
		return [4]int{}, err
	}
	return DistributionPercentages(counts), nil
}

// QuestionHealth returns the 0-100 health percentage for one question plus
// the raw per-bucket counts used by the bar chart.
func (s *scoringService) QuestionHealth(assessmentID, questionID uint) (int, [4]int64, error) {
	counts, err := s.answerRepo.CountsByQuestion(assessmentID, questionID)
	if err != nil {
		return 0, counts, err
	}
	return HealthPercentage(counts), counts, nil
}

// DistributionPercentages converts raw bucket counts to rounded integer
// percentages. Empty input maps to all zeros.
func DistributionPercentages(counts [4]int64) [4]int {
	var total int64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return [4]int{}
	}
	var pct [4]int
	for i, c := range counts {
		pct[i] = int(math.Round(float64(c) / float64(total) * 100))
	}
	return pct
}

// DimensionScore computes the 0-100 peak score from a rating distribution:
// the weighted average on the 0-3 scale rescaled to a percentage.
func DimensionScore(dist [4]int) int {
	weighted := 0.0
	for i, p := range dist {
		weighted += float64(i) * float64(p)
	}
	score := weighted / 100.0
	return int(math.Round(score * 100.0 / 3.0))
}

// HealthPercentage computes the per-question 0-100 score from raw counts.
func HealthPercentage(counts [4]int64) int {
	var total, weighted int64
	for i, c := range counts {
		total += c
		weighted += int64(i) * c
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(weighted) / float64(total) * 100.0 / 3.0))
}

// RangeLabel buckets a 0-100 score. Thresholds are asymmetric: 33 is LOW,
// 34 is MEDIUM, 66 is MEDIUM, 67 is HIGH.
func RangeLabel(score int) string {
	switch {
	case score < 34:
		return "LOW"
	case score < 67:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}
