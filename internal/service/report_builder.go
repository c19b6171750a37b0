package service

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"github.com/rs/zerolog/log"
)

//go:embed templates/report.html
var reportTemplateHTML string

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateHTML))

type reportQuestionView struct {
	Text        string
	Health      int
	BarChartURI template.URL
}

type reportPeakView struct {
	Code            string
	Name            string
	Score           int
	Range           string
	Distribution    [4]int
	Insight         string
	Action          string
	MountainURI     template.URL
	Questions       []reportQuestionView
	ChartUnavailable bool
}

type reportView struct {
	TeamName     string
	Deadline     string
	GeneratedAt  string
	Participants int64
	Submitted    int64
	SummaryText  string
	Peaks        []reportPeakView
}

// ReportBuilder scores an assessment and assembles the full report HTML that
// is handed to the PDF renderer.
type ReportBuilder interface {
	BuildHTML(assessment *model.Assessment) (string, error)
}

type reportBuilder struct {
	questionRepo    repository.QuestionRepository
	participantRepo repository.ParticipantRepository
	scoringService  ScoringService
	insightService  InsightService
	chartService    ChartService
}

func NewReportBuilder(
	questionRepo repository.QuestionRepository,
	participantRepo repository.ParticipantRepository,
	scoringService ScoringService,
	insightService InsightService,
	chartService ChartService,
) ReportBuilder {
	return &reportBuilder{
		questionRepo:    questionRepo,
		participantRepo: participantRepo,
		scoringService:  scoringService,
		insightService:  insightService,
		chartService:    chartService,
	}
}

func (b *reportBuilder) BuildHTML(assessment *model.Assessment) (string, error) {
	peaks, err := b.questionRepo.FindAllPeaks()
	if err != nil {
		return "", fmt.Errorf("failed to load peaks: %w", err)
	}

	total, err := b.participantRepo.CountByAssessment(assessment.ID)
	if err != nil {
		return "", fmt.Errorf("failed to count participants: %w", err)
	}
	submitted, err := b.participantRepo.CountSubmittedByAssessment(assessment.ID)
	if err != nil {
		return "", fmt.Errorf("failed to count submissions: %w", err)
	}

	view := reportView{
		TeamName:     assessment.Team.Name,
		Deadline:     assessment.Deadline.Format("January 2, 2006"),
		GeneratedAt:  time.Now().Format("January 2, 2006"),
		Participants: total,
		Submitted:    submitted,
	}

	scores := make([]PeakScore, 0, len(peaks))
	for _, peak := range peaks {
		dist, err := b.scoringService.RatingDistribution(assessment.ID, peak.Code)
		if err != nil {
			return "", fmt.Errorf("failed to score peak %s: %w", peak.Code, err)
		}
		score := DimensionScore(dist)
		rangeLabel := RangeLabel(score)
		scores = append(scores, PeakScore{Code: peak.Code, Name: peak.Name, Score: score, Range: rangeLabel})

		pv := reportPeakView{
			Code:         peak.Code,
			Name:         peak.Name,
			Score:        score,
			Range:        rangeLabel,
			Distribution: dist,
			Insight:      b.insightService.InsightText(peak.Code, rangeLabel),
			Action:       b.insightService.ActionText(peak.Code, rangeLabel),
		}

		// A failed chart never blocks the report; the section renders without it.
		if png, err := b.chartService.PeakMountainPNG(dist[:]); err == nil {
			pv.MountainURI = template.URL(PNGDataURI(png))
		} else {
			log.Warn().Err(err).Str("peak", peak.Code).Msg("Mountain chart failed, rendering without it")
			pv.ChartUnavailable = true
		}

		questions, err := b.questionRepo.FindByPeakCode(peak.Code)
		if err != nil {
			return "", fmt.Errorf("failed to load questions for peak %s: %w", peak.Code, err)
		}
		for _, q := range questions {
			health, counts, err := b.scoringService.QuestionHealth(assessment.ID, q.ID)
			if err != nil {
				return "", fmt.Errorf("failed to score question %d: %w", q.ID, err)
			}
			qv := reportQuestionView{Text: q.Text, Health: health}
			intCounts := make([]int, 4)
			for i, c := range counts {
				intCounts[i] = int(c)
			}
			if png, err := b.chartService.QuestionBarPNG(intCounts); err == nil {
				qv.BarChartURI = template.URL(PNGDataURI(png))
			} else {
				log.Warn().Err(err).Uint("question_id", q.ID).Msg("Bar chart failed, rendering without it")
			}
			pv.Questions = append(pv.Questions, qv)
		}
		view.Peaks = append(view.Peaks, pv)
	}

	view.SummaryText = b.insightService.SummaryText(scores)

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return buf.String(), nil
}
