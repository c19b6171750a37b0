package service

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/orghealth/ascent/internal/model"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartFillColor   = drawing.Color{R: 0x00, G: 0x93, B: 0xED, A: 0x59}
	chartStrokeColor = drawing.Color{R: 0x0b, G: 0x81, B: 0xcb, A: 0xff}
)

// ChartService renders the report charts as PNG bytes. Charts are embedded
// into the report HTML as data URIs so the PDF renderer needs no asset URLs.
type ChartService interface {
	PeakMountainPNG(distribution []int) ([]byte, error)
	QuestionBarPNG(distribution []int) ([]byte, error)
}

type chartService struct{}

func NewChartService() ChartService {
	return &chartService{}
}

// PeakMountainPNG draws the smoothed "mountain" profile of a dimension's
// rating distribution. The four rating buckets are interpolated to a dense
// series so the fill reads as a curve rather than a polyline.
func (s *chartService) PeakMountainPNG(distribution []int) ([]byte, error) {
	if len(distribution) != 4 {
		return nil, fmt.Errorf("expected 4 rating buckets, got %d", len(distribution))
	}

	xs, ys := interpolateBuckets(distribution, 121)

	graph := chart.Chart{
		Width:  640,
		Height: 280,
		Background: chart.Style{
			Padding: chart.Box{Top: 10, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Ticks: []chart.Tick{
				{Value: 0, Label: model.RatingLabels[0]},
				{Value: 1, Label: model.RatingLabels[1]},
				{Value: 2, Label: model.RatingLabels[2]},
				{Value: 3, Label: model.RatingLabels[3]},
			},
			Style: chart.Style{FontSize: 9},
		},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: 0, Max: maxFloat(ys) * 1.1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chartStrokeColor,
					StrokeWidth: 2,
					FillColor:   chartFillColor,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render mountain chart: %w", err)
	}
	return buf.Bytes(), nil
}

// QuestionBarPNG draws one bar per rating bucket for a single question.
func (s *chartService) QuestionBarPNG(distribution []int) ([]byte, error) {
	if len(distribution) != 4 {
		return nil, fmt.Errorf("expected 4 rating buckets, got %d", len(distribution))
	}

	max := 0
	for _, v := range distribution {
		if v > max {
			max = v
		}
	}
	// go-chart cannot render a zero-height value range.
	if max == 0 {
		max = 1
	}

	values := make([]chart.Value, 0, 4)
	for i, v := range distribution {
		values = append(values, chart.Value{
			Value: float64(v),
			Label: model.RatingLabels[i],
			Style: chart.Style{FillColor: chartFillColor, StrokeColor: chartStrokeColor, StrokeWidth: 1},
		})
	}

	graph := chart.BarChart{
		Width:    560,
		Height:   220,
		BarWidth: 80,
		Background: chart.Style{
			Padding: chart.Box{Top: 10, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max) * 1.15},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// PNGDataURI wraps raw PNG bytes as an inline image source.
func PNGDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// interpolateBuckets spreads the 4 bucket percentages across n linearly
// interpolated points on x in [0,3].
func interpolateBuckets(distribution []int, n int) ([]float64, []float64) {
	xs := make([]float64, n)
	ys := make([]float64, n)
	step := 3.0 / float64(n-1)
	for i := 0; i < n; i++ {
		x := float64(i) * step
		lo := int(x)
		if lo >= 3 {
			lo = 2
		}
		frac := x - float64(lo)
		y := float64(distribution[lo]) + frac*(float64(distribution[lo+1])-float64(distribution[lo]))
		xs[i] = x
		ys[i] = y
	}
	return xs, ys
}

func maxFloat(vals []float64) float64 {
	m := 1.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}
