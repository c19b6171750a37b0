package model

// Score range labels derived from a 0-100 dimension score.
const (
	RangeLow    = "LOW"
	RangeMedium = "MEDIUM"
	RangeHigh   = "HIGH"
)

// PeakInsight is canned narrative text for one (peak, range) pairing.
type PeakInsight struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	PeakCode    string `json:"peak_code" gorm:"not null;size:2;uniqueIndex:idx_insight_peak_range"`
	RangeLabel  string `json:"range_label" gorm:"not null;size:10;uniqueIndex:idx_insight_peak_range"`
	InsightText string `json:"insight_text" gorm:"type:text;not null"`
}

// PeakAction is the suggested-actions text for one (peak, range) pairing.
type PeakAction struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	PeakCode   string `json:"peak_code" gorm:"not null;size:2;uniqueIndex:idx_action_peak_range"`
	RangeLabel string `json:"range_label" gorm:"not null;size:10;uniqueIndex:idx_action_peak_range"`
	ActionText string `json:"action_text" gorm:"type:text;not null"`
}

// ResultsSummary is the cross-dimension narrative keyed by the
// (highest, lowest) scoring peak pair.
type ResultsSummary struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	HighPeak    string `json:"high_peak" gorm:"not null;size:2;uniqueIndex:idx_summary_high_low"`
	LowPeak     string `json:"low_peak" gorm:"not null;size:2;uniqueIndex:idx_summary_high_low"`
	SummaryText string `json:"summary_text" gorm:"type:text;not null"`
}

// UniformRangeSummary is the alternate narrative used when all four peaks
// land in the same range.
type UniformRangeSummary struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	RangeLabel  string `json:"range_label" gorm:"not null;size:10;uniqueIndex"`
	SummaryText string `json:"summary_text" gorm:"type:text;not null"`
}
