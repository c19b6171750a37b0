package model

// Peak codes for the four fixed competency dimensions.
const (
	PeakCollaborativeCulture     = "CC"
	PeakLeadershipAccountability = "LA"
	PeakStrategicMomentum        = "SM"
	PeakTalentMagnetism          = "TM"
)

// CanonicalPeakOrder fixes the tie-break order used when two peaks score
// equally in the results summary.
var CanonicalPeakOrder = []string{
	PeakCollaborativeCulture,
	PeakLeadershipAccountability,
	PeakStrategicMomentum,
	PeakTalentMagnetism,
}

// Peak is one of the four competency dimensions. Seeded once as reference data.
type Peak struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Code string `json:"code" gorm:"not null;uniqueIndex;size:2"`
	Name string `json:"name" gorm:"not null;uniqueIndex;size:100"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:PeakID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type Question struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	PeakID uint   `json:"peak_id" gorm:"not null;index"`
	Peak   Peak   `json:"peak,omitempty" gorm:"foreignKey:PeakID"`
	Text   string `json:"text" gorm:"type:text;not null"`
	Order  int    `json:"order" gorm:"not null;default:0;column:display_order"`
}
