package models

import (
	"time"

	"github.com/google/uuid"
)

// Classification labels derived from the classifier verdict.
const (
	ClassificationAiGenerated  = "AI_GENERATED"
	ClassificationHumanWritten = "HUMAN_WRITTEN"
	ClassificationMixedContent = "MIXED_CONTENT"
	ClassificationUncertain    = "UNCERTAIN"
)

// DefaultLang is used when a request carries no language code.
const DefaultLang = "en"

// Detection represents one AI-authorship analysis of a text sample
type Detection struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid"`
	TextContent string    `json:"text_content" db:"text_content" gorm:"type:text;not null"`
	Lang        string    `json:"lang" db:"lang" gorm:"default:en"` // ISO 639-1

	// Classifier verdict
	IsAiGenerated   bool    `json:"is_ai_generated" db:"is_ai_generated" gorm:"default:false"`
	AiProbability   float64 `json:"ai_probability" db:"ai_probability" gorm:"default:0.0"`
	ConfidenceScore float64 `json:"confidence_score" db:"confidence_score" gorm:"default:0.0"`

	// Always derived from (is_ai_generated, confidence_score), never set directly
	Classification string `json:"classification" db:"classification"`

	AnalysisDate time.Time `json:"analysis_date" db:"analysis_date"`

	Status    string    `json:"status" db:"status" gorm:"index;default:A"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Detection model
func (Detection) TableName() string {
	return "ai_detections"
}

// GetStatus returns the current lifecycle status
func (d *Detection) GetStatus() string {
	return d.Status
}

// SetStatus sets the lifecycle status
func (d *Detection) SetStatus(status string) {
	d.Status = status
}

// Touch updates the modification timestamp
func (d *Detection) Touch(now time.Time) {
	d.UpdatedAt = now
}
