package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skylens/internal/apperrors"
	"skylens/internal/classifier"
	"skylens/internal/lifecycle"
	"skylens/internal/models"
)

// ClassifierAPI is the outbound contract the detection service depends on.
type ClassifierAPI interface {
	Classify(ctx context.Context, text string) (*classifier.Result, error)
}

// DetectionService manages AI-detection analyses with soft deletion
type DetectionService struct {
	db         *gorm.DB
	classifier ClassifierAPI
}

// NewDetectionService creates a new detection service
func NewDetectionService(db *gorm.DB, classifierClient ClassifierAPI) *DetectionService {
	return &DetectionService{
		db:         db,
		classifier: classifierClient,
	}
}

// DetectionRequest carries the caller-supplied fields for create and update.
type DetectionRequest struct {
	TextContent string `json:"text_content"`
	Lang        string `json:"lang,omitempty"`
}

// Create analyzes the given text with the external classifier and stores
// the result as a new Active detection.
func (s *DetectionService) Create(ctx context.Context, req DetectionRequest) (*models.Detection, error) {
	if strings.TrimSpace(req.TextContent) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "text content must not be empty")
	}

	result, err := s.classifier.Classify(ctx, req.TextContent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	detection := &models.Detection{
		ID:              uuid.New(),
		TextContent:     req.TextContent,
		Lang:            normalizeLang(req.Lang),
		IsAiGenerated:   boolValue(result.IsAiGenerated),
		AiProbability:   floatValue(result.Confidence),
		ConfidenceScore: floatValue(result.Confidence),
		Classification:  classifier.Resolve(result.IsAiGenerated, result.Confidence),
		AnalysisDate:    now,
		Status:          models.StatusActive,
	}

	if err := s.db.Create(detection).Error; err != nil {
		return nil, err
	}

	log.Printf("Detection created: id=%s classification=%s", detection.ID, detection.Classification)
	return detection, nil
}

// Analyze is the direct analysis path: classify the text with the default
// language and store the result.
func (s *DetectionService) Analyze(ctx context.Context, text string) (*models.Detection, error) {
	return s.Create(ctx, DetectionRequest{TextContent: text})
}

// FindAll returns all Active detections.
func (s *DetectionService) FindAll() ([]models.Detection, error) {
	return lifecycle.FindActive[models.Detection](s.db)
}

// FindByID returns the Active detection with the given id.
func (s *DetectionService) FindByID(id uuid.UUID) (*models.Detection, error) {
	return lifecycle.FindActiveByID[models.Detection](s.db, id)
}

// Update re-runs the classifier on the new text and replaces the derived
// fields of an Active detection in place, preserving id and creation time.
func (s *DetectionService) Update(ctx context.Context, id uuid.UUID, req DetectionRequest) (*models.Detection, error) {
	if strings.TrimSpace(req.TextContent) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "text content must not be empty")
	}

	existing, err := lifecycle.FindActiveByID[models.Detection](s.db, id)
	if err != nil {
		return nil, err
	}

	result, err := s.classifier.Classify(ctx, req.TextContent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	existing.TextContent = req.TextContent
	existing.Lang = normalizeLang(req.Lang)
	existing.IsAiGenerated = boolValue(result.IsAiGenerated)
	existing.AiProbability = floatValue(result.Confidence)
	existing.ConfidenceScore = floatValue(result.Confidence)
	existing.Classification = classifier.Resolve(result.IsAiGenerated, result.Confidence)
	existing.AnalysisDate = now
	existing.UpdatedAt = now

	if err := s.db.Save(existing).Error; err != nil {
		return nil, err
	}

	log.Printf("Detection updated: id=%s classification=%s", existing.ID, existing.Classification)
	return existing, nil
}

// Delete soft-deletes an Active detection.
func (s *DetectionService) Delete(id uuid.UUID) error {
	_, err := lifecycle.Deactivate[models.Detection](s.db, id)
	return err
}

// Restore reactivates a soft-deleted detection.
func (s *DetectionService) Restore(id uuid.UUID) (*models.Detection, error) {
	return lifecycle.Restore[models.Detection](s.db, id)
}

// normalizeLang trims the language code and falls back to the default when
// nothing is left.
func normalizeLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return models.DefaultLang
	}
	return lang
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

func floatValue(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
