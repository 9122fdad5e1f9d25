package classifier

import "skylens/internal/models"

// Resolve maps a classifier verdict to a classification label.
//
// The confidence bands take priority over the boolean flag: a low- or
// mid-confidence verdict is never reported as a hard AI/human label even if
// the flag says otherwise. Boundary values belong to the lower band, so 0.5
// is MIXED_CONTENT and 0.7 is resolved by the flag.
func Resolve(isAiGenerated *bool, confidence *float64) string {
	if isAiGenerated == nil || confidence == nil {
		return models.ClassificationUncertain
	}

	c := *confidence
	switch {
	case c < 0.5:
		return models.ClassificationUncertain
	case c < 0.7:
		return models.ClassificationMixedContent
	case *isAiGenerated:
		return models.ClassificationAiGenerated
	default:
		return models.ClassificationHumanWritten
	}
}
