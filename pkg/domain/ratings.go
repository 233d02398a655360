package domain

import "fmt"

// Rating bounds. Zero means the rating has not been assessed yet.
const (
	MinRating = 0
	MaxRating = 10
)

// RatingScale identifies one of the three AIAG-VDA rating tables.
type RatingScale string

// Rating scales.
const (
	ScaleSeverity   RatingScale = "severity"
	ScaleOccurrence RatingScale = "occurrence"
	ScaleDetection  RatingScale = "detection"
)

var ratingLabels = map[RatingScale][MaxRating + 1]string{
	ScaleSeverity: {
		"",
		"No Effect",
		"Very Minor (Unnoticed by average customer)",
		"Minor (Minor defect)",
		"Very Low (Appearance/Audible noise)",
		"Low (Degradation of secondary function)",
		"Moderate (Loss of secondary function)",
		"High (Degradation of primary function)",
		"Very High (Loss of primary function)",
		"Hazardous with warning",
		"Hazardous without warning",
	},
	ScaleOccurrence: {
		"",
		"Extremely Low (Failure unlikely)",
		"Very Remote",
		"Remote",
		"Very Low",
		"Low",
		"Moderate",
		"Moderately High",
		"High",
		"Very High",
		"Extremely High (Almost inevitable)",
	},
	ScaleDetection: {
		"",
		"Almost Certain",
		"Very High",
		"High",
		"Moderately High",
		"Moderate",
		"Low",
		"Very Low",
		"Remote",
		"Very Remote",
		"Absolute Uncertainty (No control)",
	},
}

// ClampRating forces v into [MinRating, MaxRating].
func ClampRating(v int) int {
	if v < MinRating {
		return MinRating
	}
	if v > MaxRating {
		return MaxRating
	}
	return v
}

// ValidRating reports whether v lies in [MinRating, MaxRating].
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// RatingLabel renders "<v> - <description>" for a rating on the given scale.
// Unset or unknown values render as "-".
func RatingLabel(scale RatingScale, v int) string {
	labels, ok := ratingLabels[scale]
	if !ok || v <= MinRating || v > MaxRating {
		return "-"
	}
	return fmt.Sprintf("%d - %s", v, labels[v])
}
