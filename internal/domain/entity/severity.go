package entity

import (
	"fmt"
	"math"
)

// SeverityLabel степень поражения листа
type SeverityLabel string

const (
	SeverityMild     SeverityLabel = "Mild"     // меньше 5%
	SeverityModerate SeverityLabel = "Moderate" // от 5% до 15%
	SeveritySevere   SeverityLabel = "Severe"   // 15% и больше
)

// Пороги зафиксированы продуктом и не настраиваются.
const (
	ModerateThreshold = 5.0
	SevereThreshold   = 15.0
)

// ClassifySeverity переводит процент поражения в метку.
// Граничные значения попадают в верхний интервал.
func ClassifySeverity(percentage float64) SeverityLabel {
	switch {
	case percentage >= SevereThreshold:
		return SeveritySevere
	case percentage >= ModerateThreshold:
		return SeverityModerate
	default:
		return SeverityMild
	}
}

// ComputeSeverity считает долю поражённой площади листа в процентах.
// Маска поражения пересекается с маской листа; при пустой маске листа результат 0.
func ComputeSeverity(diseased, leaf *Mask) (float64, error) {
	lesions, err := diseased.Intersect(leaf)
	if err != nil {
		return 0, fmt.Errorf("severity: %w", err)
	}
	return SeverityPercentage(lesions.Count(), leaf.Count()), nil
}

// SeverityPercentage = 100 × diseased / leaf, округлено до сотых.
func SeverityPercentage(diseasedPixels, leafPixels int) float64 {
	if leafPixels <= 0 || diseasedPixels <= 0 {
		return 0
	}
	p := float64(diseasedPixels) / float64(leafPixels) * 100
	p = math.Round(p*100) / 100
	return math.Min(p, 100)
}
