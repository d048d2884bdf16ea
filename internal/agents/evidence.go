package agents

import (
	"github.com/medichain-agent-server/internal/domain"
)

// evidenceScores maps evidence levels to their numeric weights
var evidenceScores = map[domain.EvidenceLevel]int{
	domain.EvidenceHigh:    3,
	domain.EvidenceMedium:  2,
	domain.EvidenceLow:     1,
	domain.EvidenceUnknown: 0,
}

// AverageEvidenceLevel averages the numeric weights of the given levels and
// re-buckets the mean: >=2.5 high, >=1.5 medium, >=0.5 low, else unknown.
func AverageEvidenceLevel(levels []domain.EvidenceLevel) domain.EvidenceLevel {
	if len(levels) == 0 {
		return domain.EvidenceUnknown
	}

	total := 0
	for _, level := range levels {
		total += evidenceScores[level]
	}
	avg := float64(total) / float64(len(levels))

	switch {
	case avg >= 2.5:
		return domain.EvidenceHigh
	case avg >= 1.5:
		return domain.EvidenceMedium
	case avg >= 0.5:
		return domain.EvidenceLow
	default:
		return domain.EvidenceUnknown
	}
}
