package matching

import "estate_matcher/models"

// AverageBreakdown is the per-dimension mean over a set of matches.
type AverageBreakdown struct {
	Zone         float64 `json:"zone"`
	Budget       float64 `json:"budget"`
	Type         float64 `json:"type"`
	Surface      float64 `json:"surface"`
	Availability float64 `json:"availability"`
	Priority     float64 `json:"priority"`
	Affinity     float64 `json:"affinity"`
}

type Statistics struct {
	TotalMatches     int              `json:"total_matches"`
	AverageScore     float64          `json:"average_score"`
	ExcellentCount   int              `json:"excellent_count"`
	GoodCount        int              `json:"good_count"`
	FairCount        int              `json:"fair_count"`
	PoorCount        int              `json:"poor_count"`
	AverageBreakdown AverageBreakdown `json:"average_breakdown"`
}

// GetMatchStatistics summarises a result set for reporting.
func GetMatchStatistics(matches []*models.MatchResult) Statistics {
	var s Statistics
	var total float64
	var sum [7]float64

	for _, m := range matches {
		if m == nil {
			continue
		}
		s.TotalMatches++
		total += m.TotalScore

		switch m.Quality() {
		case models.QualityExcellent:
			s.ExcellentCount++
		case models.QualityGood:
			s.GoodCount++
		case models.QualityFair:
			s.FairCount++
		default:
			s.PoorCount++
		}

		for i, d := range models.Dimensions {
			sum[i] += float64(m.Breakdown.Get(d))
		}
	}

	if s.TotalMatches == 0 {
		return s
	}

	n := float64(s.TotalMatches)
	s.AverageScore = total / n
	s.AverageBreakdown = AverageBreakdown{
		Zone:         sum[0] / n,
		Budget:       sum[1] / n,
		Type:         sum[2] / n,
		Surface:      sum[3] / n,
		Availability: sum[4] / n,
		Priority:     sum[5] / n,
		Affinity:     sum[6] / n,
	}
	return s
}
