package matching

import (
	"math"
	"time"

	"estate_matcher/models"
)

const (
	exactWindowDays        = 7
	defaultFlexibilityDays = 30
)

// ScoreAvailability rates the listing status and how its hand-over date lines
// up with the client's move-in date. asOf anchors day counts for immediately
// available properties. A closed status scores 0 whatever the timing.
func ScoreAvailability(avail models.PropertyAvailability, timing models.Timing, asOf time.Time) int {
	status := statusScore(avail.Status)
	if status == 0 {
		return 0
	}
	t := timingScore(avail, timing, asOf)
	return clamp(round(float64(status)*0.4+float64(t)*0.6), 0, 100)
}

func statusScore(s models.PropertyStatus) int {
	switch s {
	case models.StatusAvailable:
		return 100
	case models.StatusDraft:
		return 60
	case models.StatusOption:
		return 30
	case models.StatusSuspended:
		return 20
	case models.StatusSold, models.StatusRented, models.StatusArchived:
		return 0
	}
	return 50
}

func timingScore(avail models.PropertyAvailability, timing models.Timing, asOf time.Time) int {
	if avail.IsImmediate {
		return immediateScore(timing, asOf)
	}
	if timing.DesiredMoveIn == nil {
		return 50
	}
	ready := avail.ReadyDate()
	if ready == nil {
		return immediateScore(timing, asOf)
	}
	return alignmentScore(*ready, *timing.DesiredMoveIn, timing)
}

func immediateScore(timing models.Timing, asOf time.Time) int {
	if timing.DesiredMoveIn == nil {
		return 100
	}
	days := daysBetween(asOf, *timing.DesiredMoveIn)
	switch {
	case days <= 7:
		return 100
	case days <= 30:
		return 90
	case days <= 90:
		return 70
	}
	return 50
}

// alignmentScore compares the date the property is ready with the date the
// client wants to move in. Positive differences mean the property is late.
func alignmentScore(ready, desired time.Time, timing models.Timing) int {
	diff := daysBetween(desired, ready)
	abs := diff
	if abs < 0 {
		abs = -abs
	}

	flex := defaultFlexibilityDays
	if timing.FlexibilityDays != nil && *timing.FlexibilityDays > 0 {
		flex = *timing.FlexibilityDays
	}

	if abs <= exactWindowDays {
		return 100
	}
	if abs <= flex {
		return round(70 + (1-float64(abs)/float64(flex))*30)
	}

	if diff < 0 {
		if !timing.CanWait {
			return 30
		}
		switch {
		case abs <= 60:
			return 60
		case abs <= 120:
			return 40
		}
		return 20
	}

	switch timing.Urgency {
	case models.UrgencyHigh:
		if diff <= 14 {
			return 50
		}
		return 0
	case models.UrgencyMedium:
		switch {
		case diff <= 30:
			return 60
		case diff <= 60:
			return 40
		}
		return 20
	}
	switch {
	case diff <= 60:
		return 70
	case diff <= 120:
		return 50
	}
	return 30
}

// daysBetween returns to - from in whole days, rounded to the nearest day.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}
