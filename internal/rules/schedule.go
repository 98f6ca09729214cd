package rules

import (
	"strings"

	"github.com/tavolo/pricing-service/internal/models"
)

// ScheduleActive reports whether a promotion's schedule admits the
// given day ("monday".."sunday") and clock ("HH:MM"). A nil schedule is
// always active. The window comparison is lexicographic and inclusive;
// a window whose end precedes its start never matches past midnight.
func ScheduleActive(s *models.Schedule, dayOfWeek, clock string) bool {
	if s == nil {
		return true
	}

	if len(s.Days) > 0 {
		found := false
		for _, d := range s.Days {
			if strings.EqualFold(d, dayOfWeek) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if w := s.TimeWindow; w != nil {
		if clock < w.Start || clock > w.End {
			return false
		}
	}

	return true
}
