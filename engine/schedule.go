package engine

import "github.com/warp/scenario-engine/profile"

// =============================================================================
// DETERMINISTIC SCHEDULES
// =============================================================================

// IsScheduled reports whether a deterministic scenario is due on day.
//
//   every_n_days{n, offset}: (day - offset) mod n == 0 and day >= offset
//   pay_cycle weekly/biweekly/monthly: same rule with n = 7/14/30 and
//     offset = start day
//   pay_cycle semimonthly: (day - start) mod 15 == 0 on either side of the
//     start day, so a start of 20 also pays on day 5
func IsScheduled(s Scenario, cycle profile.PayCycle, day int) bool {
	if s.Schedule == nil {
		return false
	}
	switch s.Schedule.Kind {
	case ScheduleEveryNDays:
		n := s.Schedule.N
		if n <= 0 {
			n = 30
		}
		return everyN(day, n, s.Schedule.Offset)
	case SchedulePayCycle:
		start := cycle.StartDay
		if start == 0 {
			start = 1
		}
		if cycle.Type == profile.PaySemimonthly {
			return ((day-start)%15+15)%15 == 0
		}
		return everyN(day, cycle.Interval(), start)
	}
	return false
}

func everyN(day, n, offset int) bool {
	return day >= offset && (day-offset)%n == 0
}
