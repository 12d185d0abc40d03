package bell

// ShouldFire is the fire-eligibility predicate: whether a bell announces on
// the given calendar date. Disabled bells never fire, enabled vacation
// ranges suppress everything, and otherwise the date's weekday must be among
// the bell's selected days.
//
// The scheduler consults exactly this rule; any alternative trigger
// mechanism must reuse it unchanged.
func ShouldFire(b Bell, vacation VacationSchedule, date Date) bool {
	if !b.Enabled {
		return false
	}
	if vacation.IsSuppressed(date) {
		return false
	}
	return b.HasDay(date.Weekday())
}
