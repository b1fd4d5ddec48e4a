package calendar

import "time"

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not conflict.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// ConflictIDs returns the ids of all schedules whose interval overlaps
// [start,end), skipping excludeID if non-empty.
func ConflictIDs(schedules []Schedule, start, end time.Time, excludeID string) []string {
	var ids []string
	for _, s := range schedules {
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		if Overlaps(s.StartTime, s.EndTime, start, end) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
