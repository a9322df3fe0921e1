package quiz

import "time"

// Availability is the window state of a quiz at a given instant.
type Availability string

const (
	AvailabilityUpcoming  Availability = "UPCOMING"
	AvailabilityAvailable Availability = "AVAILABLE"
	AvailabilityExpired   Availability = "EXPIRED"
)

// CheckAvailability returns an *AvailabilityError when now falls outside
// [StartTime, EndTime]. Both bounds are inclusive and optional.
func CheckAvailability(q Quiz, now time.Time) error {
	if q.StartTime != nil && now.Before(*q.StartTime) {
		return &AvailabilityError{QuizID: q.ID, Reason: ReasonNotYetOpen, Boundary: *q.StartTime}
	}
	if q.EndTime != nil && now.After(*q.EndTime) {
		return &AvailabilityError{QuizID: q.ID, Reason: ReasonExpired, Boundary: *q.EndTime}
	}
	return nil
}

// AvailabilityAt maps the window check onto a listing status.
func AvailabilityAt(q Quiz, now time.Time) Availability {
	err := CheckAvailability(q, now)
	if err == nil {
		return AvailabilityAvailable
	}
	if err.(*AvailabilityError).Reason == ReasonNotYetOpen {
		return AvailabilityUpcoming
	}
	return AvailabilityExpired
}
