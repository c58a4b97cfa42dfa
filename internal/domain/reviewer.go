package domain

import "time"

// Reviewer is the identified author of a feedback record, resolved by
// username. Created once per distinct username, never updated.
type Reviewer struct {
	ID        int64
	Username  string
	City      *string
	Province  *string
	CreatedAt time.Time
}
