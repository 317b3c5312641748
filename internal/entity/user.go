package entity

import "time"

type User struct {
	Base

	Name string
	Role string

	// LastSeenAt is updated when the last live connection of the user goes
	// away.
	LastSeenAt time.Time
}
