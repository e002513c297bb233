package domain

import "time"

// Clock supplies the current instant. Registration timestamps, attendance
// submission times, and message expiry all go through it.
type Clock interface {
	Now() time.Time
}
