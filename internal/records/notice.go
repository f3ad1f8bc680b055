package records

import "time"

// NoticeDuration is how long the delete notice stays visible.
const NoticeDuration = 2000 * time.Millisecond

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn to run once after d.
type AfterFunc func(d time.Duration, fn func()) Timer

func systemAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Notice is a transient message shown above the list.
type Notice struct {
	Visible bool
	Message string
}
