package schedule

import "time"

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock creates timers. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock uses time.AfterFunc.
func RealClock() Clock { return realClock{} }
