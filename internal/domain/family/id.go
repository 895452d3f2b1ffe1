package family

import (
	"strconv"
	"sync/atomic"
	"time"
)

var lastID atomic.Int64

// NewMemberID returns an id of the form m-<unix millis>. Two calls within the
// same millisecond still get distinct ids: the clock value is bumped past the
// last issued one.
func NewMemberID() string {
	return "m-" + strconv.FormatInt(nextStamp(time.Now().UnixMilli()), 10)
}

func nextStamp(now int64) int64 {
	for {
		prev := lastID.Load()
		next := now
		if next <= prev {
			next = prev + 1
		}
		if lastID.CompareAndSwap(prev, next) {
			return next
		}
	}
}
