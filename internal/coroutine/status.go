package coroutine

import "luacore/internal/value"

// CurrentRunning implements coroutine.running() (§4.7): "current" is
// whichever coroutine the caller (the not-yet-written executor/env layer)
// considers active, nil meaning the main thread. There is no
// goroutine-local notion of "current coroutine" here by design — the
// interpreter driving calls into this package is the one place that
// legitimately knows which thread issued a given call. Named apart from
// the Status constant Running, which this function must not shadow.
func CurrentRunning(current *Coroutine) (co value.Value, isMain bool) {
	if current == nil {
		return value.NilValue, true
	}
	return current, false
}

// IsYieldable implements coroutine.isyieldable(): true whenever execution
// is nested inside some non-main coroutine.
func IsYieldable(current *Coroutine) bool {
	return current != nil
}
