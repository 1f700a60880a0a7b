package pattern

import "luacore/internal/value"

// clampInit resolves a 1-based, possibly negative starting index (Lua's
// init convention: negative counts from the end, 0 behaves like 1) into a
// 1-based index in [1, length+1].
func clampInit(init, length int) int {
	if init < 0 {
		init = length + init + 1
		if init < 1 {
			init = 1
		}
	} else if init == 0 {
		init = 1
	}
	if init > length+1 {
		init = length + 1
	}
	return init
}

// doMatch tries pat against src starting at the 0-based offset s0,
// advancing one byte at a time unless pat is anchored with a leading '^'.
// It returns 0-based [start, end) bounds of the first successful match.
func doMatch(src, pat string, s0 int) (start, end int, ms *matchState, err error) {
	anchor := false
	p := 0
	if len(pat) > 0 && pat[0] == '^' {
		anchor = true
		p = 1
	}
	for s := s0; ; s++ {
		m := &matchState{src: src, pat: pat}
		e, matchErr := m.match(s, p)
		if matchErr != nil {
			return 0, 0, nil, matchErr
		}
		if e != -1 {
			return s, e, m, nil
		}
		if anchor || s >= len(src) {
			return -1, -1, nil, nil
		}
	}
}

// pushCaptures builds the capture list for a successful match spanning the
// 0-based range [s, e): the explicit captures in left-to-right order, or
// the whole match as a single synthetic capture when the pattern declared
// none.
func (ms *matchState) pushCaptures(s, e int) []value.Value {
	if ms.level == 0 {
		return []value.Value{value.Str(ms.src[s:e])}
	}
	return ms.captureList()
}

func (ms *matchState) captureList() []value.Value {
	caps := make([]value.Value, ms.level)
	for i := 0; i < ms.level; i++ {
		if ms.capLen[i] == capPosition {
			caps[i] = value.Int(int64(ms.capStart[i] + 1))
		} else {
			caps[i] = value.Str(ms.src[ms.capStart[i] : ms.capStart[i]+ms.capLen[i]])
		}
	}
	return caps
}

// Find implements string.find's pattern path (§4.6): 1-based inclusive
// start/end (an empty match reports end = start-1) plus any explicit
// captures. init follows Lua's 1-based, negative-from-end convention.
func Find(src, pat string, init int) (start, end int, captures []value.Value, ok bool, err error) {
	length := len(src)
	i := clampInit(init, length)
	s0 := i - 1
	if s0 > length {
		return 0, 0, nil, false, nil
	}
	s, e, ms, err := doMatch(src, pat, s0)
	if err != nil {
		return 0, 0, nil, false, err
	}
	if s == -1 {
		return 0, 0, nil, false, nil
	}
	return s + 1, e, ms.captureList(), true, nil
}

// Match implements string.match: the captures of the first match (or the
// whole match when the pattern has none), with no position information.
func Match(src, pat string, init int) (captures []value.Value, ok bool, err error) {
	length := len(src)
	i := clampInit(init, length)
	s0 := i - 1
	if s0 > length {
		return nil, false, nil
	}
	s, e, ms, err := doMatch(src, pat, s0)
	if err != nil {
		return nil, false, err
	}
	if s == -1 {
		return nil, false, nil
	}
	return ms.pushCaptures(s, e), true, nil
}
