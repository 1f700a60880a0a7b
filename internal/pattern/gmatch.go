package pattern

import "luacore/internal/value"

// Iterator is the lazy cursor behind string.gmatch: each call to Next
// advances past the previous match and reports the next capture tuple.
type Iterator struct {
	src, pat string
	pos      int
	lastEnd  int
}

// NewGMatch starts an iterator over every non-overlapping match of pat in
// src, scanning from the beginning.
func NewGMatch(src, pat string) *Iterator {
	return &Iterator{src: src, pat: pat, pos: 0, lastEnd: -1}
}

// Next returns the next match's captures, or ok=false once the string is
// exhausted. A zero-length match advances the scan position by one byte so
// the iterator always makes forward progress (§4.6).
func (it *Iterator) Next() (captures []value.Value, ok bool, err error) {
	anchor := false
	p := 0
	if len(it.pat) > 0 && it.pat[0] == '^' {
		anchor = true
		p = 1
	}
	for s := it.pos; s <= len(it.src); s++ {
		ms := &matchState{src: it.src, pat: it.pat}
		e, matchErr := ms.match(s, p)
		if matchErr != nil {
			return nil, false, matchErr
		}
		if e != -1 && e != it.lastEnd {
			it.pos = e
			it.lastEnd = e
			return ms.pushCaptures(s, e), true, nil
		}
		if anchor {
			break
		}
	}
	it.pos = len(it.src) + 1
	return nil, false, nil
}
