package value

import (
	"unsafe"
	"weak"
)

// Table is the hybrid array+hash container of spec §3/§4.2: a dense array
// part for keys 1..N plus a hash part for everything else, an optional
// metatable, and an optional weak mode.
//
// The hash part is split into two indices rather than one map[Value]Value:
//
//   - strongHash indexes entries whose key is a primitive (string, number,
//     boolean) — these never participate in weak-key pruning (§4.2: "When
//     __mode contains 'k', hash keys that are Table/Function/UserData/
//     Thread do not contribute to reachability"; other key kinds are
//     unaffected).
//   - refHash indexes entries whose key is a reference type
//     (Table/Function/UserData/Thread), keyed by pointer identity rather
//     than by the Value itself, because a Go map[Value]V would retain the
//     key strongly in the map's own bucket — defeating weak-key semantics
//     before they even begin. When the table's mode includes "k", refHash
//     entries hold only a weak.Pointer-backed WeakRef for the key; the
//     live key is reconstituted from it on every access.
//
// The value side of either index can independently be held weakly (mode
// "v") through the same WeakRef mechanism, again only for reference-typed
// values.
type Table struct {
	Embed

	array []Value // array[i] is logical index i+1; never holds a trailing Nil

	strongHash map[Value]*entry
	refHash    map[uintptr]*entry
	order      []*entry // insertion order across both hash indices, for stable iteration

	metatable *Table
	mode      weakMode
	guard     Value // __metatable guard (spec §6); set makes SetMetatable fail
}

func (*Table) Kind() Kind { return KindTable }

type weakMode struct {
	key, val bool
}

func parseWeakMode(s string) weakMode {
	m := weakMode{}
	for _, r := range s {
		switch r {
		case 'k':
			m.key = true
		case 'v':
			m.val = true
		}
	}
	return m
}

func (m weakMode) String() string {
	switch {
	case m.key && m.val:
		return "kv"
	case m.key:
		return "k"
	case m.val:
		return "v"
	default:
		return ""
	}
}

type entry struct {
	keyRef WeakRef // set when key is weakly held
	key    Value   // set when key is held strongly (including non-reference keys)
	valRef WeakRef // set when value is weakly held
	val    Value   // set when value is held strongly
	live   bool    // cleared once pruned; order slice entries skip !live
}

func (e *entry) resolveKey() (Value, bool) {
	if e.keyRef != nil {
		return e.keyRef.Resolve()
	}
	return e.key, true
}

func (e *entry) resolveVal() (Value, bool) {
	if e.valRef != nil {
		return e.valRef.Resolve()
	}
	return e.val, true
}

// WeakRef is a handle that can be asked, at any later point, whether its
// referent is still alive and if so what it is.
type WeakRef interface {
	Resolve() (Value, bool)
}

// WeakRefable is implemented by every reference-typed Value kind capable
// of participating in a weak table: Table, UserData, BuiltinFunction,
// UserFunction in this package, and Thread implementations from
// internal/coroutine.
type WeakRefable interface {
	Value
	WeakIdentity() uintptr
	NewWeakRef() WeakRef
}

// Option configures a new Table.
type Option func(*Table)

// WithMode sets the weak mode ("", "k", "v", or "kv") per spec §3/§4.2.
func WithMode(mode string) Option {
	return func(t *Table) { t.mode = parseWeakMode(mode) }
}

// NewTable constructs an empty Table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		strongHash: make(map[Value]*entry),
		refHash:    make(map[uintptr]*entry),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Metatable returns the table's metatable, or nil.
func (t *Table) Metatable() *Table { return t.metatable }

// SetMetatableRaw installs mt as the table's metatable, bypassing the
// __metatable guard (used internally and by rawset-equivalent paths); the
// guard-respecting entry point lives in internal/meta.
func (t *Table) SetMetatableRaw(mt *Table) { t.metatable = mt }

// MetatableGuard returns the __metatable field's guard value, if any.
func (t *Table) MetatableGuard() (Value, bool) {
	if t.guard == nil {
		return nil, false
	}
	return t.guard, true
}

// SetMetatableGuard records the guard value read from the new metatable's
// __metatable field; internal/meta calls this when installing a
// metatable.
func (t *Table) SetMetatableGuard(v Value) { t.guard = v }

// Mode returns the table's weak-mode string ("", "k", "v", "kv").
func (t *Table) Mode() string { return t.mode.String() }

// WeakIdentity lets a Table itself be used as a weak key/value elsewhere.
func (t *Table) WeakIdentity() uintptr { return uintptr(unsafe.Pointer(t)) }

type tableWeakRef struct{ p weak.Pointer[Table] }

func (r tableWeakRef) Resolve() (Value, bool) {
	p := r.p.Value()
	if p == nil {
		return nil, false
	}
	return p, true
}

// NewWeakRef implements WeakRefable for Table.
func (t *Table) NewWeakRef() WeakRef { return tableWeakRef{p: weak.Make(t)} }

// isReference reports whether v is one of the four kinds eligible for
// weak-table pruning (§4.2).
func isReference(v Value) (WeakRefable, bool) {
	wr, ok := v.(WeakRefable)
	return wr, ok
}

// NormalizeKey applies the float->integer key normalization of §3/§4.2:
// a Float that is an integral value in i64 range must be normalized to
// Integer so t[1.0] and t[1] share a slot.
func NormalizeKey(k Value) Value {
	if f, ok := k.(Float); ok {
		if i, exact := FloatToExactInt(f.F); exact {
			return Integer{I: i}
		}
	}
	return k
}

// KeyError reports why k is an invalid table key (nil, or NaN), per §3.
func KeyError(k Value) (reason string, bad bool) {
	if k == nil {
		return "table index is nil", true
	}
	switch x := k.(type) {
	case Nil:
		return "table index is nil", true
	case Float:
		if x.F != x.F { // NaN
			return "table index is NaN", true
		}
	}
	return "", false
}

// RawGet implements §4.2 rawget(key): no metamethod involved.
func (t *Table) RawGet(k Value) Value {
	k = NormalizeKey(k)
	if i, ok := k.(Integer); ok && i.I >= 1 && int64(len(t.array)) >= i.I {
		v := t.array[i.I-1]
		if v == nil {
			return NilValue
		}
		return v
	}
	if e := t.lookup(k); e != nil {
		if v, ok := e.resolveVal(); ok {
			return v
		}
	}
	return NilValue
}

func (t *Table) lookup(k Value) *entry {
	if wr, ok := isReference(k); ok {
		e := t.refHash[wr.WeakIdentity()]
		if e == nil || !e.live {
			return nil
		}
		if _, alive := e.resolveKey(); !alive {
			e.live = false
			delete(t.refHash, wr.WeakIdentity())
			return nil
		}
		return e
	}
	e := t.strongHash[k]
	if e == nil || !e.live {
		return nil
	}
	return e
}

// RawSet implements §4.2 rawset(key, value): setting to Nil removes the
// key.
func (t *Table) RawSet(k, v Value) error {
	if reason, bad := KeyError(k); bad {
		return tableKeyErr(reason)
	}
	k = NormalizeKey(k)
	if v == nil {
		v = NilValue
	}

	if i, ok := k.(Integer); ok && i.I >= 1 {
		if int64(len(t.array)) >= i.I {
			idx := i.I - 1
			if _, isNil := v.(Nil); isNil {
				t.array[idx] = nil
				t.shrinkArray()
			} else {
				t.array[idx] = v
			}
			return nil
		}
		if i.I == int64(len(t.array))+1 {
			if _, isNil := v.(Nil); isNil {
				t.removeKey(k)
				return nil
			}
			t.array = append(t.array, v)
			t.migrateFromHash()
			return nil
		}
	}

	if _, isNil := v.(Nil); isNil {
		t.removeKey(k)
		return nil
	}
	t.store(k, v)
	return nil
}

func (t *Table) removeKey(k Value) {
	if wr, ok := isReference(k); ok {
		if e, found := t.refHash[wr.WeakIdentity()]; found {
			e.live = false
			delete(t.refHash, wr.WeakIdentity())
		}
		return
	}
	if e, found := t.strongHash[k]; found {
		e.live = false
		delete(t.strongHash, k)
	}
}

func (t *Table) store(k, v Value) {
	e := t.lookup(k)
	if e == nil {
		e = &entry{live: true}
		t.order = append(t.order, e)
		if wr, ok := isReference(k); ok {
			if t.mode.key {
				e.keyRef = wr.NewWeakRef()
			} else {
				e.key = k
			}
			t.refHash[wr.WeakIdentity()] = e
		} else {
			e.key = k
			t.strongHash[k] = e
		}
	}
	if wr, ok := isReference(v); ok && t.mode.val {
		e.valRef = wr.NewWeakRef()
		e.val = nil
	} else {
		e.val = v
		e.valRef = nil
	}
	t.maybeCompact()
}

// migrateFromHash pulls consecutive integer keys out of the hash part
// into the array part after an append makes them contiguous (§4.2 "Array/
// hash split... Implementations may resize freely").
func (t *Table) migrateFromHash() {
	for {
		next := Integer{I: int64(len(t.array)) + 1}
		e := t.lookup(next)
		if e == nil {
			return
		}
		v, ok := e.resolveVal()
		if !ok {
			t.removeKey(next)
			continue
		}
		t.removeKey(next)
		t.array = append(t.array, v)
	}
}

func (t *Table) shrinkArray() {
	for len(t.array) > 0 && t.array[len(t.array)-1] == nil {
		t.array = t.array[:len(t.array)-1]
	}
}

// maybeCompact drops the insertion-order slice's dead tombstones once they
// outnumber live entries, and — for weak-mode tables — prunes entries
// whose weak side has been collected. This is the "safe point" the spec
// grants implementations discretion over (§4.2, §5).
func (t *Table) maybeCompact() {
	if len(t.order) < 2*(len(t.strongHash)+len(t.refHash))+8 {
		return
	}
	t.Compact()
}

// Compact is the exported safe-point hook: prune dead weak entries and
// rebuild the order slice. Callers with a reference to a weak table may
// invoke it explicitly (e.g. between coroutine resumes); it otherwise
// runs automatically from Next and, once dead entries pile up, from
// RawSet (via maybeCompact).
func (t *Table) Compact() {
	fresh := t.order[:0]
	for _, e := range t.order {
		if !e.live {
			continue
		}
		if _, ok := e.resolveKey(); !ok {
			e.live = false
			continue
		}
		if _, ok := e.resolveVal(); !ok {
			e.live = false
			continue
		}
		fresh = append(fresh, e)
	}
	t.order = fresh
}

// Len implements the length operator (§4.2, §4.4): any valid border.
func (t *Table) Len() int64 {
	if len(t.array) > 0 || t.hashEmpty() {
		return int64(len(t.array))
	}
	// Hash-only table: unbound search for a border among integer keys,
	// mirroring luaH_getn's doubling-then-binary-search strategy.
	var i int64 = 0
	j := int64(1)
	for t.hasIntKey(j) {
		i = j
		if j > (MaxInteger / 2) {
			// degrade to linear scan to avoid overflow
			for t.hasIntKey(i + 1) {
				i++
			}
			return i
		}
		j *= 2
	}
	for j-i > 1 {
		m := (i + j) / 2
		if t.hasIntKey(m) {
			i = m
		} else {
			j = m
		}
	}
	return i
}

func (t *Table) hashEmpty() bool {
	return len(t.strongHash) == 0 && len(t.refHash) == 0
}

func (t *Table) hasIntKey(i int64) bool {
	e := t.lookup(Integer{I: i})
	if e == nil {
		return false
	}
	v, ok := e.resolveVal()
	if !ok {
		return false
	}
	_, isNil := v.(Nil)
	return !isNil
}

// HasKey reports whether k has a non-nil value, without distinguishing
// "absent" from "explicitly nil" (callers needing that distinction use
// RawGet's Nil result directly).
func (t *Table) HasKey(k Value) bool {
	_, isNil := t.RawGet(k).(Nil)
	return !isNil
}

// Next implements the stateless iteration primitive underlying pairs()
// (§C.4 of SPEC_FULL): given the previous key (Nil to start), returns the
// next (key, value) pair in the table's iteration order — array part
// first in index order, then the hash part in (stable) insertion order.
func (t *Table) Next(key Value) (Value, Value, bool) {
	t.Compact()
	if _, isNil := key.(Nil); isNil || key == nil {
		if idx, v, ok := t.firstArray(0); ok {
			return idx, v, true
		}
		return t.firstHash(0)
	}
	key = NormalizeKey(key)
	if i, ok := key.(Integer); ok && i.I >= 1 && i.I <= int64(len(t.array)) {
		if idx, v, ok := t.firstArray(int(i.I)); ok {
			return idx, v, true
		}
		return t.firstHash(0)
	}
	// Find key's position in the order slice and return the next live one.
	for pos, e := range t.order {
		ek, ok := e.resolveKey()
		if !ok || !RawEqual(ek, key) {
			continue
		}
		return t.firstHash(pos + 1)
	}
	return nil, nil, false
}

func (t *Table) firstArray(from int) (Value, Value, bool) {
	for i := from; i < len(t.array); i++ {
		if t.array[i] != nil {
			return Integer{I: int64(i + 1)}, t.array[i], true
		}
	}
	return nil, nil, false
}

func (t *Table) firstHash(from int) (Value, Value, bool) {
	for i := from; i < len(t.order); i++ {
		e := t.order[i]
		if !e.live {
			continue
		}
		k, ok := e.resolveKey()
		if !ok {
			continue
		}
		v, ok := e.resolveVal()
		if !ok {
			continue
		}
		return k, v, true
	}
	return nil, nil, false
}

// Each walks every live (key, value) pair in iteration order. It is a
// convenience for Go callers such as internal/table's Describe.
func (t *Table) Each(fn func(k, v Value) bool) {
	k, v, ok := t.Next(NilValue)
	for ok {
		if !fn(k, v) {
			return
		}
		k, v, ok = t.Next(k)
	}
}

// tableKeyErr is defined here (rather than importing internal/errs) to
// avoid value<->errs import direction debates; internal/table and
// internal/ops translate it into an *errs.Error at the boundary.
type TableKeyError string

func (e TableKeyError) Error() string { return string(e) }

func tableKeyErr(reason string) error { return TableKeyError(reason) }
