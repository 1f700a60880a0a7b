// Package meta implements metamethod resolution and dispatch (spec §4.3):
// for every operation that can be overridden, look up a named function
// slot on the operand(s)' metatable(s) and, if present, invoke it with the
// correctly ordered arguments.
package meta

import (
	"luacore/internal/errs"
	"luacore/internal/value"
)

// Names of the metamethod slots, per the §4.3 table.
const (
	Add      = "__add"
	Sub      = "__sub"
	Mul      = "__mul"
	Div      = "__div"
	IDiv     = "__idiv"
	Mod      = "__mod"
	Pow      = "__pow"
	Unm      = "__unm"
	Concat   = "__concat"
	Len      = "__len"
	EqMM     = "__eq"
	LtMM     = "__lt"
	LeMM     = "__le"
	BAnd     = "__band"
	BOr      = "__bor"
	BXor     = "__bxor"
	Shl      = "__shl"
	Shr      = "__shr"
	BNot     = "__bnot"
	Index    = "__index"
	NewIndex = "__newindex"
	Call     = "__call"
	ToStringMM = "__tostring"
	Pairs    = "__pairs"
	CloseMM  = "__close"
	GC       = "__gc"
	Mode     = "__mode"
	MetaGuard = "__metatable"
)

// Metatable returns v's metatable, if v is a kind that can carry one
// (Table or UserData per §3; every other kind has no metatable of its own
// in this core).
func Metatable(v value.Value) *value.Table {
	switch x := v.(type) {
	case *value.Table:
		return x.Metatable()
	case *value.UserData:
		return x.Metatable()
	default:
		return nil
	}
}

// Lookup fetches the raw value stored under name in v's metatable, if any.
func Lookup(v value.Value, name string) (value.Value, bool) {
	mt := Metatable(v)
	if mt == nil {
		return nil, false
	}
	res := mt.RawGet(value.Str(name))
	if _, isNil := res.(value.Nil); isNil {
		return nil, false
	}
	return res, true
}

func asCallable(v value.Value) (value.Callable, bool) {
	c, ok := v.(value.Callable)
	return c, ok
}

func invoke(fn value.Value, args []value.Value) ([]value.Value, error) {
	c, ok := asCallable(fn)
	if !ok {
		return nil, errs.TypeError("call", value.TypeName(fn))
	}
	return c.Call(args)
}

func invoke1(fn value.Value, args []value.Value) (value.Value, error) {
	res, err := invoke(fn, args)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return value.NilValue, nil
	}
	return res[0], nil
}

// SetMetatable installs mt on t, honoring the __metatable guard (§6): if
// the current metatable has a guard, the call fails.
func SetMetatable(t *value.Table, mt *value.Table) error {
	if cur := t.Metatable(); cur != nil {
		if _, guarded := t.MetatableGuard(); guarded {
			return errs.New(errs.TypeMismatch, "cannot change a protected metatable")
		}
	}
	t.SetMetatableRaw(mt)
	if mt != nil {
		if guard := mt.RawGet(value.Str(MetaGuard)); !isNil(guard) {
			t.SetMetatableGuard(guard)
		} else {
			t.SetMetatableGuard(nil)
		}
	} else {
		t.SetMetatableGuard(nil)
	}
	return nil
}

// GetMetatableGuarded implements getmetatable(): returns the guard value
// in place of the real metatable when one is set (§6).
func GetMetatableGuarded(v value.Value) value.Value {
	mt := Metatable(v)
	if mt == nil {
		return value.NilValue
	}
	if t, isTable := v.(*value.Table); isTable {
		if guard, ok := t.MetatableGuard(); ok {
			return guard
		}
	}
	return mt
}

func isNil(v value.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(value.Nil)
	return ok
}

// ---- Indexing (§4.3 __index / __newindex) ----

// GetIndex implements t[k] with __index chaining: a table or userdata's
// own entry wins; on miss, __index is consulted, which may itself be a
// function (called with t, k) or another table (chased recursively).
func GetIndex(t value.Value, k value.Value) (value.Value, error) {
	for depth := 0; depth < 100; depth++ {
		if tbl, ok := t.(*value.Table); ok {
			raw := tbl.RawGet(k)
			if !isNil(raw) {
				return raw, nil
			}
		} else if _, ok := t.(*value.UserData); !ok {
			return nil, errs.TypeError("index", value.TypeName(t))
		}

		idx, found := Lookup(t, Index)
		if !found {
			if _, ok := t.(*value.Table); ok {
				return value.NilValue, nil
			}
			return nil, errs.TypeError("index", value.TypeName(t))
		}
		if c, ok := asCallable(idx); ok {
			res, err := c.Call([]value.Value{t, k})
			if err != nil {
				return nil, err
			}
			if len(res) == 0 {
				return value.NilValue, nil
			}
			return res[0], nil
		}
		// __index is a table: chase it.
		t = idx
	}
	return nil, errs.New(errs.TypeMismatch, "'__index' chain too long; possible loop")
}

// SetIndex implements t[k] = v with __newindex chaining.
func SetIndex(t value.Value, k, v value.Value) error {
	for depth := 0; depth < 100; depth++ {
		tbl, isTable := t.(*value.Table)
		if isTable && tbl.HasKey(k) {
			return tbl.RawSet(k, v)
		}

		ni, found := Lookup(t, NewIndex)
		if !found {
			if isTable {
				return tbl.RawSet(k, v)
			}
			return errs.TypeError("index", value.TypeName(t))
		}
		if c, ok := asCallable(ni); ok {
			_, err := c.Call([]value.Value{t, k, v})
			return err
		}
		// __newindex is a table: chase it.
		t = ni
	}
	return errs.New(errs.TypeMismatch, "'__newindex' chain too long; possible loop")
}

// ---- Arithmetic / bitwise (§4.3) ----

// BinaryArith looks up name on a's metatable, else b's, per the §4.3
// search order. ok is false when neither operand provides the method, in
// which case the caller (internal/ops) applies built-in numeric behavior
// or raises its own type error.
func BinaryArith(name string, a, b value.Value) (result value.Value, ok bool, err error) {
	if fn, found := Lookup(a, name); found {
		v, e := invoke1(fn, []value.Value{a, b})
		return v, true, e
	}
	if fn, found := Lookup(b, name); found {
		v, e := invoke1(fn, []value.Value{a, b})
		return v, true, e
	}
	return nil, false, nil
}

// UnaryArith looks up name (e.g. __unm, __bnot) on a's metatable only.
func UnaryArith(name string, a value.Value) (result value.Value, ok bool, err error) {
	if fn, found := Lookup(a, name); found {
		v, e := invoke1(fn, []value.Value{a, a})
		return v, true, e
	}
	return nil, false, nil
}

// ---- Comparison (§4.3) ----

// Eq implements a == b's metamethod-aware half: §4.3 requires both
// operands be of the SAME primary kind and at least one carry __eq;
// identity equality always short-circuits to true without consulting
// __eq at all.
func Eq(a, b value.Value) (bool, error) {
	if value.RawEqual(a, b) {
		return true, nil
	}
	if !sameEqKind(a, b) {
		return false, nil
	}
	fn, found := Lookup(a, EqMM)
	if !found {
		fn, found = Lookup(b, EqMM)
	}
	if !found {
		return false, nil
	}
	res, err := invoke1(fn, []value.Value{a, b})
	if err != nil {
		return false, err
	}
	return value.IsTruthy(res), nil
}

func sameEqKind(a, b value.Value) bool {
	_, at := a.(*value.Table)
	_, bt := b.(*value.Table)
	if at && bt {
		return true
	}
	_, au := a.(*value.UserData)
	_, bu := b.(*value.UserData)
	return au && bu
}

// Lt implements a < b (§4.3/§4.4): a > b is defined as b < a by the
// caller, not here.
func Lt(a, b value.Value) (result bool, handled bool, err error) {
	fn, found := Lookup(a, LtMM)
	if !found {
		fn, found = Lookup(b, LtMM)
	}
	if !found {
		return false, false, nil
	}
	res, err := invoke1(fn, []value.Value{a, b})
	if err != nil {
		return false, true, err
	}
	return value.IsTruthy(res), true, nil
}

// Le implements a <= b.
func Le(a, b value.Value) (result bool, handled bool, err error) {
	fn, found := Lookup(a, LeMM)
	if !found {
		fn, found = Lookup(b, LeMM)
	}
	if !found {
		return false, false, nil
	}
	res, err := invoke1(fn, []value.Value{a, b})
	if err != nil {
		return false, true, err
	}
	return value.IsTruthy(res), true, nil
}

// ---- Concat / Len (§4.3/§4.4) ----

// ConcatDispatch tries __concat on a then b, per §4.3 ("left first, else
// right", same as arithmetic).
func ConcatDispatch(a, b value.Value) (value.Value, bool, error) {
	return BinaryArith(Concat, a, b)
}

func LenDispatch(a value.Value) (value.Value, bool, error) {
	if fn, found := Lookup(a, Len); found {
		v, err := invoke1(fn, []value.Value{a})
		return v, true, err
	}
	return nil, false, nil
}

// ---- Call (§4.3 __call) ----

// CallValue invokes v: directly if it is Callable, else via __call(v,
// args...).
func CallValue(v value.Value, args []value.Value) ([]value.Value, error) {
	if c, ok := asCallable(v); ok {
		return c.Call(args)
	}
	fn, found := Lookup(v, Call)
	if !found {
		return nil, errs.TypeError("call", value.TypeName(v))
	}
	callArgs := make([]value.Value, 0, len(args)+1)
	callArgs = append(callArgs, v)
	callArgs = append(callArgs, args...)
	return invoke(fn, callArgs)
}

// ---- tostring / pairs / close (§4.3) ----

// ToString honors __tostring; ok is false when absent, in which case the
// caller falls back to value.ToDisplayString.
func ToString(v value.Value) (string, bool, error) {
	fn, found := Lookup(v, ToStringMM)
	if !found {
		return "", false, nil
	}
	res, err := invoke1(fn, []value.Value{v})
	if err != nil {
		return "", true, err
	}
	s, ok := res.(value.String)
	if !ok {
		return "", true, errs.New(errs.TypeMismatch, "'__tostring' must return a string")
	}
	return s.S, true, nil
}

// PairsIterator honors __pairs, returning its iterator/state/control
// triple (§4.3: "returns iterator triple"). ok is false when absent.
func PairsIterator(v value.Value) (iter, state, control value.Value, ok bool, err error) {
	fn, found := Lookup(v, Pairs)
	if !found {
		return nil, nil, nil, false, nil
	}
	res, err := invoke(fn, []value.Value{v})
	if err != nil {
		return nil, nil, nil, true, err
	}
	get := func(i int) value.Value {
		if i < len(res) {
			return res[i]
		}
		return value.NilValue
	}
	return get(0), get(1), get(2), true, nil
}

// Close invokes __close(v, errVal) for a to-be-closed variable's value on
// scope exit (§4.3/§4.8/§7). A missing __close is not an error: the
// first result is false and nothing is invoked (internal/env rejects a
// Close-attributed value without __close at declaration time via
// HasClose). Any error __close itself raises is returned, not re-raised,
// so the caller can log and swallow it per spec.
func Close(v value.Value, errVal value.Value) (bool, error) {
	fn, found := Lookup(v, CloseMM)
	if !found {
		return false, nil
	}
	_, err := invoke(fn, []value.Value{v, errVal})
	return true, err
}

// HasClose reports whether v carries a __close metamethod, used to
// validate a Close-attributed variable at the point it is bound.
func HasClose(v value.Value) bool {
	_, found := Lookup(v, CloseMM)
	return found
}
