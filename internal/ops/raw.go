package ops

import (
	"luacore/internal/errs"
	"luacore/internal/value"
)

// RawEqual implements rawequal(a,b): identity/value comparison with no
// __eq dispatch (§4.3: "raw* operations bypass metamethods entirely").
func RawEqual(a, b value.Value) bool {
	return value.RawEqual(a, b)
}

// RawLen implements rawlen(v): works on String or Table only, never
// consults __len.
func RawLen(v value.Value) (value.Value, error) {
	switch x := v.(type) {
	case value.String:
		return value.Int(int64(len(x.S))), nil
	case *value.Table:
		return value.Int(x.Len()), nil
	default:
		return nil, errs.TypeError("get length of", value.TypeName(v))
	}
}

// RawGet implements rawget(t,k): direct table lookup with no __index.
func RawGet(t *value.Table, k value.Value) (value.Value, error) {
	if reason, bad := value.KeyError(k); bad {
		return nil, errs.New(errs.TableKey, "%s", reason)
	}
	return t.RawGet(k), nil
}

// RawSet implements rawset(t,k,v): direct table store with no __newindex.
func RawSet(t *value.Table, k, v value.Value) error {
	if err := t.RawSet(k, v); err != nil {
		return errs.New(errs.TableKey, "%s", err.Error())
	}
	return nil
}
