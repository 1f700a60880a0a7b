package ops

import (
	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/value"
)

// Len implements the # operator (§4.4): byte count for String; for Table
// its __len if present, else a border; __len for anything else that
// provides it, else an error.
func Len(v value.Value) (value.Value, error) {
	switch x := v.(type) {
	case value.String:
		return value.Int(int64(len(x.S))), nil
	case *value.Table:
		if res, handled, err := meta.LenDispatch(x); handled {
			return res, err
		}
		return value.Int(x.Len()), nil
	default:
		if res, handled, err := meta.LenDispatch(v); handled {
			return res, err
		}
		return nil, errs.TypeError("get length of", value.TypeName(v))
	}
}
