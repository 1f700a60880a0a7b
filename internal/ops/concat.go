package ops

import (
	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/value"
)

// Concat implements a .. b (§4.4): operands must each be a String or a
// number (converted via the same textual form as tostring) or carry
// __concat. Chained concatenation (a .. b .. c) is right-associative; the
// caller builds that by folding Concat right-to-left, which this function
// assumes nothing about (it only handles one pair at a time).
func Concat(a, b value.Value) (value.Value, error) {
	as, aok := concatOperand(a)
	bs, bok := concatOperand(b)
	if aok && bok {
		return value.Str(as + bs), nil
	}

	if res, handled, err := meta.ConcatDispatch(a, b); handled {
		return res, err
	}

	bad := a
	if aok {
		bad = b
	}
	return nil, errs.TypeError("concatenate", value.TypeName(bad))
}

func concatOperand(v value.Value) (string, bool) {
	switch x := v.(type) {
	case value.String:
		return x.S, true
	case value.Integer, value.Float:
		return value.ToDisplayString(x), true
	default:
		return "", false
	}
}

// ConcatAll right-folds Concat across operands, matching §4.4's
// right-to-left associativity for a chain like a..b..c.
func ConcatAll(vs []value.Value) (value.Value, error) {
	if len(vs) == 0 {
		return value.Str(""), nil
	}
	acc := vs[len(vs)-1]
	for i := len(vs) - 2; i >= 0; i-- {
		v, err := Concat(vs[i], acc)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}
