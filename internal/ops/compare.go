package ops

import (
	"math"

	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/value"
)

// Eq implements a == b (§4.3/§4.4): numeric by mathematical value, string
// by bytes, Table/UserData via __eq when same kind, everything else by
// identity.
func Eq(a, b value.Value) (bool, error) {
	return meta.Eq(a, b)
}

// Lt implements a < b; Le implements a <= b (§4.4). a > b and a >= b are
// defined in terms of these by swapping operands, done by the caller
// (spec §4.3: "a > b ≡ b < a; a >= b ≡ b <= a").
func Lt(a, b value.Value) (bool, error) {
	if r, ok, isNaN := numericLess(a, b); ok {
		return r && !isNaN, nil
	}
	if as, aok := a.(value.String); aok {
		if bs, bok := b.(value.String); bok {
			return as.S < bs.S, nil
		}
	}
	if r, handled, err := meta.Lt(a, b); handled {
		return r, err
	}
	return false, mixedCompareError(a, b)
}

func Le(a, b value.Value) (bool, error) {
	if lessOrEq, ok, isNaN := numericLessEq(a, b); ok {
		return lessOrEq && !isNaN, nil
	}
	if as, aok := a.(value.String); aok {
		if bs, bok := b.(value.String); bok {
			return as.S <= bs.S, nil
		}
	}
	if r, handled, err := meta.Le(a, b); handled {
		return r, err
	}
	return false, mixedCompareError(a, b)
}

func mixedCompareError(a, b value.Value) error {
	ta, tb := value.TypeName(a), value.TypeName(b)
	if ta == tb {
		return errs.New(errs.TypeMismatch, "attempt to compare two %s values", ta)
	}
	return errs.New(errs.TypeMismatch, "attempt to compare %s with %s", ta, tb)
}

// numericLess reports a<b for two numbers, handling Integer/Float mixes
// by exact mathematical comparison rather than lossy float promotion
// (§4.4: "treating the float as an approximation" only where unavoidable,
// e.g. 2^53+1 vs 2^53+1.0 must still compare correctly).
func numericLess(a, b value.Value) (less bool, ok bool, isNaN bool) {
	ai, aIsInt := a.(value.Integer)
	bi, bIsInt := b.(value.Integer)
	af, aIsFloat := a.(value.Float)
	bf, bIsFloat := b.(value.Float)
	switch {
	case aIsInt && bIsInt:
		return ai.I < bi.I, true, false
	case aIsFloat && bIsFloat:
		return af.F < bf.F, true, math.IsNaN(af.F) || math.IsNaN(bf.F)
	case aIsInt && bIsFloat:
		c, nan := compareIntFloat(ai.I, bf.F)
		return c < 0, true, nan
	case aIsFloat && bIsInt:
		c, nan := compareIntFloat(bi.I, af.F)
		return c > 0, true, nan
	default:
		return false, false, false
	}
}

func numericLessEq(a, b value.Value) (lessEq bool, ok bool, isNaN bool) {
	ai, aIsInt := a.(value.Integer)
	bi, bIsInt := b.(value.Integer)
	af, aIsFloat := a.(value.Float)
	bf, bIsFloat := b.(value.Float)
	switch {
	case aIsInt && bIsInt:
		return ai.I <= bi.I, true, false
	case aIsFloat && bIsFloat:
		return af.F <= bf.F, true, math.IsNaN(af.F) || math.IsNaN(bf.F)
	case aIsInt && bIsFloat:
		c, nan := compareIntFloat(ai.I, bf.F)
		return c <= 0, true, nan
	case aIsFloat && bIsInt:
		c, nan := compareIntFloat(bi.I, af.F)
		return c >= 0, true, nan
	default:
		return false, false, false
	}
}

// compareIntFloat returns -1/0/1 for i compared to f, exact even when f is
// far outside i64's precise range, plus whether f was NaN (NaN compares
// false against everything, handled by the caller).
func compareIntFloat(i int64, f float64) (cmp int, isNaN bool) {
	if math.IsNaN(f) {
		return 0, true
	}
	const maxIntAsFloat = 9223372036854775808.0 // 2^63
	if f >= maxIntAsFloat {
		return -1, false
	}
	if f < -maxIntAsFloat {
		return 1, false
	}
	ff := math.Floor(f)
	fi := int64(ff)
	switch {
	case i < fi:
		return -1, false
	case i > fi:
		return 1, false
	case f == ff:
		return 0, false
	default:
		// i == floor(f) < f
		return -1, false
	}
}

// NumericEqual implements the numeric half of §3(i): "Integer and Float
// numerically equal if the float exactly represents the integer."
func NumericEqual(a, b value.Value) (bool, bool) {
	if !value.IsNumber(a) || !value.IsNumber(b) {
		return false, false
	}
	return value.RawEqual(a, b), true
}
