package ops

import (
	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/value"

	"golang.org/x/exp/constraints"
)

// BitOp identifies a binary bitwise operator for Bitwise.
type BitOp int

const (
	OpBAnd BitOp = iota
	OpBOr
	OpBXor
	OpShl
	OpShr
)

var bitMetamethod = map[BitOp]string{
	OpBAnd: meta.BAnd,
	OpBOr:  meta.BOr,
	OpBXor: meta.BXor,
	OpShl:  meta.Shl,
	OpShr:  meta.Shr,
}

// toBitInteger coerces v to Integer under the strict "as integer" rule
// (§4.4: "Float inputs that are not exact integers raise an error"),
// including the string forms §4.1/§4.5 already define for ToIntegerCoerce.
func toBitInteger(v value.Value) (int64, bool) {
	return value.ToIntegerCoerce(v)
}

// Bitwise implements &, |, ~ (binary xor), <<, >> (§4.4): both operands
// coerce to Integer; shifts by a count with |count| >= 64 yield zero
// rather than erroring, per spec. Right shift is always logical.
func Bitwise(op BitOp, a, b value.Value) (value.Value, error) {
	ai, aok := toBitInteger(a)
	bi, bok := toBitInteger(b)
	if aok && bok {
		return value.Int(bitApply(op, ai, bi)), nil
	}

	if res, handled, err := meta.BinaryArith(bitMetamethod[op], a, b); handled {
		return res, err
	}

	bad := a
	if aok {
		bad = b
	}
	return nil, errs.TypeError("perform bitwise operation on", value.TypeName(bad))
}

func bitApply(op BitOp, a, b int64) int64 {
	switch op {
	case OpBAnd:
		return a & b
	case OpBOr:
		return a | b
	case OpBXor:
		return a ^ b
	case OpShl:
		return shiftLeft(a, b)
	case OpShr:
		return shiftRight(a, b)
	}
	return 0
}

// clampShift reports whether n is a shift count within (-64, 64); outside
// that range every shift result is zero (§4.4).
func clampShift[T constraints.Signed](n T) bool {
	return n > -64 && n < 64
}

func shiftLeft(a, n int64) int64 {
	if !clampShift(n) {
		return 0
	}
	if n >= 0 {
		return int64(uint64(a) << uint(n))
	}
	return int64(uint64(a) >> uint(-n))
}

func shiftRight(a, n int64) int64 {
	if !clampShift(n) {
		return 0
	}
	if n >= 0 {
		return int64(uint64(a) >> uint(n))
	}
	return int64(uint64(a) << uint(-n))
}

// BAnd, BOr, BXor, Shl, Shr are the named entry points for §6.
func BAnd(a, b value.Value) (value.Value, error) { return Bitwise(OpBAnd, a, b) }
func BOr(a, b value.Value) (value.Value, error)  { return Bitwise(OpBOr, a, b) }
func BXor(a, b value.Value) (value.Value, error) { return Bitwise(OpBXor, a, b) }
func Shl(a, b value.Value) (value.Value, error)  { return Bitwise(OpShl, a, b) }
func Shr(a, b value.Value) (value.Value, error)  { return Bitwise(OpShr, a, b) }

// BNot implements unary bitwise-not (§4.3/§4.4).
func BNot(a value.Value) (value.Value, error) {
	if ai, ok := toBitInteger(a); ok {
		return value.Int(^ai), nil
	}
	if res, handled, err := meta.UnaryArith(meta.BNot, a); handled {
		return res, err
	}
	return nil, errs.TypeError("perform bitwise operation on", value.TypeName(a))
}
