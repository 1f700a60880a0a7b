// Package ops implements the arithmetic/compare/concat/length/bitwise/
// logical entry points of spec §4.4, each consulting internal/meta before
// falling back to built-in behavior per §4.3's "every operation consults
// Metamethod Dispatch before falling back".
package ops

import (
	"math"

	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/value"
)

// BinOp identifies an arithmetic operator for Arith.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpMod
	OpPow
)

var metamethodName = map[BinOp]string{
	OpAdd:  meta.Add,
	OpSub:  meta.Sub,
	OpMul:  meta.Mul,
	OpDiv:  meta.Div,
	OpIDiv: meta.IDiv,
	OpMod:  meta.Mod,
	OpPow:  meta.Pow,
}

var opVerb = map[BinOp]string{
	OpAdd: "add", OpSub: "subtract", OpMul: "multiply",
	OpDiv: "divide", OpIDiv: "divide", OpMod: "perform modulo on", OpPow: "raise",
}

// Arith implements a binary arithmetic operation (§4.4): Integer operands
// stay Integer when possible; on i64 overflow both operands promote to
// Float and the operation retries. Division (/) and power (^) always
// produce Float. Non-numeric operands are coerced via tonumber before the
// metamethod search runs (SPEC_FULL §C.2); if neither coercion nor a
// metamethod resolves it, a TypeMismatch names the offending operand.
func Arith(op BinOp, a, b value.Value) (value.Value, error) {
	an, aok := value.ToNumber(a)
	bn, bok := value.ToNumber(b)
	if aok && bok {
		switch op {
		case OpIDiv:
			return idivChecked(an, bn)
		case OpMod:
			return modChecked(an, bn)
		}
		return arithNumeric(op, an, bn)
	}

	if res, handled, err := meta.BinaryArith(metamethodName[op], a, b); handled {
		return res, err
	}

	bad := a
	if aok {
		bad = b
	}
	return nil, errs.TypeError(opVerb[op], value.TypeName(bad))
}

func arithNumeric(op BinOp, a, b value.Value) (value.Value, error) {
	switch op {
	case OpDiv:
		af, _ := value.AsFloat(a)
		bf, _ := value.AsFloat(b)
		return value.Flt(af / bf), nil
	case OpPow:
		af, _ := value.AsFloat(a)
		bf, _ := value.AsFloat(b)
		return value.Flt(math.Pow(af, bf)), nil
	}

	ai, aIsInt := a.(value.Integer)
	bi, bIsInt := b.(value.Integer)
	if aIsInt && bIsInt {
		if v, overflow := intArith(op, ai.I, bi.I); !overflow {
			return v, nil
		}
		// §4.4: promote both to Float and retry.
	}

	af, _ := value.AsFloat(a)
	bf, _ := value.AsFloat(b)
	return floatArith(op, af, bf)
}

func intArith(op BinOp, a, b int64) (value.Value, bool) {
	switch op {
	case OpAdd:
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return nil, true
		}
		return value.Int(r), false
	case OpSub:
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return nil, true
		}
		return value.Int(r), false
	case OpMul:
		if a == 0 || b == 0 {
			return value.Int(0), false
		}
		if b == -1 && a == math.MinInt64 {
			return nil, true
		}
		r := a * b
		if r/b != a {
			return nil, true
		}
		return value.Int(r), false
	case OpIDiv:
		if b == 0 {
			// Signal "overflow" so the caller falls back to the Float
			// path, which yields IEEE inf/nan; genuine Integer division
			// by zero is rejected earlier by idivChecked.
			return nil, true
		}
		return value.Int(floorDivInt(a, b)), false
	case OpMod:
		if b == 0 {
			return nil, true
		}
		return value.Int(modInt(a, b)), false
	}
	return nil, false
}

func floatArith(op BinOp, a, b float64) (value.Value, error) {
	switch op {
	case OpAdd:
		return value.Flt(a + b), nil
	case OpSub:
		return value.Flt(a - b), nil
	case OpMul:
		return value.Flt(a * b), nil
	case OpIDiv:
		return value.Flt(math.Floor(a / b)), nil
	case OpMod:
		if b == 0 {
			return value.Flt(math.NaN()), nil
		}
		r := a - math.Floor(a/b)*b
		return value.Flt(r), nil
	}
	return nil, errs.New(errs.TypeMismatch, "unsupported arithmetic operator")
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func modInt(a, b int64) int64 {
	r := a % b
	if r != 0 && ((r < 0) != (b < 0)) {
		r += b
	}
	return r
}

// IDiv and Mod need integer-division-by-zero to raise rather than silently
// fall through to the float path (§4.4: "Division by zero on Integers
// raises an error"). Arith's numeric path calls these wrappers instead of
// arithNumeric directly for OpIDiv/OpMod when both operands are Integer.
func idivChecked(a, b value.Value) (value.Value, error) {
	ai, aIsInt := a.(value.Integer)
	bi, bIsInt := b.(value.Integer)
	if aIsInt && bIsInt {
		if bi.I == 0 {
			return nil, errs.New(errs.DivisionByZero, "attempt to perform 'n//0'")
		}
		if v, overflow := intArith(OpIDiv, ai.I, bi.I); !overflow {
			return v, nil
		}
	}
	af, _ := value.AsFloat(a)
	bf, _ := value.AsFloat(b)
	return floatArith(OpIDiv, af, bf)
}

func modChecked(a, b value.Value) (value.Value, error) {
	ai, aIsInt := a.(value.Integer)
	bi, bIsInt := b.(value.Integer)
	if aIsInt && bIsInt {
		if bi.I == 0 {
			return nil, errs.New(errs.DivisionByZero, "attempt to perform 'n%%0'")
		}
		if v, overflow := intArith(OpMod, ai.I, bi.I); !overflow {
			return v, nil
		}
	}
	af, _ := value.AsFloat(a)
	bf, _ := value.AsFloat(b)
	return floatArith(OpMod, af, bf)
}

// Add, Sub, Mul, Div, IDiv, Mod, Pow are the named entry points for
// external callers (§6); they route through Arith except IDiv/Mod, which
// need the integer-divide-by-zero check above.
func Add(a, b value.Value) (value.Value, error) { return Arith(OpAdd, a, b) }
func Sub(a, b value.Value) (value.Value, error) { return Arith(OpSub, a, b) }
func Mul(a, b value.Value) (value.Value, error) { return Arith(OpMul, a, b) }
func Div(a, b value.Value) (value.Value, error) { return Arith(OpDiv, a, b) }
func Pow(a, b value.Value) (value.Value, error) { return Arith(OpPow, a, b) }

func IDiv(a, b value.Value) (value.Value, error) {
	an, aok := value.ToNumber(a)
	bn, bok := value.ToNumber(b)
	if aok && bok {
		return idivChecked(an, bn)
	}
	if res, handled, err := meta.BinaryArith(meta.IDiv, a, b); handled {
		return res, err
	}
	bad := a
	if aok {
		bad = b
	}
	return nil, errs.TypeError("divide", value.TypeName(bad))
}

func Mod(a, b value.Value) (value.Value, error) {
	an, aok := value.ToNumber(a)
	bn, bok := value.ToNumber(b)
	if aok && bok {
		return modChecked(an, bn)
	}
	if res, handled, err := meta.BinaryArith(meta.Mod, a, b); handled {
		return res, err
	}
	bad := a
	if aok {
		bad = b
	}
	return nil, errs.TypeError("perform modulo on", value.TypeName(bad))
}

// Unm implements unary minus (§4.3/§4.4).
func Unm(a value.Value) (value.Value, error) {
	if n, ok := value.ToNumber(a); ok {
		switch x := n.(type) {
		case value.Integer:
			if x.I == value.MinInteger {
				return value.Flt(9223372036854775808.0), nil // overflow promotes to Float (§4.4)
			}
			return value.Int(-x.I), nil
		case value.Float:
			return value.Flt(-x.F), nil
		}
	}
	if res, handled, err := meta.UnaryArith(meta.Unm, a); handled {
		return res, err
	}
	return nil, errs.TypeError("perform arithmetic on", value.TypeName(a))
}
