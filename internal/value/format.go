package value

import "luacore/internal/numconv"

// ToDisplayString implements the default (metamethod-free) tostring
// conversion used by concatenation coercion and error messages (§4.4
// "Number textual form"). Table/Function/Thread/UserData render as
// "<type>: <address-ish identity>", matching Lua's default tostring for
// values without a __tostring metamethod; callers wanting __tostring
// dispatch go through internal/meta instead.
func ToDisplayString(v Value) string {
	switch x := v.(type) {
	case Nil:
		return "nil"
	case Boolean:
		if x.B {
			return "true"
		}
		return "false"
	case Integer:
		return numconv.FormatInteger(x.I)
	case Float:
		return numconv.FormatFloat(x.F)
	case String:
		return x.S
	default:
		return v.Kind().String() + ": 0x" + identityHex(v)
	}
}

// ToNumber implements §4.4/§4.5's numeric coercion used by arithmetic on
// strings: numbers pass through, strings are parsed.
func ToNumber(v Value) (Value, bool) {
	switch x := v.(type) {
	case Integer, Float:
		return x, true
	case String:
		p, ok := numconv.ParseNumber(x.S)
		if !ok {
			return nil, false
		}
		if p.IsInt {
			return Integer{I: p.Int}, true
		}
		return Float{F: p.Float}, true
	default:
		return nil, false
	}
}

// ToIntegerCoerce implements §4.5 "To integer": Integer as-is, an exactly
// integral Float, or a string that parses to an integral outcome.
func ToIntegerCoerce(v Value) (int64, bool) {
	switch x := v.(type) {
	case Integer:
		return x.I, true
	case Float:
		return FloatToExactInt(x.F)
	case String:
		return numconv.ParseInteger(x.S)
	default:
		return 0, false
	}
}

func identityHex(v Value) string {
	const hexDigits = "0123456789abcdef"
	var addr uintptr
	switch x := v.(type) {
	case *Table:
		addr = x.WeakIdentity()
	case *UserData:
		addr = x.WeakIdentity()
	case *BuiltinFunction:
		addr = x.WeakIdentity()
	case *UserFunction:
		addr = x.WeakIdentity()
	case LightUserData:
		addr = x.Ptr
	default:
		if wr, ok := v.(WeakRefable); ok {
			addr = wr.WeakIdentity()
		}
	}
	if addr == 0 {
		return "0"
	}
	buf := make([]byte, 0, 16)
	for addr > 0 {
		buf = append([]byte{hexDigits[addr%16]}, buf...)
		addr /= 16
	}
	return string(buf)
}
