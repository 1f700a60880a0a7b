// Package value implements the Lua value representation (spec §3, §4.1):
// a tagged union of Nil, Boolean, Integer, Float, String, Table, Function,
// UserData, LightUserData and Thread, plus the truthiness/equality rules
// and numeric coercions shared by every other component.
//
// Table (spec §4.2, the raw array+hash container) also lives in this
// package rather than its own: Table instances are Values, and keeping the
// tagged union and its aggregate variant together avoids an import cycle
// between "the union" and "one of its branches" — the same choice the
// teacher corpus makes by keeping every heap value kind (StringObj,
// ArrayObj, MapObj, ClassObj, FiberObj) inside one value.go.
package value

import (
	"math"
)

// Kind identifies which branch of the tagged union a Value occupies.
type Kind int

const (
	KindNil Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindTable
	KindFunction
	KindUserData
	KindLightUserData
	KindThread
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBoolean:
		return "boolean"
	case KindInteger, KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindUserData, KindLightUserData:
		return "userdata"
	case KindThread:
		return "thread"
	default:
		return "unknown"
	}
}

// Value is implemented by every Lua value kind. It is sealed: the only way
// to satisfy it from outside this package is to embed Embed, which is how
// internal/coroutine's Thread type and an executor's UserFunction-alike
// closures join the union without this package importing them back.
type Value interface {
	Kind() Kind
	isValue()
}

// Embed is embedded by out-of-package types (coroutine threads, userdata
// payloads, executor closures) that need to satisfy Value.
type Embed struct{}

func (Embed) isValue() {}

// Nil is the unique Nil value.
type Nil struct{ Embed }

func (Nil) Kind() Kind { return KindNil }

// NilValue is the canonical Nil instance; Nil carries no state so every
// caller may share it.
var NilValue Value = Nil{}

// Boolean wraps a bool.
type Boolean struct {
	Embed
	B bool
}

func (Boolean) Kind() Kind { return KindBoolean }

// True and False are the canonical Boolean instances.
var (
	True  Value = Boolean{B: true}
	False Value = Boolean{B: false}
)

// Bool returns the canonical Boolean Value for b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Integer wraps a signed 64-bit integer.
type Integer struct {
	Embed
	I int64
}

func (Integer) Kind() Kind { return KindInteger }

// Int constructs an Integer Value.
func Int(i int64) Value { return Integer{I: i} }

const (
	MaxInteger int64 = math.MaxInt64
	MinInteger int64 = math.MinInt64
)

// Float wraps an IEEE 754 double.
type Float struct {
	Embed
	F float64
}

func (Float) Kind() Kind { return KindFloat }

// Flt constructs a Float Value.
func Flt(f float64) Value { return Float{F: f} }

// String wraps an immutable byte sequence. Equality and length are
// byte-wise (§3): Go's native string comparison and len() already have
// exactly these semantics, so String is a thin wrapper rather than a
// []byte, matching how the pack's Lua implementations represent strings.
type String struct {
	Embed
	S string
}

func (String) Kind() Kind { return KindString }

// Str constructs a String Value.
func Str(s string) Value { return String{S: s} }

// LightUserData is a raw host pointer with no metatable (§3).
type LightUserData struct {
	Embed
	Ptr uintptr
}

func (LightUserData) Kind() Kind { return KindLightUserData }

// UserData is an opaque host object that may carry a metatable.
type UserData struct {
	Embed
	Data      any
	metatable *Table
}

func (*UserData) Kind() Kind { return KindUserData }

func (u *UserData) Metatable() *Table      { return u.metatable }
func (u *UserData) SetMetatable(t *Table)  { u.metatable = t }

// NewUserData wraps an arbitrary host payload.
func NewUserData(data any) *UserData {
	return &UserData{Data: data}
}

// Attribute is the declared discipline of a Variable (§3, §4.8).
type Attribute int

const (
	AttribNone Attribute = iota
	AttribConst
	AttribClose
)

// Variable is a named slot holding a Value plus an attribute (§3). It is
// defined here, not in internal/env, so that UserFunction can capture
// Variables as upvalues without creating an import cycle between the
// value package and the environment package that manages scopes of them.
type Variable struct {
	Value   Value
	Attrib  Attribute
	closed  bool
}

// Get reads the variable, failing if it has been closed (§4.8).
func (v *Variable) Get() (Value, bool) {
	if v.closed {
		return nil, false
	}
	return v.Value, true
}

// Set writes the variable, failing if it is Const or has been closed.
func (v *Variable) Set(val Value) bool {
	if v.closed || v.Attrib == AttribConst {
		return false
	}
	v.Value = val
	return true
}

// IsClosed reports whether Close has been called on this variable.
func (v *Variable) IsClosed() bool { return v.closed }

// MarkClosed flips the variable to the closed state; further Get/Set fail.
// The caller (internal/env) is responsible for invoking __close first.
func (v *Variable) MarkClosed() { v.closed = true }

// NewVariable constructs a Variable with the given initial value and
// attribute.
func NewVariable(val Value, attrib Attribute) *Variable {
	return &Variable{Value: val, Attrib: attrib}
}

// IsTruthy implements §3(ii)/§4.4: only Nil and Boolean(false) are falsy.
func IsTruthy(v Value) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case Nil:
		return false
	case Boolean:
		return t.B
	default:
		return true
	}
}

// IsNumber reports whether v is Integer or Float (§4.1).
func IsNumber(v Value) bool {
	switch v.(type) {
	case Integer, Float:
		return true
	default:
		return false
	}
}

// TypeName returns the Lua type name of v, treating a nil Go interface as
// KindNil so callers need not special-case untyped nils from other
// packages.
func TypeName(v Value) string {
	if v == nil {
		return KindNil.String()
	}
	return v.Kind().String()
}

// RawEqual implements the identity/value-equality half of §3(i) — the part
// that does not consult __eq. Metamethod-aware equality lives in
// internal/meta.
func RawEqual(a, b Value) bool {
	if a == nil {
		a = NilValue
	}
	if b == nil {
		b = NilValue
	}
	switch x := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x.B == y.B
	case Integer:
		switch y := b.(type) {
		case Integer:
			return x.I == y.I
		case Float:
			return floatEqualsInt(y.F, x.I)
		default:
			return false
		}
	case Float:
		switch y := b.(type) {
		case Float:
			return x.F == y.F
		case Integer:
			return floatEqualsInt(x.F, y.I)
		default:
			return false
		}
	case String:
		y, ok := b.(String)
		return ok && x.S == y.S
	case *Table:
		y, ok := b.(*Table)
		return ok && x == y
	case *UserData:
		y, ok := b.(*UserData)
		return ok && x == y
	case LightUserData:
		y, ok := b.(LightUserData)
		return ok && x.Ptr == y.Ptr
	default:
		// Function and Thread (and any Embed-based out-of-package type)
		// compare by identity via the underlying pointer, which Go's ==
		// already gives us for pointer-shaped implementations.
		return a == b
	}
}

func floatEqualsInt(f float64, i int64) bool {
	if f != math.Trunc(f) {
		return false
	}
	if f < -9223372036854775808.0 || f >= 9223372036854775808.0 {
		return false
	}
	return int64(f) == i
}

// AsFloat promotes any number Value to float64 per §4.1 ("As number
// (float)"): lossless for magnitudes <= 2^53, standard rounding beyond.
func AsFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Integer:
		return float64(x.I), true
	case Float:
		return x.F, true
	default:
		return 0, false
	}
}

// AsInteger succeeds only if v is already Integer, or is a Float with an
// exact integral value in i64 range (§4.1 "As integer").
func AsInteger(v Value) (int64, bool) {
	switch x := v.(type) {
	case Integer:
		return x.I, true
	case Float:
		return FloatToExactInt(x.F)
	default:
		return 0, false
	}
}

// FloatToExactInt is the float-to-integer narrowing rule used by
// AsInteger, ToIntegerCoerce and NormalizeKey; the numconv package keeps
// its own copy of the same rule for its string-parsing path.
func FloatToExactInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	if f < -9223372036854775808.0 || f >= 9223372036854775808.0 {
		return 0, false
	}
	return int64(f), true
}
