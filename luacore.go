// Package luacore is the embedding surface (§6): value construction,
// predicates, metatable-aware operations, raw table access, pattern
// matching and coroutine control, assembled from the internal/* packages
// that implement each piece. It deliberately stops short of a lexer,
// parser, bytecode format or executor — those consume this core, they are
// not part of it.
package luacore

import (
	"luacore/internal/coroutine"
	"luacore/internal/env"
	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/numconv"
	"luacore/internal/ops"
	"luacore/internal/pattern"
	"luacore/internal/table"
	"luacore/internal/value"
)

// ---- Value construction (§6) ----

type Value = value.Value

var Nil = value.NilValue

func Bool(b bool) Value        { return value.Bool(b) }
func Int(i int64) Value        { return value.Int(i) }
func Float(f float64) Value    { return value.Flt(f) }
func Str(s string) Value       { return value.Str(s) }
func NewTable() *value.Table   { return table.New() }
func NewWeakTable(mode string) *value.Table {
	return table.New(value.WithMode(mode))
}
func TableFromPairs(kv ...Value) (*value.Table, error) { return table.FromPairs(kv...) }

// DescribeTable renders a short human-readable size summary of t, for
// embedder diagnostics; it is never observable from Lua code itself.
func DescribeTable(t *value.Table) string { return table.Describe(t) }

// NewFunction wraps a Go function as a callable Lua value.
func NewFunction(name string, fn func([]Value) ([]Value, error)) Value {
	return value.NewBuiltin(name, fn)
}

// ---- Predicates / accessors (§6) ----

func IsTruthy(v Value) bool   { return value.IsTruthy(v) }
func IsNumber(v Value) bool   { return value.IsNumber(v) }
func TypeName(v Value) string { return value.TypeName(v) }

func ToNumber(v Value) (Value, bool)          { return value.ToNumber(v) }
func ToIntegerCoerce(v Value) (int64, bool)   { return value.ToIntegerCoerce(v) }
func AsFloat(v Value) (float64, bool)         { return value.AsFloat(v) }
func AsInteger(v Value) (int64, bool)         { return value.AsInteger(v) }
func ToDisplayString(v Value) string          { return value.ToDisplayString(v) }
func ToString(v Value) (string, error)        { return ops.ToString(v) }
func FormatFloat(f float64) string            { return numconv.FormatFloat(f) }

// ---- Arithmetic / compare / concat / length / bitwise / logical (§4.4, §6) ----

func Add(a, b Value) (Value, error)  { return ops.Add(a, b) }
func Sub(a, b Value) (Value, error)  { return ops.Sub(a, b) }
func Mul(a, b Value) (Value, error)  { return ops.Mul(a, b) }
func Div(a, b Value) (Value, error)  { return ops.Div(a, b) }
func IDiv(a, b Value) (Value, error) { return ops.IDiv(a, b) }
func Mod(a, b Value) (Value, error)  { return ops.Mod(a, b) }
func Pow(a, b Value) (Value, error)  { return ops.Pow(a, b) }
func Unm(a Value) (Value, error)     { return ops.Unm(a) }

func Eq(a, b Value) (bool, error) { return ops.Eq(a, b) }
func Lt(a, b Value) (bool, error) { return ops.Lt(a, b) }
func Le(a, b Value) (bool, error) { return ops.Le(a, b) }
func Gt(a, b Value) (bool, error) { return ops.Lt(b, a) }
func Ge(a, b Value) (bool, error) { return ops.Le(b, a) }

func Concat(a, b Value) (Value, error)     { return ops.Concat(a, b) }
func ConcatAll(vs []Value) (Value, error)  { return ops.ConcatAll(vs) }
func Len(v Value) (Value, error)           { return ops.Len(v) }

func BAnd(a, b Value) (Value, error) { return ops.BAnd(a, b) }
func BOr(a, b Value) (Value, error)  { return ops.BOr(a, b) }
func BXor(a, b Value) (Value, error) { return ops.BXor(a, b) }
func Shl(a, b Value) (Value, error)  { return ops.Shl(a, b) }
func Shr(a, b Value) (Value, error)  { return ops.Shr(a, b) }
func BNot(a Value) (Value, error)    { return ops.BNot(a) }

func And(a Value, b func() (Value, error)) (Value, error) { return ops.And(a, b) }
func Or(a Value, b func() (Value, error)) (Value, error)  { return ops.Or(a, b) }
func Not(a Value) Value                                    { return ops.Not(a) }

// ---- Metatables / raw table access (§6) ----

func GetMetatable(v Value) Value {
	return meta.GetMetatableGuarded(v)
}

func SetMetatable(t *value.Table, mt *value.Table) error {
	return table.SetMetatable(t, mt)
}

func Index(t Value, k Value) (Value, error)     { return meta.GetIndex(t, k) }
func NewIndex(t Value, k, v Value) error        { return meta.SetIndex(t, k, v) }

func RawGet(t *value.Table, k Value) (Value, error) { return ops.RawGet(t, k) }
func RawSet(t *value.Table, k, v Value) error       { return ops.RawSet(t, k, v) }
func RawEqual(a, b Value) bool                      { return ops.RawEqual(a, b) }
func RawLen(v Value) (Value, error)                 { return ops.RawLen(v) }

// Next and Pairs expose stateless/metamethod-aware iteration over a table.
func Next(t *value.Table, key Value) (k, v Value, ok bool) { return t.Next(key) }

func Pairs(v Value) (iter, state, control Value, err error) {
	if i, s, c, ok, perr := meta.PairsIterator(v); ok {
		return i, s, c, perr
	}
	t, isTable := v.(*value.Table)
	if !isTable {
		return nil, nil, nil, errs.TypeError("iterate", value.TypeName(v))
	}
	return rawNextFunction, t, value.NilValue, nil
}

var rawNextFunction = value.NewBuiltin("next", func(args []Value) ([]Value, error) {
	if len(args) == 0 {
		return nil, errs.New(errs.Arity, "bad argument #1 to 'next' (table expected)")
	}
	t, ok := args[0].(*value.Table)
	if !ok {
		return nil, errs.TypeError("iterate", value.TypeName(args[0]))
	}
	key := value.NilValue
	if len(args) > 1 {
		key = args[1]
	}
	k, v, found := t.Next(key)
	if !found {
		return []Value{value.NilValue}, nil
	}
	return []Value{k, v}, nil
})

// ---- Pattern entry points (§4.6, §6) ----

func Find(subject, pat string, init int) (start, end int, captures []Value, ok bool, err error) {
	return pattern.Find(subject, pat, init)
}

func Match(subject, pat string, init int) (captures []Value, ok bool, err error) {
	return pattern.Match(subject, pat, init)
}

func GSub(subject, pat string, repl Value, maxCount int) (result string, count int, err error) {
	return pattern.GSub(subject, pat, repl, maxCount)
}

type GMatchIterator = pattern.Iterator

func GMatch(subject, pat string) *GMatchIterator { return pattern.NewGMatch(subject, pat) }

// ---- Coroutine entry points (§4.7, §6) ----

type Coroutine = coroutine.Coroutine
type CoroutineStatus = coroutine.Status

const (
	Suspended     = coroutine.Suspended
	StatusRunning = coroutine.Running
	Normal        = coroutine.Normal
	Dead          = coroutine.Dead
)

func NewCoroutine(body coroutine.Body, opts ...coroutine.Option) *Coroutine {
	return coroutine.New(body, opts...)
}

func Resume(co *Coroutine, by *Coroutine, args []Value) (ok bool, results []Value, errVal Value) {
	return coroutine.Resume(co, by, args)
}

func CoroutineClose(co *Coroutine) (bool, Value) { return coroutine.Close(co) }

func CoroutineStatusOf(co *Coroutine) CoroutineStatus { return co.Status() }

func CoroutineRunning(current *Coroutine) (co Value, isMain bool) {
	return coroutine.CurrentRunning(current)
}

func CoroutineIsYieldable(current *Coroutine) bool { return coroutine.IsYieldable(current) }

// ---- Environment (§4.8, §6) ----

type Environment = env.Environment

func NewEnvironment() *Environment { return env.New() }

// Attribute is a local variable's declared discipline (§3, §4.8): plain,
// <const>, or <close>.
type Attribute = value.Attribute

const (
	AttribNone  = value.AttribNone
	AttribConst = value.AttribConst
	AttribClose = value.AttribClose
)
