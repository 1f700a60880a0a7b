package value

import (
	"unsafe"
	"weak"
)

// Callable is satisfied by every invocable Value (§3 Function: "the Call
// contract is: receive N argument values, return M result values").
type Callable interface {
	Call(args []Value) ([]Value, error)
	FuncName() string
}

// BuiltinFunction is a Go-native invocable (§3(a)).
type BuiltinFunction struct {
	Embed
	Name string
	Fn   func(args []Value) ([]Value, error)
}

func (*BuiltinFunction) Kind() Kind { return KindFunction }

func (b *BuiltinFunction) Call(args []Value) ([]Value, error) { return b.Fn(args) }
func (b *BuiltinFunction) FuncName() string                   { return b.Name }

// NewBuiltin wraps a Go function as a Lua-callable Value.
func NewBuiltin(name string, fn func(args []Value) ([]Value, error)) *BuiltinFunction {
	return &BuiltinFunction{Name: name, Fn: fn}
}

func (b *BuiltinFunction) WeakIdentity() uintptr { return uintptr(unsafe.Pointer(b)) }

type builtinWeakRef struct{ p weak.Pointer[BuiltinFunction] }

func (r builtinWeakRef) Resolve() (Value, bool) {
	p := r.p.Value()
	if p == nil {
		return nil, false
	}
	return p, true
}

func (b *BuiltinFunction) NewWeakRef() WeakRef { return builtinWeakRef{p: weak.Make(b)} }

// UserFunction is a closure over captured Variables plus an executor-owned
// body representation (§3(b)): "opaque to this spec — the executor
// interprets it". Body is typed any specifically so this core never needs
// to know what an AST node or bytecode chunk looks like.
type UserFunction struct {
	Embed
	Name     string
	Upvalues []*Variable
	Body     any
	Invoke   func(body any, upvalues []*Variable, args []Value) ([]Value, error)
}

func (*UserFunction) Kind() Kind { return KindFunction }

func (u *UserFunction) Call(args []Value) ([]Value, error) {
	if u.Invoke == nil {
		return nil, NotInvocableError{Name: u.Name}
	}
	return u.Invoke(u.Body, u.Upvalues, args)
}

func (u *UserFunction) FuncName() string { return u.Name }

func (u *UserFunction) WeakIdentity() uintptr { return uintptr(unsafe.Pointer(u)) }

type userFuncWeakRef struct{ p weak.Pointer[UserFunction] }

func (r userFuncWeakRef) Resolve() (Value, bool) {
	p := r.p.Value()
	if p == nil {
		return nil, false
	}
	return p, true
}

func (u *UserFunction) NewWeakRef() WeakRef { return userFuncWeakRef{p: weak.Make(u)} }

// NotInvocableError reports an UserFunction whose executor-supplied Invoke
// hook was never wired up; the executor that owns Body is expected to set
// it before the closure is ever called.
type NotInvocableError struct{ Name string }

func (e NotInvocableError) Error() string {
	if e.Name == "" {
		return "attempt to call an unbound function value"
	}
	return "attempt to call unbound function '" + e.Name + "'"
}

func (u *UserData) WeakIdentity() uintptr { return uintptr(unsafe.Pointer(u)) }

type userDataWeakRef struct{ p weak.Pointer[UserData] }

func (r userDataWeakRef) Resolve() (Value, bool) {
	p := r.p.Value()
	if p == nil {
		return nil, false
	}
	return p, true
}

func (u *UserData) NewWeakRef() WeakRef { return userDataWeakRef{p: weak.Make(u)} }
