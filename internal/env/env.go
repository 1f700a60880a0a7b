// Package env implements scopes and variable binding (§4.8): a stack of
// lexical scopes over a shared global table, with const/close attribute
// enforcement and __close invocation on scope exit.
package env

import (
	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/table"
	"luacore/internal/value"
)

// CloseErrorHandler observes an error raised by a __close metamethod
// during scope exit; such errors are swallowed (per §4.8/§7) rather than
// propagated, since a second error during unwind must not mask the first.
// The default handler, used when Environment.OnCloseError is nil, discards
// the error silently — embedders that want visibility set their own.
type CloseErrorHandler func(v value.Value, err error)

// scope is one lexical level: an ordered list of bindings (insertion order
// matters for __close, which runs last-declared-first on exit) plus a name
// index for lookup.
type scope struct {
	names   map[string]*value.Variable
	order   []string // declaration order, for reverse-order __close
}

func newScope() *scope {
	return &scope{names: make(map[string]*value.Variable)}
}

// Environment is a stack of scopes rooted at a global table (§4.8: "A
// distinguished global table underlies the outermost scope").
type Environment struct {
	globals *value.Table
	scopes  []*scope

	OnCloseError CloseErrorHandler
}

// New constructs an Environment with a fresh global table and one open
// (outermost) scope.
func New() *Environment {
	e := &Environment{globals: table.New()}
	e.scopes = []*scope{newScope()}
	return e
}

// Globals returns the underlying global table.
func (e *Environment) Globals() *value.Table { return e.globals }

// PushScope opens a new innermost scope, e.g. entering a block or function
// body.
func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, newScope())
}

// PopScope closes the innermost scope, running __close (in reverse
// declaration order) on every live Close-attributed variable in it first.
// Errors raised by __close are reported via OnCloseError and otherwise
// discarded (§4.8: "swallowed... to avoid double-faults").
func (e *Environment) PopScope() {
	if len(e.scopes) == 0 {
		return
	}
	top := e.scopes[len(e.scopes)-1]
	e.closeScope(top, value.NilValue)
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// PopScopeWithError is PopScope for abnormal exit: __close methods receive
// errVal instead of nil, per §4.8.
func (e *Environment) PopScopeWithError(errVal value.Value) {
	if len(e.scopes) == 0 {
		return
	}
	top := e.scopes[len(e.scopes)-1]
	e.closeScope(top, errVal)
	e.scopes = e.scopes[:len(e.scopes)-1]
}

func (e *Environment) closeScope(s *scope, errVal value.Value) {
	for i := len(s.order) - 1; i >= 0; i-- {
		v := s.names[s.order[i]]
		if v.Attrib != value.AttribClose || v.IsClosed() {
			continue
		}
		val, ok := v.Get()
		v.MarkClosed()
		if !ok {
			continue
		}
		if _, isNil := val.(value.Nil); isNil {
			continue
		}
		invoked, err := meta.Close(val, errVal)
		if invoked && err != nil && e.OnCloseError != nil {
			e.OnCloseError(val, err)
		}
	}
}

// Declare binds name to a fresh Variable in the innermost scope. For
// AttribClose, val must carry a __close metamethod (or be nil), checked
// immediately per §4.8's "to-be-closed variable" declaration-time rule.
func (e *Environment) Declare(name string, val value.Value, attrib value.Attribute) error {
	if attrib == value.AttribClose {
		if _, isNil := val.(value.Nil); !isNil && !meta.HasClose(val) {
			return errs.New(errs.TypeMismatch, "variable '%s' got a non-closable value", name)
		}
	}
	top := e.scopes[len(e.scopes)-1]
	if _, exists := top.names[name]; !exists {
		top.order = append(top.order, name)
	}
	top.names[name] = value.NewVariable(val, attrib)
	return nil
}

// Lookup walks scopes inner-to-outer, falling back to the global table
// when no local binding exists (§4.8). Reading a variable after its scope
// has run __close on it is an error rather than silently yielding nil.
func (e *Environment) Lookup(name string) (value.Value, error) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].names[name]; ok {
			val, live := v.Get()
			if !live {
				return nil, errs.New(errs.ClosedVariableAccess, "attempt to use closed variable '%s'", name)
			}
			return val, nil
		}
	}
	return e.globals.RawGet(value.Str(name)), nil
}

// Set assigns name: the innermost existing binding if any, else the global
// table. Assigning to a const or to-be-closed binding is rejected (§4.8).
func (e *Environment) Set(name string, val value.Value) error {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].names[name]; ok {
			if v.Attrib == value.AttribConst || v.Attrib == value.AttribClose {
				return errs.New(errs.ConstAssignment, "attempt to assign to const variable '%s'", name)
			}
			if !v.Set(val) {
				return errs.New(errs.ClosedVariableAccess, "attempt to assign to closed variable '%s'", name)
			}
			return nil
		}
	}
	return e.globals.RawSet(value.Str(name), val)
}

// SetGlobal writes directly to the global table, bypassing any local
// shadow; used for the rare case an embedder wants to force a global
// write (e.g. implementing `_G.x = v` explicitly rather than via Set).
func (e *Environment) SetGlobal(name string, val value.Value) error {
	return e.globals.RawSet(value.Str(name), val)
}
