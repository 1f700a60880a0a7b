// Package table provides the metamethod-aware table operations of spec
// §4.2 (Get/Set) on top of the raw array+hash container defined in
// internal/value (which owns Table itself — see that package's doc
// comment for why). This package is the thin "delegates to __index /
// __newindex" layer; RawGet/RawSet/RawLen/RawEqual live directly on
// value.Table and are used as-is by internal/ops for the raw entry
// points in spec §6.
package table

import (
	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/value"
)

// New constructs an empty table, optionally with a weak mode.
func New(opts ...value.Option) *value.Table {
	return value.NewTable(opts...)
}

// FromPairs builds a table from alternating key/value Values, as a
// convenience constructor for the external embedding surface (§6: "table
// (empty or from pairs)").
func FromPairs(kv ...value.Value) (*value.Table, error) {
	t := value.NewTable()
	for i := 0; i+1 < len(kv); i += 2 {
		if err := Set(t, kv[i], kv[i+1]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Get implements t[k] with __index delegation (§4.2).
func Get(t *value.Table, k value.Value) (value.Value, error) {
	return meta.GetIndex(t, k)
}

// Set implements t[k] = v with __newindex delegation (§4.2).
func Set(t *value.Table, k, v value.Value) error {
	return meta.SetIndex(t, k, v)
}

// RawSet wraps value.Table.RawSet, translating its sentinel key error into
// the shared *errs.Error taxonomy (§7 TableKey).
func RawSet(t *value.Table, k, v value.Value) error {
	if err := t.RawSet(k, v); err != nil {
		if ke, ok := err.(value.TableKeyError); ok {
			return errs.New(errs.TableKey, "%s", string(ke))
		}
		return err
	}
	return nil
}

// SetMetatable installs mt on t, honoring the __metatable guard (§6).
func SetMetatable(t *value.Table, mt *value.Table) error {
	return meta.SetMetatable(t, mt)
}

// GetMetatable returns t's metatable, or the __metatable guard value if
// one is set (§6).
func GetMetatable(t *value.Table) value.Value {
	return meta.GetMetatableGuarded(t)
}

// Describe renders a short diagnostic summary of t's size, for embedder
// tooling (e.g. a debugger or dump command) rather than anything a Lua
// program observes. Entry counts use the same thousands-grouped rendering
// as other host-facing diagnostics in this core.
func Describe(t *value.Table) string {
	n := t.Len()
	entries := 0
	t.Each(func(value.Value, value.Value) bool {
		entries++
		return true
	})
	return "table: " + errs.LargeCount(entries) + " entries (border " + errs.LargeCount(int(n)) + ")"
}
