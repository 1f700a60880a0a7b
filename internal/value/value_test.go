package value

import "testing"

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil value", NilValue, false},
		{"untyped nil", nil, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero integer", Int(0), true},
		{"empty string", Str(""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTruthy(tt.v); got != tt.want {
				t.Errorf("IsTruthy(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestRawEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int==int", Int(3), Int(3), true},
		{"int==float same value", Int(3), Flt(3.0), true},
		{"int!=float fractional", Int(3), Flt(3.5), false},
		{"string equal", Str("a"), Str("a"), true},
		{"string differ", Str("a"), Str("b"), false},
		{"different tables", NewTable(), NewTable(), false},
		{"nil==nil", NilValue, NilValue, true},
		{"bool mismatch", Bool(true), Bool(false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RawEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("RawEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	tbl := NewTable()
	if !RawEqual(tbl, tbl) {
		t.Error("a table must be RawEqual to itself")
	}
}

func TestAsIntegerFromFloat(t *testing.T) {
	if _, ok := AsInteger(Flt(3.5)); ok {
		t.Error("3.5 should not convert to an exact integer")
	}
	i, ok := AsInteger(Flt(4.0))
	if !ok || i != 4 {
		t.Errorf("AsInteger(4.0) = (%d, %v), want (4, true)", i, ok)
	}
}

func TestVariableConstAndClose(t *testing.T) {
	v := NewVariable(Int(1), AttribConst)
	if v.Set(Int(2)) {
		t.Error("Set must fail on a const variable")
	}
	got, ok := v.Get()
	if !ok || got != Int(1) {
		t.Errorf("Get() = (%v, %v), want (1, true)", got, ok)
	}

	v2 := NewVariable(Int(1), AttribNone)
	v2.MarkClosed()
	if _, ok := v2.Get(); ok {
		t.Error("Get must fail after MarkClosed")
	}
	if v2.Set(Int(9)) {
		t.Error("Set must fail after MarkClosed")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindNil, "nil"},
		{KindInteger, "number"},
		{KindFloat, "number"},
		{KindTable, "table"},
		{KindThread, "thread"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}
