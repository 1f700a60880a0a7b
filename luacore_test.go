package luacore

import "testing"

func TestArithmeticThroughFacade(t *testing.T) {
	got, err := Add(Int(2), Int(3))
	if err != nil {
		t.Fatal(err)
	}
	if got != Int(5) {
		t.Errorf("Add(2,3) = %v, want 5", got)
	}
}

func TestTableRoundTripThroughFacade(t *testing.T) {
	tbl, err := TableFromPairs(Str("a"), Int(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := RawSet(tbl, Str("b"), Int(2)); err != nil {
		t.Fatal(err)
	}
	got, err := RawGet(tbl, Str("a"))
	if err != nil {
		t.Fatal(err)
	}
	if got != Int(1) {
		t.Errorf("t.a = %v, want 1", got)
	}
	length, err := Len(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if length != Int(0) {
		t.Errorf("#t = %v, want 0 (both keys are strings, not array indices)", length)
	}
}

func TestPatternMatchThroughFacade(t *testing.T) {
	start, end, _, ok, err := Find("hello world", "wor%a+", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || start != 7 || end != 11 {
		t.Errorf("Find = (%d,%d,%v), want (7,11,true)", start, end, ok)
	}
}

func TestCoroutineResumeThroughFacade(t *testing.T) {
	co := NewCoroutine(func(yield func([]Value) []Value, args []Value) ([]Value, error) {
		yield([]Value{Str("paused")})
		return []Value{Str("done")}, nil
	})
	ok, res, errVal := Resume(co, nil, nil)
	if !ok || errVal != nil {
		t.Fatalf("first resume failed: %v %v", ok, errVal)
	}
	if len(res) != 1 || res[0] != Str("paused") {
		t.Errorf("first resume results = %v, want [paused]", res)
	}
	ok, res, errVal = Resume(co, nil, nil)
	if !ok || errVal != nil {
		t.Fatalf("second resume failed: %v %v", ok, errVal)
	}
	if len(res) != 1 || res[0] != Str("done") {
		t.Errorf("second resume results = %v, want [done]", res)
	}
	if CoroutineStatusOf(co) != Dead {
		t.Error("coroutine should be Dead once its body returns")
	}
}

func TestEnvironmentDeclareAndLookup(t *testing.T) {
	e := NewEnvironment()
	if err := e.Declare("x", Int(10), AttribNone); err != nil {
		t.Fatal(err)
	}
	got, err := e.Lookup("x")
	if err != nil {
		t.Fatal(err)
	}
	if got != Int(10) {
		t.Errorf("Lookup(x) = %v, want 10", got)
	}
}
