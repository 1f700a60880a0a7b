package ops

import (
	"math"
	"testing"

	"luacore/internal/value"
)

func TestLtMixedIntFloatExact(t *testing.T) {
	// 2^53+1 has no exact float64 representation, so naive float promotion
	// would get this wrong; compareIntFloat must compare exactly.
	big := int64(1)<<53 + 1
	got, err := Lt(value.Int(big), value.Flt(float64(big)))
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("Lt(2^53+1, float64(2^53+1)) should be false: the float rounds down")
	}
}

func TestLtStrings(t *testing.T) {
	got, err := Lt(value.Str("abc"), value.Str("abd"))
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error(`Lt("abc","abd") should be true`)
	}
}

func TestLtNaNIsAlwaysFalse(t *testing.T) {
	got, err := Lt(value.Flt(math.NaN()), value.Flt(1))
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("Lt with a NaN operand must be false")
	}
	got, err = Lt(value.Flt(1), value.Flt(math.NaN()))
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("Lt with a NaN operand must be false")
	}
}

func TestLtMixedKindsRaises(t *testing.T) {
	if _, err := Lt(value.Int(1), value.Str("x")); err == nil {
		t.Error("Lt(number, string) must raise")
	}
}

func TestLeEqualValues(t *testing.T) {
	got, err := Le(value.Int(3), value.Flt(3.0))
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("Le(3, 3.0) should be true")
	}
}
