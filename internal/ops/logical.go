package ops

import "luacore/internal/value"

// And implements the `and` operator (§4.4): short-circuits on the first
// falsy operand, otherwise yields the second. No metamethod participates —
// and/or/not are never overridable.
func And(a value.Value, b func() (value.Value, error)) (value.Value, error) {
	if !value.IsTruthy(a) {
		return a, nil
	}
	return b()
}

// Or implements the `or` operator (§4.4): short-circuits on the first
// truthy operand, otherwise yields the second.
func Or(a value.Value, b func() (value.Value, error)) (value.Value, error) {
	if value.IsTruthy(a) {
		return a, nil
	}
	return b()
}

// Not implements the `not` operator (§4.4): true only for nil and false.
func Not(a value.Value) value.Value {
	return value.Bool(!value.IsTruthy(a))
}
