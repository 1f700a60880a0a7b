package ops

import (
	"luacore/internal/meta"
	"luacore/internal/value"
)

// ToString implements tostring(v) (§6): consults __tostring first, then
// falls back to the canonical display form (§4.1/§4.5's number formatting,
// identity-hex for other reference kinds).
func ToString(v value.Value) (string, error) {
	if s, handled, err := meta.ToString(v); handled {
		if err != nil {
			return "", err
		}
		return s, nil
	}
	return value.ToDisplayString(v), nil
}
