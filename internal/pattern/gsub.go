package pattern

import (
	"strconv"
	"strings"

	"luacore/internal/errs"
	"luacore/internal/meta"
	"luacore/internal/value"
)

// GSub implements string.gsub (§4.6). repl is a String/Integer/Float
// (textual template with %n/%0/%% substitutions), a *value.Table (indexed
// by the first capture), or anything Callable (invoked with the captures).
// maxN < 0 means unlimited, matching Lua's omitted-count behavior.
func GSub(src, pat string, repl value.Value, maxN int) (string, int, error) {
	anchor := false
	p0 := 0
	if len(pat) > 0 && pat[0] == '^' {
		anchor = true
		p0 = 1
	}

	var out strings.Builder
	count := 0
	s := 0
	for maxN < 0 || count < maxN {
		ms := &matchState{src: src, pat: pat}
		e, err := ms.match(s, p0)
		if err != nil {
			return "", 0, err
		}
		if e != -1 {
			count++
			if err := appendReplacement(&out, ms, s, e, repl); err != nil {
				return "", 0, err
			}
		}
		if e != -1 && e > s {
			s = e
		} else if s < len(src) {
			out.WriteByte(src[s])
			s++
		} else {
			break
		}
		if anchor {
			break
		}
	}
	out.WriteString(src[s:])
	return out.String(), count, nil
}

func appendReplacement(out *strings.Builder, ms *matchState, s, e int, repl value.Value) error {
	whole := ms.src[s:e]
	switch r := repl.(type) {
	case value.String:
		return appendTemplate(out, ms, whole, r.S)
	case value.Integer, value.Float:
		return appendTemplate(out, ms, whole, value.ToDisplayString(repl))
	case *value.Table:
		caps := ms.pushCaptures(s, e)
		v, err := meta.GetIndex(r, caps[0])
		if err != nil {
			return err
		}
		return appendResult(out, whole, v)
	default:
		if _, ok := repl.(value.Callable); ok {
			caps := ms.pushCaptures(s, e)
			res, err := meta.CallValue(repl, caps)
			if err != nil {
				return err
			}
			var v value.Value = value.NilValue
			if len(res) > 0 {
				v = res[0]
			}
			return appendResult(out, whole, v)
		}
		return errs.New(errs.PatternInvalid, "bad argument #3 to 'gsub' (string/function/table expected)")
	}
}

// appendTemplate expands a string replacement template: %0 the whole
// match, %1-%9 the corresponding capture, %% a literal percent.
func appendTemplate(out *strings.Builder, ms *matchState, whole, tmpl string) error {
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' {
			out.WriteByte(c)
			continue
		}
		i++
		if i >= len(tmpl) {
			return errs.New(errs.PatternInvalid, "invalid use of '%%' in replacement string")
		}
		d := tmpl[i]
		switch {
		case d == '%':
			out.WriteByte('%')
		case d == '0':
			out.WriteString(whole)
		case d >= '1' && d <= '9':
			l, err := ms.checkCapture(int(d - '0'))
			if err != nil {
				return err
			}
			if ms.capLen[l] == capPosition {
				out.WriteString(strconv.FormatInt(int64(ms.capStart[l]+1), 10))
			} else {
				out.WriteString(ms.src[ms.capStart[l] : ms.capStart[l]+ms.capLen[l]])
			}
		default:
			return errs.New(errs.PatternInvalid, "invalid use of '%%' in replacement string")
		}
	}
	return nil
}

// appendResult applies a function/table replacement's return value: nil or
// false keeps the original match; a string or number substitutes; anything
// else is an error.
func appendResult(out *strings.Builder, whole string, v value.Value) error {
	switch x := v.(type) {
	case nil, value.Nil:
		out.WriteString(whole)
	case value.Boolean:
		if x.B {
			return errs.New(errs.PatternInvalid, "invalid replacement value (a boolean)")
		}
		out.WriteString(whole)
	case value.String:
		out.WriteString(x.S)
	case value.Integer, value.Float:
		out.WriteString(value.ToDisplayString(v))
	default:
		return errs.New(errs.PatternInvalid, "invalid replacement value (a %s)", value.TypeName(v))
	}
	return nil
}
