package pattern

import (
	"testing"

	"luacore/internal/value"
)

func strCaps(t *testing.T, caps []value.Value) []string {
	t.Helper()
	out := make([]string, len(caps))
	for i, c := range caps {
		s, ok := c.(value.String)
		if !ok {
			t.Fatalf("capture %d is %v (%T), not a String", i, c, c)
		}
		out[i] = s.S
	}
	return out
}

func TestFindPlainSubstring(t *testing.T) {
	start, end, _, ok, err := Find("hello world", "world", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || start != 7 || end != 11 {
		t.Errorf("Find = (%d,%d,%v), want (7,11,true)", start, end, ok)
	}
}

func TestFindCharacterClass(t *testing.T) {
	start, end, _, ok, err := Find("abc 123 def", "%d+", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || start != 5 || end != 7 {
		t.Errorf("Find(%%d+) = (%d,%d,%v), want (5,7,true)", start, end, ok)
	}
}

func TestFindAnchored(t *testing.T) {
	_, _, _, ok, err := Find("abc", "^bc", 1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("anchored pattern must not match mid-string")
	}
}

func TestFindEmptyMatchReportsEndBeforeStart(t *testing.T) {
	start, end, _, ok, err := Find("abc", "x*", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || start != 1 || end != 0 {
		t.Errorf("Find(x*) on a string with no x = (%d,%d,%v), want (1,0,true)", start, end, ok)
	}
}

func TestFindNegativeInit(t *testing.T) {
	start, _, _, ok, err := Find("abcabc", "a", -3)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || start != 4 {
		t.Errorf("Find from init=-3 = (%d,%v), want (4,true)", start, ok)
	}
}

func TestMatchWithCaptures(t *testing.T) {
	caps, ok, err := Match("key=value", "(%a+)=(%a+)", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	got := strCaps(t, caps)
	if len(got) != 2 || got[0] != "key" || got[1] != "value" {
		t.Errorf("captures = %v, want [key value]", got)
	}
}

func TestMatchPositionCapture(t *testing.T) {
	caps, ok, err := Match("abc", "a()b", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	pos, ok := caps[0].(value.Integer)
	if !ok || pos.I != 2 {
		t.Errorf("position capture = %v, want 2", caps[0])
	}
}

func TestMatchBalanced(t *testing.T) {
	caps, ok, err := Match("(foo (bar) baz)", "%b()", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a balanced match")
	}
	got := strCaps(t, caps)
	if got[0] != "(foo (bar) baz)" {
		t.Errorf("%%b() match = %q, want the whole balanced group", got[0])
	}
}

func TestMatchBackReference(t *testing.T) {
	caps, ok, err := Match("abcabc", "(abc)%1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("back-reference (abc)%1 should match \"abcabc\"")
	}
	if len(caps) != 1 || strCaps(t, caps)[0] != "abc" {
		t.Errorf("captures = %v", caps)
	}
}

func TestMatchBracketClassWithLiteralCloseBracket(t *testing.T) {
	// []abc] means the set {']','a','b','c'} — ']' right after '[' is a
	// literal member, not the closing bracket.
	caps, ok, err := Match("]", "[]a]", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || strCaps(t, caps)[0] != "]" {
		t.Errorf("[]a] against \"]\" = (%v,%v), want a match on \"]\"", caps, ok)
	}
}

func TestMatchNegatedClass(t *testing.T) {
	caps, ok, err := Match("ab1", "%a[^%d]", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected %%a[^%%d] to match \"ab\" (letter followed by a non-digit)")
	}
	if strCaps(t, caps)[0] != "ab" {
		t.Errorf("whole-match capture = %q, want \"ab\"", strCaps(t, caps)[0])
	}
}

func TestFindInvalidPatternUnterminatedClass(t *testing.T) {
	_, _, _, _, err := Find("abc", "[abc", 1)
	if err == nil {
		t.Error("an unterminated bracket class must raise an error, not silently fail")
	}
}

func TestGMatchIteratesAllMatches(t *testing.T) {
	it := NewGMatch("one two three", "%a+")
	var words []string
	for {
		caps, ok, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		words = append(words, strCaps(t, caps)[0])
	}
	want := []string{"one", "two", "three"}
	if len(words) != len(want) {
		t.Fatalf("got %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word[%d] = %q, want %q", i, words[i], want[i])
		}
	}
}

func TestGMatchZeroLengthMatchesMakeProgress(t *testing.T) {
	it := NewGMatch("abc", "x*")
	count := 0
	for {
		_, ok, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		count++
		if count > 10 {
			t.Fatal("gmatch with a pattern that can match empty must not loop forever")
		}
	}
	if count != 4 {
		t.Errorf("got %d empty matches over a 3-byte string, want 4 (one per gap plus the end)", count)
	}
}

func TestGSubStringReplacement(t *testing.T) {
	got, n, err := GSub("hello world", "o", value.Str("0"), -1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hell0 w0rld" || n != 2 {
		t.Errorf("GSub = (%q,%d), want (\"hell0 w0rld\",2)", got, n)
	}
}

func TestGSubWithCaptureTemplate(t *testing.T) {
	got, n, err := GSub("key=value", "(%a+)=(%a+)", value.Str("%2=%1"), -1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "value=key" || n != 1 {
		t.Errorf("GSub = (%q,%d), want (\"value=key\",1)", got, n)
	}
}

func TestGSubWithFunctionReplacement(t *testing.T) {
	fn := value.NewBuiltin("upper", func(args []value.Value) ([]value.Value, error) {
		s := args[0].(value.String).S
		out := make([]byte, len(s))
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c >= 'a' && c <= 'z' {
				c -= 32
			}
			out[i] = c
		}
		return []value.Value{value.Str(string(out))}, nil
	})
	got, n, err := GSub("hello", "%a+", fn, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "HELLO" || n != 1 {
		t.Errorf("GSub with function repl = (%q,%d), want (\"HELLO\",1)", got, n)
	}
}

func TestGSubMaxCountLimitsReplacements(t *testing.T) {
	got, n, err := GSub("aaaa", "a", value.Str("b"), 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "bbaa" || n != 2 {
		t.Errorf("GSub with maxN=2 = (%q,%d), want (\"bbaa\",2)", got, n)
	}
}

func TestGSubFunctionReturningFalseKeepsOriginal(t *testing.T) {
	fn := value.NewBuiltin("keep", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.Bool(false)}, nil
	})
	got, n, err := GSub("abc", "%a", fn, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc" || n != 3 {
		t.Errorf("GSub with a false-returning function = (%q,%d), want (\"abc\",3)", got, n)
	}
}

func TestGSubFunctionReturningTrueIsAnError(t *testing.T) {
	fn := value.NewBuiltin("bad", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.Bool(true)}, nil
	})
	if _, _, err := GSub("abc", "%a", fn, -1); err == nil {
		t.Error("a replacement function returning true must raise")
	}
}
