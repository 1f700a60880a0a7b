// Command luacoredump is a small inspection tool for the core: it builds a
// handful of Values, runs a pattern match and a coroutine, and prints what
// happened. It is not a Lua interpreter — there is no lexer, no parser, no
// bytecode, just direct calls into the luacore package, the same calls an
// embedding executor would make.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"luacore"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func colorize(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func heading(s string) {
	fmt.Println(colorize("1;36", s))
}

func main() {
	heading("== values & arithmetic ==")
	a, b := luacore.Int(7), luacore.Float(2.5)
	sum, err := luacore.Add(a, b)
	check(err)
	fmt.Printf("7 + 2.5 = %s\n", luacore.ToDisplayString(sum))

	heading("== table ==")
	t := luacore.NewTable()
	for i, s := range []string{"alpha", "beta", "gamma"} {
		check(luacore.RawSet(t, luacore.Int(int64(i+1)), luacore.Str(s)))
	}
	length, err := luacore.Len(t)
	check(err)
	fmt.Printf("#t = %s (%s)\n", luacore.ToDisplayString(length), luacore.DescribeTable(t))

	heading("== pattern ==")
	subject := "the quick brown fox jumps 42 times"
	start, end, caps, ok, err := luacore.Find(subject, "%d+", 1)
	check(err)
	if ok {
		fmt.Printf("found %q at [%d,%d], captures=%v\n", subject[start-1:end], start, end, renderCaptures(caps))
	}

	result, n, err := luacore.GSub(subject, "%a+", luacore.Str("#"), -1)
	check(err)
	fmt.Printf("gsub -> %q (%d replacements)\n", result, n)

	heading("== coroutine ==")
	co := luacore.NewCoroutine(func(yield func([]luacore.Value) []luacore.Value, args []luacore.Value) ([]luacore.Value, error) {
		fmt.Println("  coroutine: started with", renderCaptures(args))
		in := yield([]luacore.Value{luacore.Str("first yield")})
		fmt.Println("  coroutine: resumed with", renderCaptures(in))
		return []luacore.Value{luacore.Str("done")}, nil
	})
	ok1, res1, _ := luacore.Resume(co, nil, []luacore.Value{luacore.Str("hello")})
	fmt.Println("resume #1:", ok1, renderCaptures(res1), "status:", luacore.CoroutineStatusOf(co))
	ok2, res2, _ := luacore.Resume(co, nil, []luacore.Value{luacore.Str("world")})
	fmt.Println("resume #2:", ok2, renderCaptures(res2), "status:", luacore.CoroutineStatusOf(co))
}

func renderCaptures(vs []luacore.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = luacore.ToDisplayString(v)
	}
	return out
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, colorize("1;31", err.Error()))
		os.Exit(1)
	}
}
