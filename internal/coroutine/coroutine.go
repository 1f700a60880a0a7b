// Package coroutine implements Lua's coroutine state machine (§4.7) as a
// parked goroutine: resume/yield hand control back and forth over a pair of
// unbuffered channels rather than through saved stacks or CPS transforms.
package coroutine

import (
	"fmt"
	"sync"
	"unsafe"
	"weak"

	"github.com/google/uuid"

	"luacore/internal/errs"
	"luacore/internal/value"
)

// Status mirrors the state machine's four states.
type Status int

const (
	Suspended Status = iota
	Running
	Normal
	Dead
)

func (s Status) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Normal:
		return "normal"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Body is the function a coroutine runs. yield is supplied so the body can
// suspend itself; calling it outside the goroutine that owns it is
// undefined, which in practice never happens since only this package
// invokes Body.
type Body func(yield YieldFunc, args []value.Value) ([]value.Value, error)

// YieldFunc suspends the calling coroutine, handing vals to the resumer,
// and returns whatever the next resume passes back in.
type YieldFunc = func(vals []value.Value) []value.Value

type transfer struct {
	vals []value.Value
	err  error
	done bool // body returned or raised, coroutine is now Dead
}

// Coroutine is a single Lua thread (spec §3 Thread kind). It satisfies
// value.Value and value.WeakRefable so it can live inside weak tables like
// any other reference type.
type Coroutine struct {
	value.Embed

	id   uuid.UUID
	body Body

	mu     sync.Mutex
	status Status

	resumeCh chan []value.Value // main -> body: args on first resume, yield-return values after
	yieldCh  chan transfer      // body -> main: yielded values, or the final result
	started  bool

	resumer *Coroutine // the coroutine that is Normal because it resumed us, if any

	name string // optional, for diagnostics only
}

func (*Coroutine) Kind() value.Kind { return value.KindThread }

// Option configures a new Coroutine.
type Option func(*Coroutine)

// WithName attaches a diagnostic label, read back through Name; it has no
// effect on scheduling or on tostring output.
func WithName(name string) Option {
	return func(c *Coroutine) { c.name = name }
}

// New constructs a Suspended coroutine wrapping body. The body does not
// start running until the first Resume.
func New(body Body, opts ...Option) *Coroutine {
	c := &Coroutine{
		id:       uuid.New(),
		body:     body,
		status:   Suspended,
		resumeCh: make(chan []value.Value),
		yieldCh:  make(chan transfer),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name returns the diagnostic label set via WithName, or "".
func (c *Coroutine) Name() string { return c.name }

// ID returns the coroutine's UUID identity, stable for its lifetime.
// tostring and table keys use pointer identity (WeakIdentity), not this.
func (c *Coroutine) ID() uuid.UUID { return c.id }

func (c *Coroutine) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Resume implements resume(co, args...) (§4.7). by is the coroutine that is
// issuing the resume (nil for the main thread); it is parked as Normal for
// the duration of the call.
func Resume(co *Coroutine, by *Coroutine, args []value.Value) (ok bool, results []value.Value, errVal value.Value) {
	co.mu.Lock()
	switch co.status {
	case Dead:
		co.mu.Unlock()
		return false, nil, value.Str("cannot resume dead coroutine")
	case Running, Normal:
		co.mu.Unlock()
		return false, nil, value.Str("cannot resume non-suspended coroutine")
	}
	co.status = Running
	co.resumer = by
	started := co.started
	co.started = true
	co.mu.Unlock()

	if by != nil {
		by.mu.Lock()
		by.status = Normal
		by.mu.Unlock()
	}

	if !started {
		go co.run()
	}
	co.resumeCh <- args
	t := <-co.yieldCh

	if by != nil {
		by.mu.Lock()
		by.status = Running
		by.mu.Unlock()
	}

	co.mu.Lock()
	if t.done {
		co.status = Dead
	} else {
		co.status = Suspended
	}
	co.mu.Unlock()

	if t.err != nil {
		return false, nil, errorValue(t.err)
	}
	return true, t.vals, nil
}

func errorValue(err error) value.Value {
	if e, ok := err.(*errs.Error); ok {
		if e.Raised != nil {
			if v, ok := e.Raised.(value.Value); ok {
				return v
			}
		}
	}
	return value.Str(err.Error())
}

func (c *Coroutine) run() {
	args := <-c.resumeCh
	yield := func(vals []value.Value) []value.Value {
		c.yieldCh <- transfer{vals: vals}
		return <-c.resumeCh
	}
	results, err := func() (res []value.Value, rerr error) {
		defer func() {
			if r := recover(); r != nil {
				rerr = errs.New(errs.CoroutineState, "%v", r)
			}
		}()
		return c.body(yield, args)
	}()
	c.yieldCh <- transfer{vals: results, err: err, done: true}
}

// Close drives a Suspended coroutine directly to Dead (§4.7, Lua 5.4). It
// is a no-op success on an already-Dead coroutine and fails without effect
// on a Running or Normal one. The goroutine backing a Suspended coroutine
// that never reaches completion is intentionally leaked (closing it would
// require injecting a cancellation into an arbitrary yield point, which no
// Body contract here provides); callers that care should design bodies
// that terminate.
//
// Running __close on the abandoned coroutine's own to-be-closed variables
// (§4.7/§4.8) is the caller's job, not this package's: a Body is an
// opaque Go closure, not an env.Environment scope stack, so only whatever
// constructed the Body (an executor, typically) knows which variables
// were live in it. A Body built on top of env.Environment should call
// env.PopScopeWithError itself before returning/yielding for the last
// time, or from a deferred close triggered by this call's true result.
func Close(co *Coroutine) (bool, value.Value) {
	co.mu.Lock()
	defer co.mu.Unlock()
	switch co.status {
	case Dead:
		return true, nil
	case Suspended:
		if !co.started {
			co.status = Dead
			return true, nil
		}
		co.status = Dead
		return true, nil
	default:
		return false, value.Str(fmt.Sprintf("cannot close a %s coroutine", co.status))
	}
}

// WeakIdentity / NewWeakRef let a Coroutine participate in weak tables.
func (c *Coroutine) WeakIdentity() uintptr { return uintptr(unsafe.Pointer(c)) }

type weakRef struct{ p weak.Pointer[Coroutine] }

func (r weakRef) Resolve() (value.Value, bool) {
	p := r.p.Value()
	if p == nil {
		return nil, false
	}
	return p, true
}

func (c *Coroutine) NewWeakRef() value.WeakRef { return weakRef{p: weak.Make(c)} }
