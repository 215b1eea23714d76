package scopex

import "sync/atomic"

// Action is the deferred action a guard runs when its scope ends. It is the
// method form of a plain func(): implement it on your own types, or wrap a
// closure with ActionFunc.
type Action interface {
	CallOnce()
}

// ActionFunc adapts an ordinary closure to Action.
type ActionFunc func()

// CallOnce invokes the closure.
func (f ActionFunc) CallOnce() { f() }

// Guard lifecycle. A guard moves Uninitialized -> Active atomically at
// construction and Active -> Consumed exactly once at end of scope.
const (
	stateUninitialized int32 = iota
	stateActive
	stateConsumed
)

// Guard owns at most one deferred action and runs it exactly once when the
// scope that created it ends. Guards are created only by Enter, Scope and
// EnterAll (and by NewStatic, which carries no guarantee). User code never
// receives a Guard, only a *Handle borrowed for the duration of the scope
// body; that is what makes "leak the guard, skip the cleanup" impossible.
type Guard struct {
	noCopy noCopy
	state  atomic.Int32
	action atomic.Pointer[Action]
}

func newGuard(action Action) *Guard {
	g := &Guard{}
	if action != nil {
		g.action.Store(&action)
	}
	g.state.Store(stateActive)
	return g
}

// arm assigns or replaces the deferred action. Reachable only through a
// Handle, which has already checked that the guard is active.
//
// The action cell is atomic because a Static guard may be consumed on the
// cleanup goroutine while a live handle is arming. An arm that loses that
// race stores an action that never runs, which is within Static's
// best-effort contract; scoped guards stay single-goroutine and never hit
// the race at all.
func (g *Guard) arm(a Action) {
	g.action.Store(&a)
}

func (g *Guard) armed() bool {
	return g.action.Load() != nil
}

// consume runs the deferred action at most once. A second destruction pass
// observes stateConsumed and finds nothing to run.
func (g *Guard) consume() {
	if !g.state.CompareAndSwap(stateActive, stateConsumed) {
		return
	}
	if p := g.action.Swap(nil); p != nil {
		(*p).CallOnce()
	}
}

// active reports whether the guard's scope is still running.
func (g *Guard) active() bool {
	return g.state.Load() == stateActive
}

// noCopy flags Guard as non-copyable under `go vet -copylocks`.
// See https://golang.org/issues/8005#issuecomment-190753527.
// It must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
