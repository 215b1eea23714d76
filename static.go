package scopex

import "runtime"

// Static is a guard bound to the remaining lifetime of the process. It is
// the one guard the library hands out by value, because there is no
// enclosing scope that could force its release - and for the same reason it
// is the one guard whose action is NOT guaranteed to run.
//
// The action runs best-effort when the Static becomes unreachable, via
// runtime.AddCleanup. A Static that stays reachable until the process exits
// never runs its action. Handle use must not outlive the last reference to
// the Static: an Arm racing the cleanup is safe (the cells are atomic) but
// the armed action may never run. Use Enter or Scope whenever any bounded
// scope exists; Static is only for resources that genuinely live as long
// as the process.
type Static struct {
	guard *Guard
}

// NewStatic creates a process-lifetime guard and the handle used to arm it.
// The handle stays valid as long as the guard has not been consumed.
func NewStatic() (*Static, *Handle) {
	g := newGuard(nil)
	s := &Static{guard: g}
	runtime.AddCleanup(s, func(g *Guard) { g.consume() }, g)
	return s, &Handle{guard: g}
}
