package scopex

// Handle is the borrowed view of a guard that a scope body receives. It can
// arm the guard and inspect it, but no operation on it yields ownership of
// the guard or extends the guard's life past the scope-entry call.
//
// A handle stored somewhere that outlives its scope is not a leak of the
// guard: the guard has already been consumed, and every later operation on
// the stale handle panics.
type Handle struct {
	guard *Guard
}

// Arm assigns the action to run when the scope ends, replacing the current
// one if the guard is already armed. Arming is one-way: there is no disarm,
// and Arm(nil) panics. To make an action reversible, arm something
// idempotent and drive it to a no-op state instead.
//
// Panics if the handle is used outside its scope.
func (h *Handle) Arm(a Action) {
	if a == nil {
		panic("scopex: Arm(nil): an armed guard cannot be cleared")
	}
	h.checked().arm(a)
}

// ArmFunc is Arm for a plain closure.
func (h *Handle) ArmFunc(f func()) {
	if f == nil {
		panic("scopex: ArmFunc(nil): an armed guard cannot be cleared")
	}
	h.checked().arm(ActionFunc(f))
}

// Armed reports whether the guard currently holds an action.
//
// Panics if the handle is used outside its scope.
func (h *Handle) Armed() bool {
	return h.checked().armed()
}

// checked returns the owning guard, panicking if the scope has already
// exited. This is the runtime rendering of the borrow rule: a handle's
// validity is bounded by its guard's scope.
func (h *Handle) checked() *Guard {
	g := h.guard
	if g == nil || !g.active() {
		panic("scopex: handle used outside the scope that issued it")
	}
	return g
}
