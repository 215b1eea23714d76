package scopex

// Enter runs body inside a new guarded scope armed with action.
//
// The guard is a local of Enter's own activation; body receives only a
// borrowed *Handle. The action runs exactly once, strictly after body
// finishes and strictly before Enter returns, on every exit path: if body
// panics, the action runs during unwinding and the panic then continues to
// Enter's caller unmodified. Enter never converts a panic into a normal
// result, and a panic raised by the action itself propagates from Enter.
//
// The body's return value is passed through unchanged on the normal path.
func Enter[R any](action Action, body func(*Handle) R) R {
	if action == nil {
		panic("scopex: Enter(nil action)")
	}
	g := newGuard(action)
	defer g.consume()
	return body(&Handle{guard: g})
}

// EnterFunc is Enter for a plain closure.
func EnterFunc[R any](f func(), body func(*Handle) R) R {
	if f == nil {
		panic("scopex: EnterFunc(nil func)")
	}
	return Enter(ActionFunc(f), body)
}

// Scope runs body inside a new guarded scope whose guard starts unarmed.
// The body arms it through the handle, typically from whatever function
// actually starts the hazardous work:
//
//	scopex.Scope(func(h *scopex.Handle) struct{} {
//		dma.Start(buf, h) // Start arms h with the stop action
//		return struct{}{}
//	})
//
// A guard that is still unarmed when the scope ends consumes to a no-op.
// Everything else matches Enter.
func Scope[R any](body func(*Handle) R) R {
	g := newGuard(nil)
	defer g.consume()
	return body(&Handle{guard: g})
}

// EnterAll runs body inside a scope holding n independent unarmed guards.
// When the scope ends the guards release in reverse creation order
// (handles[n-1] first, handles[0] last), matching nested-scope LIFO
// semantics. A panic in one action does not skip the remaining guards.
//
// n == 0 runs the body with an empty slice; negative n panics.
func EnterAll[R any](n int, body func([]*Handle) R) R {
	if n < 0 {
		panic("scopex: EnterAll with negative guard count")
	}
	guards := make([]*Guard, n)
	handles := make([]*Handle, n)
	for i := range guards {
		g := newGuard(nil)
		guards[i] = g
		handles[i] = &Handle{guard: g}
	}
	defer consumeAll(guards)
	return body(handles)
}

// consumeAll registers one deferred consume per guard in creation order, so
// they run in reverse creation order and a panicking action still lets the
// rest release.
func consumeAll(guards []*Guard) {
	for _, g := range guards {
		defer g.consume()
	}
}
