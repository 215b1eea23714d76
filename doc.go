// Package scopex provides scope guards whose deferred actions cannot be
// skipped by calling code.
//
// An ordinary "run this on scope exit" helper can be taken by value and
// dropped on the floor, silently skipping the cleanup it carries. That is
// unacceptable when the cleanup is what keeps memory or hardware safe, for
// example stopping a concurrent transfer before the buffer it targets goes
// away, or disabling a sensor before power-down. scopex closes that hole
// structurally: the guard is owned by the scope-entry function itself, and
// user code only ever sees a borrowed *Handle.
//
// # Example Usage
//
//	n := scopex.EnterFunc(func() { stopTransfer() }, func(h *scopex.Handle) int {
//		startTransfer(buf)
//		return len(buf)
//	})
//	// stopTransfer has run by the time EnterFunc returns, on every exit
//	// path, including a panic inside the body.
//
// # The Guarantee
//
// For any body, however it exits (normal return or panic), the deferred
// action has executed exactly once by the time control returns past the
// scope-entry call. The action runs strictly after the body finishes and
// strictly before Enter/Scope/EnterAll return. Nested scopes release in
// LIFO order.
//
// There are exactly three carve-outs:
//
//   - The process terminates abnormally (fatal signal, os.Exit, runtime
//     abort) before the scope ends.
//   - The guard was created with NewStatic and is bound to the remaining
//     process lifetime; there is no enclosing scope to force release, so
//     its action runs best-effort only.
//   - The deferred action itself panics while a body panic is already
//     unwinding. Go's nested-panic semantics apply: the later panic takes
//     over propagation and both appear in the crash trace.
//
// # Borrow Discipline
//
// Go has no lifetime checker, so the borrow rule is enforced at runtime:
// a *Handle smuggled out of its scope panics on first use. Handles expose
// no operation that yields ownership of the guard or extends its life.
//
// # Concurrency
//
// The core spawns no goroutines and takes no locks; the action is
// sequenced on the caller's goroutine. The guard's one-shot state word and
// action cell are atomic, so even a structurally re-entrant or concurrent
// destruction path runs the action exactly once.
package scopex
