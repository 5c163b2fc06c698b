// Package nexus implements the hook/nexus state-synchronization engine.
//
// A [Hook] is a typed slot into a shared value. Hooks that should always
// agree on a value are connected into one hook group (a nexus); setting any
// member propagates to every other member in a single atomic transaction.
// Groups form and dissolve dynamically: [Hook.Connect] merges two groups,
// [Hook.Disconnect] splits a hook back into its own group with the last
// committed value.
//
// # Transactions
//
// Every value change runs through the owning [Manager]'s two-phase
// protocol:
//
//  1. The derivation closure asks each affected owner's [Deriver] for the
//     secondary values it needs to stay consistent, repeating until no
//     callback proposes anything new.
//  2. Each affected owner's [Validator] checks the fully-merged candidate
//     state. Any rejection aborts the transaction with the reason; no
//     nexus value is mutated.
//  3. Only then are the candidate values frozen (see package immutable)
//     and written, and listeners notified.
//
// [Manager.ValidateValues] runs phases 1 and 2 only, so consumers can
// pre-check a change without side effects.
//
// # Concurrency
//
// All operations are synchronous calls on arbitrary goroutines. Each
// manager serializes its transactions with one mutex; managers never share
// state, so disjoint managers never contend. A nested submission on the
// same goroutine while a transaction is open — typically a listener calling
// back into the manager during its own notification — is a programmer
// error and panics with a usage [errors.NexusError] instead of
// deadlocking.
//
// # Example
//
//	m := nexus.NewManager()
//	a, _ := nexus.New(m, ownerA, "value", 5)
//	b, _ := nexus.New(m, ownerB, "value", 3)
//	_ = a.Connect(b, nexus.UseCallerValue) // both now hold 5
//	_ = b.Set(9)                           // a observes 9 too
package nexus
