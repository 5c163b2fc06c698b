package nexus

// Consumer callbacks are discovered by interface assertion on a hook's
// owner. An owner may implement any subset; hooks whose owner implements
// none simply store and share values.
//
// Callback maps are keyed by the owner's hook keys (the key passed at hook
// construction). The candidate map passed in always covers the owner's full
// key set: committed values overlaid with the transaction's pending changes.

// Deriver lets an owner keep secondary values consistent. During the
// derivation closure the manager repeatedly calls ValuesToUpdate on every
// affected owner until no callback proposes a new change.
//
// The returned map proposes values for the owner's own keys. Returning nil
// or an empty map proposes nothing. ValuesToUpdate must be a pure function
// of its input; it must not submit values or mutate hooks.
type Deriver interface {
	ValuesToUpdate(candidate map[string]any) map[string]any
}

// Validator lets an owner veto a transaction. After the derivation closure
// completes, the manager calls ValidateValues on every affected owner with
// the fully-merged candidate values. The first (false, reason) aborts the
// transaction; no nexus value is mutated.
type Validator interface {
	ValidateValues(candidate map[string]any) (ok bool, reason string)
}

// Invalidated is notified after a transaction commits values touching one
// of the owner's hooks. It runs post-commit and has no override power;
// a panic propagates to the submitter but does not roll back the commit.
type Invalidated interface {
	OnInvalidated()
}
