// Package immutable converts arbitrary values into forms that cannot be
// mutated through an aliasing reference.
//
// The nexus manager only commits values that are provably immutable: once a
// value is stored in a hook group, no caller may hold a reference through
// which the committed value could later change. [Freeze] is the single entry
// point: scalars pass through unchanged, mutable collections are recursively
// copied into the frozen wrapper types ([List], [Map], [Set], [Bytes]), and
// anything that cannot be proven safe is rejected with an
// [UnsupportedTypeError].
//
// # Registry
//
// Application types that are immutable by construction (for example a path
// value type, or a handle whose fields never change after creation) can be
// registered in a [Registry]. Registered types pass through Freeze by
// identity, without copying. Registering an interface type accepts every
// implementation of that interface.
//
// # Strings and bytes
//
// Strings are always treated as atomic scalar values, never as sequences of
// characters. Byte slices are copied into the [Bytes] wrapper because Go
// byte slices are mutable through aliases.
package immutable
