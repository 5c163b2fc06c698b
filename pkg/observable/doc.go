// Package observable provides thin reactive wrappers over the nexus
// engine.
//
// [Value] is a readable, writable observable backed by a single hook; two
// Values bound together always agree on their value. [Computed] is a
// read-only value derived from one or more Values; the manager's
// derivation closure keeps it consistent in the same transaction that
// changes its inputs.
//
//	m := nexus.NewManager()
//	x, _ := observable.NewValue(m, 5)
//	y, _ := observable.NewValue(m, 3)
//	sum, _ := observable.NewComputed(m, func(in []any) int {
//	    return in[0].(int) + in[1].(int)
//	}, x, y)
//	x.Set(10)
//	_ = sum.Get() // 13
package observable
