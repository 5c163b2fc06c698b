package observable

import (
	"fmt"
	"sync/atomic"

	"github.com/go-drift/nexus/pkg/nexus"
)

// Input is a value a [Computed] can derive from. *Value[T] implements it
// for every T.
type Input interface {
	// bindInput creates a read-only hook owned by owner under key, bound
	// to the input's group, and returns a reader for its current value.
	bindInput(owner any, key string) (read func() any, err error)
}

func (v *Value[T]) bindInput(owner any, key string) (func() any, error) {
	h, err := nexus.NewBound(owner, key, v.hook, nexus.UseTargetValue, nexus.ReadOnly())
	if err != nil {
		return nil, err
	}
	return func() any {
		val, verr := h.Value()
		if verr != nil {
			panic(verr)
		}
		return val
	}, nil
}

// computedOwner is the consumer registered with the manager. Its input
// hooks share the sources' nexuses, so any transaction touching a source
// reaches ValuesToUpdate and recomputes the output in the same commit.
type computedOwner struct {
	n       int
	compute func(inputs []any) any
	// ready flips once all hooks exist; transactions triggered while the
	// inputs are still being bound must not derive yet.
	ready atomic.Bool
}

func inKey(i int) string { return fmt.Sprintf("in%d", i) }

// ValuesToUpdate implements [nexus.Deriver].
func (c *computedOwner) ValuesToUpdate(candidate map[string]any) map[string]any {
	if !c.ready.Load() {
		return nil
	}
	inputs := make([]any, c.n)
	for i := range inputs {
		inputs[i] = candidate[inKey(i)]
	}
	return map[string]any{"out": c.compute(inputs)}
}

// Computed is a read-only value derived from one or more inputs. The
// derivation runs inside the manager's transaction protocol: whenever an
// input changes, the computed value is recomputed, validated and committed
// atomically with the input change.
type Computed[T any] struct {
	owner *computedOwner
	out   *nexus.Hook[T]
}

// NewComputed creates a Computed over the given inputs. compute receives
// the inputs' current values in argument order. It must be a pure
// function; it runs inside transactions.
func NewComputed[T any](m *nexus.Manager, compute func(inputs []any) T, inputs ...Input) (*Computed[T], error) {
	owner := &computedOwner{
		n:       len(inputs),
		compute: func(in []any) any { return compute(in) },
	}
	readers := make([]func() any, len(inputs))
	for i, in := range inputs {
		read, err := in.bindInput(owner, inKey(i))
		if err != nil {
			return nil, err
		}
		readers[i] = read
	}
	initial := make([]any, len(readers))
	for i, read := range readers {
		initial[i] = read()
	}
	out, err := nexus.New(m, owner, "out", compute(initial), nexus.ReadOnly())
	if err != nil {
		return nil, err
	}
	owner.ready.Store(true)
	return &Computed[T]{owner: owner, out: out}, nil
}

// Get returns the current derived value.
func (c *Computed[T]) Get() T {
	val, err := c.out.Value()
	if err != nil {
		panic(err)
	}
	return val
}

// AddListener registers fn to run with the new derived value after each
// committed change. The returned function removes the listener.
func (c *Computed[T]) AddListener(fn func(T)) (remove func()) {
	return c.out.AddListener(func() {
		fn(c.Get())
	})
}

// Hook exposes the backing output hook for direct engine access.
func (c *Computed[T]) Hook() *nexus.Hook[T] { return c.out }
