package aggregate

// Options is the complete aggregation argument block: a key set plus an
// optional policy. Whether to send AGGREGATE SUM explicitly is up to the caller.
type Options[T Token] struct {
	Keys      KeySet[T]
	policy    Policy
	hasPolicy bool
}

// NewOptions wraps a key set with no explicit policy.
func NewOptions[T Token](keys KeySet[T]) Options[T] {
	return Options[T]{Keys: keys}
}

// WithAggregate returns a copy with the policy set.
// Args panics later if p is not a valid policy; validate parsed input with
// ParsePolicy or Policy.IsValid first.
func (o Options[T]) WithAggregate(p Policy) Options[T] {
	o.policy = p
	o.hasPolicy = true
	return o
}

// Aggregate returns the policy and whether one was set.
func (o Options[T]) Aggregate() (Policy, bool) {
	return o.policy, o.hasPolicy
}

// Args concatenates the key set tokens followed by the policy tokens.
func (o Options[T]) Args() []T {
	args := o.Keys.Args()
	if o.hasPolicy {
		args = append(args, PolicyArgs[T](o.policy)...)
	}
	return args
}

// TextOptions and BinaryOptions name the two instantiations.
type (
	TextOptions   = Options[string]
	BinaryOptions = Options[[]byte]
)
