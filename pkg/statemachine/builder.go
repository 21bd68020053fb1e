package statemachine

// Builder collects machine options through a fluent API. Concrete machines
// use it to declare their transition table in one place.
type Builder struct {
	field StateField
	opts  []Option
}

// NewBuilder starts a machine declaration for field.
func NewBuilder(field StateField) *Builder {
	return &Builder{field: field}
}

// With appends arbitrary machine options.
func (b *Builder) With(opts ...Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Entity sets the entity reference.
func (b *Builder) Entity(ref EntityRef) *Builder {
	return b.With(WithEntity(ref))
}

// Transition declares from -> to handled by handler.
func (b *Builder) Transition(from, to State, handler Handler, opts ...TransitionOption) *Builder {
	return b.With(WithTransition(from, to, handler, opts...))
}

// Before appends a hook run before every transition.
func (b *Builder) Before(h Hook) *Builder {
	return b.With(BeforeHook(h))
}

// After appends a hook run after every successful transition.
func (b *Builder) After(h Hook) *Builder {
	return b.With(AfterHook(h))
}

// Build constructs the machine. Options are applied in declaration order.
func (b *Builder) Build() (*Machine, error) {
	return New(b.field, b.opts...)
}
