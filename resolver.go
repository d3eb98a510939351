package iso8583

import "fmt"

// Resolver turns a field descriptor into a FieldCodec. A CompiledPackager
// calls it exactly once per descriptor while compiling.
type Resolver interface {
	Resolve(d FieldDescriptor) (FieldCodec, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(d FieldDescriptor) (FieldCodec, error)

func (f ResolverFunc) Resolve(d FieldDescriptor) (FieldCodec, error) {
	return f(d)
}

// FieldConstructor builds a codec for descriptors naming a custom type.
type FieldConstructor func(d FieldDescriptor, defaults FieldDefaults) (FieldCodec, error)

// FieldResolver is the standard Resolver. It builds the built-in codecs and
// any custom types registered with WithFieldType. A FieldResolver is owned by
// whoever constructs it; there is no process-wide registry.
type FieldResolver struct {
	defaults FieldDefaults
	types    map[string]FieldConstructor
}

// ResolverOption configures a FieldResolver.
type ResolverOption func(*FieldResolver)

// WithDefaultAlign sets the alignment used when a descriptor has none.
func WithDefaultAlign(align Alignment) ResolverOption {
	return func(fr *FieldResolver) {
		fr.defaults.Align = align
	}
}

// WithDefaultPadWith sets the pad character used when a descriptor has none.
func WithDefaultPadWith(padWith string) ResolverOption {
	return func(fr *FieldResolver) {
		fr.defaults.PadWith = padWith
	}
}

// WithDefaultEmptyValue sets the sentinel returned for empty values.
func WithDefaultEmptyValue(emptyValue string) ResolverOption {
	return func(fr *FieldResolver) {
		fr.defaults.EmptyValue = emptyValue
	}
}

// WithFieldType registers a constructor for descriptors whose Type is name.
func WithFieldType(name string, ctor FieldConstructor) ResolverOption {
	return func(fr *FieldResolver) {
		if fr.types == nil {
			fr.types = make(map[string]FieldConstructor)
		}
		fr.types[name] = ctor
	}
}

// NewFieldResolver creates a resolver with the given options.
func NewFieldResolver(opts ...ResolverOption) *FieldResolver {
	fr := &FieldResolver{}
	for _, opt := range opts {
		opt(fr)
	}
	return fr
}

// Defaults returns the defaults applied to descriptors.
func (fr *FieldResolver) Defaults() FieldDefaults {
	return fr.defaults
}

func (fr *FieldResolver) Resolve(d FieldDescriptor) (FieldCodec, error) {
	if d.Type == "" {
		return NewFieldCodec(d, fr.defaults)
	}

	ctor, ok := fr.types[d.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, d.Type)
	}
	codec, err := ctor(d, fr.defaults)
	if err != nil {
		return nil, err
	}
	if codec.ID() != d.ID {
		return nil, fmt.Errorf("%w: type %q built field %d for descriptor %d",
			ErrInvalidDescriptor, d.Type, codec.ID(), d.ID)
	}
	return codec, nil
}
