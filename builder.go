package iso8583

import "sync"

var builderPool = sync.Pool{
	New: func() interface{} {
		return &Builder{
			errors: make([]error, 0, 4),
		}
	},
}

// Builder assembles a Message for one packager with chained calls. Field ids
// are checked against the packager's schema and every value is stored in the
// representation its codec carries. The first error is kept and reported by
// Build, MustBuild and Pack.
type Builder struct {
	packager *CompiledPackager
	msg      *Message
	errors   []error
}

// NewBuilder starts a message sized to the packager's schema. opts are
// applied after sizing.
func NewBuilder(packager *CompiledPackager, opts ...MessageOption) *Builder {
	b := builderPool.Get().(*Builder)
	b.packager = packager
	b.errors = b.errors[:0]

	b.msg = NewMessage(WithSize(packager.FieldCount()))
	for _, opt := range opts {
		opt(b.msg)
	}
	return b
}

// Release returns the builder to the pool. A message that was never built
// goes back to its own pool.
func (b *Builder) Release() {
	if b.msg != nil {
		b.msg.Release()
		b.msg = nil
	}
	b.packager = nil
	b.errors = b.errors[:0]
	builderPool.Put(b)
}

func (b *Builder) fail(err error) *Builder {
	b.errors = append(b.errors, err)
	return b
}

func (b *Builder) MTI(mti string) *Builder {
	if err := b.msg.SetMTI(mti); err != nil {
		return b.fail(err)
	}
	return b
}

// Field sets a value. Text given to a binary field and bytes given to a text
// field are converted byte for byte.
func (b *Builder) Field(fieldNum int, value interface{}) *Builder {
	return b.FieldWidth(fieldNum, value, 0)
}

// FieldWidth is Field with integers zero-padded to width digits.
func (b *Builder) FieldWidth(fieldNum int, value interface{}, width int) *Builder {
	codec, ok := b.packager.Field(fieldNum)
	if !ok {
		return b.fail(&FieldError{Field: fieldNum, Err: ErrFieldNotDefined})
	}

	switch v := value.(type) {
	case string:
		if codec.IsBinary() {
			value = []byte(v)
		}
	case []byte:
		if !codec.IsBinary() {
			value = string(v)
		}
	}

	if err := b.msg.SetFieldWithWidth(fieldNum, value, width); err != nil {
		return b.fail(err)
	}
	return b
}

// Build hands the message over to the caller, who must Release it.
func (b *Builder) Build() (*Message, error) {
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}
	msg := b.msg
	b.msg = nil // Transfer ownership
	return msg, nil
}

func (b *Builder) MustBuild() *Message {
	msg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return msg
}

// Pack encodes the message built so far. The builder keeps the message.
func (b *Builder) Pack() ([]byte, error) {
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}
	return b.packager.PackBytes(b.msg)
}
