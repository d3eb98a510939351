package iso8583

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// CompiledPackager holds the compiled schema of an ISO8583
// message: one FieldCodec per id, contiguous from 0. It is built once per
// configuration, holds no per-call state and is safe for concurrent use as
// long as every call works on its own Message and stream.
type CompiledPackager struct {
	hasMTI      bool
	fields      []FieldCodec // fields[i].ID() == i
	binaries    []bool       // cached fields[i].IsBinary()
	fieldsCount int
	fingerprint uint64
	logger      *slog.Logger
}

// NewCompiledPackager compiles descs into a packager, resolving every
// descriptor through r exactly once. A nil r uses NewFieldResolver().
//
// Field 0 (MTI) and field 1 (bitmap) get default definitions when absent;
// HasMTI reports true only if descs defines field 0. Field 65 gets its
// default definition when absent and the schema reaches beyond field 64.
// After that the ids must be contiguous from 0.
func NewCompiledPackager(descs []FieldDescriptor, r Resolver, opts ...PackagerOption) (*CompiledPackager, error) {
	cp := &CompiledPackager{logger: slog.Default()}
	for _, opt := range opts {
		opt(cp)
	}
	if r == nil {
		r = NewFieldResolver()
	}

	defs := make([]FieldDescriptor, 0, len(descs)+3)
	seen := make(map[int]bool, len(descs))
	maxID := 0
	for _, d := range descs {
		if d.ID < 0 || d.ID > maxFieldID {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, &FieldError{Field: d.ID, Err: ErrInvalidField})
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, &FieldError{Field: d.ID, Err: ErrDuplicateField})
		}
		seen[d.ID] = true
		defs = append(defs, d)
		if d.ID > maxID {
			maxID = d.ID
		}
	}

	cp.hasMTI = seen[0]
	if !seen[0] {
		defs = append(defs, Field0)
	}
	if !seen[1] {
		defs = append(defs, Field1)
	}
	if !seen[65] && maxID > 64 {
		defs = append(defs, Field65)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	for i, d := range defs {
		if d.ID != i {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, &FieldError{Field: i, Err: ErrFieldNotDefined})
		}
	}

	cp.fieldsCount = len(defs)
	cp.fields = make([]FieldCodec, cp.fieldsCount)
	cp.binaries = make([]bool, cp.fieldsCount)

	h := xxhash.New()
	fmt.Fprintf(h, "mti=%t;", cp.hasMTI)

	for i, d := range defs {
		codec, err := r.Resolve(d)
		if err == nil && codec == nil {
			err = fmt.Errorf("resolver returned no codec")
		}
		if err == nil && codec.ID() != d.ID {
			err = fmt.Errorf("resolver built field #%d", codec.ID())
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, &FieldError{Field: d.ID, Op: "resolve", Err: err})
		}

		cp.fields[i] = codec
		cp.binaries[i] = codec.IsBinary()
		fmt.Fprintf(h, "%s;", d)
	}
	cp.fingerprint = h.Sum64()

	cp.logger.Debug("packager compiled",
		slog.Int("fields", cp.fieldsCount),
		slog.Bool("has_mti", cp.hasMTI),
		slog.String("fingerprint", fmt.Sprintf("%016x", cp.fingerprint)),
	)

	return cp, nil
}

// HasMTI reports whether the schema defines field 0 explicitly.
func (cp *CompiledPackager) HasMTI() bool {
	return cp.hasMTI
}

// FieldCount returns the number of compiled fields (highest id plus one).
func (cp *CompiledPackager) FieldCount() int {
	return cp.fieldsCount
}

// Field returns the codec compiled for the given id.
func (cp *CompiledPackager) Field(fieldNum int) (FieldCodec, bool) {
	if fieldNum < 0 || fieldNum >= cp.fieldsCount {
		return nil, false
	}
	return cp.fields[fieldNum], true
}

// Fingerprint identifies the compiled schema. Packagers built from
// equivalent descriptors share a fingerprint.
func (cp *CompiledPackager) Fingerprint() uint64 {
	return cp.fingerprint
}

// Unpack decodes one message from r into msg.
//
// Values are stored through the message's raw access methods; presence is
// taken from the decoded bitmaps. On error the message is partially
// populated and must be discarded. The error is a *FieldError naming the
// field being read.
func (cp *CompiledPackager) Unpack(r io.Reader, msg *Message) error {
	bits1To128 := msg.RawBitmap()
	bits129To192 := msg.RawExtendedBitmap()

	count := min(msg.Size(), cp.fieldsCount)

	if cp.hasMTI {
		mti, err := cp.fields[0].ReadString(r)
		if err != nil {
			return &FieldError{Field: 0, Op: "read", Err: err}
		}
		msg.SetRawMTI(mti)
	}

	// primary bitmap, then the secondary one when bit 0 says it follows
	if err := cp.fields[1].ReadFixed(r, bits1To128[:8]); err != nil {
		return &FieldError{Field: 1, Op: "read", Err: err}
	}
	if GetBit(bits1To128, 0) {
		if err := cp.fields[1].ReadFixed(r, bits1To128[8:]); err != nil {
			return &FieldError{Field: 1, Op: "read", Err: err}
		}
	} else {
		clear(bits1To128[8:])
	}
	clear(bits129To192)

	for i := 2; i < count; i++ {
		if i == 65 {
			if GetBit(bits1To128, 64) {
				if err := cp.fields[65].ReadFixed(r, bits129To192); err != nil {
					return &FieldError{Field: 65, Op: "read", Err: err}
				}
			}
			continue
		}

		buf, bit := fieldBit(bits1To128, bits129To192, i)
		if !GetBit(buf, bit) {
			continue
		}

		if cp.binaries[i] {
			value, err := cp.fields[i].ReadBinary(r)
			if err != nil {
				return &FieldError{Field: i, Op: "read", Err: err}
			}
			msg.SetRawBinary(i, value)
		} else {
			value, err := cp.fields[i].ReadString(r)
			if err != nil {
				return &FieldError{Field: i, Op: "read", Err: err}
			}
			msg.SetRawString(i, value)
		}
	}

	return nil
}

// UnpackBytes decodes one message from data into msg.
func (cp *CompiledPackager) UnpackBytes(data []byte, msg *Message) error {
	return cp.Unpack(bytes.NewReader(data), msg)
}

// Pack encodes msg to w.
//
// Pack first brings the message's bitmap flags up to date: bit 0 (secondary
// bitmap follows) and bit 64 (field 65 carries the tertiary bitmap) are
// recomputed from the fields present, and field 65's slot is pointed at the
// tertiary bitmap. On error the bytes already written to w must be
// discarded. The error is a *FieldError naming the field being written.
func (cp *CompiledPackager) Pack(msg *Message, w io.Writer) error {
	bits1To128 := msg.RawBitmap()
	bits129To192 := msg.RawExtendedBitmap()

	binaryValues := msg.RawBinaries()
	stringValues := msg.RawStrings()

	// is bit 65 on?
	if BitsEmpty(bits129To192) {
		ClearBit(bits1To128, 64)
		if len(binaryValues) > 65 {
			binaryValues[65] = nil
			stringValues[65] = ""
		}
	} else {
		SetBit(bits1To128, 64)
		if len(binaryValues) > 65 {
			binaryValues[65] = bits129To192
			stringValues[65] = ""
		}
	}

	// is bit 1 on? bit 64 alone is enough to force it.
	extended := BitsUsedLength(bits1To128) > 8
	if extended {
		SetBit(bits1To128, 0)
	} else {
		ClearBit(bits1To128, 0)
	}

	count := min(msg.Size(), cp.fieldsCount)

	if cp.hasMTI {
		if err := cp.fields[0].WriteString(w, msg.MTI()); err != nil {
			return &FieldError{Field: 0, Op: "write", Err: err}
		}
	}

	bitmapLen := 8
	if extended {
		bitmapLen = 16
	}
	if err := cp.fields[1].WriteFixed(w, bits1To128[:bitmapLen]); err != nil {
		return &FieldError{Field: 1, Op: "write", Err: err}
	}

	for i := 2; i < count && i < 129; i++ {
		if !GetBit(bits1To128, i-1) {
			continue
		}

		var err error
		if i == 65 {
			err = cp.fields[65].WriteFixed(w, binaryValues[65][:ExtendedBitmapSize])
		} else {
			err = cp.writeField(w, i, stringValues, binaryValues)
		}
		if err != nil {
			return &FieldError{Field: i, Op: "write", Err: err}
		}
	}

	for i := 129; i < count; i++ {
		if !GetBit(bits129To192, i-129) {
			continue
		}
		if err := cp.writeField(w, i, stringValues, binaryValues); err != nil {
			return &FieldError{Field: i, Op: "write", Err: err}
		}
	}

	return nil
}

// writeField writes field i from its canonical slot. A value stored in the
// other representation is converted byte for byte.
func (cp *CompiledPackager) writeField(w io.Writer, i int, stringValues []string, binaryValues [][]byte) error {
	b := binaryValues[i]
	if cp.binaries[i] {
		if b == nil && stringValues[i] != "" {
			b = []byte(stringValues[i])
		}
		return cp.fields[i].WriteBinary(w, b)
	}
	if b != nil {
		return cp.fields[i].WriteString(w, string(b))
	}
	return cp.fields[i].WriteString(w, stringValues[i])
}

// PackBytes encodes msg and returns the encoded bytes.
func (cp *CompiledPackager) PackBytes(msg *Message) ([]byte, error) {
	buf := getPackBuffer()
	defer putPackBuffer(buf)

	if err := cp.Pack(msg, buf); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
