package iso8583

import (
	"encoding/hex"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// FieldCodec reads and writes one data element. Implementations are
// immutable once built and safe for concurrent use.
type FieldCodec interface {
	// ID returns the data element number the codec was built for.
	ID() int
	// IsBinary reports whether values are canonically carried as bytes
	// rather than text.
	IsBinary() bool

	// ReadString and ReadBinary reject a decoded length prefix above the
	// field's maximum length with ErrInvalidLength, even when the prefix
	// itself could express it. Values that decode to nothing come back as
	// the field's empty value; a binary empty value is a fresh slice on
	// every call.
	ReadString(r io.Reader) (string, error)
	ReadBinary(r io.Reader) ([]byte, error)
	// WriteString fails with ErrInvalidText when a UTF-16 field is given
	// invalid UTF-8.
	WriteString(w io.Writer, value string) error
	WriteBinary(w io.Writer, value []byte) error

	// ReadFixed fills dst straight from the stream without padding rules.
	// It is used for the bitmap carriers (fields 1 and 65) only.
	ReadFixed(r io.Reader, dst []byte) error
	// WriteFixed is the counterpart of ReadFixed.
	WriteFixed(w io.Writer, src []byte) error
}

// FieldDefaults fill in descriptor attributes that a schema leaves unset.
type FieldDefaults struct {
	Align      Alignment
	PadWith    string // "" selects the per-encoding default
	EmptyValue string
}

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// fieldCodec is the built-in FieldCodec. Its behavior is selected by the
// (length type, prefix encoding, value encoding) tag set at construction.
type fieldCodec struct {
	id        int
	length    LengthType
	encoding  Encoding
	maxLength int // in length units: bytes, UTF-16 units, digits or hex characters
	align     Alignment

	emptyString string
	emptyBinary []byte

	prefix prefixer   // variable length only
	pad    *padder    // fixed ASCII, Unicode, BCD (digit level) and binary
	hexPad *hexPadder // fixed hex
}

// NewFieldCodec builds the built-in codec for d.
func NewFieldCodec(d FieldDescriptor, defaults FieldDefaults) (FieldCodec, error) {
	if d.ID < 0 || d.ID > maxFieldID {
		return nil, fmt.Errorf("%w: id %d out of range 0-%d", ErrInvalidDescriptor, d.ID, maxFieldID)
	}
	if d.Encoding < EncodingASCII || d.Encoding > EncodingHex {
		return nil, fmt.Errorf("%w: unknown encoding %d", ErrInvalidDescriptor, d.Encoding)
	}

	c := &fieldCodec{
		id:        d.ID,
		length:    d.Length,
		encoding:  d.Encoding,
		maxLength: d.MaxLength,
		align:     defaults.Align,
	}
	if d.Align != nil {
		c.align = *d.Align
	}
	if c.align < AlignNone || c.align > AlignUntrimmedRight {
		return nil, fmt.Errorf("%w: unknown alignment %d", ErrInvalidDescriptor, c.align)
	}

	empty := defaults.EmptyValue
	if d.EmptyValue != nil {
		empty = *d.EmptyValue
	}
	if c.encoding.IsBinary() {
		b, err := hex.DecodeString(empty)
		if err != nil {
			return nil, fmt.Errorf("%w: empty value %q is not hex: %w", ErrInvalidDescriptor, empty, err)
		}
		c.emptyBinary = b
	} else {
		c.emptyString = empty
	}

	var err error
	switch d.Length {
	case LengthFixed:
		err = c.initFixed(d, defaults)
	case LengthLLVAR, LengthLLLVAR, LengthLLLLVAR, LengthBinaryVAR:
		err = c.initPrefix(d)
	default:
		err = fmt.Errorf("%w: unknown length type %d", ErrInvalidDescriptor, d.Length)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *fieldCodec) initFixed(d FieldDescriptor, defaults FieldDefaults) error {
	if c.maxLength <= 0 {
		return fmt.Errorf("%w: fixed field needs a positive length, got %d", ErrInvalidDescriptor, c.maxLength)
	}

	padWith := defaults.PadWith
	if d.PadWith != nil {
		padWith = *d.PadWith
	}
	unit, err := padUnit(c.encoding, padWith)
	if err != nil {
		return err
	}

	switch c.encoding {
	case EncodingHex:
		c.hexPad = newHexPadder(c.align, unit[0], c.maxLength)
	case EncodingUnicode:
		c.pad = newPadder(c.align, unit, 2*c.maxLength)
	default:
		c.pad = newPadder(c.align, unit, c.maxLength)
	}
	return nil
}

func (c *fieldCodec) initPrefix(d FieldDescriptor) error {
	if d.Length == LengthBinaryVAR {
		if c.maxLength <= 0 {
			return fmt.Errorf("%w: binary-prefixed field needs a maximum length", ErrInvalidDescriptor)
		}
		c.prefix = newBinaryPrefixer(c.maxLength)
		return nil
	}

	digits := d.Length.prefixDigits()
	switch d.Prefix {
	case PrefixASCII:
		c.prefix = asciiPrefixer{digits: digits}
	case PrefixBCD:
		c.prefix = bcdPrefixer{digits: digits}
	default:
		return fmt.Errorf("%w: unknown prefix encoding %d", ErrInvalidDescriptor, d.Prefix)
	}

	limit := c.prefix.maxValue()
	switch {
	case c.maxLength == 0:
		c.maxLength = limit
	case c.maxLength < 0 || c.maxLength > limit:
		return fmt.Errorf("%w: maximum length %d does not fit a %d-digit prefix", ErrInvalidDescriptor, c.maxLength, digits)
	}
	return nil
}

// padUnit converts the configured pad character into the byte unit used on
// the wire for the given encoding.
func padUnit(enc Encoding, padWith string) ([]byte, error) {
	switch enc {
	case EncodingASCII:
		if padWith == "" {
			padWith = " "
		}
		if len(padWith) != 1 {
			return nil, fmt.Errorf("%w: pad %q must be a single byte", ErrInvalidDescriptor, padWith)
		}
		return []byte(padWith), nil

	case EncodingBCD:
		if padWith == "" {
			padWith = "0"
		}
		if len(padWith) != 1 || padWith[0] < '0' || padWith[0] > '9' {
			return nil, fmt.Errorf("%w: pad %q must be a single digit", ErrInvalidDescriptor, padWith)
		}
		return []byte(padWith), nil

	case EncodingUnicode:
		if padWith == "" {
			padWith = " "
		}
		if utf8.RuneCountInString(padWith) != 1 {
			return nil, fmt.Errorf("%w: pad %q must be a single character", ErrInvalidDescriptor, padWith)
		}
		unit, err := utf16BE.NewEncoder().String(padWith)
		if err != nil || len(unit) != 2 {
			return nil, fmt.Errorf("%w: pad %q has no single UTF-16 unit", ErrInvalidDescriptor, padWith)
		}
		return []byte(unit), nil

	default: // binary and hex pad with a raw byte, given as one character or two hex digits
		switch len(padWith) {
		case 0:
			return []byte{0}, nil
		case 1:
			return []byte(padWith), nil
		case 2:
			b, err := hex.DecodeString(padWith)
			if err == nil {
				return b, nil
			}
		}
		return nil, fmt.Errorf("%w: pad %q must be one byte", ErrInvalidDescriptor, padWith)
	}
}

func (c *fieldCodec) ID() int {
	return c.id
}

func (c *fieldCodec) IsBinary() bool {
	return c.encoding.IsBinary()
}

func (c *fieldCodec) rangeError(actual, max int) error {
	return &RangeError{Field: c.id, Min: 0, Max: max, Actual: actual}
}

// readLength reads the prefix and rejects lengths above the field maximum.
func (c *fieldCodec) readLength(r io.Reader) (int, error) {
	n, err := c.prefix.readLength(r)
	if err != nil {
		return 0, err
	}
	if n > c.maxLength {
		return 0, fmt.Errorf("%w: length %d exceeds maximum %d", ErrInvalidLength, n, c.maxLength)
	}
	return n, nil
}

func (c *fieldCodec) ReadString(r io.Reader) (string, error) {
	switch c.encoding {
	case EncodingBinary, EncodingHex:
		b, err := c.ReadBinary(r)
		return string(b), err
	case EncodingUnicode:
		return c.readUnicode(r)
	case EncodingBCD:
		return c.readBCD(r)
	}

	if c.pad != nil {
		value, ok, err := c.pad.read(r)
		if err != nil {
			return "", err
		}
		if !ok {
			return c.emptyString, nil
		}
		return string(value), nil
	}

	n, err := c.readLength(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return c.emptyString, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (c *fieldCodec) readUnicode(r io.Reader) (string, error) {
	var raw []byte
	if c.pad != nil {
		value, ok, err := c.pad.read(r)
		if err != nil {
			return "", err
		}
		if !ok {
			return c.emptyString, nil
		}
		raw = value
	} else {
		n, err := c.readLength(r)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return c.emptyString, nil
		}
		raw = make([]byte, 2*n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return "", err
		}
	}

	s, err := utf16BE.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

func (c *fieldCodec) readBCD(r io.Reader) (string, error) {
	if c.pad != nil {
		raw := make([]byte, bcdLen(c.maxLength))
		if _, err := io.ReadFull(r, raw); err != nil {
			return "", err
		}
		digits := make([]byte, c.maxLength)
		if err := unpackBCD(digits, raw, c.maxLength, !c.align.leftAligned()); err != nil {
			return "", err
		}
		value, ok := c.pad.trim(digits)
		if !ok {
			return c.emptyString, nil
		}
		return string(value), nil
	}

	n, err := c.readLength(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return c.emptyString, nil
	}
	raw := make([]byte, bcdLen(n))
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", err
	}
	digits := make([]byte, n)
	if err := unpackBCD(digits, raw, n, false); err != nil {
		return "", err
	}
	return string(digits), nil
}

// emptyBytes copies the empty value so callers never share the codec's own.
func (c *fieldCodec) emptyBytes() []byte {
	return append([]byte{}, c.emptyBinary...)
}

func (c *fieldCodec) ReadBinary(r io.Reader) ([]byte, error) {
	switch c.encoding {
	case EncodingASCII, EncodingUnicode, EncodingBCD:
		s, err := c.ReadString(r)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}

	if c.hexPad != nil {
		value, ok, err := c.hexPad.read(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return c.emptyBytes(), nil
		}
		return value, nil
	}
	if c.pad != nil {
		value, ok, err := c.pad.read(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return c.emptyBytes(), nil
		}
		return value, nil
	}

	n, err := c.readLength(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return c.emptyBytes(), nil
	}

	if c.encoding == EncodingHex {
		if n&1 != 0 {
			return nil, fmt.Errorf("%w: odd hex length %d", ErrInvalidHex, n)
		}
		buf := make([]byte, n/2)
		if err := readHex(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *fieldCodec) WriteString(w io.Writer, value string) error {
	switch c.encoding {
	case EncodingBinary, EncodingHex:
		return c.WriteBinary(w, []byte(value))
	case EncodingUnicode:
		return c.writeUnicode(w, value)
	case EncodingBCD:
		return c.writeBCD(w, value)
	}

	vlen := len(value)
	if vlen > c.maxLength {
		return c.rangeError(vlen, c.maxLength)
	}
	if c.pad != nil {
		return c.pad.write(w, []byte(value))
	}
	if err := c.prefix.writeLength(w, vlen); err != nil {
		return err
	}
	_, err := io.WriteString(w, value)
	return err
}

func (c *fieldCodec) writeUnicode(w io.Writer, value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidText, value)
	}
	raw, err := utf16BE.NewEncoder().Bytes([]byte(value))
	if err != nil {
		return err
	}

	units := len(raw) / 2
	if units > c.maxLength {
		return c.rangeError(units, c.maxLength)
	}
	if c.pad != nil {
		return c.pad.write(w, raw)
	}
	if err := c.prefix.writeLength(w, units); err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

func (c *fieldCodec) writeBCD(w io.Writer, value string) error {
	vlen := len(value)
	if vlen > c.maxLength {
		return c.rangeError(vlen, c.maxLength)
	}

	if c.pad != nil {
		digits := c.pad.padded([]byte(value))
		out := make([]byte, bcdLen(c.maxLength))
		if err := packBCD(out, digits, !c.align.leftAligned()); err != nil {
			return err
		}
		_, err := w.Write(out)
		return err
	}

	out := make([]byte, bcdLen(vlen))
	if err := packBCD(out, []byte(value), false); err != nil {
		return err
	}
	if err := c.prefix.writeLength(w, vlen); err != nil {
		return err
	}
	_, err := w.Write(out)
	return err
}

func (c *fieldCodec) WriteBinary(w io.Writer, value []byte) error {
	switch c.encoding {
	case EncodingASCII, EncodingUnicode, EncodingBCD:
		return c.WriteString(w, string(value))
	}

	vlen := len(value)
	if c.hexPad != nil {
		if vlen > c.hexPad.length {
			return c.rangeError(2*vlen, 2*c.hexPad.length)
		}
		return c.hexPad.write(w, value)
	}
	if c.pad != nil {
		if vlen > c.maxLength {
			return c.rangeError(vlen, c.maxLength)
		}
		return c.pad.write(w, value)
	}

	if c.encoding == EncodingHex {
		if 2*vlen > c.maxLength {
			return c.rangeError(2*vlen, c.maxLength)
		}
		if err := c.prefix.writeLength(w, 2*vlen); err != nil {
			return err
		}
		return writeHex(w, value)
	}

	if vlen > c.maxLength {
		return c.rangeError(vlen, c.maxLength)
	}
	if err := c.prefix.writeLength(w, vlen); err != nil {
		return err
	}
	_, err := w.Write(value)
	return err
}

func (c *fieldCodec) ReadFixed(r io.Reader, dst []byte) error {
	if c.encoding == EncodingHex {
		return readHex(r, dst)
	}
	_, err := io.ReadFull(r, dst)
	return err
}

func (c *fieldCodec) WriteFixed(w io.Writer, src []byte) error {
	if c.encoding == EncodingHex {
		return writeHex(w, src)
	}
	_, err := w.Write(src)
	return err
}
