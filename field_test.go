package iso8583

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCodec(t *testing.T, d FieldDescriptor) FieldCodec {
	t.Helper()

	c, err := NewFieldCodec(d, FieldDefaults{})
	require.NoError(t, err)
	return c
}

func writeString(t *testing.T, c FieldCodec, value string) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, c.WriteString(&buf, value))
	return buf.Bytes()
}

func writeBinary(t *testing.T, c FieldCodec, value []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, c.WriteBinary(&buf, value))
	return buf.Bytes()
}

func TestFieldCodec_LLVARBoundary(t *testing.T) {
	t.Parallel()

	c := mustCodec(t, FieldDescriptor{ID: 44, Length: LengthLLVAR, Encoding: EncodingASCII, EmptyValue: strPtr("-")})

	wire := writeString(t, c, strings.Repeat("x", 99))
	assert.Equal(t, "99", string(wire[:2]))
	assert.Len(t, wire, 101)

	var buf bytes.Buffer
	err := c.WriteString(&buf, strings.Repeat("x", 100))
	require.ErrorIs(t, err, ErrValueOutOfRange)

	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 44, re.Field)
	assert.Equal(t, 99, re.Max)
	assert.Equal(t, 100, re.Actual)

	value, err := c.ReadString(bytes.NewReader([]byte("00")))
	require.NoError(t, err)
	assert.Equal(t, "-", value)
}

func TestFieldCodec_ASCIIVariable(t *testing.T) {
	t.Parallel()

	c := mustCodec(t, FieldDescriptor{ID: 2, Length: LengthLLVAR, Encoding: EncodingASCII, MaxLength: 19})

	wire := writeString(t, c, "4111111111111111")
	assert.Equal(t, "164111111111111111", string(wire))

	value, err := c.ReadString(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", value)

	// a prefix above the field maximum is rejected before reading the value
	_, err = c.ReadString(bytes.NewReader([]byte("20" + strings.Repeat("1", 20))))
	assert.ErrorIs(t, err, ErrInvalidLength)

	lll := mustCodec(t, FieldDescriptor{ID: 48, Length: LengthLLLVAR, Encoding: EncodingASCII})
	assert.Equal(t, "005HELLO", string(writeString(t, lll, "HELLO")))

	llll := mustCodec(t, FieldDescriptor{ID: 48, Length: LengthLLLLVAR, Encoding: EncodingASCII})
	assert.Equal(t, "0005HELLO", string(writeString(t, llll, "HELLO")))
}

func TestFieldCodec_FixedASCII(t *testing.T) {
	t.Parallel()

	c := mustCodec(t, FieldDescriptor{ID: 41, Length: LengthFixed, Encoding: EncodingASCII, MaxLength: 8,
		Align: alignPtr(AlignTrimmedLeft), EmptyValue: strPtr("n/a")})

	wire := writeString(t, c, "TERM01")
	assert.Equal(t, "TERM01  ", string(wire))

	value, err := c.ReadString(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, "TERM01", value)

	value, err = c.ReadString(bytes.NewReader([]byte("        ")))
	require.NoError(t, err)
	assert.Equal(t, "n/a", value)

	var buf bytes.Buffer
	assert.ErrorIs(t, c.WriteString(&buf, "TERMINAL1"), ErrValueOutOfRange)

	num := mustCodec(t, fixedN(4, 12))
	assert.Equal(t, "000000001000", string(writeString(t, num, "1000")))
}

func TestFieldCodec_BCD(t *testing.T) {
	t.Parallel()

	t.Run("variable with packed prefix", func(t *testing.T) {
		t.Parallel()

		c := mustCodec(t, FieldDescriptor{ID: 2, Length: LengthLLLVAR, Prefix: PrefixBCD, Encoding: EncodingBCD})

		wire := writeString(t, c, "12345")
		assert.Equal(t, []byte{0x00, 0x05, 0x12, 0x34, 0x50}, wire)

		value, err := c.ReadString(bytes.NewReader(wire))
		require.NoError(t, err)
		assert.Equal(t, "12345", value)
	})

	t.Run("fixed right aligned", func(t *testing.T) {
		t.Parallel()

		c := mustCodec(t, FieldDescriptor{ID: 3, Length: LengthFixed, Encoding: EncodingBCD, MaxLength: 3,
			Align: alignPtr(AlignUntrimmedRight)})

		wire := writeString(t, c, "5")
		assert.Equal(t, []byte{0x00, 0x05}, wire)

		value, err := c.ReadString(bytes.NewReader(wire))
		require.NoError(t, err)
		assert.Equal(t, "005", value)
	})

	t.Run("fixed trimmed", func(t *testing.T) {
		t.Parallel()

		c := mustCodec(t, FieldDescriptor{ID: 3, Length: LengthFixed, Encoding: EncodingBCD, MaxLength: 4,
			Align: alignPtr(AlignTrimmedRight)})

		wire := writeString(t, c, "42")
		assert.Equal(t, []byte{0x00, 0x42}, wire)

		value, err := c.ReadString(bytes.NewReader(wire))
		require.NoError(t, err)
		assert.Equal(t, "42", value)
	})

	t.Run("non digit", func(t *testing.T) {
		t.Parallel()

		c := mustCodec(t, FieldDescriptor{ID: 3, Length: LengthLLVAR, Encoding: EncodingBCD})
		var buf bytes.Buffer
		assert.ErrorIs(t, c.WriteString(&buf, "12A"), ErrInvalidBCD)
	})
}

func TestFieldCodec_Unicode(t *testing.T) {
	t.Parallel()

	c := mustCodec(t, FieldDescriptor{ID: 43, Length: LengthLLVAR, Encoding: EncodingUnicode, MaxLength: 10})

	wire := writeString(t, c, "hé")
	assert.Equal(t, []byte{'0', '2', 0x00, 'h', 0x00, 0xE9}, wire)

	value, err := c.ReadString(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, "hé", value)

	var buf bytes.Buffer
	assert.ErrorIs(t, c.WriteString(&buf, strings.Repeat("é", 11)), ErrValueOutOfRange)

	fixed := mustCodec(t, FieldDescriptor{ID: 43, Length: LengthFixed, Encoding: EncodingUnicode, MaxLength: 3,
		Align: alignPtr(AlignTrimmedLeft)})

	wire = writeString(t, fixed, "A")
	assert.Equal(t, []byte{0x00, 'A', 0x00, ' ', 0x00, ' '}, wire)

	value, err = fixed.ReadString(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, "A", value)
}

func TestFieldCodec_Binary(t *testing.T) {
	t.Parallel()

	fixed := mustCodec(t, FieldDescriptor{ID: 52, Length: LengthFixed, Encoding: EncodingBinary, MaxLength: 4})
	assert.True(t, fixed.IsBinary())

	wire := writeBinary(t, fixed, []byte{1, 2})
	assert.Equal(t, []byte{1, 2, 0, 0}, wire)

	value, err := fixed.ReadBinary(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0, 0}, value)

	var buf bytes.Buffer
	assert.ErrorIs(t, fixed.WriteBinary(&buf, []byte{1, 2, 3, 4, 5}), ErrValueOutOfRange)

	prefixed := mustCodec(t, FieldDescriptor{ID: 55, Length: LengthBinaryVAR, Encoding: EncodingBinary, MaxLength: 300,
		EmptyValue: strPtr("00")})

	wire = writeBinary(t, prefixed, []byte("abc"))
	assert.Equal(t, []byte{0x03, 0x00, 'a', 'b', 'c'}, wire)

	value, err = prefixed.ReadBinary(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), value)

	value, err = prefixed.ReadBinary(bytes.NewReader([]byte{0x00, 0x00}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, value)
}

func TestFieldCodec_Hex(t *testing.T) {
	t.Parallel()

	c := mustCodec(t, FieldDescriptor{ID: 55, Length: LengthLLVAR, Encoding: EncodingHex, MaxLength: 4})

	wire := writeBinary(t, c, []byte{0xDE, 0xAD})
	assert.Equal(t, "04DEAD", string(wire))

	value, err := c.ReadBinary(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD}, value)

	var buf bytes.Buffer
	err = c.WriteBinary(&buf, []byte{1, 2, 3})
	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 6, re.Actual)
	assert.Equal(t, 4, re.Max)

	_, err = c.ReadBinary(bytes.NewReader([]byte("03ABC")))
	assert.ErrorIs(t, err, ErrInvalidHex)

	fixed := mustCodec(t, FieldDescriptor{ID: 64, Length: LengthFixed, Encoding: EncodingHex, MaxLength: 4,
		Align: alignPtr(AlignTrimmedLeft), EmptyValue: strPtr("FF")})

	wire = writeBinary(t, fixed, []byte{0xAB})
	assert.Equal(t, "AB00", string(wire))

	value, err = fixed.ReadBinary(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB}, value)

	value, err = fixed.ReadBinary(bytes.NewReader([]byte("0000")))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, value)

	buf.Reset()
	require.NoError(t, fixed.WriteFixed(&buf, []byte{0x12, 0x34}))
	assert.Equal(t, "1234", buf.String())

	dst := make([]byte, 2)
	require.NoError(t, fixed.ReadFixed(&buf, dst))
	assert.Equal(t, []byte{0x12, 0x34}, dst)
}

func TestFieldCodec_CrossRepresentation(t *testing.T) {
	t.Parallel()

	bin := mustCodec(t, FieldDescriptor{ID: 55, Length: LengthLLVAR, Encoding: EncodingBinary})
	wire := writeString(t, bin, "xyz")
	assert.Equal(t, "03xyz", string(wire))

	s, err := bin.ReadString(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, "xyz", s)

	text := mustCodec(t, FieldDescriptor{ID: 48, Length: LengthLLVAR, Encoding: EncodingASCII})
	wire = writeBinary(t, text, []byte("abc"))
	assert.Equal(t, "03abc", string(wire))

	b, err := text.ReadBinary(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
}

func TestNewFieldCodec_InvalidDescriptors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    FieldDescriptor
	}{
		{name: "fixed without length", d: FieldDescriptor{ID: 3, Length: LengthFixed, Encoding: EncodingASCII}},
		{name: "max above prefix capacity", d: FieldDescriptor{ID: 3, Length: LengthLLVAR, Encoding: EncodingASCII, MaxLength: 100}},
		{name: "binary prefix without max", d: FieldDescriptor{ID: 3, Length: LengthBinaryVAR, Encoding: EncodingBinary}},
		{name: "bcd pad not a digit", d: FieldDescriptor{ID: 3, Length: LengthFixed, Encoding: EncodingBCD, MaxLength: 2, PadWith: strPtr("X")}},
		{name: "ascii pad too long", d: FieldDescriptor{ID: 3, Length: LengthFixed, Encoding: EncodingASCII, MaxLength: 2, PadWith: strPtr("ab")}},
		{name: "binary empty value not hex", d: FieldDescriptor{ID: 3, Length: LengthLLVAR, Encoding: EncodingBinary, EmptyValue: strPtr("ZZ")}},
		{name: "unknown encoding", d: FieldDescriptor{ID: 3, Length: LengthLLVAR, Encoding: Encoding(9)}},
		{name: "unknown length type", d: FieldDescriptor{ID: 3, Length: LengthType(9), Encoding: EncodingASCII}},
		{name: "unknown prefix", d: FieldDescriptor{ID: 3, Length: LengthLLVAR, Prefix: PrefixEncoding(7), Encoding: EncodingASCII}},
		{name: "unknown alignment", d: FieldDescriptor{ID: 3, Length: LengthFixed, Encoding: EncodingASCII, MaxLength: 2, Align: alignPtr(Alignment(9))}},
		{name: "id out of range", d: FieldDescriptor{ID: 193, Length: LengthLLVAR, Encoding: EncodingASCII}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewFieldCodec(tt.d, FieldDefaults{})
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}
}

func TestNewFieldCodec_Defaults(t *testing.T) {
	t.Parallel()

	c, err := NewFieldCodec(
		FieldDescriptor{ID: 41, Length: LengthFixed, Encoding: EncodingASCII, MaxLength: 4},
		FieldDefaults{Align: AlignTrimmedRight, PadWith: "*", EmptyValue: "?"},
	)
	require.NoError(t, err)

	assert.Equal(t, "**AB", string(writeString(t, c, "AB")))

	value, err := c.ReadString(bytes.NewReader([]byte("****")))
	require.NoError(t, err)
	assert.Equal(t, "?", value)

	// the descriptor wins over the defaults
	c, err = NewFieldCodec(
		FieldDescriptor{ID: 41, Length: LengthFixed, Encoding: EncodingASCII, MaxLength: 4, PadWith: strPtr(".")},
		FieldDefaults{Align: AlignTrimmedRight, PadWith: "*"},
	)
	require.NoError(t, err)
	assert.Equal(t, "..AB", string(writeString(t, c, "AB")))
}

func TestFieldCodec_EmptyBinaryNotShared(t *testing.T) {
	t.Parallel()

	descs := []FieldDescriptor{
		{ID: 55, Length: LengthLLVAR, Encoding: EncodingBinary, EmptyValue: strPtr("AB")},
		{ID: 52, Length: LengthFixed, Encoding: EncodingBinary, MaxLength: 2, Align: alignPtr(AlignTrimmedLeft), EmptyValue: strPtr("AB")},
		{ID: 64, Length: LengthFixed, Encoding: EncodingHex, MaxLength: 4, Align: alignPtr(AlignTrimmedLeft), EmptyValue: strPtr("AB")},
	}
	inputs := [][]byte{[]byte("00"), {0x00, 0x00}, []byte("0000")}

	for i, d := range descs {
		c := mustCodec(t, d)

		value, err := c.ReadBinary(bytes.NewReader(inputs[i]))
		require.NoError(t, err)
		require.Equal(t, []byte{0xAB}, value)
		value[0] = 0xFF

		value, err = c.ReadBinary(bytes.NewReader(inputs[i]))
		require.NoError(t, err)
		assert.Equal(t, []byte{0xAB}, value, "field %d", d.ID)
	}

	// an empty sentinel still decodes to a non-nil value
	c := mustCodec(t, FieldDescriptor{ID: 55, Length: LengthLLVAR, Encoding: EncodingBinary})
	value, err := c.ReadBinary(bytes.NewReader([]byte("00")))
	require.NoError(t, err)
	assert.NotNil(t, value)
	assert.Empty(t, value)
}

func TestFieldCodec_UnicodeRejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	c := mustCodec(t, FieldDescriptor{ID: 43, Length: LengthLLVAR, Encoding: EncodingUnicode})

	var buf bytes.Buffer
	err := c.WriteString(&buf, "A\xffB")
	require.ErrorIs(t, err, ErrInvalidText)
	assert.Zero(t, buf.Len())

	fixed := mustCodec(t, FieldDescriptor{ID: 43, Length: LengthFixed, Encoding: EncodingUnicode, MaxLength: 4})
	assert.ErrorIs(t, fixed.WriteBinary(&buf, []byte{'A', 0xC3}), ErrInvalidText)
	assert.Zero(t, buf.Len())
}
