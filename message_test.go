package iso8583

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_SetAndGet(t *testing.T) {
	t.Parallel()

	msg := NewMessage(WithMTI("0200"))
	defer msg.Release()

	assert.Equal(t, DefaultMessageSize, msg.Size())
	assert.Equal(t, "0200", msg.MTI())

	require.NoError(t, msg.SetString(2, "4111111111111111"))
	require.NoError(t, msg.SetBinary(52, []byte{0xDE, 0xAD}))
	require.NoError(t, msg.SetString(70, "301"))
	require.NoError(t, msg.SetString(150, "EXT"))

	assert.True(t, msg.HasField(2))
	assert.True(t, msg.HasField(150))
	assert.False(t, msg.HasField(3))

	assert.True(t, GetBit(msg.RawBitmap(), 1))
	assert.True(t, GetBit(msg.RawBitmap(), 69))
	assert.True(t, GetBit(msg.RawExtendedBitmap(), 21))

	s, err := msg.GetString(2)
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", s)

	b, err := msg.GetBytes(52)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD}, b)

	// values convert across representations
	s, err = msg.GetString(52)
	require.NoError(t, err)
	assert.Equal(t, "\xDE\xAD", s)

	b, err = msg.GetBytes(70)
	require.NoError(t, err)
	assert.Equal(t, []byte("301"), b)

	_, err = msg.GetString(3)
	assert.ErrorIs(t, err, ErrFieldNotFound)

	assert.Equal(t, []int{2, 52, 70, 150}, msg.PresentFields())
}

func TestMessage_InvalidFields(t *testing.T) {
	t.Parallel()

	msg := NewMessage(WithSize(10))
	defer msg.Release()

	for _, id := range []int{-1, 0, 1, 10, 65, 193} {
		err := msg.SetString(id, "x")
		assert.ErrorIs(t, err, ErrInvalidField, "field %d", id)
		assert.False(t, msg.HasField(id))
	}

	require.NoError(t, msg.SetString(9, "x"))

	assert.ErrorIs(t, msg.SetMTI("020"), ErrInvalidMTI)
}

func TestMessage_SetField(t *testing.T) {
	t.Parallel()

	msg := NewMessage()
	defer msg.Release()

	require.NoError(t, msg.SetField(3, "000000"))
	require.NoError(t, msg.SetField(4, 1000))
	require.NoError(t, msg.SetFieldWithWidth(11, int64(42), 6))
	require.NoError(t, msg.SetFieldWithWidth(12, -5, 3))
	require.NoError(t, msg.SetField(55, []byte{0x9F}))

	s, _ := msg.GetString(4)
	assert.Equal(t, "1000", s)
	s, _ = msg.GetString(11)
	assert.Equal(t, "000042", s)
	s, _ = msg.GetString(12)
	assert.Equal(t, "-05", s)

	require.NoError(t, msg.SetField(5, int64(math.MinInt64)))
	s, _ = msg.GetString(5)
	assert.Equal(t, "-9223372036854775808", s)

	require.NoError(t, msg.SetFieldWithWidth(6, int64(math.MinInt64), 24))
	s, _ = msg.GetString(6)
	assert.Equal(t, "-00009223372036854775808", s)

	require.NoError(t, msg.SetFieldWithWidth(7, math.MaxInt64, 2))
	s, _ = msg.GetString(7)
	assert.Equal(t, "9223372036854775807", s)

	n, err := msg.GetInt(11)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	err = msg.SetField(8, 1.5)
	assert.Error(t, err)
	assert.False(t, msg.HasField(8))
}

func TestMessage_UnsetAndReset(t *testing.T) {
	t.Parallel()

	msg := NewMessage(WithFields(map[int]interface{}{2: "4111", 130: "X"}))
	defer msg.Release()

	require.NoError(t, msg.Unset(130))
	assert.False(t, msg.HasField(130))
	assert.True(t, BitsEmpty(msg.RawExtendedBitmap()))

	// a nil binary value still marks the field present
	require.NoError(t, msg.SetBinary(55, nil))
	b, err := msg.GetBytes(55)
	require.NoError(t, err)
	assert.Empty(t, b)

	msg.Reset()
	assert.Empty(t, msg.PresentFields())
	assert.Empty(t, msg.MTI())
	assert.Equal(t, DefaultMessageSize, msg.Size())
}

func TestMessage_WithSizeClamps(t *testing.T) {
	t.Parallel()

	small := NewMessage(WithSize(0))
	defer small.Release()
	assert.Equal(t, 2, small.Size())

	large := NewMessage(WithSize(1000))
	defer large.Release()
	assert.Equal(t, DefaultMessageSize, large.Size())
}

func TestMessage_Clone(t *testing.T) {
	t.Parallel()

	msg := NewMessage(WithMTI("0200"))
	defer msg.Release()
	require.NoError(t, msg.SetBinary(52, []byte{1, 2, 3}))
	require.NoError(t, msg.SetString(2, "4111"))

	clone := msg.Clone()
	defer clone.Release()

	msg.RawBinaries()[52][0] = 9
	require.NoError(t, msg.Unset(2))

	b, err := clone.GetBytes(52)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)
	assert.True(t, clone.HasField(2))
	assert.Equal(t, "0200", clone.MTI())
}

func TestMessage_CreateResponse(t *testing.T) {
	t.Parallel()

	req := NewMessage(WithMTI("0200"), WithField(11, "000001"))
	defer req.Release()

	resp, err := req.CreateResponse("00")
	require.NoError(t, err)
	defer resp.Release()

	assert.Equal(t, "0210", resp.MTI())
	s, _ := resp.GetString(39)
	assert.Equal(t, "00", s)
	s, _ = resp.GetString(11)
	assert.Equal(t, "000001", s)
	assert.False(t, req.HasField(39))

	_, err = resp.CreateResponse("00")
	assert.ErrorIs(t, err, ErrInvalidMTI)
}

func TestMessage_IsNMM(t *testing.T) {
	t.Parallel()

	msg := NewMessage(WithMTI(MTI_NMM_REQUEST))
	defer msg.Release()
	assert.True(t, msg.IsNMM())

	require.NoError(t, msg.SetMTI("0200"))
	assert.False(t, msg.IsNMM())
}

func TestMessage_LogValue(t *testing.T) {
	t.Parallel()

	msg := NewMessage(WithMTI("0200"))
	defer msg.Release()
	require.NoError(t, msg.SetString(2, "4111111111111111"))
	require.NoError(t, msg.SetBinary(52, []byte{0xDE, 0xAD}))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("message", slog.Any("msg", msg))

	out := buf.String()
	assert.Contains(t, out, `"MTI":"0200"`)
	assert.Contains(t, out, `"2":"411111******1111"`)
	assert.Contains(t, out, `"52":"dead"`)
	assert.NotContains(t, out, "4111111111111111")
}
