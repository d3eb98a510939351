package iso8583

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// messagePool holds reusable Message objects to reduce allocations.
var messagePool = sync.Pool{
	New: func() interface{} {
		return &Message{}
	},
}

// Message is the decoded form of one ISO8583 message: the MTI, the presence
// bitmaps and one value slot per field id below Size().
//
// Each field holds either a text or a binary value. The normal setters keep
// the bitmaps in step with the slots. The Raw* methods expose the underlying
// storage to a packager, which then owns bitmap consistency itself.
//
// A Message is not safe for concurrent mutation.
type Message struct {
	mti          string
	size         int
	bits1To128   [BitmapSize]byte
	bits129To192 [ExtendedBitmapSize]byte
	strings      []string
	binaries     [][]byte
}

// NewMessage retrieves a Message from the pool and initializes it.
func NewMessage(opts ...MessageOption) *Message {
	msg := messagePool.Get().(*Message)
	msg.reset()
	msg.resize(DefaultMessageSize)
	for _, opt := range opts {
		opt(msg)
	}
	return msg
}

// Release returns the message to the pool for reuse.
// The message must not be used after Release is called.
func (m *Message) Release() {
	m.reset()
	messagePool.Put(m)
}

// Reset clears the MTI, bitmaps and every value, keeping the size.
func (m *Message) Reset() {
	m.reset()
}

func (m *Message) reset() {
	m.mti = ""
	m.bits1To128 = [BitmapSize]byte{}
	m.bits129To192 = [ExtendedBitmapSize]byte{}
	// full capacity, so a later resize never exposes old values
	clear(m.strings[:cap(m.strings)])
	clear(m.binaries[:cap(m.binaries)])
}

// resize sets the number of value slots, reusing storage where possible.
func (m *Message) resize(size int) {
	if size < 2 {
		size = 2
	}
	if size > DefaultMessageSize {
		size = DefaultMessageSize
	}
	m.size = size

	if cap(m.strings) >= size {
		m.strings = m.strings[:size]
		m.binaries = m.binaries[:size]
		return
	}
	m.strings = make([]string, size)
	m.binaries = make([][]byte, size)
}

// Size returns the number of field slots, i.e. the highest usable id plus one.
func (m *Message) Size() int {
	return m.size
}

// MTI returns the Message Type Indicator.
func (m *Message) MTI() string {
	return m.mti
}

// SetMTI sets the 4-character Message Type Indicator.
func (m *Message) SetMTI(mti string) error {
	if len(mti) != 4 {
		return ErrInvalidMTI
	}
	m.mti = mti
	return nil
}

func (m *Message) checkField(fieldNum int) error {
	if fieldNum < 2 || fieldNum >= m.size || fieldNum == 65 {
		return &FieldError{Field: fieldNum, Err: ErrInvalidField}
	}
	return nil
}

func (m *Message) setBit(fieldNum int) {
	buf, bit := fieldBit(m.bits1To128[:], m.bits129To192[:], fieldNum)
	SetBit(buf, bit)
}

func (m *Message) clearBit(fieldNum int) {
	buf, bit := fieldBit(m.bits1To128[:], m.bits129To192[:], fieldNum)
	ClearBit(buf, bit)
}

// SetString sets a text value and marks the field present.
func (m *Message) SetString(fieldNum int, value string) error {
	if err := m.checkField(fieldNum); err != nil {
		return err
	}
	m.strings[fieldNum] = value
	m.binaries[fieldNum] = nil
	m.setBit(fieldNum)
	return nil
}

// SetBinary sets a binary value and marks the field present. The message
// keeps a reference to value, not a copy.
func (m *Message) SetBinary(fieldNum int, value []byte) error {
	if err := m.checkField(fieldNum); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	m.binaries[fieldNum] = value
	m.strings[fieldNum] = ""
	m.setBit(fieldNum)
	return nil
}

// SetField sets the value of a field.
// It accepts string, []byte, int or int64; integers are stored as decimal text.
func (m *Message) SetField(fieldNum int, value interface{}) error {
	return m.SetFieldWithWidth(fieldNum, value, 0)
}

// SetFieldWithWidth is SetField with integers zero-padded to at least width digits.
func (m *Message) SetFieldWithWidth(fieldNum int, value interface{}, width int) error {
	switch v := value.(type) {
	case string:
		return m.SetString(fieldNum, v)
	case []byte:
		return m.SetBinary(fieldNum, v)
	case int:
		return m.SetString(fieldNum, formatInt(int64(v), width))
	case int64:
		return m.SetString(fieldNum, formatInt(v, width))
	default:
		return &FieldError{Field: fieldNum, Err: fmt.Errorf("unsupported value type %T", value)}
	}
}

// formatInt renders value in decimal with the digits zero-padded on the left
// to width. A minus sign counts toward width.
func formatInt(value int64, width int) string {
	s := strconv.FormatInt(value, 10)
	if len(s) >= width {
		return s
	}

	sign, digits := "", s
	if value < 0 {
		sign, digits = "-", s[1:]
	}
	return sign + strings.Repeat("0", width-len(s)) + digits
}

// Unset removes a field and clears its presence bit.
func (m *Message) Unset(fieldNum int) error {
	if err := m.checkField(fieldNum); err != nil {
		return err
	}
	m.strings[fieldNum] = ""
	m.binaries[fieldNum] = nil
	m.clearBit(fieldNum)
	return nil
}

// HasField returns true if the field is marked present.
func (m *Message) HasField(fieldNum int) bool {
	if m.checkField(fieldNum) != nil {
		return false
	}
	buf, bit := fieldBit(m.bits1To128[:], m.bits129To192[:], fieldNum)
	return GetBit(buf, bit)
}

// GetString returns a field's value as text. Binary values are converted
// byte for byte.
func (m *Message) GetString(fieldNum int) (string, error) {
	if !m.HasField(fieldNum) {
		return "", ErrFieldNotFound
	}
	if b := m.binaries[fieldNum]; b != nil {
		return string(b), nil
	}
	return m.strings[fieldNum], nil
}

// GetBytes returns a field's value as bytes. Text values are converted.
func (m *Message) GetBytes(fieldNum int) ([]byte, error) {
	if !m.HasField(fieldNum) {
		return nil, ErrFieldNotFound
	}
	if b := m.binaries[fieldNum]; b != nil {
		return b, nil
	}
	return []byte(m.strings[fieldNum]), nil
}

// GetInt parses a field's text value as a decimal integer.
func (m *Message) GetInt(fieldNum int) (int, error) {
	s, err := m.GetString(fieldNum)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// PresentFields returns the ids of all fields marked present.
func (m *Message) PresentFields() []int {
	fields := PresentFields(m.bits1To128[:], m.bits129To192[:])
	n := 0
	for _, id := range fields {
		if id < m.size {
			fields[n] = id
			n++
		}
	}
	return fields[:n]
}

// Raw access. These methods hand out the message's own storage: writes
// through them do not update the bitmaps, and the caller is responsible for
// keeping bitmaps and slots consistent.

// RawBitmap returns the 16-byte bitmap for fields 1-128.
func (m *Message) RawBitmap() []byte {
	return m.bits1To128[:]
}

// RawExtendedBitmap returns the 8-byte bitmap for fields 129-192.
func (m *Message) RawExtendedBitmap() []byte {
	return m.bits129To192[:]
}

// RawStrings returns the text value slots, indexed by field id.
func (m *Message) RawStrings() []string {
	return m.strings
}

// RawBinaries returns the binary value slots, indexed by field id.
func (m *Message) RawBinaries() [][]byte {
	return m.binaries
}

// SetRawMTI stores the MTI without validation.
func (m *Message) SetRawMTI(mti string) {
	m.mti = mti
}

// SetRawString stores a text value without touching the bitmaps.
func (m *Message) SetRawString(fieldNum int, value string) {
	m.strings[fieldNum] = value
	m.binaries[fieldNum] = nil
}

// SetRawBinary stores a binary value without touching the bitmaps.
func (m *Message) SetRawBinary(fieldNum int, value []byte) {
	m.binaries[fieldNum] = value
	m.strings[fieldNum] = ""
}

// Clone creates a deep copy of the message.
func (m *Message) Clone() *Message {
	clone := NewMessage(WithSize(m.size))
	clone.mti = m.mti
	clone.bits1To128 = m.bits1To128
	clone.bits129To192 = m.bits129To192
	copy(clone.strings, m.strings)
	for i, b := range m.binaries {
		if b != nil {
			clone.binaries[i] = append([]byte{}, b...)
		}
	}
	return clone
}

// CreateResponse generates a response message based on the current message.
// It clones the message, flips the MTI (e.g., 0100 -> 0110),
// and sets the response code (Field 39).
func (m *Message) CreateResponse(responseCode string) (*Message, error) {
	if len(m.mti) != 4 || m.mti[2] != '0' {
		return nil, fmt.Errorf("%w: cannot create response from MTI %q", ErrInvalidMTI, m.mti)
	}

	resMsg := m.Clone()
	mti := []byte(m.mti)
	mti[2] = '1' // e.g., '0' (request) -> '1' (response)
	resMsg.mti = string(mti)

	if err := resMsg.SetString(39, responseCode); err != nil {
		resMsg.Release()
		return nil, err
	}
	return resMsg, nil
}

// IsNMM reports whether the message is a network management message.
func (m *Message) IsNMM() bool {
	switch m.mti {
	case MTI_NMM_REQUEST, MTI_NMM_RESPONSE:
		return true
	default:
		return false
	}
}

// maskPAN keeps the first six and last four digits of a card number.
func maskPAN(pan string) string {
	if len(pan) <= 10 {
		return pan
	}
	masked := []byte(pan)
	for i := 6; i < len(masked)-4; i++ {
		masked[i] = '*'
	}
	return string(masked)
}

// LogValue implements the slog.LogValuer interface for structured logging.
// Binary values are logged in hex and the PAN (field 2) is masked.
func (m *Message) LogValue() slog.Value {
	present := m.PresentFields()

	fieldArgs := make([]any, 0, len(present))
	for _, fieldNum := range present {
		key := strconv.Itoa(fieldNum)
		if b := m.binaries[fieldNum]; b != nil {
			fieldArgs = append(fieldArgs, slog.String(key, hex.EncodeToString(b)))
			continue
		}
		value := m.strings[fieldNum]
		if fieldNum == 2 {
			value = maskPAN(value)
		}
		fieldArgs = append(fieldArgs, slog.String(key, value))
	}

	return slog.GroupValue(
		slog.String("MTI", m.mti),
		slog.Group("Fields", fieldArgs...),
	)
}
