package iso8583

import "fmt"

var (
	ErrInvalidMTI        = fmt.Errorf("invalid MTI")
	ErrInvalidField      = fmt.Errorf("invalid field")
	ErrFieldNotFound     = fmt.Errorf("field not found")
	ErrInvalidLength     = fmt.Errorf("invalid field length")
	ErrInvalidHex        = fmt.Errorf("invalid hex data")
	ErrInvalidBCD        = fmt.Errorf("invalid packed decimal data")
	ErrInvalidText       = fmt.Errorf("invalid text data")
	ErrValueOutOfRange   = fmt.Errorf("value out of range")
	ErrInvalidConfig     = fmt.Errorf("invalid packager configuration")
	ErrInvalidDescriptor = fmt.Errorf("invalid field descriptor")

	ErrUnknownFieldType = fmt.Errorf("unknown field type")
	ErrDuplicateField   = fmt.Errorf("duplicate field id")
	ErrFieldNotDefined  = fmt.Errorf("field not defined")
)

// FieldError attaches the offending field id to an error raised while
// resolving, reading or writing that field.
type FieldError struct {
	Field int
	Op    string // "resolve", "read" or "write"
	Err   error
}

func (fe *FieldError) Error() string {
	if fe.Op == "" {
		return fmt.Sprintf("field %d: %v", fe.Field, fe.Err)
	}
	return fmt.Sprintf("unable to %s field #%d: %v", fe.Op, fe.Field, fe.Err)
}

func (fe *FieldError) Unwrap() error {
	return fe.Err
}

// RangeError reports a value whose length does not fit its field.
type RangeError struct {
	Field  int
	Min    int
	Max    int
	Actual int
}

func (re *RangeError) Error() string {
	return fmt.Sprintf("value of field #%d is too long, expected %d-%d but actual is %d",
		re.Field, re.Min, re.Max, re.Actual)
}

// Is makes errors.Is(err, ErrValueOutOfRange) hold for every RangeError.
func (re *RangeError) Is(target error) bool {
	return target == ErrValueOutOfRange
}
