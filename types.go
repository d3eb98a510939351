package iso8583

import (
	"fmt"
	"strings"
)

// LengthType defines how the length of a field is determined on the wire.
type LengthType int

const (
	LengthFixed LengthType = iota
	LengthLLVAR
	LengthLLLVAR
	LengthLLLLVAR
	LengthBinaryVAR // little-endian byte-count prefix
)

// PrefixEncoding selects how LL/LLL/LLLL prefix digits are written.
type PrefixEncoding int

const (
	PrefixASCII PrefixEncoding = iota
	PrefixBCD
)

// Encoding defines how a field value is represented on the wire.
type Encoding int

const (
	EncodingASCII   Encoding = iota // 8-bit text, one byte per character
	EncodingUnicode                 // UTF-16BE text, two bytes per code unit
	EncodingBCD                     // decimal digits, two per byte
	EncodingBinary                  // raw bytes
	EncodingHex                     // bytes written as upper-case hex characters
)

// Alignment governs how a fixed-length value is padded and trimmed.
//
// The left alignments place the value at the start and pad on the right;
// the right alignments pad on the left. Trimmed alignments strip padding on
// decode, untrimmed ones and AlignNone keep it as data.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignTrimmedLeft
	AlignUntrimmedLeft
	AlignTrimmedRight
	AlignUntrimmedRight
)

// FieldDescriptor is the resolved schema entry for one data element.
// Descriptors are produced by an external schema loader and are never
// mutated once handed to a Resolver.
type FieldDescriptor struct {
	ID        int            `json:"id" yaml:"id"`
	Length    LengthType     `json:"length" yaml:"length"`
	Prefix    PrefixEncoding `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Encoding  Encoding       `json:"encoding" yaml:"encoding"`
	MaxLength int            `json:"max_length" yaml:"max_length"`
	Align     *Alignment     `json:"align,omitempty" yaml:"align,omitempty"`
	PadWith   *string        `json:"pad_with,omitempty" yaml:"pad_with,omitempty"`
	// EmptyValue is returned when a field decodes to nothing. For binary
	// encodings it is given in hex.
	EmptyValue *string `json:"empty_value,omitempty" yaml:"empty_value,omitempty"`
	// Type names a custom constructor registered on the FieldResolver.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

func (d FieldDescriptor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:%s/%s/%s/%d", d.ID, d.Length, d.Prefix, d.Encoding, d.MaxLength)
	if d.Align != nil {
		fmt.Fprintf(&sb, "/align=%s", *d.Align)
	}
	if d.PadWith != nil {
		fmt.Fprintf(&sb, "/pad=%q", *d.PadWith)
	}
	if d.EmptyValue != nil {
		fmt.Fprintf(&sb, "/empty=%q", *d.EmptyValue)
	}
	if d.Type != "" {
		fmt.Fprintf(&sb, "/type=%s", d.Type)
	}
	return sb.String()
}

// IsBinary reports whether values of this encoding are carried as bytes.
func (e Encoding) IsBinary() bool {
	return e == EncodingBinary || e == EncodingHex
}

// prefixDigits returns the number of length digits for LL-style types.
func (lt LengthType) prefixDigits() int {
	switch lt {
	case LengthLLVAR:
		return 2
	case LengthLLLVAR:
		return 3
	case LengthLLLLVAR:
		return 4
	}
	return 0
}

var (
	lengthTypeNames = []string{"FIXED", "LLVAR", "LLLVAR", "LLLLVAR", "BINARYVAR"}
	prefixNames     = []string{"ASCII", "BCD"}
	encodingNames   = []string{"ASCII", "UNICODE", "BCD", "BINARY", "HEX"}
	alignmentNames  = []string{"NONE", "TRIMMED_LEFT", "UNTRIMMED_LEFT", "TRIMMED_RIGHT", "UNTRIMMED_RIGHT"}
)

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("UNKNOWN(%d)", v)
	}
	return names[v]
}

func parseEnum(kind string, names []string, text []byte) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	for i, n := range names {
		if s == n {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidDescriptor, kind, text)
}

func (lt LengthType) String() string { return enumName(lengthTypeNames, int(lt)) }

func (lt LengthType) MarshalText() ([]byte, error) { return []byte(lt.String()), nil }

func (lt *LengthType) UnmarshalText(text []byte) error {
	v, err := parseEnum("length type", lengthTypeNames, text)
	if err != nil {
		return err
	}
	*lt = LengthType(v)
	return nil
}

func (p PrefixEncoding) String() string { return enumName(prefixNames, int(p)) }

func (p PrefixEncoding) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PrefixEncoding) UnmarshalText(text []byte) error {
	v, err := parseEnum("prefix encoding", prefixNames, text)
	if err != nil {
		return err
	}
	*p = PrefixEncoding(v)
	return nil
}

func (e Encoding) String() string { return enumName(encodingNames, int(e)) }

func (e Encoding) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Encoding) UnmarshalText(text []byte) error {
	v, err := parseEnum("encoding", encodingNames, text)
	if err != nil {
		return err
	}
	*e = Encoding(v)
	return nil
}

func (a Alignment) String() string { return enumName(alignmentNames, int(a)) }

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Alignment) UnmarshalText(text []byte) error {
	v, err := parseEnum("alignment", alignmentNames, text)
	if err != nil {
		return err
	}
	*a = Alignment(v)
	return nil
}

// leftAligned reports whether the value sits at the start of the field.
func (a Alignment) leftAligned() bool {
	return a != AlignTrimmedRight && a != AlignUntrimmedRight
}
