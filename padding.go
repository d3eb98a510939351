package iso8583

import (
	"bytes"
	"io"
)

// padder pads and trims values of a fixed byte length. Padding is applied in
// whole units so that multi-byte text (UTF-16) is never split.
type padder struct {
	align  Alignment
	unit   []byte
	length int    // bytes, a multiple of len(unit)
	fill   []byte // length bytes of repeated unit
}

func newPadder(align Alignment, unit []byte, length int) *padder {
	return &padder{
		align:  align,
		unit:   unit,
		length: length,
		fill:   bytes.Repeat(unit, length/len(unit)),
	}
}

// write pads value to the fixed length and writes it. The caller has
// already checked that len(value) <= p.length.
func (p *padder) write(w io.Writer, value []byte) error {
	vlen := len(value)
	if vlen == 0 {
		_, err := w.Write(p.fill)
		return err
	}
	if vlen == p.length {
		_, err := w.Write(value)
		return err
	}

	if p.align.leftAligned() {
		if _, err := w.Write(value); err != nil {
			return err
		}
		_, err := w.Write(p.fill[:p.length-vlen])
		return err
	}

	if _, err := w.Write(p.fill[:p.length-vlen]); err != nil {
		return err
	}
	_, err := w.Write(value)
	return err
}

// padded returns value padded to the fixed length in a new slice, or value
// itself when it already has that length.
func (p *padder) padded(value []byte) []byte {
	vlen := len(value)
	if vlen == p.length {
		return value
	}
	out := make([]byte, 0, p.length)
	if p.align.leftAligned() {
		out = append(out, value...)
		return append(out, p.fill[:p.length-vlen]...)
	}
	out = append(out, p.fill[:p.length-vlen]...)
	return append(out, value...)
}

// trim strips padding from buf according to the alignment. ok is false when
// a trimmed alignment found nothing but padding.
func (p *padder) trim(buf []byte) (value []byte, ok bool) {
	u := len(p.unit)

	switch p.align {
	case AlignTrimmedLeft:
		end := len(buf)
		for end >= u && bytes.Equal(buf[end-u:end], p.unit) {
			end -= u
		}
		if end == 0 {
			return nil, false
		}
		return buf[:end], true

	case AlignTrimmedRight:
		start := 0
		for start+u <= len(buf) && bytes.Equal(buf[start:start+u], p.unit) {
			start += u
		}
		if start == len(buf) {
			return nil, false
		}
		return buf[start:], true

	default: // NONE, UNTRIMMED_LEFT, UNTRIMMED_RIGHT
		return buf, true
	}
}

// read consumes exactly the fixed length from r and trims it.
func (p *padder) read(r io.Reader) ([]byte, bool, error) {
	buf := make([]byte, p.length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false, err
	}
	value, ok := p.trim(buf)
	return value, ok, nil
}

// hexPadder is the byte-level hex variant: values are raw bytes, padded to
// ceil(L/2) bytes with the pad byte and written as two upper-case hex
// characters per byte, where L is the configured length in hex characters.
type hexPadder struct {
	*padder
}

func newHexPadder(align Alignment, padWith byte, hexLength int) *hexPadder {
	return &hexPadder{padder: newPadder(align, []byte{padWith}, (hexLength+1)>>1)}
}

func (p *hexPadder) write(w io.Writer, value []byte) error {
	return writeHex(w, p.padded(value))
}

func (p *hexPadder) read(r io.Reader) ([]byte, bool, error) {
	buf := make([]byte, p.length)
	if err := readHex(r, buf); err != nil {
		return nil, false, err
	}
	value, ok := p.trim(buf)
	return value, ok, nil
}

// writeHex writes src as upper-case hex characters.
func writeHex(w io.Writer, src []byte) error {
	buf := sizedBuffer(len(src) * 2)
	encodeHexUpper(buf, src)
	_, err := w.Write(buf)
	putBuffer(buf)
	return err
}

// readHex reads 2*len(dst) hex characters from r and decodes them into dst.
func readHex(r io.Reader, dst []byte) error {
	buf := sizedBuffer(len(dst) * 2)
	defer putBuffer(buf)

	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return decodeHex(dst, buf)
}
