package iso8583

import (
	"fmt"
	"io"
	"math/bits"
)

// prefixer frames a variable-length value with its length.
type prefixer interface {
	writeLength(w io.Writer, n int) error
	readLength(r io.Reader) (int, error)
	// maxValue is the largest length the prefix can express.
	maxValue() int
}

// asciiPrefixer writes the length as zero-padded decimal digits, e.g. "07"
// for an LL prefix.
type asciiPrefixer struct {
	digits int
}

func (p asciiPrefixer) maxValue() int {
	return pow10(p.digits) - 1
}

func (p asciiPrefixer) writeLength(w io.Writer, n int) error {
	var stackBuf [8]byte
	buf := stackBuf[:p.digits]
	writeIntToASCII(buf, n, p.digits)
	_, err := w.Write(buf)
	return err
}

func (p asciiPrefixer) readLength(r io.Reader) (int, error) {
	var stackBuf [8]byte
	buf := stackBuf[:p.digits]
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	n, err := parseASCIIToInt(buf)
	if err != nil {
		return 0, fmt.Errorf("%w: prefix %q is not numeric", ErrInvalidLength, buf)
	}
	return n, nil
}

// bcdPrefixer writes the length as right-aligned packed decimal, one byte
// for LL and two for LLL/LLLL.
type bcdPrefixer struct {
	digits int
}

func (p bcdPrefixer) maxValue() int {
	return pow10(p.digits) - 1
}

func (p bcdPrefixer) writeLength(w io.Writer, n int) error {
	var digitBuf, packBuf [8]byte
	digits := digitBuf[:p.digits]
	writeIntToASCII(digits, n, p.digits)

	out := packBuf[:bcdLen(p.digits)]
	if err := packBCD(out, digits, true); err != nil {
		return err
	}
	_, err := w.Write(out)
	return err
}

func (p bcdPrefixer) readLength(r io.Reader) (int, error) {
	var digitBuf, packBuf [8]byte
	in := packBuf[:bcdLen(p.digits)]
	if _, err := io.ReadFull(r, in); err != nil {
		return 0, err
	}

	digits := digitBuf[:p.digits]
	if err := unpackBCD(digits, in, p.digits, true); err != nil {
		return 0, fmt.Errorf("%w: prefix % X", err, in)
	}
	return parseASCIIToInt(digits)
}

// binaryPrefixer writes the length as an unsigned little-endian integer.
// Its width is the minimum number of bytes able to hold the largest
// allowed length, decided once at construction.
type binaryPrefixer struct {
	nbytes int
}

func newBinaryPrefixer(maxLength int) binaryPrefixer {
	nbytes := (bits.Len(uint(maxLength)) + 7) / 8
	if nbytes == 0 {
		nbytes = 1
	}
	return binaryPrefixer{nbytes: nbytes}
}

func (p binaryPrefixer) maxValue() int {
	if p.nbytes >= 8 {
		return int(^uint(0) >> 1)
	}
	return 1<<(8*p.nbytes) - 1
}

func (p binaryPrefixer) writeLength(w io.Writer, n int) error {
	var stackBuf [8]byte
	buf := stackBuf[:p.nbytes]
	for i := range buf {
		buf[i] = byte(n)
		n >>= 8
	}
	_, err := w.Write(buf)
	return err
}

func (p binaryPrefixer) readLength(r io.Reader) (int, error) {
	var stackBuf [8]byte
	buf := stackBuf[:p.nbytes]
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}

	n := 0
	for i := len(buf) - 1; i >= 0; i-- {
		n = n<<8 | int(buf[i])
	}
	return n, nil
}
