package iso8583

import (
	"fmt"
	"io"
)

// HeaderType defines how the message length header that frames an encoded
// message on a byte stream is written.
type HeaderType int

const (
	HeaderNone    HeaderType = iota
	HeaderBinary             // 2-byte big-endian length
	HeaderBinary4            // 4-byte big-endian length
	HeaderASCII              // 4-digit ASCII decimal length, e.g. "0048"
	HeaderHex                // 4-char ASCII hex length, e.g. "0030"
)

// HeaderSize returns the number of bytes the header occupies.
func HeaderSize(htype HeaderType) int {
	switch htype {
	case HeaderBinary:
		return 2
	case HeaderBinary4, HeaderASCII, HeaderHex:
		return 4
	}
	return 0
}

// WriteHeader writes the message length into buf according to the header type.
// Returns the number of bytes written.
func WriteHeader(msgLen int, buf []byte, htype HeaderType) (int, error) {
	size := HeaderSize(htype)
	if len(buf) < size {
		return 0, fmt.Errorf("%w: header needs %d bytes, buffer has %d", ErrInvalidLength, size, len(buf))
	}

	switch htype {
	case HeaderNone:
		return 0, nil

	case HeaderBinary:
		if msgLen > 0xFFFF {
			return 0, fmt.Errorf("%w: message length %d exceeds 2-byte maximum", ErrInvalidLength, msgLen)
		}
		buf[0] = byte(msgLen >> 8)
		buf[1] = byte(msgLen)
		return 2, nil

	case HeaderBinary4:
		if msgLen > 0x7FFFFFFF {
			return 0, fmt.Errorf("%w: message length %d exceeds 4-byte maximum", ErrInvalidLength, msgLen)
		}
		buf[0] = byte(msgLen >> 24)
		buf[1] = byte(msgLen >> 16)
		buf[2] = byte(msgLen >> 8)
		buf[3] = byte(msgLen)
		return 4, nil

	case HeaderASCII:
		if msgLen > 9999 {
			return 0, fmt.Errorf("%w: message length %d exceeds 4-digit maximum", ErrInvalidLength, msgLen)
		}
		writeIntToASCII(buf[:4], msgLen, 4)
		return 4, nil

	case HeaderHex:
		if msgLen > 0xFFFF {
			return 0, fmt.Errorf("%w: message length %d exceeds 4-char hex maximum", ErrInvalidLength, msgLen)
		}
		encodeHexUpper(buf[:4], []byte{byte(msgLen >> 8), byte(msgLen)})
		return 4, nil
	}
	return 0, fmt.Errorf("%w: unknown header type %d", ErrInvalidConfig, htype)
}

// ReadHeader reads the message length from buf according to the header type.
func ReadHeader(buf []byte, htype HeaderType) (int, error) {
	size := HeaderSize(htype)
	if len(buf) < size {
		return 0, io.ErrUnexpectedEOF
	}

	switch htype {
	case HeaderNone:
		return 0, nil

	case HeaderBinary:
		return int(buf[0])<<8 | int(buf[1]), nil

	case HeaderBinary4:
		return int(buf[0])<<24 | int(buf[1])<<16 | int(buf[2])<<8 | int(buf[3]), nil

	case HeaderASCII:
		n, err := parseASCIIToInt(buf[:4])
		if err != nil {
			return 0, fmt.Errorf("%w: header %q", err, buf[:4])
		}
		return n, nil

	case HeaderHex:
		var raw [2]byte
		if err := decodeHex(raw[:], buf[:4]); err != nil {
			return 0, fmt.Errorf("%w: header %q", ErrInvalidLength, buf[:4])
		}
		return int(raw[0])<<8 | int(raw[1]), nil
	}
	return 0, fmt.Errorf("%w: unknown header type %d", ErrInvalidConfig, htype)
}

// WriteFrame writes payload to w preceded by its length header.
func WriteFrame(w io.Writer, payload []byte, htype HeaderType) error {
	var hdr [4]byte
	n, err := WriteHeader(len(payload), hdr[:], htype)
	if err != nil {
		return err
	}
	if _, err := w.Write(hdr[:n]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// ReadFrame reads one length-headed message from r. With HeaderNone the
// rest of the stream is the message. A clean end of stream before the
// header is reported as io.EOF.
func ReadFrame(r io.Reader, htype HeaderType) ([]byte, error) {
	if htype == HeaderNone {
		payload, err := io.ReadAll(r)
		if err == nil && len(payload) == 0 {
			return nil, io.EOF
		}
		return payload, err
	}

	var hdr [4]byte
	size := HeaderSize(htype)
	if size == 0 {
		return nil, fmt.Errorf("%w: unknown header type %d", ErrInvalidConfig, htype)
	}
	if _, err := io.ReadFull(r, hdr[:size]); err != nil {
		return nil, err
	}
	n, err := ReadHeader(hdr[:size], htype)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
