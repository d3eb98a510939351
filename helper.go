package iso8583

const hexTableUpper = "0123456789ABCDEF"

// encodeHexUpper converts src to uppercase hex and writes it to dst.
// dst must hold at least 2*len(src) bytes.
func encodeHexUpper(dst, src []byte) {
	for i, v := range src {
		dst[i*2] = hexTableUpper[v>>4]
		dst[i*2+1] = hexTableUpper[v&0x0f]
	}
}

// hexVal returns the value of a single hex digit, either case.
func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}

// decodeHex decodes len(src)/2 bytes from the hex characters in src into dst.
func decodeHex(dst, src []byte) error {
	if len(src)&1 != 0 {
		return ErrInvalidHex
	}
	for i, j := 0, 0; i < len(src); i, j = i+2, j+1 {
		hi, ok1 := hexVal(src[i])
		lo, ok2 := hexVal(src[i+1])
		if !ok1 || !ok2 {
			return ErrInvalidHex
		}
		dst[j] = hi<<4 | lo
	}
	return nil
}

// writeIntToASCII is a fast, zero-allocation helper to format an integer
// into a byte slice with fixed-width zero padding.
func writeIntToASCII(buf []byte, val, digits int) {
	for i := digits - 1; i >= 0; i-- {
		buf[i] = byte(val%10 + '0')
		val /= 10
	}
}

// parseASCIIToInt parses ASCII digits to an integer without using strconv.
func parseASCIIToInt(b []byte) (int, error) {
	n := 0
	for _, ch := range b {
		if ch < '0' || ch > '9' {
			return 0, ErrInvalidLength
		}
		n = n*10 + int(ch-'0')
	}
	return n, nil
}

// pow10 returns 10^n for small non-negative n.
func pow10(n int) int {
	res := 1
	for i := 0; i < n; i++ {
		res *= 10
	}
	return res
}
