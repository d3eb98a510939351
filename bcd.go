package iso8583

// Packed decimal: two digits per byte, high nibble first. An odd digit count
// leaves one filler nibble (0), placed first for right-aligned values and
// last for left-aligned ones.

// bcdLen returns the number of bytes holding n packed digits.
func bcdLen(n int) int {
	return (n + 1) >> 1
}

// packBCD packs the ASCII digits into dst, which must hold bcdLen(len(digits)).
func packBCD(dst, digits []byte, rightAligned bool) error {
	n := len(digits)
	nibble := 0
	if n&1 == 1 && rightAligned {
		nibble = 1
	}
	for i := range dst[:bcdLen(n)] {
		dst[i] = 0
	}

	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return ErrInvalidBCD
		}
		d := ch - '0'
		if nibble&1 == 0 {
			dst[nibble>>1] = d << 4
		} else {
			dst[nibble>>1] |= d
		}
		nibble++
	}
	return nil
}

// unpackBCD unpacks n digits from src into dst as ASCII.
func unpackBCD(dst, src []byte, n int, rightAligned bool) error {
	nibble := 0
	if n&1 == 1 && rightAligned {
		nibble = 1
	}

	for i := 0; i < n; i++ {
		b := src[nibble>>1]
		var d byte
		if nibble&1 == 0 {
			d = b >> 4
		} else {
			d = b & 0x0f
		}
		if d > 9 {
			return ErrInvalidBCD
		}
		dst[i] = '0' + d
		nibble++
	}
	return nil
}
