package iso8583

// Bitmaps are plain byte slices. Bit 0 is the most significant bit of byte 0,
// so bit i lives in byte i/8 under mask 0x80>>(i%8). Callers guarantee that
// indices are in range.

// GetBit reports whether bit i of buf is set.
func GetBit(buf []byte, i int) bool {
	return buf[i>>3]&(0x80>>(i&7)) != 0
}

// SetBit sets bit i of buf.
func SetBit(buf []byte, i int) {
	buf[i>>3] |= 0x80 >> (i & 7)
}

// ClearBit clears bit i of buf.
func ClearBit(buf []byte, i int) {
	buf[i>>3] &^= 0x80 >> (i & 7)
}

// BitsEmpty reports whether every byte of buf is zero.
func BitsEmpty(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// BitsUsedLength returns the index of the highest non-zero byte plus one,
// or 0 when buf is empty.
func BitsUsedLength(buf []byte) int {
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] != 0 {
			return i + 1
		}
	}
	return 0
}

// fieldBit maps a data element id (2..192) to its bitmap and bit index.
// Ids below 129 use the 128-bit map, the rest the extended 64-bit map.
func fieldBit(bits1To128, bits129To192 []byte, id int) ([]byte, int) {
	if id < 129 {
		return bits1To128, id - 1
	}
	return bits129To192, id - 129
}

// PresentFields returns the ids of all data elements marked present in the
// two bitmaps, in ascending order. The bitmap carriers (1 and 65) are never
// reported.
func PresentFields(bits1To128, bits129To192 []byte) []int {
	fields := make([]int, 0, 16)

	for id := 2; id <= 128; id++ {
		if id == 65 {
			continue
		}
		if GetBit(bits1To128, id-1) {
			fields = append(fields, id)
		}
	}

	for id := 129; id <= 192; id++ {
		if GetBit(bits129To192, id-129) {
			fields = append(fields, id)
		}
	}

	return fields
}
