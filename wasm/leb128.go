package wasm

// EncodeULEB128 encodes v as unsigned LEB128.
func EncodeULEB128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// DecodeULEB128 decodes an unsigned LEB128 value from the start of data.
// It returns the value and the number of bytes consumed, or 0 bytes when
// data is truncated or the value overflows 32 bits.
func DecodeULEB128(data []byte) (uint32, int) {
	var result uint32
	var shift uint
	for i, b := range data {
		if shift >= 35 {
			return 0, 0
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1
		}
		shift += 7
	}
	return 0, 0
}
