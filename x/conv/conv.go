// Package conv formats integers into caller buffers without fmt or strconv.
// Each function writes right-aligned into buf and returns the used tail.
package conv

const digits = "0123456789abcdef0123456789ABCDEF"

// Utoa writes n in base 10. buf needs 20 bytes for any uint64.
func Utoa(buf []byte, n uint64) []byte { return format(buf, n, 10, false) }

// Itoa writes n in base 10 with a leading '-' when negative.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	out := Utoa(buf, uint64(-n))
	i := len(buf) - len(out)
	if i == 0 {
		return out
	}
	buf[i-1] = '-'
	return buf[i-1:]
}

// Hex writes n in base 16 with no prefix and no padding.
func Hex(buf []byte, n uint64, upper bool) []byte { return format(buf, n, 16, upper) }

// U32Hex writes exactly eight upper-case hex digits.
func U32Hex(buf []byte, n uint32) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	out := Hex(buf, uint64(n), true)
	i := len(buf) - len(out)
	for i > len(buf)-8 {
		i--
		buf[i] = '0'
	}
	return buf[i:]
}

func format(buf []byte, n uint64, base uint64, upper bool) []byte {
	i := len(buf)
	if i == 0 {
		return buf
	}
	off := uint64(0)
	if upper {
		off = 16
	}
	for {
		i--
		buf[i] = digits[off+n%base]
		n /= base
		if n == 0 || i == 0 {
			return buf[i:]
		}
	}
}
