package bastion

import "encoding/binary"

// frameAlignment is the byte boundary the framed payload is zero-padded to.
const frameAlignment = 64

// frame wraps canonical JSON in a 4-byte little-endian length prefix plus
// zero padding so that (4 + len(payload) + pad) % 64 == 0 (spec §4.2).
func frame(payload []byte) []byte {
	length := len(payload)
	total := 4 + length
	pad := 0
	if rem := total % frameAlignment; rem != 0 {
		pad = frameAlignment - rem
	}

	out := make([]byte, total+pad)
	binary.LittleEndian.PutUint32(out[0:4], uint32(length))
	copy(out[4:4+length], payload)
	// out[4+length:] is already zero from make([]byte, ...)
	return out
}

// deframe reverses frame. If the 4-byte little-endian length prefix fits
// within the buffer, the slice it designates is returned. Otherwise buf is
// assumed to be unframed legacy JSON (which always starts with '{' — as a
// little-endian u32 that implies a length far larger than any real buffer)
// and is returned unchanged.
func deframe(buf []byte) []byte {
	if len(buf) < 4 {
		return buf
	}
	length := binary.LittleEndian.Uint32(buf[0:4])
	if int(length) <= len(buf)-4 {
		return buf[4 : 4+int(length)]
	}
	return buf
}
