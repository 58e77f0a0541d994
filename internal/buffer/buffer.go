// Package buffer provides fixed-width little-endian field access on raw
// protocol buffers. All multi-byte integers on the J-Link wire are
// little-endian regardless of host byte order.
package buffer

import "encoding/binary"

// SetUint16 stores v at the given byte offset.
func SetUint16(b []byte, v uint16, offset int) {
	binary.LittleEndian.PutUint16(b[offset:], v)
}

// SetUint32 stores v at the given byte offset.
func SetUint32(b []byte, v uint32, offset int) {
	binary.LittleEndian.PutUint32(b[offset:], v)
}

// Uint16 loads a 16-bit field from the given byte offset.
func Uint16(b []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(b[offset:])
}

// Uint32 loads a 32-bit field from the given byte offset.
func Uint32(b []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(b[offset:])
}
