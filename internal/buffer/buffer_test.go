package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint16RoundTrip(t *testing.T) {
	b := make([]byte, 4)
	SetUint16(b, 0x1234, 1)

	assert.Equal(t, []byte{0x00, 0x34, 0x12, 0x00}, b)
	assert.Equal(t, uint16(0x1234), Uint16(b, 1))
}

func TestUint32RoundTrip(t *testing.T) {
	b := make([]byte, 6)
	SetUint32(b, 0xdeadbeef, 2)

	assert.Equal(t, []byte{0x00, 0x00, 0xef, 0xbe, 0xad, 0xde}, b)
	assert.Equal(t, uint32(0xdeadbeef), Uint32(b, 2))
}
