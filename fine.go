package jaylink

import (
	"fmt"

	"github.com/openprobe/jaylink/internal/buffer"
	"github.com/openprobe/jaylink/transport"
)

// fineHeaderSize is the fixed request header: opcode plus three 32-bit
// little-endian fields.
const fineHeaderSize = 13

// FineIO performs a FINE I/O operation: out is written to the target, and
// len(in) bytes of response are read back into in. The 32-bit status word
// the probe appends to the response is returned undecoded; its
// interpretation is up to the caller.
//
// Note that the FINE interface must be available and selected; see
// SelectInterface.
func (h *Handle) FineIO(out, in []byte, param uint32) (uint32, error) {
	if out == nil || in == nil {
		return 0, fmt.Errorf("%w: output and input buffers must not be nil",
			transport.ErrInvalidArgument)
	}

	if err := h.t.StartWriteRead(fineHeaderSize+len(out), 4+len(in)); err != nil {
		return 0, err
	}

	header := make([]byte, fineHeaderSize)
	header[0] = cmdFineIO
	buffer.SetUint32(header, uint32(len(out)), 1)
	buffer.SetUint32(header, uint32(len(in)), 5)
	buffer.SetUint32(header, param, 9)

	if err := h.t.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	if err := h.t.Write(out); err != nil {
		return 0, fmt.Errorf("write payload: %w", err)
	}

	if err := h.t.Read(in); err != nil {
		return 0, fmt.Errorf("read payload: %w", err)
	}

	trailer := make([]byte, 4)
	if err := h.t.Read(trailer); err != nil {
		return 0, fmt.Errorf("read status: %w", err)
	}

	return buffer.Uint32(trailer, 0), nil
}
