package jaylink

import (
	"fmt"

	"github.com/openprobe/jaylink/internal/buffer"
	"github.com/openprobe/jaylink/transport"
)

// SWDIO performs an SWD I/O operation, clocking numBits bits into the
// target. direction selects per-bit whether the corresponding out bit is
// driven (1) or the bus is sampled (0); the sampled bits are returned.
// direction and out must each hold at least (numBits+7)/8 bytes.
//
// A nonzero status byte in the response is reported as ErrDevice.
//
// Note that the SWD interface must be available and selected; see
// SelectInterface.
func (h *Handle) SWDIO(direction, out []byte, numBits uint16) ([]byte, error) {
	if numBits == 0 {
		return nil, fmt.Errorf("%w: SWD I/O of 0 bits", transport.ErrInvalidArgument)
	}

	numBytes := (int(numBits) + 7) / 8
	if len(direction) < numBytes || len(out) < numBytes {
		return nil, fmt.Errorf("%w: %d bits require %d bytes of direction and output data",
			transport.ErrInvalidArgument, numBits, numBytes)
	}

	if err := h.t.StartWriteRead(4+2*numBytes, numBytes+1); err != nil {
		return nil, err
	}

	header := make([]byte, 4)
	header[0] = cmdSWDIO
	header[1] = 0
	buffer.SetUint16(header, numBits, 2)

	if err := h.t.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := h.t.Write(direction[:numBytes]); err != nil {
		return nil, fmt.Errorf("write direction data: %w", err)
	}
	if err := h.t.Write(out[:numBytes]); err != nil {
		return nil, fmt.Errorf("write output data: %w", err)
	}

	in := make([]byte, numBytes)
	if err := h.t.Read(in); err != nil {
		return nil, fmt.Errorf("read input data: %w", err)
	}

	status := make([]byte, 1)
	if err := h.t.Read(status); err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	if status[0] != 0 {
		return nil, fmt.Errorf("%w: SWD I/O failed with status %d", ErrDevice, status[0])
	}

	return in, nil
}
