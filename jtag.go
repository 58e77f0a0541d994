package jaylink

import (
	"fmt"

	"github.com/openprobe/jaylink/internal/buffer"
	"github.com/openprobe/jaylink/transport"
)

// JTAGVersion selects the JTAG command version of the probe firmware. The
// version affects only the wire encoding, not the JTAG operation itself.
type JTAGVersion uint8

// JTAG command versions.
const (
	// JTAGv2 is obsolete for major hardware version 5 and above; use
	// JTAGv3 there instead.
	JTAGv2 JTAGVersion = 1
	JTAGv3 JTAGVersion = 2
)

// JTAGIO performs a JTAG I/O operation, clocking numBits bits from tms and
// tdi into the target and returning the captured TDO bits. tms and tdi must
// each hold at least (numBits+7)/8 bytes.
//
// Version 3 responses carry a status byte; a nonzero status is reported as
// ErrDevice.
func (h *Handle) JTAGIO(tms, tdi []byte, numBits uint16, version JTAGVersion) ([]byte, error) {
	if numBits == 0 {
		return nil, fmt.Errorf("%w: JTAG I/O of 0 bits", transport.ErrInvalidArgument)
	}

	numBytes := (int(numBits) + 7) / 8
	if len(tms) < numBytes || len(tdi) < numBytes {
		return nil, fmt.Errorf("%w: %d bits require %d bytes of TMS and TDI data",
			transport.ErrInvalidArgument, numBits, numBytes)
	}

	var cmd byte
	readLength := numBytes

	switch version {
	case JTAGv2:
		cmd = cmdJTAGIOv2
	case JTAGv3:
		cmd = cmdJTAGIOv3
		// V3 appends a status byte to the TDO data.
		readLength++
	default:
		return nil, fmt.Errorf("%w: unknown JTAG command version %d",
			transport.ErrInvalidArgument, version)
	}

	if err := h.t.StartWriteRead(4+2*numBytes, readLength); err != nil {
		return nil, err
	}

	header := make([]byte, 4)
	header[0] = cmd
	header[1] = 0
	buffer.SetUint16(header, numBits, 2)

	if err := h.t.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := h.t.Write(tms[:numBytes]); err != nil {
		return nil, fmt.Errorf("write TMS data: %w", err)
	}
	if err := h.t.Write(tdi[:numBytes]); err != nil {
		return nil, fmt.Errorf("write TDI data: %w", err)
	}

	tdo := make([]byte, numBytes)
	if err := h.t.Read(tdo); err != nil {
		return nil, fmt.Errorf("read TDO data: %w", err)
	}

	if version == JTAGv3 {
		status := make([]byte, 1)
		if err := h.t.Read(status); err != nil {
			return nil, fmt.Errorf("read status: %w", err)
		}
		if status[0] != 0 {
			return nil, fmt.Errorf("%w: JTAG I/O failed with status %d", ErrDevice, status[0])
		}
	}

	return tdo, nil
}

// JTAGSetTRST asserts the TRST signal.
func (h *Handle) JTAGSetTRST() error {
	return h.command(cmdSetTRST)
}

// JTAGClearTRST deasserts the TRST signal.
func (h *Handle) JTAGClearTRST() error {
	return h.command(cmdClearTRST)
}
