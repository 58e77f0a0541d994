package jaylink

import (
	"fmt"

	"github.com/openprobe/jaylink/internal/buffer"
)

// HardwareStatus is the state of the target-facing pins and the measured
// target reference voltage.
type HardwareStatus struct {
	// TargetVoltage is the target reference voltage in mV.
	TargetVoltage uint16
	TCK           uint8
	TDI           uint8
	TDO           uint8
	TMS           uint8
	TRES          uint8
	TRST          uint8
}

// GetHardwareStatus reads the hardware status of the probe.
func (h *Handle) GetHardwareStatus() (HardwareStatus, error) {
	if err := h.t.StartWriteRead(1, 8); err != nil {
		return HardwareStatus{}, err
	}
	if err := h.t.Write([]byte{cmdHardwareStatus}); err != nil {
		return HardwareStatus{}, fmt.Errorf("write command: %w", err)
	}

	buf := make([]byte, 8)
	if err := h.t.Read(buf); err != nil {
		return HardwareStatus{}, fmt.Errorf("read status: %w", err)
	}

	return HardwareStatus{
		TargetVoltage: buffer.Uint16(buf, 0),
		TCK:           buf[2],
		TDI:           buf[3],
		TDO:           buf[4],
		TMS:           buf[5],
		TRES:          buf[6],
		TRST:          buf[7],
	}, nil
}

// SetTargetPower switches the 5V power supply on the probe's target
// connector on or off.
//
// Note that the firmware must support this command; check the
// CapSetTargetPower capability first.
func (h *Handle) SetTargetPower(enable bool) error {
	var on byte
	if enable {
		on = 1
	}

	if err := h.t.StartWrite(2); err != nil {
		return err
	}
	return h.t.Write([]byte{cmdSetTargetPower, on})
}

// SetReset asserts the target reset signal.
func (h *Handle) SetReset() error {
	return h.command(cmdSetReset)
}

// ClearReset deasserts the target reset signal.
func (h *Handle) ClearReset() error {
	return h.command(cmdClearReset)
}
