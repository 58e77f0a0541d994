package jaylink

import (
	"fmt"

	"github.com/openprobe/jaylink/internal/buffer"
	"github.com/openprobe/jaylink/transport"
)

// Interface is a target interface of the probe.
type Interface uint8

// Target interfaces.
const (
	// InterfaceJTAG is Joint Test Action Group, IEEE 1149.1.
	InterfaceJTAG Interface = 0
	// InterfaceSWD is Serial Wire Debug.
	InterfaceSWD Interface = 1
	// InterfaceBDM3 is Background Debug Mode 3.
	InterfaceBDM3 Interface = 2
	// InterfaceFINE is Renesas' single-wire debug interface.
	InterfaceFINE Interface = 3
	// Interface2WJTAGPIC32 is 2-wire JTAG for PIC32 compliant devices.
	Interface2WJTAGPIC32 Interface = 4
)

func (i Interface) String() string {
	switch i {
	case InterfaceJTAG:
		return "JTAG"
	case InterfaceSWD:
		return "SWD"
	case InterfaceBDM3:
		return "BDM3"
	case InterfaceFINE:
		return "FINE"
	case Interface2WJTAGPIC32:
		return "2-wire JTAG (PIC32)"
	default:
		return fmt.Sprintf("unknown (%d)", uint8(i))
	}
}

// Sub-values of the interface command.
const (
	tifGetSelected  = 0xfe
	tifGetAvailable = 0xff
)

// SpeedAdaptiveClocking is the target interface speed value that selects
// adaptive clocking.
//
// Note that the firmware must support it; check the CapAdaptiveClocking
// capability first.
const SpeedAdaptiveClocking uint16 = 0xffff

// SelectInterface selects the target interface of the probe and returns the
// previously selected one.
//
// Note that the firmware must support this command; check the CapSelectTIF
// capability first.
func (h *Handle) SelectInterface(tif Interface) (Interface, error) {
	return h.interfaceCommand(byte(tif))
}

// GetSelectedInterface reads the currently selected target interface.
func (h *Handle) GetSelectedInterface() (Interface, error) {
	return h.interfaceCommand(tifGetSelected)
}

// GetAvailableInterfaces reads the bitmask of target interfaces the probe
// supports; bit n corresponds to Interface(n).
func (h *Handle) GetAvailableInterfaces() (uint32, error) {
	if err := h.t.StartWriteRead(2, 4); err != nil {
		return 0, err
	}
	if err := h.t.Write([]byte{cmdSelectTIF, tifGetAvailable}); err != nil {
		return 0, fmt.Errorf("write command: %w", err)
	}

	buf := make([]byte, 4)
	if err := h.t.Read(buf); err != nil {
		return 0, fmt.Errorf("read interfaces: %w", err)
	}

	return buffer.Uint32(buf, 0), nil
}

func (h *Handle) interfaceCommand(sub byte) (Interface, error) {
	if err := h.t.StartWriteRead(2, 4); err != nil {
		return 0, err
	}
	if err := h.t.Write([]byte{cmdSelectTIF, sub}); err != nil {
		return 0, fmt.Errorf("write command: %w", err)
	}

	buf := make([]byte, 4)
	if err := h.t.Read(buf); err != nil {
		return 0, fmt.Errorf("read interface: %w", err)
	}

	return Interface(buffer.Uint32(buf, 0)), nil
}

// SetSpeed sets the target interface speed in kHz, or selects adaptive
// clocking with SpeedAdaptiveClocking.
func (h *Handle) SetSpeed(speed uint16) error {
	if speed == 0 {
		return fmt.Errorf("%w: speed must not be 0", transport.ErrInvalidArgument)
	}

	buf := make([]byte, 3)
	buf[0] = cmdSetSpeed
	buffer.SetUint16(buf, speed, 1)

	if err := h.t.StartWrite(3); err != nil {
		return err
	}
	return h.t.Write(buf)
}
