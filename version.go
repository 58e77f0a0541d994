package jaylink

import (
	"bytes"
	"fmt"

	"github.com/openprobe/jaylink/internal/buffer"
)

// HardwareType identifies the probe hardware family.
type HardwareType uint8

// HardwareType values.
const (
	HardwareTypeBase HardwareType = 0
)

// HardwareVersion is the hardware type and version of a probe.
type HardwareVersion struct {
	Type     HardwareType
	Major    uint8
	Minor    uint8
	Revision uint8
}

func (v HardwareVersion) String() string {
	return fmt.Sprintf("%d.%02d.%02d", v.Major, v.Minor, v.Revision)
}

// FirmwareVersion reads the firmware version string of the probe. The probe
// first reports the string length and then delivers the string itself as a
// separate read operation.
func (h *Handle) FirmwareVersion() (string, error) {
	if err := h.t.StartWriteRead(1, 2); err != nil {
		return "", err
	}
	if err := h.t.Write([]byte{cmdVersion}); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}

	buf := make([]byte, 2)
	if err := h.t.Read(buf); err != nil {
		return "", fmt.Errorf("read length: %w", err)
	}

	length := buffer.Uint16(buf, 0)
	if length == 0 {
		return "", nil
	}

	if err := h.t.StartRead(int(length)); err != nil {
		return "", err
	}
	version := make([]byte, length)
	if err := h.t.Read(version); err != nil {
		return "", fmt.Errorf("read version: %w", err)
	}

	return string(bytes.TrimRight(version, "\x00")), nil
}

// GetHardwareVersion reads the hardware type and version of the probe. The
// probe packs all fields into one decimal-encoded 32-bit word.
//
// Note that the firmware must support this command; check the
// CapGetHardwareVersion capability first.
func (h *Handle) GetHardwareVersion() (HardwareVersion, error) {
	if err := h.t.StartWriteRead(1, 4); err != nil {
		return HardwareVersion{}, err
	}
	if err := h.t.Write([]byte{cmdHardwareVersion}); err != nil {
		return HardwareVersion{}, fmt.Errorf("write command: %w", err)
	}

	buf := make([]byte, 4)
	if err := h.t.Read(buf); err != nil {
		return HardwareVersion{}, fmt.Errorf("read version: %w", err)
	}

	version := buffer.Uint32(buf, 0)

	return HardwareVersion{
		Type:     HardwareType(version / 1000000),
		Major:    uint8(version / 10000 % 100),
		Minor:    uint8(version / 100 % 100),
		Revision: uint8(version % 100),
	}, nil
}

// GetFreeMemory reads the size of free memory on the probe in bytes.
//
// Note that the firmware must support this command; check the
// CapGetFreeMemory capability first.
func (h *Handle) GetFreeMemory() (uint32, error) {
	if err := h.t.StartWriteRead(1, 4); err != nil {
		return 0, err
	}
	if err := h.t.Write([]byte{cmdFreeMemory}); err != nil {
		return 0, fmt.Errorf("write command: %w", err)
	}

	buf := make([]byte, 4)
	if err := h.t.Read(buf); err != nil {
		return 0, fmt.Errorf("read size: %w", err)
	}

	return buffer.Uint32(buf, 0), nil
}
