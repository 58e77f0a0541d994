package jaylink

import "fmt"

// Capability bitmap sizes in bytes.
const (
	CapsSize    = 4
	ExtCapsSize = 32
)

// DeviceCapability is a bit position in the capability bitmap reported by
// the probe.
type DeviceCapability uint32

// Device capabilities.
const (
	CapGetHardwareVersion DeviceCapability = 1
	CapAdaptiveClocking   DeviceCapability = 3
	CapReadConfig         DeviceCapability = 4
	CapWriteConfig        DeviceCapability = 5
	CapGetFreeMemory      DeviceCapability = 11
	CapSetTargetPower     DeviceCapability = 13
	CapSelectTIF          DeviceCapability = 17
	CapSWO                DeviceCapability = 23
	CapRegister           DeviceCapability = 27
	CapGetExtCaps         DeviceCapability = 31
)

// Caps is a device capability bitmap, CapsSize or ExtCapsSize bytes long.
type Caps []byte

// Has reports whether the capability bit is set. Bits beyond the bitmap are
// reported as unset.
func (c Caps) Has(cap DeviceCapability) bool {
	if int(cap) >= len(c)*8 {
		return false
	}
	return c[cap/8]&(1<<(cap%8)) != 0
}

// GetCaps reads the capability bitmap of the probe.
func (h *Handle) GetCaps() (Caps, error) {
	if err := h.t.StartWriteRead(1, CapsSize); err != nil {
		return nil, err
	}
	if err := h.t.Write([]byte{cmdGetCaps}); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	caps := make(Caps, CapsSize)
	if err := h.t.Read(caps); err != nil {
		return nil, fmt.Errorf("read capabilities: %w", err)
	}

	return caps, nil
}

// GetExtCaps reads the extended capability bitmap of the probe. It is a
// superset of the bitmap reported by GetCaps.
//
// Note that the firmware must support this command; check the CapGetExtCaps
// capability first.
func (h *Handle) GetExtCaps() (Caps, error) {
	if err := h.t.StartWriteRead(1, ExtCapsSize); err != nil {
		return nil, err
	}
	if err := h.t.Write([]byte{cmdGetExtCaps}); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	caps := make(Caps, ExtCapsSize)
	if err := h.t.Read(caps); err != nil {
		return nil, fmt.Errorf("read extended capabilities: %w", err)
	}

	return caps, nil
}
