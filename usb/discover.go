package usb

import (
	"fmt"

	"github.com/google/gousb"
)

// VendorID is SEGGER's USB vendor ID.
const VendorID gousb.ID = 0x1366

// productIDOB is the product ID of J-Link OB devices, which expose the
// probe on a different USB interface than standalone probes.
const productIDOB gousb.ID = 0x0105

// IsProbe reports whether the descriptor belongs to a J-Link device.
func IsProbe(desc *gousb.DeviceDesc) bool {
	return desc.Vendor == VendorID
}

// IsOnboard reports whether the descriptor belongs to a J-Link OB device.
func IsOnboard(desc *gousb.DeviceDesc) bool {
	return desc.Vendor == VendorID && desc.Product == productIDOB
}

// List opens all attached J-Link probes. The caller owns the returned
// devices and must close each of them.
//
// An enumeration error is ignored as long as at least one device was
// opened: there is no information about which device the error occurred on,
// so a valid handle is worth more than the error.
func List(ctx *gousb.Context) ([]*gousb.Device, error) {
	devices, err := ctx.OpenDevices(IsProbe)
	if len(devices) > 0 {
		return devices, nil
	}
	return nil, err
}

// OpenBySerial opens the probe with the given serial number, or the only
// attached probe when serial is empty. All other opened candidates are
// closed again.
func OpenBySerial(ctx *gousb.Context, serial string) (*gousb.Device, error) {
	devices, err := List(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no probe found")
	}

	var match *gousb.Device
	for _, dev := range devices {
		if match != nil {
			dev.Close()
			continue
		}
		if serial == "" {
			if len(devices) > 1 {
				// Ambiguous; close everything and make the caller choose.
				dev.Close()
				continue
			}
			match = dev
			continue
		}
		sn, err := dev.SerialNumber()
		if err == nil && sn == serial {
			match = dev
			continue
		}
		dev.Close()
	}

	if match == nil {
		if serial == "" {
			return nil, fmt.Errorf("%d probes attached, select one with --serial", len(devices))
		}
		return nil, fmt.Errorf("no probe with serial %q found", serial)
	}
	return match, nil
}
