package jaylink

import (
	"fmt"

	"github.com/openprobe/jaylink/transport"
)

// ConfigSize is the size of the device configuration data in bytes.
const ConfigSize = 256

// ReadRawConfig reads the raw configuration data of the probe.
//
// Note that the firmware must support this command; check the CapReadConfig
// capability first.
func (h *Handle) ReadRawConfig() ([]byte, error) {
	if err := h.t.StartWriteRead(1, ConfigSize); err != nil {
		return nil, err
	}
	if err := h.t.Write([]byte{cmdReadConfig}); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	config := make([]byte, ConfigSize)
	if err := h.t.Read(config); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	return config, nil
}

// WriteRawConfig writes raw configuration data to the probe. The data must
// be exactly ConfigSize bytes long.
//
// Note that the firmware must support this command; check the CapWriteConfig
// capability first.
func (h *Handle) WriteRawConfig(config []byte) error {
	if len(config) != ConfigSize {
		return fmt.Errorf("%w: configuration data must be %d bytes, got %d",
			transport.ErrInvalidArgument, ConfigSize, len(config))
	}

	if err := h.t.StartWrite(1 + ConfigSize); err != nil {
		return err
	}
	if err := h.t.Write([]byte{cmdWriteConfig}); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	if err := h.t.Write(config); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}

	return nil
}
