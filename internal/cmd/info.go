package cmd

import (
	"fmt"
	"log/slog"

	"github.com/openprobe/jaylink"
	"github.com/openprobe/jaylink/internal/log"
)

// Info prints firmware, hardware and capability information of a probe.
type Info struct{}

func (c *Info) Run(cli *CLI, logger *slog.Logger, trace log.RawLogger) error {
	return withHandle(cli.Probe, logger, trace, func(h *jaylink.Handle) error {
		fw, err := h.FirmwareVersion()
		if err != nil {
			return fmt.Errorf("read firmware version: %w", err)
		}
		fmt.Printf("Firmware: %s\n", fw)

		caps, err := h.GetCaps()
		if err != nil {
			return fmt.Errorf("read capabilities: %w", err)
		}
		if caps.Has(jaylink.CapGetExtCaps) {
			caps, err = h.GetExtCaps()
			if err != nil {
				return fmt.Errorf("read extended capabilities: %w", err)
			}
		}
		fmt.Printf("Capabilities: %x\n", []byte(caps))

		if caps.Has(jaylink.CapGetHardwareVersion) {
			hw, err := h.GetHardwareVersion()
			if err != nil {
				return fmt.Errorf("read hardware version: %w", err)
			}
			fmt.Printf("Hardware: %s\n", hw)
		}

		if caps.Has(jaylink.CapGetFreeMemory) {
			free, err := h.GetFreeMemory()
			if err != nil {
				return fmt.Errorf("read free memory: %w", err)
			}
			fmt.Printf("Free memory: %d bytes\n", free)
		}

		if caps.Has(jaylink.CapSelectTIF) {
			tif, err := h.GetSelectedInterface()
			if err != nil {
				return fmt.Errorf("read selected interface: %w", err)
			}
			fmt.Printf("Target interface: %s\n", tif)

			available, err := h.GetAvailableInterfaces()
			if err != nil {
				return fmt.Errorf("read available interfaces: %w", err)
			}
			fmt.Print("Available interfaces:")
			for i := 0; i < 32; i++ {
				if available&(1<<i) != 0 {
					fmt.Printf(" %s", jaylink.Interface(i))
				}
			}
			fmt.Println()
		}

		return nil
	})
}
