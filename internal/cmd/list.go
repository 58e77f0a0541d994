package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/gousb"

	"github.com/openprobe/jaylink/usb"
)

// List enumerates all attached probes.
type List struct{}

func (c *List) Run(cli *CLI, logger *slog.Logger) error {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, err := usb.List(ctx)
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	defer func() {
		for _, dev := range devices {
			dev.Close()
		}
	}()

	if len(devices) == 0 {
		fmt.Println("no probes found")
		return nil
	}

	for _, dev := range devices {
		serial, err := dev.SerialNumber()
		if err != nil {
			logger.Warn("read serial number", "error", err)
			serial = "?"
		}
		product, err := dev.Product()
		if err != nil {
			product = "J-Link"
		}
		fmt.Printf("%s  serial=%s  bus=%d  address=%d\n",
			product, serial, dev.Desc.Bus, dev.Desc.Address)
	}

	return nil
}
