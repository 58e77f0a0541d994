package cmd

import (
	"fmt"
	"log/slog"

	"github.com/openprobe/jaylink"
	"github.com/openprobe/jaylink/internal/log"
)

// Status prints the target pin states and the measured reference voltage.
type Status struct{}

func (c *Status) Run(cli *CLI, logger *slog.Logger, trace log.RawLogger) error {
	return withHandle(cli.Probe, logger, trace, func(h *jaylink.Handle) error {
		status, err := h.GetHardwareStatus()
		if err != nil {
			return fmt.Errorf("read hardware status: %w", err)
		}

		fmt.Printf("VTref: %d mV\n", status.TargetVoltage)
		fmt.Printf("TCK: %d  TDI: %d  TDO: %d  TMS: %d\n",
			status.TCK, status.TDI, status.TDO, status.TMS)
		fmt.Printf("TRES: %d  TRST: %d\n", status.TRES, status.TRST)

		return nil
	})
}
