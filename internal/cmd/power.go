package cmd

import (
	"fmt"
	"log/slog"

	"github.com/openprobe/jaylink"
	"github.com/openprobe/jaylink/internal/log"
)

// Power switches the 5V supply on the probe's target connector.
type Power struct {
	State string `arg:"" enum:"on,off" help:"Desired supply state (on|off)"`
}

func (c *Power) Run(cli *CLI, logger *slog.Logger, trace log.RawLogger) error {
	return withHandle(cli.Probe, logger, trace, func(h *jaylink.Handle) error {
		caps, err := h.GetCaps()
		if err != nil {
			return fmt.Errorf("read capabilities: %w", err)
		}
		if !caps.Has(jaylink.CapSetTargetPower) {
			return fmt.Errorf("probe cannot switch target power")
		}

		if err := h.SetTargetPower(c.State == "on"); err != nil {
			return fmt.Errorf("set target power: %w", err)
		}

		logger.Info("target power switched", "state", c.State)
		return nil
	})
}
