package cmd

import (
	"fmt"
	"log/slog"

	"github.com/openprobe/jaylink"
	"github.com/openprobe/jaylink/internal/log"
)

// Speed sets the target interface speed.
type Speed struct {
	KHz      uint16 `arg:"" optional:"" help:"Speed in kHz"`
	Adaptive bool   `help:"Use adaptive clocking instead of a fixed speed"`
}

func (c *Speed) Run(cli *CLI, logger *slog.Logger, trace log.RawLogger) error {
	if c.Adaptive == (c.KHz != 0) {
		return fmt.Errorf("specify either a speed in kHz or --adaptive")
	}

	return withHandle(cli.Probe, logger, trace, func(h *jaylink.Handle) error {
		speed := c.KHz
		if c.Adaptive {
			caps, err := h.GetCaps()
			if err != nil {
				return fmt.Errorf("read capabilities: %w", err)
			}
			if !caps.Has(jaylink.CapAdaptiveClocking) {
				return fmt.Errorf("probe does not support adaptive clocking")
			}
			speed = jaylink.SpeedAdaptiveClocking
		}

		if err := h.SetSpeed(speed); err != nil {
			return fmt.Errorf("set speed: %w", err)
		}

		if c.Adaptive {
			logger.Info("interface speed set", "mode", "adaptive")
		} else {
			logger.Info("interface speed set", "khz", speed)
		}
		return nil
	})
}
