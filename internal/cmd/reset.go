package cmd

import (
	"fmt"
	"log/slog"

	"github.com/openprobe/jaylink"
	"github.com/openprobe/jaylink/internal/log"
)

// Reset asserts or deasserts the target reset signal.
type Reset struct {
	Action string `arg:"" enum:"set,clear" help:"set asserts reset, clear releases it"`
}

func (c *Reset) Run(cli *CLI, logger *slog.Logger, trace log.RawLogger) error {
	return withHandle(cli.Probe, logger, trace, func(h *jaylink.Handle) error {
		var err error
		if c.Action == "set" {
			err = h.SetReset()
		} else {
			err = h.ClearReset()
		}
		if err != nil {
			return fmt.Errorf("%s reset: %w", c.Action, err)
		}

		logger.Info("reset signal changed", "action", c.Action)
		return nil
	})
}
