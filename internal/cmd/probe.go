package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/gousb"

	"github.com/openprobe/jaylink"
	"github.com/openprobe/jaylink/internal/log"
	"github.com/openprobe/jaylink/transport"
	"github.com/openprobe/jaylink/usb"
)

// withHandle opens the probe selected by cfg, runs fn against its protocol
// handle and tears everything down again.
func withHandle(cfg ProbeConfig, logger *slog.Logger, trace log.RawLogger, fn func(*jaylink.Handle) error) error {
	ctx := gousb.NewContext()
	defer ctx.Close()

	dev, err := usb.OpenBySerial(ctx, cfg.Serial)
	if err != nil {
		return err
	}

	link, err := usb.Open(dev, logger)
	if err != nil {
		dev.Close()
		return fmt.Errorf("open probe: %w", err)
	}

	h := jaylink.Open(link, transport.Config{
		Timeout:       cfg.Timeout,
		MaxTimeouts:   cfg.Retries,
		StrictFraming: cfg.StrictFraming,
		Logger:        logger,
		Trace:         trace,
	})
	defer h.Close()

	return fn(h)
}
