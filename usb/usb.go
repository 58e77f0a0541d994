// Package usb implements the bulk link of the transport layer on top of
// github.com/google/gousb and discovers attached J-Link probes.
package usb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/gousb"

	"github.com/openprobe/jaylink/transport"
)

// USB interface numbers used by the probes.
const (
	interfaceNumber   = 0
	interfaceNumberOB = 2 // J-Link OB (onboard) devices
)

// Device is an open probe exposing its bulk endpoint pair as a
// transport.Link.
type Device struct {
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	in   *gousb.InEndpoint
	out  *gousb.OutEndpoint
	log  *slog.Logger
}

// Open claims the probe's bulk interface and resolves its endpoint pair.
// The returned Device owns dev and releases it on Close.
func Open(dev *gousb.Device, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}

	number := interfaceNumber
	if IsOnboard(dev.Desc) {
		number = interfaceNumberOB
	}

	// Best effort; unsupported on some platforms.
	_ = dev.SetAutoDetach(true)

	cfg, err := dev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("claim configuration: %w", err)
	}

	intf, err := cfg.Interface(number, 0)
	if err != nil {
		cfg.Close()
		return nil, fmt.Errorf("claim interface %d: %w", number, err)
	}

	d := &Device{dev: dev, cfg: cfg, intf: intf, log: logger}

	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionIn && d.in == nil:
			d.in, err = intf.InEndpoint(ep.Number)
		case ep.Direction == gousb.EndpointDirectionOut && d.out == nil:
			d.out, err = intf.OutEndpoint(ep.Number)
		}
		if err != nil {
			d.release()
			return nil, fmt.Errorf("open endpoint %s: %w", ep.Address, err)
		}
	}

	if d.in == nil || d.out == nil {
		d.release()
		return nil, errors.New("interface has no bulk endpoint pair")
	}

	logger.Debug("device opened",
		"bus", dev.Desc.Bus, "address", dev.Desc.Address,
		"in", d.in.Desc.Address, "out", d.out.Desc.Address)

	return d, nil
}

// Send pushes p to the bulk OUT endpoint, blocking for at most timeout.
func (d *Device) Send(p []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := d.out.WriteContext(ctx, p)
	return n, mapTransferError(err)
}

// Recv pulls up to len(p) bytes from the bulk IN endpoint, blocking for at
// most timeout.
func (d *Device) Recv(p []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := d.in.ReadContext(ctx, p)
	return n, mapTransferError(err)
}

// Close releases the claimed interface and the device.
func (d *Device) Close() error {
	d.release()
	return d.dev.Close()
}

func (d *Device) release() {
	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	if d.cfg != nil {
		d.cfg.Close()
		d.cfg = nil
	}
}

// mapTransferError normalizes gousb transfer failures onto the transport
// error kinds. A transfer aborted by our deadline context surfaces from
// gousb as TransferCancelled.
func mapTransferError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gousb.TransferTimedOut),
		errors.Is(err, gousb.TransferCancelled),
		errors.Is(err, gousb.ErrorTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	default:
		return err
	}
}
