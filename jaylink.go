// Package jaylink speaks the SEGGER J-Link USB wire protocol. It encodes
// protocol commands over the declared-length transport in the transport
// subpackage; the usb subpackage supplies the bulk link for real hardware.
//
// A Handle is bound to one probe and is not safe for concurrent use; open
// independent handles for independent probes.
package jaylink

import (
	"errors"
	"log/slog"

	"github.com/openprobe/jaylink/transport"
)

// Command opcodes understood by the probe firmware.
const (
	cmdVersion         = 0x01
	cmdSetSpeed        = 0x05
	cmdHardwareStatus  = 0x07
	cmdSetTargetPower  = 0x08
	cmdSelectTIF       = 0xc7
	cmdJTAGIOv2        = 0xcd
	cmdJTAGIOv3        = 0xcf
	cmdSWDIO           = 0xcf
	cmdFreeMemory      = 0xd4
	cmdSetReset        = 0xdc
	cmdClearReset      = 0xdd
	cmdSetTRST         = 0xde
	cmdClearTRST       = 0xdf
	cmdFineIO          = 0xe0
	cmdGetCaps         = 0xe8
	cmdGetExtCaps      = 0xed
	cmdHardwareVersion = 0xf0
	cmdReadConfig      = 0xf2
	cmdWriteConfig     = 0xf3
)

// ErrDevice reports that the probe itself rejected a command, as opposed to
// a failure of the transport underneath it.
var ErrDevice = errors.New("device error")

// Handle drives one open probe. It owns the transport and, through it, the
// scratch buffers and the link.
type Handle struct {
	t   *transport.Transport
	log *slog.Logger
}

// Open wraps an established bulk link in a protocol handle. The zero Config
// selects the reference transport constants.
func Open(link transport.Link, cfg transport.Config) *Handle {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handle{
		t:   transport.New(link, cfg),
		log: cfg.Logger,
	}
}

// Close releases the transport and the link underneath it. The handle must
// not be used afterwards.
func (h *Handle) Close() error {
	return h.t.Close()
}

// command sends a single-byte command that carries no payload and expects no
// response.
func (h *Handle) command(cmd byte) error {
	if err := h.t.StartWrite(1); err != nil {
		return err
	}
	return h.t.Write([]byte{cmd})
}
