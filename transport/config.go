package transport

import (
	"log/slog"
	"time"

	"github.com/openprobe/jaylink/internal/log"
)

// Reference protocol constants. The probe firmware moves data in chunks of
// DefaultChunkSize bytes; the remaining values bound how long a single
// transfer may stall before the operation is abandoned.
const (
	DefaultChunkSize   = 2048
	DefaultTimeout     = 1000 * time.Millisecond
	DefaultMaxTimeouts = 2
)

// Config controls transport behavior. The zero value selects the reference
// constants; tests use tiny chunk sizes and scripted links.
type Config struct {
	// ChunkSize is the transfer granularity of the link. Each scratch
	// buffer is sized to exactly one chunk.
	ChunkSize int

	// Timeout bounds a single link transfer.
	Timeout time.Duration

	// MaxTimeouts is the number of consecutive timeouts tolerated before a
	// transfer is treated as timed out.
	MaxTimeouts int

	// StrictFraming turns framing misuse (declaring an operation while a
	// previous one still has bytes staged or outstanding) into
	// ErrProtocolMisuse. When false, misuse is logged as a warning and the
	// new declaration overwrites the old state.
	StrictFraming bool

	// Logger receives per-transfer diagnostics. Defaults to slog.Default.
	Logger *slog.Logger

	// Trace, when set, receives a hex dump of every chunk moved over the
	// link in either direction.
	Trace log.RawLogger
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxTimeouts <= 0 {
		c.MaxTimeouts = DefaultMaxTimeouts
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
