// Package transport implements the buffered, chunked, retrying byte channel
// that J-Link protocol commands are encoded over.
//
// A command declares the total number of bytes it is going to write and read
// (StartWrite, StartRead, StartWriteRead) and then pushes and pulls those
// bytes in arbitrarily sized pieces. Writes are staged in a scratch buffer
// and flushed to the link in chunk-aligned transfers once the declared
// length is reached; reads absorb the device's habit of returning up to a
// full chunk no matter how few bytes were asked for.
//
// A Transport is owned by exactly one device handle and must not be used
// from more than one goroutine at a time.
package transport

import (
	"errors"
	"fmt"
	"log/slog"
)

// Transport turns a Link into a byte-exact, declared-length read/write
// channel.
type Transport struct {
	link Link
	cfg  Config
	log  *slog.Logger

	// Write staging. writeLength counts declared bytes not yet submitted;
	// writePos counts bytes staged in writeBuf.
	writeBuf    []byte
	writeLength int
	writePos    int

	// Read lookahead. readLength counts declared bytes still on the
	// device; readAvail and readPos describe the unread span of readBuf.
	readBuf    []byte
	readLength int
	readAvail  int
	readPos    int
}

// New creates a transport over an established link. The scratch buffers are
// sized to one chunk each; write staging and read lookahead never alias.
func New(link Link, cfg Config) *Transport {
	cfg = cfg.withDefaults()
	return &Transport{
		link:     link,
		cfg:      cfg,
		log:      cfg.Logger,
		writeBuf: make([]byte, cfg.ChunkSize),
		readBuf:  make([]byte, cfg.ChunkSize),
	}
}

// Close tears down the underlying link. The transport must not be used
// afterwards, and Close must not be called concurrently with an in-flight
// operation.
func (t *Transport) Close() error {
	return t.link.Close()
}

// misuse reports a framing precondition violation: an error under strict
// framing, a warning otherwise (the reference behavior).
func (t *Transport) misuse(format string, args ...any) error {
	if t.cfg.StrictFraming {
		return fmt.Errorf("%w: %s", ErrProtocolMisuse, fmt.Sprintf(format, args...))
	}
	t.log.Warn(fmt.Sprintf(format, args...))
	return nil
}

// StartWrite declares a write operation of length bytes. The data must be
// supplied with at least one call of Write, and all of it must be written
// before another operation is started.
func (t *Transport) StartWrite(length int) error {
	if length <= 0 {
		return fmt.Errorf("%w: write operation of %d bytes", ErrInvalidArgument, length)
	}

	t.log.Debug("starting write operation", "length", length)

	if t.writePos > 0 {
		if err := t.misuse("last write operation left %d bytes in the buffer", t.writePos); err != nil {
			return err
		}
	}
	if t.writeLength > 0 {
		if err := t.misuse("last write operation was not performed"); err != nil {
			return err
		}
	}

	t.writeLength = length
	t.writePos = 0

	return nil
}

// StartRead declares a read operation of length bytes. The data must be
// consumed with at least one call of Read, and all of it must be read before
// another operation is started.
func (t *Transport) StartRead(length int) error {
	if length <= 0 {
		return fmt.Errorf("%w: read operation of %d bytes", ErrInvalidArgument, length)
	}

	t.log.Debug("starting read operation", "length", length)

	if err := t.checkReadLeftovers(); err != nil {
		return err
	}

	t.readLength = length
	t.readAvail = 0
	t.readPos = 0

	return nil
}

// StartWriteRead declares a write and a read operation together. This is not
// equivalent to consecutive StartWrite and StartRead calls from the protocol
// perspective: commands that expect a response must be declared this way.
// The write operation must be completed before the read operation is driven.
func (t *Transport) StartWriteRead(writeLength, readLength int) error {
	if writeLength <= 0 || readLength <= 0 {
		return fmt.Errorf("%w: write / read operation of %d / %d bytes",
			ErrInvalidArgument, writeLength, readLength)
	}

	t.log.Debug("starting write / read operation",
		"write_length", writeLength, "read_length", readLength)

	if t.writePos > 0 {
		if err := t.misuse("last write operation left %d bytes in the buffer", t.writePos); err != nil {
			return err
		}
	}
	if t.writeLength > 0 {
		if err := t.misuse("last write operation was not performed"); err != nil {
			return err
		}
	}
	if err := t.checkReadLeftovers(); err != nil {
		return err
	}

	t.writeLength = writeLength
	t.writePos = 0

	t.readLength = readLength
	t.readAvail = 0
	t.readPos = 0

	return nil
}

func (t *Transport) checkReadLeftovers() error {
	if t.readAvail > 0 {
		if err := t.misuse("last read operation left %d bytes in the buffer", t.readAvail); err != nil {
			return err
		}
	}
	if t.readLength > 0 {
		if err := t.misuse("last read operation left %d bytes on the device", t.readLength); err != nil {
			return err
		}
	}
	return nil
}

// Write submits the next len(p) bytes of the current write operation. The
// bytes are staged until the declared length is reached, at which point the
// staged data is flushed to the link in chunk-aligned transfers followed by
// the unaligned remainder.
func (t *Transport) Write(p []byte) error {
	if len(p) > t.writeLength {
		return fmt.Errorf("%w: requested to write %d bytes but only %d bytes are expected for the write operation",
			ErrInvalidArgument, len(p), t.writeLength)
	}

	// Stage until the declared number of bytes is reached.
	if len(p) < t.writeLength {
		if t.writePos+len(p) > len(t.writeBuf) {
			return fmt.Errorf("%w: write request is too large for the buffer", ErrInvalidArgument)
		}

		copy(t.writeBuf[t.writePos:], p)

		t.writeLength -= len(p)
		t.writePos += len(p)

		t.log.Debug("wrote bytes into buffer", "length", len(p))
		return nil
	}

	// The declared length is reached: the operation is complete no matter
	// how the transfers below turn out.
	t.writeLength = 0

	// Nothing staged, send the data directly.
	if t.writePos == 0 {
		return t.send(p)
	}

	// Fill the staged data up to a multiple of the chunk size so the
	// buffered transfer stays chunk-aligned. This is why the scratch
	// buffer must hold at least one chunk.
	chunk := t.cfg.ChunkSize
	numChunks := (t.writePos + chunk - 1) / chunk
	fill := min(len(p), numChunks*chunk-t.writePos)

	if fill > 0 {
		copy(t.writeBuf[t.writePos:], p[:fill])
		p = p[fill:]
		t.log.Debug("buffer filled up", "length", fill)
	}

	err := t.send(t.writeBuf[:t.writePos+fill])
	t.writePos = 0

	if err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	// Remainder that did not fit the chunk-aligned transfer.
	return t.send(p)
}

// Read consumes the next len(p) bytes of the current read operation, filling
// p entirely or failing. Bytes left over from an earlier over-sized device
// transfer are served from the lookahead buffer before the link is asked for
// more.
func (t *Transport) Read(p []byte) error {
	if len(p) > t.readLength+t.readAvail {
		return fmt.Errorf("%w: requested to read %d bytes but only %d bytes are expected for the read operation",
			ErrInvalidArgument, len(p), t.readLength+t.readAvail)
	}

	if len(p) <= t.readAvail {
		copy(p, t.readBuf[t.readPos:t.readPos+len(p)])

		t.readAvail -= len(p)
		t.readPos += len(p)

		t.log.Debug("read bytes from buffer", "length", len(p))
		return nil
	}

	if t.readAvail > 0 {
		copy(p, t.readBuf[t.readPos:t.readPos+t.readAvail])

		t.log.Debug("read bytes from buffer to flush it", "length", t.readAvail)

		p = p[t.readAvail:]
		t.readAvail = 0
		t.readPos = 0
	}

	chunk := t.cfg.ChunkSize

	for len(p) > 0 {
		var (
			n   int
			err error
		)

		// Receive into the lookahead buffer when less than a full chunk
		// remains: the device may return up to a full chunk no matter how
		// few bytes were requested.
		if len(p) < chunk {
			n, err = t.recv(t.readBuf)
		} else {
			n, err = t.recv(p)
		}
		if err != nil {
			return err
		}

		if n > t.readLength {
			return fmt.Errorf("%w: expected %d bytes from device but %d bytes received",
				ErrIO, t.readLength, n)
		}

		if len(p) < chunk {
			m := min(n, len(p))
			copy(p, t.readBuf[:m])

			// Keep the surplus for the next call.
			if n > len(p) {
				t.readAvail = n - m
				t.readPos = m
			}

			p = p[m:]
			t.log.Debug("read bytes from buffer", "length", m)
		} else {
			p = p[n:]
			t.log.Debug("read bytes from device", "length", n)
		}

		t.readLength -= n
	}

	return nil
}

// recv pulls one transfer from the link, retrying on timeout. A full chunk
// is always requested, so buf must hold at least one chunk. A timeout is
// tolerated as long as at least one byte arrived.
func (t *Transport) recv(buf []byte) (int, error) {
	tries := t.cfg.MaxTimeouts
	transferred := 0

	for tries > 0 && transferred == 0 {
		n, err := t.link.Recv(buf[:t.cfg.ChunkSize], t.cfg.Timeout)

		switch {
		case err == nil:
			transferred = n
			t.log.Debug("received bytes from device", "length", n)
		case errors.Is(err, ErrTimeout):
			t.log.Warn("failed to receive data from device", "error", err)
			transferred = n
			tries--
		default:
			t.log.Error("failed to receive data from device", "error", err)
			return 0, fmt.Errorf("%w: %v", ErrIO, err)
		}
	}

	if transferred > 0 {
		if t.cfg.Trace != nil {
			t.cfg.Trace.Log(true, buf[:transferred])
		}
		return transferred, nil
	}

	t.log.Error("receiving data from device timed out")

	return 0, fmt.Errorf("%w: receiving data from device", ErrTimeout)
}

// send pushes p to the link in transfers of at most one chunk. Every
// successfully sent chunk refreshes the retry budget; consecutive timeouts
// exhaust it.
func (t *Transport) send(p []byte) error {
	tries := t.cfg.MaxTimeouts

	for tries > 0 && len(p) > 0 {
		n, err := t.link.Send(p[:min(t.cfg.ChunkSize, len(p))], t.cfg.Timeout)

		switch {
		case err == nil:
			tries = t.cfg.MaxTimeouts
		case errors.Is(err, ErrTimeout):
			t.log.Warn("failed to send data to device", "error", err)
			tries--
		default:
			t.log.Error("failed to send data to device", "error", err)
			return fmt.Errorf("%w: %v", ErrIO, err)
		}

		if t.cfg.Trace != nil && n > 0 {
			t.cfg.Trace.Log(false, p[:n])
		}

		p = p[n:]
		t.log.Debug("sent bytes to device", "length", n)
	}

	if len(p) == 0 {
		return nil
	}

	t.log.Error("sending data to device timed out")

	return fmt.Errorf("%w: sending data to device", ErrTimeout)
}
