package transport

import "time"

// Link is the synchronous bulk-transfer primitive the transport drives. The
// usb package implements it on top of a real USB endpoint pair; tests use
// scripted doubles.
//
// Send and Recv block for at most timeout. A timed-out transfer returns an
// error satisfying errors.Is(err, ErrTimeout) and may still report a partial
// byte count in n. Any other error is fatal for the current operation.
type Link interface {
	Send(p []byte, timeout time.Duration) (n int, err error)
	Recv(p []byte, timeout time.Duration) (n int, err error)
	Close() error
}
