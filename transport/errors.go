package transport

import "errors"

// Error kinds returned by the transport layer. Callers match them with
// errors.Is; the wrapped message carries the operation context.
var (
	// ErrInvalidArgument reports a zero-length or mis-sized request. It is
	// always detected before any link traffic and never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTimeout reports that all retry attempts were exhausted without
	// enough data moving. The caller may retry the whole operation.
	ErrTimeout = errors.New("transfer timed out")

	// ErrIO reports a non-timeout link failure or a protocol inconsistency
	// such as the device returning more bytes than were declared. It is
	// fatal to the current operation.
	ErrIO = errors.New("input/output error")

	// ErrProtocolMisuse reports that an operation was declared while a
	// previous one still had bytes staged or outstanding. It is only
	// returned when Config.StrictFraming is set; otherwise the condition
	// is logged as a warning.
	ErrProtocolMisuse = errors.New("protocol misuse")
)
