// Package errcode defines the stable, small-integer error taxonomy
// shared by every layer of stm32boot. Every operation in the codec,
// transport, driver and sequencer packages returns (or wraps) one of
// these codes; the sequencer is the sole place they get printed and
// turned into a process exit status.
package errcode

import "errors"

// Code is a stable small integer. Callers may compare it with ==; the
// numeric values are part of the CLI's exit-code contract and must not
// be renumbered.
type Code int

const (
	Done Code = iota
	InvalidOption
	InvalidOptionsArgument
	InternalError
	SerialPortAlreadyOpen
	NoDeviceReply
	InvalidDeviceReply
	UnsupportedDevice
	InvalidFileContent
	InvalidFileChecksum
)

// messages holds the fixed, user-facing text for every code except
// InternalError, whose text is the wrapped system error instead.
var messages = map[Code]string{
	Done:                   "No errors, all done",
	InvalidOption:          "Invalid option",
	InvalidOptionsArgument: "Invalid actual parameter",
	InternalError:          "Internal error",
	SerialPortAlreadyOpen:  "Serial port already open",
	NoDeviceReply:          "No reply from device bootloader",
	InvalidDeviceReply:     "Invalid reply from device bootloader",
	UnsupportedDevice:      "Unsupported device",
	InvalidFileContent:     "Invalid device memory location or invalid record in file",
	InvalidFileChecksum:    "Invalid checksum of file",
}

// Message returns the fixed text for c, or "Unexpected error" for an
// unrecognized code.
func Message(c Code) string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "Unexpected error"
}

// Error pairs a Code with the underlying cause, if any. For
// InternalError the underlying error's text is what gets displayed;
// for every other code the fixed message table above is authoritative.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Code == InternalError && e.Err != nil {
		return e.Err.Error()
	}
	return Message(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a bare Error carrying only a code.
func New(code Code) *Error {
	return &Error{Code: code}
}

// Wrap builds an InternalError carrying err as its cause, or returns
// nil if err is nil — convenient at call sites that forward a stdlib
// error straight into the taxonomy.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: InternalError, Err: err}
}

// As extracts the Code carried by err, defaulting to InternalError for
// any error that didn't originate in this package (e.g. a bare stdlib
// error that slipped through unwrapped).
func As(err error) Code {
	if err == nil {
		return Done
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalError
}
