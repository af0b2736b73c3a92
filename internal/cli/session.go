// Package cli wires the bootloader driver, the HEX codec and the
// option parser together into the action handlers stm32boot dispatches
// from argv: connect, unprotect, read, erase, adjust, write, protect,
// trace, disconnect, plus the four pre-action rts/dtr/trace-parameter
// setters.
//
// It is the generalization of the original tool's main.c: the package
// globals that file used for session state (selected_device,
// device_version, device_buffer, ...) become fields on a Session value
// instead, and the flash scratch buffer is heap-allocated to the
// selected device's size once Connect resolves it, rather than living
// as a static 1 MiB array.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/rksdna/stm32boot/internal/bootloader"
	"github.com/rksdna/stm32boot/internal/errcode"
	"github.com/rksdna/stm32boot/internal/ihex"
	"github.com/rksdna/stm32boot/internal/serial"
)

const flashOrigin = 0x08000000

// Session is the process-wide state every action handler reads and
// mutates: at most one open port, the driver bound to it once
// connected, and the pending rts/dtr/trace configuration collected
// from options that ran earlier in argv.
type Session struct {
	Out io.Writer
	Log *logrus.Logger

	rtsMode bootloader.Mode
	dtrMode bootloader.Mode

	traceSize int
	traceTime int

	port   *serial.Port
	driver *bootloader.Driver
}

// NewSession returns a Session with the documented defaults: rts=boot,
// dtr=reset, trace-size=4096, trace-time=5.
func NewSession(out io.Writer, log *logrus.Logger) *Session {
	return &Session{
		Out:       out,
		Log:       log,
		rtsMode:   bootloader.ModeBoot,
		dtrMode:   bootloader.ModeReset,
		traceSize: 4096,
		traceTime: 5,
	}
}

func (s *Session) banner(format string, args ...interface{}) {
	fmt.Fprintf(s.Out, format, args...)
}

// SelectRTSMode and SelectDTRMode are JOINT option handlers; they must
// run before Connect to take effect, since the reset pulse reads them
// at connect/trace time.
func (s *Session) SelectRTSMode(mode string) error {
	s.banner("Selecting RTS mode %q...", mode)
	m, err := bootloader.ParseMode(mode)
	if err != nil {
		return err
	}
	s.rtsMode = m
	return nil
}

func (s *Session) SelectDTRMode(mode string) error {
	s.banner("Selecting DTR mode %q...", mode)
	m, err := bootloader.ParseMode(mode)
	if err != nil {
		return err
	}
	s.dtrMode = m
	return nil
}

// SetTraceTime validates and stores the trace idle timeout, 1-60 s.
func (s *Session) SetTraceTime(value string) error {
	s.banner("Set trace time %q...", value)
	var v int
	if _, err := fmt.Sscanf(value, "%d", &v); err != nil || v < 1 || v > 60 {
		return errcode.New(errcode.InvalidOptionsArgument)
	}
	s.traceTime = v
	return nil
}

// SetTraceSize validates and stores the trace byte budget, >=1.
func (s *Session) SetTraceSize(value string) error {
	s.banner("Set trace size %q...", value)
	var v int
	if _, err := fmt.Sscanf(value, "%d", &v); err != nil || v < 1 {
		return errcode.New(errcode.InvalidOptionsArgument)
	}
	s.traceSize = v
	return nil
}

// Connect opens path, resets into the bootloader, handshakes, and
// resolves the device table entry. It fails SerialPortAlreadyOpen if
// a port from an earlier connect is still open.
func (s *Session) Connect(path string) error {
	s.banner("Connect %q...", path)

	if s.port != nil {
		return errcode.New(errcode.SerialPortAlreadyOpen)
	}

	port, err := serial.Open(path)
	if err != nil {
		return err
	}

	driver := bootloader.New(port, s.rtsMode, s.dtrMode, s.Log)
	if err := driver.Connect(); err != nil {
		port.Close()
		return err
	}

	s.port = port
	s.driver = driver
	s.banner("V%X.%X...", driver.Version>>4, driver.Version&0x0F)
	return nil
}

func (s *Session) requireDriver() (*bootloader.Driver, error) {
	if s.driver == nil {
		return nil, errcode.New(errcode.InternalError)
	}
	return s.driver, nil
}

// Unprotect issues readout-unprotect, which also mass-erases.
func (s *Session) Unprotect() error {
	s.banner("Readout unprotecting...")
	d, err := s.requireDriver()
	if err != nil {
		return err
	}
	return d.Unprotect()
}

// Read dumps the selected device's entire flash to an I32HEX file at
// path.
func (s *Session) Read(path string) error {
	s.banner("Reading to %q...", path)
	d, err := s.requireDriver()
	if err != nil {
		return err
	}

	window := ihex.Window{
		Origin: flashOrigin,
		Data:   make([]byte, d.Selected.FlashSize),
	}

	if err := d.ReadMemory(window.Origin, window.Data); err != nil {
		return err
	}
	return ihex.SaveFile(&window, path)
}

// Erase mass-erases the selected device.
func (s *Session) Erase() error {
	s.banner("Erasing...")
	d, err := s.requireDriver()
	if err != nil {
		return err
	}
	return d.Erase()
}

// Adjust selects one of the five Vdd ranges (0-4).
func (s *Session) Adjust(value string) error {
	var v int
	if _, err := fmt.Sscanf(value, "%d", &v); err != nil {
		v = 0
	}
	s.banner("Adjust voltage \"%d\"...", v)
	d, err := s.requireDriver()
	if err != nil {
		return err
	}
	return d.Adjust(byte(v))
}

// Write programs the selected device's flash from an I32HEX file at
// path.
func (s *Session) Write(path string) error {
	s.banner("Writing from %q...", path)
	d, err := s.requireDriver()
	if err != nil {
		return err
	}

	window := ihex.Window{
		Origin: flashOrigin,
		Data:   make([]byte, d.Selected.FlashSize),
	}
	if err := ihex.LoadFile(&window, path); err != nil {
		return err
	}

	return d.WriteMemory(window.Origin, window.Data)
}

// Protect issues readout-protect.
func (s *Session) Protect() error {
	s.banner("Readout protecting...")
	d, err := s.requireDriver()
	if err != nil {
		return err
	}
	return d.Protect()
}

// Trace resets into user firmware and mirrors its UART output to
// Session.Out until either the configured byte count or idle timeout
// is reached.
func (s *Session) Trace() error {
	s.banner("Tracing...")
	d, err := s.requireDriver()
	if err != nil {
		return err
	}
	return d.Trace(s.Out, s.traceSize, time.Duration(s.traceTime)*time.Second)
}

// Disconnect restores the port's original termios/modem state and
// closes it.
func (s *Session) Disconnect() error {
	s.banner("Disconnecting...")
	if s.port == nil {
		return errcode.New(errcode.InternalError)
	}
	err := s.port.Close()
	s.port = nil
	s.driver = nil
	return err
}

// Banner disables colour output (bold/underline in the synopsis, usage
// text and FAILED marker) when noTTY is true. It prints nothing itself.
func Banner(noTTY bool) {
	if noTTY {
		color.NoColor = true
	}
}

// NoTTY reports whether the NO_TTY environment variable is set,
// the runtime equivalent of the original's -DNO_TTY build toggle.
func NoTTY() bool {
	_, ok := os.LookupEnv("NO_TTY")
	return ok
}
