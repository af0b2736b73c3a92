// Package bootloader implements the STM32 UART ROM bootloader's
// request/response protocol: the synchronization handshake, XOR-checksum
// command framing, reset-pulse control-line sequencing, paged flash
// read/write, mass erase, and read-out protect/unprotect.
//
// It is grounded directly on the original tool's main.c: every wire
// sequence (opcodes, byte counts, the checksum special case) is
// reproduced exactly, generalized from that file's package-level
// globals into a *Driver value a caller can own.
package bootloader

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rksdna/stm32boot/internal/errcode"
)

// Port is the subset of *serial.Port the driver needs. Accepting this
// interface instead of the concrete type lets protocol-level logic be
// exercised against a fake transport in tests, without touching real
// termios/ioctl calls.
type Port interface {
	Write(data []byte) error
	Read(data []byte) error
	Flush() error
	Configure(timeoutDeciseconds int) error
	Control(rts, dtr bool) error
	Wait(d time.Duration) error
}

// ACK and NAK are the two bytes the bootloader ever replies with to a
// command frame.
const (
	ack = 0x79
	nak = 0x1F
)

const (
	cmdGet         = 0x00
	cmdGetID       = 0x02
	cmdReadMemory  = 0x11
	cmdWriteMemory = 0x31
	cmdUnprotect   = 0x92
	cmdProtect     = 0x82

	eraseExtended = 0x44
)

const handshakeAttempts = 5

// Driver owns one open Port and the protocol state that accumulates
// across a single connect..disconnect session.
type Driver struct {
	Port Port
	Log  *logrus.Logger

	RTSMode Mode
	DTRMode Mode

	// GetResponse is the full 13-byte payload of the last Get command,
	// kept intact (not just the version/erase-opcode bytes this tool
	// currently interprets) so a caller can inspect it later.
	GetResponse [13]byte
	Version     byte
	EraseOpcode byte
	Selected    Device

	scratch [5]byte // command/address scratch, sized to the largest fixed-shape request
}

// New wraps an already-open port. The caller supplies the RTS/DTR
// modes selected via CLI flags before Connect issues its first reset
// pulse.
func New(port Port, rts, dtr Mode, log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Driver{Port: port, RTSMode: rts, DTRMode: dtr, Log: log}
}

// ResetPulse drives RTS/DTR through the two-phase pattern the original
// reset_device used, parameterized by boot (true to enter the
// bootloader, false to run user firmware).
func (d *Driver) ResetPulse(boot bool) error {
	if err := d.Port.Control(d.RTSMode.phase(0, boot), d.DTRMode.phase(0, boot)); err != nil {
		return err
	}
	if err := d.Port.Wait(time.Millisecond); err != nil {
		return err
	}
	return d.Port.Control(d.RTSMode.phase(1, boot), d.DTRMode.phase(1, boot))
}

func (d *Driver) tryHandshake() error {
	if err := d.Port.Wait(5 * time.Millisecond); err != nil {
		return err
	}
	if err := d.Port.Flush(); err != nil {
		return err
	}
	d.scratch[0] = 0x7F
	if err := d.Port.Write(d.scratch[:1]); err != nil {
		return err
	}
	if err := d.Port.Read(d.scratch[:1]); err != nil {
		return err
	}
	if d.scratch[0] != ack {
		return errcode.New(errcode.InvalidDeviceReply)
	}
	return nil
}

// Handshake tightens the inter-byte timeout to 1 dcs, retries the sync
// byte up to handshakeAttempts times, then restores the timeout to
// 50 dcs regardless of outcome.
func (d *Driver) Handshake() error {
	if err := d.Port.Configure(1); err != nil {
		return err
	}

	var err error
	for attempt := 0; attempt < handshakeAttempts; attempt++ {
		if err = d.tryHandshake(); err == nil {
			break
		}
	}

	if cfgErr := d.Port.Configure(50); cfgErr != nil {
		return cfgErr
	}
	return err
}

func checksum(data []byte) byte {
	if len(data) == 1 {
		return ^data[0]
	}
	var c byte
	for _, b := range data {
		c ^= b
	}
	return c
}

// request appends the checksum byte to data, writes it, and reads one
// ACK byte in reply.
func (d *Driver) request(data []byte) error {
	full := append(data, checksum(data))
	if err := d.Port.Write(full); err != nil {
		return err
	}
	var reply [1]byte
	if err := d.Port.Read(reply[:]); err != nil {
		return err
	}
	if reply[0] != ack {
		return errcode.New(errcode.InvalidDeviceReply)
	}
	return nil
}

// response reads len(payload)+1 bytes; payload receives the first
// len(payload) of them, and the final byte must be ACK.
func (d *Driver) response(payload []byte) error {
	buf := make([]byte, len(payload)+1)
	if err := d.Port.Read(buf); err != nil {
		return err
	}
	if buf[len(payload)] != ack {
		return errcode.New(errcode.InvalidDeviceReply)
	}
	copy(payload, buf)
	return nil
}

// Connect pulses into the bootloader, handshakes, and resolves the
// target's device descriptor via Get/Get ID. It does not open the port
// itself: the caller is expected to have constructed Driver with a
// freshly-opened Port.
func (d *Driver) Connect() error {
	if err := d.ResetPulse(true); err != nil {
		return err
	}
	if err := d.Handshake(); err != nil {
		return err
	}

	if err := d.request([]byte{cmdGet}); err != nil {
		return err
	}
	if err := d.response(d.GetResponse[:]); err != nil {
		return err
	}
	d.Version = d.GetResponse[1]
	d.EraseOpcode = d.GetResponse[8]
	d.Log.WithFields(logrus.Fields{
		"version": fmt.Sprintf("%X.%X", d.Version>>4, d.Version&0x0F),
	}).Debug("bootloader version")

	if err := d.request([]byte{cmdGetID}); err != nil {
		return err
	}
	var id [3]byte
	if err := d.response(id[:]); err != nil {
		return err
	}
	pid := uint16(id[1])<<8 | uint16(id[2])

	device, ok := Lookup(pid)
	if !ok {
		return errcode.New(errcode.UnsupportedDevice)
	}
	d.Selected = device
	d.Log.WithField("pid", fmt.Sprintf("%04X", pid)).WithField("device", device.Name).Debug("device identified")
	return nil
}

// Unprotect issues readout-unprotect; the device mass-erases and
// resets itself, so a fresh handshake is required afterward.
func (d *Driver) Unprotect() error {
	if err := d.request([]byte{cmdUnprotect}); err != nil {
		return err
	}
	if err := d.response(nil); err != nil {
		return err
	}
	return d.Handshake()
}

// Protect issues readout-protect, which resets the device the same
// way Unprotect does.
func (d *Driver) Protect() error {
	if err := d.request([]byte{cmdProtect}); err != nil {
		return err
	}
	if err := d.response(nil); err != nil {
		return err
	}
	return d.Handshake()
}

const pageSize = 256

// ReadMemory fills data from the device starting at address, one
// ≤256-byte page at a time.
func (d *Driver) ReadMemory(address uint32, data []byte) error {
	for len(data) > 0 {
		count := len(data)
		if count > pageSize {
			count = pageSize
		}

		if err := d.request([]byte{cmdReadMemory}); err != nil {
			return err
		}
		if err := d.request(beAddress(address)); err != nil {
			return err
		}
		if err := d.request([]byte{byte(count - 1)}); err != nil {
			return err
		}
		if err := d.Port.Read(data[:count]); err != nil {
			return err
		}

		data = data[count:]
		address += uint32(count)
	}
	return nil
}

// WriteMemory programs data to the device starting at address, one
// ≤256-byte page at a time.
func (d *Driver) WriteMemory(address uint32, data []byte) error {
	for len(data) > 0 {
		count := len(data)
		if count > pageSize {
			count = pageSize
		}

		if err := d.request([]byte{cmdWriteMemory}); err != nil {
			return err
		}
		if err := d.request(beAddress(address)); err != nil {
			return err
		}
		frame := make([]byte, 1+count)
		frame[0] = byte(count - 1)
		copy(frame[1:], data[:count])
		if err := d.request(frame); err != nil {
			return err
		}

		data = data[count:]
		address += uint32(count)
	}
	return nil
}

// Erase mass-erases the device, dispatching on whether EraseOpcode is
// the extended (0x44) or legacy mass-erase form.
func (d *Driver) Erase() error {
	if err := d.request([]byte{d.EraseOpcode}); err != nil {
		return err
	}
	if d.EraseOpcode == eraseExtended {
		return d.request([]byte{0xFF, 0xFF})
	}
	return d.request([]byte{0xFF})
}

// Adjust selects one of the five documented Vdd ranges by reusing the
// write-memory opcode against the option-byte address space, exactly
// as the original tool's adjust_device — a vendor sequence validated
// empirically rather than from the documented option-byte opcodes.
func (d *Driver) Adjust(voltage byte) error {
	if err := d.request([]byte{cmdWriteMemory}); err != nil {
		return err
	}
	if err := d.request([]byte{0xFF, 0xFF, 0x00, 0x00}); err != nil {
		return err
	}
	return d.request([]byte{0x00, voltage})
}

func beAddress(address uint32) []byte {
	return []byte{byte(address >> 24), byte(address >> 16), byte(address >> 8), byte(address)}
}

// Trace pulses the device back into user firmware and mirrors its
// UART output to w byte-by-byte. It stops after size bytes or after
// idle seconds elapse with nothing received, whichever comes first; a
// no-reply read is the normal idle tick, not a failure.
func (d *Driver) Trace(w io.Writer, size int, idle time.Duration) error {
	if err := d.ResetPulse(false); err != nil {
		return err
	}

	count := 0
	deadline := time.Now().Add(idle)
	var b [1]byte
	for count < size {
		if time.Now().After(deadline) {
			break
		}

		err := d.Port.Read(b[:])
		if err != nil {
			if errcode.As(err) == errcode.NoDeviceReply {
				continue
			}
			return err
		}

		if isPrintableOrSpace(b[0]) {
			fmt.Fprintf(w, "%c", b[0])
		} else {
			fmt.Fprintf(w, "[%02X]", b[0])
		}
		count++
		deadline = time.Now().Add(idle)
	}
	return nil
}

func isPrintableOrSpace(b byte) bool {
	return (b >= 0x20 && b < 0x7F) || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
