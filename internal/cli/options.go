package cli

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/rksdna/stm32boot/internal/options"
)

// Synopsis renders the bold program name / underlined OPTIONS token
// synopsis line the usage handler prints first.
func Synopsis() string {
	return color.New(color.Bold).Sprint("stm32boot") + " [" + color.New(color.Underline).Sprint("OPTIONS") + "] "
}

// Table builds the option table in the order stm32boot dispatches
// them, bound to s. The shape (role, short/long names, help text)
// mirrors the original tool's options[] literal field for field.
func Table(s *Session) []options.Option {
	return []options.Option{
		{
			Role: options.Joint, Long: "rts",
			Help:      "Select RTS mode: reset - for device RESET, nreset - for inverted device RESET, boot - for device BOOT0 (default), nboot - for inverted device BOOT0, set - stay at high level, clear - stay at low level",
			JointFunc: s.SelectRTSMode,
		},
		{
			Role: options.Joint, Long: "dtr",
			Help:      "Select DTR mode: reset - for device RESET (default), nreset - for inverted device RESET, boot - for device BOOT0, nboot - for inverted device BOOT0, set - stay at high level, clear - stay at low level",
			JointFunc: s.SelectDTRMode,
		},
		{
			Role: options.Joint, Short: "c", Long: "connect",
			Help:      "Open serial port and connect to device bootloader",
			JointFunc: s.Connect,
		},
		{
			Role: options.Plain, Short: "u", Long: "unprotect",
			Help:      "Erase and read-out unprotect device memory",
			PlainFunc: s.Unprotect,
		},
		{
			Role: options.Joint, Short: "r", Long: "read",
			Help:      "Read data from device memory to file",
			JointFunc: s.Read,
		},
		{
			Role: options.Plain, Short: "e", Long: "erase",
			Help:      "Erase device memory",
			PlainFunc: s.Erase,
		},
		{
			Role: options.Joint, Short: "a", Long: "adjust",
			Help:      "Adjust device voltage: 0 - [1.8 V, 2.1 V], 1 - [2.1 V, 2.4 V], 2 - [2.4 V, 2.7 V], 3 - [2.7 V, 3.6 V], 4 - [2.7 V, 3.6 V] with Vpp",
			JointFunc: s.Adjust,
		},
		{
			Role: options.Joint, Short: "w", Long: "write",
			Help:      "Write data from file to device memory",
			JointFunc: s.Write,
		},
		{
			Role: options.Plain, Short: "p", Long: "protect",
			Help:      "Read-out protect device memory",
			PlainFunc: s.Protect,
		},
		{
			Role: options.Joint, Long: "trace-time",
			Help:      "Set trace intercharacter interval in seconds (5 default)",
			JointFunc: s.SetTraceTime,
		},
		{
			Role: options.Joint, Long: "trace-size",
			Help:      "Set maximum trace log size (4096 default)",
			JointFunc: s.SetTraceSize,
		},
		{
			Role: options.Plain, Short: "t", Long: "trace",
			Help:      "Restart device in user mode, with redirecting device output to stdout",
			PlainFunc: s.Trace,
		},
		{
			Role: options.Plain, Short: "d", Long: "disconnect",
			Help:      "Disconnect device and close serial port",
			PlainFunc: s.Disconnect,
		},
		{
			Role: options.Plain, Short: "v", Long: "verbose",
			Help: "Enable debug logging of protocol-level detail to stderr",
			PlainFunc: func() error {
				s.Log.SetLevel(logrus.DebugLevel)
				return nil
			},
		},
		{
			Role: options.Usage, Short: "h", Long: "help",
			Help: "Print this help",
		},
	}
}
