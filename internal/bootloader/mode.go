package bootloader

import "github.com/rksdna/stm32boot/internal/errcode"

// Mode selects how a modem control line (RTS or DTR) is driven during
// a reset pulse.
type Mode int

const (
	ModeReset Mode = iota
	ModeNReset
	ModeBoot
	ModeNBoot
	ModeSet
	ModeClear
)

var modeNames = []string{"reset", "nreset", "boot", "nboot", "set", "clear"}

// ParseMode matches a CLI mode string against the fixed name table.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, errcode.New(errcode.InvalidOptionsArgument)
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// phase reports whether this mode drives the line high during reset
// pulse phase 0 (assert) and phase 1 (release), given the session's
// boot intent. It reproduces the per-line state tables from the
// original reset_device: {reset, nreset, boot, !boot, set, clear}.
func (m Mode) phase(phase int, boot bool) bool {
	switch m {
	case ModeReset:
		return phase == 0
	case ModeNReset:
		return phase == 1
	case ModeBoot:
		return boot
	case ModeNBoot:
		return !boot
	case ModeSet:
		return true
	case ModeClear:
		return false
	}
	return false
}
