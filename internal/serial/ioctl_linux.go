package serial

// ioctl request numbers for the termios/modem-line calls this package
// issues. Lifted from the Linux asm-generic ioctl tables; stm32boot only
// ever drives one port with one fixed wire profile, so the wider ioctl
// surface the teacher library exposes (RS485, breaks, PTY pairing, the
// Termios2/BOTHER path) is trimmed to what that profile needs.
var (
	tcgets = uintptr(0x5401)
	tcsets = uintptr(0x5402)
	tcflsh = uintptr(0x540B)

	tiocmget = uintptr(0x5415) // get modem line status
	tiocmset = uintptr(0x5418) // set modem line status
)
