package serial

import (
	"fmt"

	"github.com/rksdna/stm32boot/internal/errcode"
)

// wrapErr folds any OS/ioctl failure into the shared InternalError
// code, keeping msg as context the way the teacher's own wrapErr
// attached an operation label to a syscall error.
func wrapErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	return errcode.Wrap(fmt.Errorf("%s: %w", msg, err))
}

// ErrNoReply is returned by Read when the inter-byte timer (VTIME)
// elapses without a single byte arriving. The bootloader driver's
// framing code surfaces this as-is; its trace loop treats it as the
// normal idle tick instead of a failure.
var ErrNoReply = errcode.New(errcode.NoDeviceReply)
