// Package options is a hand-rolled POSIX-style argument tokenizer and
// dispatcher: short option clusters, long options with both
// `--foo bar` and `--foo=bar` argument forms, a `--` operand
// terminator, and bare operands, each routed to a handler in the order
// they appear on argv.
//
// It is grounded on the original tool's options.c state machine
// (ENTRY/DASH/SHORT_OPTION/BEFORE_SHORT_ARGUMENT/SHORT_ARGUMENT/
// DASH_DASH/LONG_OPTION/LONG_ARGUMENT/OPERAND/FORCED_OPERAND/FAIL),
// expressed here as a token-at-a-time walk instead of C's
// character-at-a-time pointer arithmetic. The quirks are preserved:
// short names match a single character (clustering, not prefix
// matching), long names match full-token equality, and a failing
// handler halts the walk immediately.
package options

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/rksdna/stm32boot/internal/errcode"
)

// Role classifies how an Option is invoked.
type Role int

const (
	// Plain options take no argument: handler is func() error.
	Plain Role = iota
	// Joint options take exactly one argument: handler is func(string) error.
	Joint
	// Usage prints the synopsis, per-option help and error taxonomy; it
	// never fails. A table carries at most one.
	Usage
	// Other matches any bare operand. This tool's table carries no Other
	// entry, which makes bare operands invalid — that absence is itself
	// the contract, not an oversight.
	Other
)

// Option is one entry in the table passed to Run.
type Option struct {
	Role      Role
	Short     string // exactly one character, or "" if this option has no short form
	Long      string
	Help      string
	PlainFunc func() error
	JointFunc func(string) error
	OtherFunc func(string) error
}

// Error is one row of the taxonomy printed by the Usage handler.
type Error struct {
	Code errcode.Code
	Text string
}

// DefaultErrors is the fixed 10-entry taxonomy, worst-first, matching
// the order the original usage_options table printed it.
var DefaultErrors = []Error{
	{errcode.InvalidFileChecksum, errcode.Message(errcode.InvalidFileChecksum)},
	{errcode.InvalidFileContent, errcode.Message(errcode.InvalidFileContent)},
	{errcode.UnsupportedDevice, errcode.Message(errcode.UnsupportedDevice)},
	{errcode.InvalidDeviceReply, errcode.Message(errcode.InvalidDeviceReply)},
	{errcode.NoDeviceReply, errcode.Message(errcode.NoDeviceReply)},
	{errcode.SerialPortAlreadyOpen, errcode.Message(errcode.SerialPortAlreadyOpen)},
	{errcode.InternalError, errcode.Message(errcode.InternalError)},
	{errcode.InvalidOptionsArgument, errcode.Message(errcode.InvalidOptionsArgument)},
	{errcode.InvalidOption, errcode.Message(errcode.InvalidOption)},
	{errcode.Done, errcode.Message(errcode.Done)},
}

type state int

const (
	entryState state = iota
	forcedOperandState
)

type walker struct {
	synopsis string
	options  []Option
	out      io.Writer
}

// hasHandler reports whether opt carries the handler its Role
// dispatches through, mirroring the original has_option's check of
// option->handler != NULL — a table entry with a Role but no handler
// is not a match for anything.
func hasHandler(opt *Option) bool {
	switch opt.Role {
	case Plain:
		return opt.PlainFunc != nil
	case Joint:
		return opt.JointFunc != nil
	case Usage:
		return true
	case Other:
		return opt.OtherFunc != nil
	default:
		return false
	}
}

func (w *walker) findShort(c byte) *Option {
	for i := range w.options {
		opt := &w.options[i]
		if opt.Role != Other && len(opt.Short) == 1 && opt.Short[0] == c && hasHandler(opt) {
			return opt
		}
	}
	return nil
}

func (w *walker) findLong(name string) *Option {
	for i := range w.options {
		opt := &w.options[i]
		if opt.Role != Other && opt.Long != "" && opt.Long == name && hasHandler(opt) {
			return opt
		}
	}
	return nil
}

func (w *walker) findOther() *Option {
	for i := range w.options {
		opt := &w.options[i]
		if opt.Role == Other && hasHandler(opt) {
			return opt
		}
	}
	return nil
}

// invoke runs opt's handler, prints the trailing "done"/"FAILED" line,
// and returns the code produced (Done on success).
func (w *walker) invoke(opt *Option, arg string) errcode.Code {
	var err error
	switch opt.Role {
	case Plain:
		err = opt.PlainFunc()
	case Joint:
		err = opt.JointFunc(arg)
	case Usage:
		PrintUsage(w.out, w.synopsis, w.options, DefaultErrors)
	case Other:
		err = opt.OtherFunc(arg)
	default:
		err = errcode.New(errcode.InvalidOption)
	}

	if err != nil {
		return w.fail(err)
	}
	fmt.Fprint(w.out, " done\n")
	return errcode.Done
}

func (w *walker) invalid(token string) errcode.Code {
	fmt.Fprintf(w.out, "Processing %q...", token)
	return w.fail(errcode.New(errcode.InvalidOption))
}

func (w *walker) fail(err error) errcode.Code {
	code := errcode.As(err)
	text := errcode.Message(code)
	if code == errcode.InternalError {
		text = err.Error()
	}
	bold := color.New(color.Bold)
	fmt.Fprintf(w.out, " %s [%s, %d]\n", bold.Sprint("FAILED"), text, int(code))
	return code
}

// Run tokenizes argv through the rules described in the package doc,
// dispatching each option as soon as its argument (if any) is known.
// It returns the code of the last handler invoked, or Done if argv was
// empty or every handler succeeded.
func Run(out io.Writer, synopsis string, opts []Option, argv []string) errcode.Code {
	w := &walker{synopsis: synopsis, options: opts, out: out}
	st := entryState

	i := 0
	for i < len(argv) {
		token := argv[i]
		i++

		if st == forcedOperandState {
			other := w.findOther()
			if other == nil {
				return w.invalid(token)
			}
			if code := w.invoke(other, token); code != errcode.Done {
				return code
			}
			continue
		}

		if token == "" || token[0] != '-' {
			other := w.findOther()
			if other == nil {
				return w.invalid(token)
			}
			if code := w.invoke(other, token); code != errcode.Done {
				return code
			}
			continue
		}

		if token == "--" {
			st = forcedOperandState
			continue
		}

		if len(token) >= 2 && token[1] == '-' {
			// Long option: "--name", "--name=value".
			body := token[2:]
			name := body
			var hasEq bool
			var value string
			if idx := strings.IndexByte(body, '='); idx >= 0 {
				name = body[:idx]
				value = body[idx+1:]
				hasEq = true
			}

			opt := w.findLong(name)
			if opt == nil {
				return w.invalid(token)
			}

			if opt.Role == Joint {
				if !hasEq {
					if i >= len(argv) {
						value = ""
					} else {
						value = argv[i]
						i++
					}
				}
				if code := w.invoke(opt, value); code != errcode.Done {
					return code
				}
				continue
			}

			if hasEq {
				return w.invalid(token)
			}
			if code := w.invoke(opt, ""); code != errcode.Done {
				return code
			}
			continue
		}

		// Short cluster: "-abc" invokes a, b, c in turn (none may take
		// an argument except possibly the last, which may also take it
		// as "-oARG" or as the following argv token).
		cluster := token[1:]
		if cluster == "" {
			return w.invalid(token)
		}

		for ci := 0; ci < len(cluster); ci++ {
			c := cluster[ci]
			opt := w.findShort(c)
			if opt == nil {
				return w.invalid(token)
			}

			if opt.Role != Joint {
				if code := w.invoke(opt, ""); code != errcode.Done {
					return code
				}
				continue
			}

			// Joint short option: anything remaining in this token is
			// its argument; otherwise the argument is the next argv
			// token (or "" if argv is exhausted).
			var value string
			if ci+1 < len(cluster) {
				value = cluster[ci+1:]
			} else if i < len(argv) {
				value = argv[i]
				i++
			}
			if code := w.invoke(opt, value); code != errcode.Done {
				return code
			}
			ci = len(cluster) // joint argument consumes the rest of this token
		}
	}

	return errcode.Done
}
