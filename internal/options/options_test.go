package options

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rksdna/stm32boot/internal/errcode"
)

func TestRunDispatchesInOrder(t *testing.T) {
	var calls []string

	table := []Option{
		{Role: Joint, Short: "c", Long: "connect", JointFunc: func(arg string) error {
			calls = append(calls, "connect("+arg+")")
			return nil
		}},
		{Role: Plain, Short: "e", Long: "erase", PlainFunc: func() error {
			calls = append(calls, "erase()")
			return nil
		}},
		{Role: Joint, Long: "trace-time", JointFunc: func(arg string) error {
			calls = append(calls, "set_trace_time("+arg+")")
			return nil
		}},
		{Role: Plain, Short: "t", Long: "trace", PlainFunc: func() error {
			calls = append(calls, "trace()")
			return nil
		}},
	}

	argv := []string{"-c", "/dev/ttyUSB0", "-e", "--trace-time", "10", "-t"}

	var out bytes.Buffer
	code := Run(&out, "test", table, argv)

	require.Equal(t, errcode.Done, code)
	assert.Equal(t, []string{
		"connect(/dev/ttyUSB0)",
		"erase()",
		"set_trace_time(10)",
		"trace()",
	}, calls)
}

func TestRunLongOptionEqualsForm(t *testing.T) {
	var got string
	table := []Option{
		{Role: Joint, Long: "trace-time", JointFunc: func(arg string) error {
			got = arg
			return nil
		}},
	}

	var out bytes.Buffer
	code := Run(&out, "test", table, []string{"--trace-time=7"})
	require.Equal(t, errcode.Done, code)
	assert.Equal(t, "7", got)
}

func TestRunShortCluster(t *testing.T) {
	var calls []string
	table := []Option{
		{Role: Plain, Short: "u", PlainFunc: func() error { calls = append(calls, "u"); return nil }},
		{Role: Plain, Short: "e", PlainFunc: func() error { calls = append(calls, "e"); return nil }},
	}

	var out bytes.Buffer
	code := Run(&out, "test", table, []string{"-ue"})
	require.Equal(t, errcode.Done, code)
	assert.Equal(t, []string{"u", "e"}, calls)
}

func TestRunUnknownOptionFails(t *testing.T) {
	var out bytes.Buffer
	code := Run(&out, "test", []Option{}, []string{"-z"})
	assert.Equal(t, errcode.InvalidOption, code)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	var calls []string
	table := []Option{
		{Role: Plain, Short: "a", PlainFunc: func() error {
			calls = append(calls, "a")
			return errcode.New(errcode.InvalidOptionsArgument)
		}},
		{Role: Plain, Short: "b", PlainFunc: func() error {
			calls = append(calls, "b")
			return nil
		}},
	}

	var out bytes.Buffer
	code := Run(&out, "test", table, []string{"-a", "-b"})
	assert.Equal(t, errcode.InvalidOptionsArgument, code)
	assert.Equal(t, []string{"a"}, calls)
}

func TestRunBareOperandWithNoOtherOptionIsInvalid(t *testing.T) {
	var out bytes.Buffer
	code := Run(&out, "test", []Option{}, []string{"firmware.hex"})
	assert.Equal(t, errcode.InvalidOption, code)
}

func TestRunDeterministicAcrossIndependentOptionOrder(t *testing.T) {
	table := func() []Option {
		return []Option{
			{Role: Joint, Long: "trace-time", JointFunc: func(string) error { return nil }},
			{Role: Joint, Long: "trace-size", JointFunc: func(string) error { return nil }},
		}
	}

	var out1, out2 bytes.Buffer
	code1 := Run(&out1, "test", table(), []string{"--trace-time", "10", "--trace-size", "100"})
	code2 := Run(&out2, "test", table(), []string{"--trace-size", "100", "--trace-time", "10"})

	assert.Equal(t, code1, code2)
	assert.Equal(t, errcode.Done, code1)
}
