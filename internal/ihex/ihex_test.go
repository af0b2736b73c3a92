package ihex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDecodesDataAndExtendedAddress(t *testing.T) {
	input := ":020000040800F2\n" +
		":100000000102030405060708090A0B0C0D0E0F1068\n" +
		":00000001FF\n"

	w := Window{Origin: 0x08000000, Data: make([]byte, 0x100)}
	require.NoError(t, Load(&w, strings.NewReader(input)))

	assert.EqualValues(t, 0x08000000, w.Origin)
	assert.Equal(t, 16, w.Size())
	assert.EqualValues(t, 0, w.Startup)

	expected := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	assert.Equal(t, expected, w.Data)
}

func TestLoadBadChecksumFails(t *testing.T) {
	input := ":020000040800F2\n" +
		":100000000102030405060708090A0B0C0D0E0F1000\n" +
		":00000001FF\n"

	w := Window{Origin: 0x08000000, Data: make([]byte, 0x100)}
	err := Load(&w, strings.NewReader(input))
	require.Error(t, err)
	assert.Equal(t, ErrInvalidFileChecksum, err)
}

func TestLoadOutOfRangeFails(t *testing.T) {
	// shadow selects page 0x0900xxxx, well outside a window based at
	// 0x08000000 sized 0x40000.
	input := ":020000040900F1\n" +
		":100000000102030405060708090A0B0C0D0E0F1068\n" +
		":00000001FF\n"

	w := Window{Origin: 0x08000000, Data: make([]byte, 0x40000)}
	err := Load(&w, strings.NewReader(input))
	require.Error(t, err)
	assert.Equal(t, ErrInvalidFileContent, err)
}

func TestLoadContinuesPastEndOfFile(t *testing.T) {
	// Open Question (a): scanning continues after END_OF_FILE; a
	// second DATA record further in the stream is still applied.
	input := ":020000040800F2\n" +
		":01000000AA55\n" +
		":00000001FF\n" +
		":010001000BF3\n"

	w := Window{Origin: 0x08000000, Data: make([]byte, 0x10)}
	require.NoError(t, Load(&w, strings.NewReader(input)))
	assert.Equal(t, byte(0xAA), w.Data[0])
	assert.Equal(t, byte(0x0B), w.Data[1])
}

func TestSaveSaveLoadRoundTrip(t *testing.T) {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}
	w := Window{Origin: 0x08000000, Data: data}

	var buf bytes.Buffer
	require.NoError(t, Save(&w, &buf))

	loaded := Window{Origin: 0x08000000, Data: make([]byte, 0x100)}
	require.NoError(t, Load(&loaded, strings.NewReader(buf.String())))

	assert.EqualValues(t, 0x08000000, loaded.Origin)
	assert.Equal(t, data, loaded.Data)
}

func TestSaveChecksumLaw(t *testing.T) {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i * 3)
	}
	w := Window{Origin: 0x08000000, Data: data}

	var buf bytes.Buffer
	require.NoError(t, Save(&w, &buf))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		body := strings.TrimPrefix(line, ":")
		var sum int
		for i := 0; i < len(body); i += 2 {
			b, err := parseHexByte(body[i : i+2])
			require.NoError(t, err)
			sum += int(b)
		}
		assert.Zero(t, sum%256, "record %q does not checksum to zero", line)
	}
}

func TestSaveNeverCrossesA64KiBPage(t *testing.T) {
	data := make([]byte, 0x20000) // spans two 64 KiB pages
	w := Window{Origin: 0x0800FFF0, Data: data}

	var buf bytes.Buffer
	require.NoError(t, Save(&w, &buf))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.HasPrefix(line, ":") || len(line) < 9 {
			continue
		}
		typ := line[7:9]
		if typ != "00" {
			continue
		}
		count, _ := parseHexByte(line[1:3])
		if count == 0 {
			continue
		}
		assert.LessOrEqual(t, int(count), 16)
		offset, err := parseHexWord(line[3:7])
		require.NoError(t, err)
		assert.LessOrEqual(t, int(offset)+int(count), 0x10000, "record %q crosses a 64 KiB page", line)
	}
}

func TestSaveSkipsLeadingAddressRecordWhenOriginFitsInLow16Bits(t *testing.T) {
	// Initial shadow is 0 (matching the original encoder's
	// context->shadow = 0): a window whose origin's upper 16 bits are
	// already 0 gets no EXTENDED_LINEAR_ADDRESS record before its first
	// DATA record.
	w := Window{Origin: 0x00000010, Data: []byte{1, 2, 3, 4}}

	var buf bytes.Buffer
	require.NoError(t, Save(&w, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, ":0400100001020304E2\n", lines[0]+"\n")
}
