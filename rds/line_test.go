package rds

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseLine(t *testing.T) {
	for _, line := range []string{
		"3F7C06158B2C41A0",
		"3f7c06158b2c41a0",
		"G:\r\n3F7C06158B2C41A0",
		"  3F7C 0615 8B2C 41A0\r",
		"R: 3F7C,0615,8B2C,41A0",
		"G 3F7C06158B2C41A0",
		"R\t3F7C 0615 8B2C 41A0",
		"A 3F7C06158B2C41A0\r",
		"G3F7C06158B2C41A0",
	} {
		blocks, err := ParseLine(line)
		require.NoError(t, err, line)
		assert.Equal(t, [4]uint16{0x3f7c, 0x0615, 0x8b2c, 0x41a0}, blocks, line)
	}
}

func TestParseLineErrors(t *testing.T) {
	for _, tc := range []struct {
		line string
		err  error
	}{
		{"", ErrShortLine},
		{"G:", ErrShortLine},
		{"3F7C06158B2C41A", ErrShortLine},
		{"3F7C-0615", ErrShortLine},
		{"3F7C----8B2C41A0", ErrBitError},
		{"3F7C06158B2C41A0-", ErrBitError},
		{"G 3F7C----8B2C41A0", ErrBitError},
		{"3F7C0615XB2C41A0", ErrMalformed},
		{"+F7C06158B2C41A0", ErrMalformed},
		{"G 3F7C0615XB2C41A0", ErrMalformed},
	} {
		_, err := ParseLine(tc.line)
		assert.ErrorIs(t, err, tc.err, "%q", tc.line)
	}
}

func TestIngest(t *testing.T) {
	var d, _ = newTestDecoder()

	res := d.Ingest("1234000000004142\n1234----00004142\nnoise\n\n12340001000043")

	assert.Equal(t, IngestResult{Groups: 1, BitErrors: 1, Ignored: 3}, res)
	assert.Equal(t, "AB      ", d.Snapshot().PS)
	assert.Len(t, d.s.stats.ber, 2)
}

func TestIngestSamplesAfterStationChange(t *testing.T) {
	var d, _ = newTestDecoder()

	require.NoError(t, d.IngestLine("1234000000004142"))
	for i := 0; i < 4; i++ {
		require.NoError(t, d.IngestLine("G 5678000000004142"))
	}

	pi, ok := d.PI()
	require.True(t, ok)
	assert.Equal(t, uint16(0x5678), pi)
	assert.Equal(t, 1, d.PIChanges())
	// the confirming group is the first sample of the new station
	assert.Len(t, d.s.stats.ber, 1)
	assert.Equal(t, 1, d.GroupTotal())
}

func TestParseLineRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var blocks [4]uint16
		for i := range blocks {
			blocks[i] = rapid.Uint16().Draw(t, fmt.Sprintf("block%d", i+1))
		}

		got, err := ParseLine(fmt.Sprintf("G: %04X %04x%04X %04x", blocks[0], blocks[1], blocks[2], blocks[3]))

		require.NoError(t, err)
		assert.Equal(t, blocks, got)
	})
}

func TestIngestLineNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var d = New(Options{})

		for _, line := range rapid.SliceOf(rapid.String()).Draw(t, "lines") {
			_ = d.IngestLine(line)
		}
		ber := d.BER()
		assert.True(t, ber == BERUnknown || (ber >= 0 && ber <= 100), "ber %v", ber)
	})
}
