package rds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupStats(t *testing.T) {
	var d, _ = newTestDecoder()

	sendRT(d, 0, "HELLO")
	for i := 0; i < 3; i++ {
		d.Update(testPI, group(0, uint16(i)), 0, 0)
	}
	d.Update(testPI, group(29, 0), testPI, 0xc201)

	stats := d.GroupStats()
	require.Len(t, stats, 3)
	assert.Equal(t, GroupStat{Group: "0A", Name: "Basic Tuning and Switching Information only", Count: 3, Percent: 50}, stats[0])
	assert.Equal(t, GroupStat{Group: "2A", Name: "Radio Text only", Count: 2, Percent: 33.3}, stats[1])
	assert.Equal(t, GroupStat{Group: "14B", Name: "Enhanced Other Networks Information Only", Count: 1, Percent: 16.7}, stats[2])
	assert.Equal(t, 6, d.GroupTotal())
}

func TestBERUnknownWithoutPI(t *testing.T) {
	var d, clock = newTestDecoder()

	assert.Equal(t, BERUnknown, d.BER())

	assert.ErrorIs(t, d.IngestLine("1234----00004142"), ErrBitError)
	clock.Advance(time.Minute)
	assert.Equal(t, BERUnknown, d.BER())
}

func TestBERGracePeriod(t *testing.T) {
	var d, clock = newTestDecoder()

	require.NoError(t, d.IngestLine("1234000000004142"))
	require.ErrorIs(t, d.IngestLine("1234----00004142"), ErrBitError)

	assert.Equal(t, BERUnknown, d.BER(), "errors inside the grace period are not reported")

	clock.Advance(GracePeriod - time.Millisecond)
	assert.Equal(t, BERUnknown, d.BER())

	clock.Advance(time.Millisecond)
	assert.InDelta(t, 50.0, d.BER(), 1e-9)
}

func TestBERWindowSlides(t *testing.T) {
	var d, clock = newTestDecoder()

	for i := 0; i < 10; i++ {
		d.IngestLine("12340000----4142")
	}
	// the first good record establishes the PI
	for i := 0; i < BERWindow; i++ {
		d.IngestLine("1234000000004142")
	}
	clock.Advance(GracePeriod)
	assert.InDelta(t, 0.0, d.BER(), 1e-9)

	for i := 0; i < 10; i++ {
		d.IngestLine("1234----00004142")
	}
	assert.InDelta(t, 25.0, d.BER(), 1e-9)
	assert.Len(t, d.s.stats.ber, BERWindow)
}

func TestShortLinesDoNotCountTowardsBER(t *testing.T) {
	var d, clock = newTestDecoder()

	require.NoError(t, d.IngestLine("1234000000004142"))
	clock.Advance(GracePeriod)
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, d.IngestLine("1234--"), ErrShortLine)
		assert.ErrorIs(t, d.IngestLine("1234ZZZZ00004142"), ErrMalformed)
	}

	assert.InDelta(t, 0.0, d.BER(), 1e-9)
	assert.Len(t, d.s.stats.ber, 1)
}

func TestStableFlagsGracePeriod(t *testing.T) {
	var d, clock = newTestDecoder()

	d.Update(testPI, group(0, 0x0400|0x10), 0, chars('A', 'B'))

	flags := d.StableFlags()
	assert.True(t, flags["pi"])
	for _, name := range []string{"tp", "ta", "ms", "pty", "diStereo", "diArtificialHead", "diCompressed", "diDynamicPty"} {
		assert.False(t, flags[name], name)
	}

	clock.Advance(GracePeriod)
	flags = d.StableFlags()
	for _, name := range []string{"tp", "ta", "ms", "pty", "diStereo", "diArtificialHead", "diCompressed", "diDynamicPty"} {
		assert.True(t, flags[name], name)
	}
	assert.True(t, flags["ps"])
	assert.False(t, flags["rt"])
}
