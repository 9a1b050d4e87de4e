package rds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const otherPI = 0xc201

func eonGroup(d *Decoder, variant int, c uint16) {
	d.Update(testPI, group(28, 0x10|uint16(variant)), c, otherPI)
}

func TestEONPSAndFlags(t *testing.T) {
	var d, clock = newTestDecoder()

	eonGroup(d, 0, chars('R', 'A'))
	eonGroup(d, 1, chars('D', 'I'))
	eonGroup(d, 2, chars('O', ' '))
	clock.Advance(time.Second)
	eonGroup(d, 3, chars('2', ' '))
	eonGroup(d, 12, 0x1234)
	eonGroup(d, 13, 5<<11|1)

	snap := d.Snapshot()
	assert.True(t, snap.HasEON)
	require.Contains(t, snap.EONData, "C201")
	net := snap.EONData["C201"]
	assert.Equal(t, "C201", net.PI)
	assert.Equal(t, "RADIO 2 ", net.PS)
	assert.Equal(t, "1234", net.Linkage)
	assert.Equal(t, 5, net.PTY)
	assert.True(t, net.TA)
	assert.True(t, net.TP)
	assert.Equal(t, clock.Now(), net.LastUpdate)
}

func TestEONAlternateFrequencies(t *testing.T) {
	var d, _ = newTestDecoder()

	eonGroup(d, 4, afWord(227, 30))
	eonGroup(d, 4, afWord(10, 20))
	eonGroup(d, 4, afWord(30, 10))

	assert.Equal(t, []float64{88.5, 89.5, 90.5}, d.Snapshot().EONData["C201"].AF)
}

func TestEONMappedFrequenciesCapped(t *testing.T) {
	var d, _ = newTestDecoder()

	for i := 1; i <= 12; i++ {
		eonGroup(d, 5+i%5, afWord(uint8(i), uint8(100+i)))
	}
	// repeats are not appended again
	eonGroup(d, 6, afWord(12, 112))

	mapped := d.Snapshot().EONData["C201"].Mapped
	require.Len(t, mapped, eonMaxMapped)
	assert.Equal(t, "87.8 -> 97.8", mapped[0])
	assert.Equal(t, "88.7 -> 98.7", mapped[9])
}

func TestEONPIN(t *testing.T) {
	var d, _ = newTestDecoder()

	eonGroup(d, 14, 0<<11|10<<6|30)
	assert.Empty(t, d.Snapshot().EONData["C201"].PIN)

	eonGroup(d, 14, 3<<11|10<<6|30)
	assert.Equal(t, hex4(3<<11|10<<6|30), d.Snapshot().EONData["C201"].PIN)
}

func TestEON14B(t *testing.T) {
	var d, _ = newTestDecoder()

	d.Update(testPI, group(29, 0x10|0x08), testPI, 0xc202)

	net := d.Snapshot().EONData["C202"]
	assert.True(t, net.TP)
	assert.True(t, net.TA)
}

func TestEONNetworkCap(t *testing.T) {
	var d, clock = newTestDecoder()

	for pi := uint16(0x2000); pi < 0x2000+eonMaxNetworks+1; pi++ {
		d.Update(testPI, group(28, 0), chars('X', 'X'), pi)
		clock.Advance(time.Second)
	}

	snap := d.Snapshot()
	assert.Len(t, snap.EONData, eonMaxNetworks)
	assert.NotContains(t, snap.EONData, "2000")
	assert.Contains(t, snap.EONData, "2020")
}
