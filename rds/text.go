package rds

import (
	"strings"
	"time"
	"unicode/utf8"
)

// textGrid is a fixed-width character buffer with a per-position "written" mask.
type textGrid struct {
	buf  []byte
	mask []bool
}

func newTextGrid(n int) textGrid {
	return textGrid{buf: make([]byte, n), mask: make([]bool, n)}
}

func (g *textGrid) write(pos int, chars ...byte) {
	for i, c := range chars {
		if pos+i >= len(g.buf) {
			return
		}
		g.buf[pos+i] = c
		g.mask[pos+i] = true
	}
}

func (g *textGrid) clear() {
	for i := range g.buf {
		g.buf[i] = 0
		g.mask[i] = false
	}
}

func (g *textGrid) complete() bool {
	for _, m := range g.mask {
		if !m {
			return false
		}
	}
	return true
}

func (g *textGrid) empty() bool {
	for _, m := range g.mask {
		if m {
			return false
		}
	}
	return true
}

func (g *textGrid) String() string {
	return renderGrid(g.buf, g.mask)
}

// writeRT writes RadioText characters. A carriage return ends the message:
// everything after it is blanked and counts as written.
func (g *textGrid) writeRT(pos int, chars ...byte) {
	g.write(pos, chars...)
	for i, c := range chars {
		if c != '\r' {
			continue
		}
		for j := pos + i + 1; j < len(g.buf); j++ {
			g.buf[j] = ' '
			g.mask[j] = true
		}
	}
}

// rtString renders a RadioText side up to its terminating carriage return.
func (g *textGrid) rtString() string {
	n := len(g.buf)
	for i, c := range g.buf {
		if g.mask[i] && c == '\r' {
			n = i
			break
		}
	}
	return renderGrid(g.buf[:n], g.mask[:n])
}

// stability tracks how long a rendered value has gone unchanged.
type stability struct {
	candidate string
	since     time.Time
}

func (s *stability) observe(v string, now time.Time) {
	if v != s.candidate {
		s.candidate = v
		s.since = now
	}
}

func (s *stability) stable(now time.Time) bool {
	return s.candidate != "" && now.Sub(s.since) >= StableAfter
}

// 0A/0B: PS segment, TA, M/S and one decoder identification bit
func (d *Decoder) updatePS(b, dd uint16, now time.Time) {
	var s = d.s
	var addr = address(b, 0x3)

	s.ta = textFlag(b) == 1
	s.ms = musicSpeech(b)
	d.updateDI(addr, diBit(b))

	s.ps.write(addr*2, hiByte(dd), loByte(dd))
	s.psStability.observe(s.ps.String(), now)
}

// DI bits are sent most significant first: segment 0 carries d3 (dynamic PTY),
// segment 3 carries d0 (stereo).
func (d *Decoder) updateDI(addr int, bit bool) {
	switch addr {
	case 0:
		d.s.diDynamicPTY = bit
	case 1:
		d.s.diCompressed = bit
	case 2:
		d.s.diArtificialHead = bit
	case 3:
		d.s.diStereo = bit
	}
}

// 15B: fast basic tuning, same flags as 0B without the PS segment
func (d *Decoder) updateFastTuning(b uint16) {
	d.s.ta = textFlag(b) == 1
	d.s.ms = musicSpeech(b)
	d.updateDI(address(b, 0x3), diBit(b))
}

// 2A writes four characters per group, 2B two.
func (d *Decoder) updateRT(b, c, dd uint16, versionB bool, now time.Time) {
	var s = d.s
	var flag = textFlag(b)
	var addr = address(b, 0xf)

	if s.rtSeen && flag != s.rtFlag {
		s.rt[flag].clear()
		s.rtPlus.markStale()
	}
	s.rtFlag = flag
	s.rtSeen = true

	side := &s.rt[flag]
	if versionB {
		side.writeRT(addr*2, hiByte(dd), loByte(dd))
	} else {
		side.writeRT(addr*4, hiByte(c), loByte(c), hiByte(dd), loByte(dd))
	}

	if side.complete() {
		s.rtStability.observe(side.rtString(), now)
	}
}

// 10A: PTYN, single buffer wiped on A/B flip
func (d *Decoder) updatePTYN(b, c, dd uint16, now time.Time) {
	var s = d.s
	var flag = textFlag(b)

	if s.ptynSeen && flag != s.ptynFlag {
		s.ptyn.clear()
	}
	s.ptynFlag = flag
	s.ptynSeen = true

	s.ptyn.write(address(b, 0x1)*4, hiByte(c), loByte(c), hiByte(dd), loByte(dd))
	s.ptynStability.observe(s.ptyn.String(), now)
}

// 15A: long PS, overwritten in place
func (d *Decoder) updateLongPS(b, c, dd uint16) {
	var pos = address(b, 0x7) * 4
	copy(d.s.lps[pos:pos+4], []byte{hiByte(c), loByte(c), hiByte(dd), loByte(dd)})
}

// Long PS is UTF-8 when it validates; otherwise fall back to the RDS table.
func (s *state) longPS() string {
	var raw = make([]byte, 0, len(s.lps))
	for _, c := range s.lps {
		if c == 0 || c == '\r' {
			c = ' '
		}
		raw = append(raw, c)
	}
	if utf8.Valid(raw) {
		return strings.TrimRight(string(raw), " ")
	}
	var sb strings.Builder
	for _, c := range raw {
		sb.WriteRune(rdsRune(c))
	}
	return strings.TrimRight(sb.String(), " ")
}
