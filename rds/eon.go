package rds

import (
	"fmt"
	"sort"
	"time"
)

const (
	eonMaxMapped   = 10
	eonMaxNetworks = 32
)

type eonNetwork struct {
	pi         uint16
	ps         textGrid
	af         []uint8
	mapped     []string
	linkage    string
	pty        int
	tp         bool
	ta         bool
	pin        uint16
	lastUpdate time.Time
}

type eonTracker struct {
	nets map[string]*eonNetwork
}

func newEONTracker() eonTracker {
	return eonTracker{nets: map[string]*eonNetwork{}}
}

// network returns the record for pi, creating it on first sight.
func (e *eonTracker) network(pi uint16, now time.Time) *eonNetwork {
	var key = hex4(pi)

	n, ok := e.nets[key]
	if !ok {
		if len(e.nets) >= eonMaxNetworks {
			e.evict()
		}
		n = &eonNetwork{pi: pi, ps: newTextGrid(psLength)}
		e.nets[key] = n
	}
	n.lastUpdate = now
	return n
}

func (e *eonTracker) evict() {
	var oldest string

	for key, n := range e.nets {
		if oldest == "" || n.lastUpdate.Before(e.nets[oldest].lastUpdate) {
			oldest = key
		}
	}
	delete(e.nets, oldest)
}

/*
14A:

	block 2: ...._...._...t_vvvv    t: TP(ON), v: variant
	block 3: variant dependent
	block 4: PI(ON)
*/
func (e *eonTracker) update(b, c, dd uint16, now time.Time) {
	var n = e.network(dd, now)
	var variant = eonVariant(b)

	n.tp = textFlag(b) == 1
	switch {
	case variant <= 3:
		n.ps.write(variant*2, hiByte(c), loByte(c))
	case variant == 4:
		n.addAF(hiByte(c))
		n.addAF(loByte(c))
	case variant <= 9:
		tuned, other := hiByte(c), loByte(c)
		if validAF(tuned) && validAF(other) {
			n.addMapping(fmt.Sprintf("%.1f -> %.1f", AFFrequency(tuned), AFFrequency(other)))
		}
	case variant == 12:
		n.linkage = hex4(c)
	case variant == 13:
		n.pty = int(c >> 11)
		n.ta = c&0x1 == 0x1
	case variant == 14:
		if day, _, _ := pinFields(c); day != 0 {
			n.pin = c
		}
	}
}

// 14B: TP(ON) and TA(ON) in block 2, PI(ON) in block 4
func (e *eonTracker) updateTA(b, dd uint16, now time.Time) {
	var n = e.network(dd, now)

	n.tp = textFlag(b) == 1
	n.ta = b&0x0008 == 0x0008
}

func (n *eonNetwork) addAF(code uint8) {
	if !validAF(code) {
		return
	}
	for _, f := range n.af {
		if f == code {
			return
		}
	}
	n.af = append(n.af, code)
	sort.Slice(n.af, func(i, j int) bool { return n.af[i] < n.af[j] })
}

func (n *eonNetwork) addMapping(m string) {
	for _, have := range n.mapped {
		if have == m {
			return
		}
	}
	n.mapped = append(n.mapped, m)
	if len(n.mapped) > eonMaxMapped {
		n.mapped = n.mapped[len(n.mapped)-eonMaxMapped:]
	}
}
