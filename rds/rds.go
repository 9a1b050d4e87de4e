// Package rds decodes RDS/RBDS groups into station metadata.
//
// A Decoder is fed one group at a time (Update) or raw text records
// (Ingest) and is read back through Snapshot. It is not safe for concurrent
// use: the host serializes calls, see package worker.
package rds

/*
A "group" is 4 blocks of 26 bits (16bit information word, 10bit checksum and offset word), **64 bits of content per group**

RDS data always sent: Program Information (PI), Program Type (PTY), Traffic Program (TP)
RDS group types handled here:
    Program Service (PS) name, TA, M/S, DI (0A, 0B)
    Alternative Frequency (AF) code pairs (0A)
    ECC / language / Program Item Number (1A, 1B)
    Radiotext (RT) message (2A, 2B)
    Open data application registration (3A), RadioText+ on the registered group
    Clock time and date (4A)
    Program Type Name (10A)
    Enhanced other networks information (EON) (14A, 14B)
    Long PS (15A), fast basic tuning (15B)

* PI code: 4 hex digits code that is unique to each station.
    * it is possible for multiple stations to switch to the same PI for regional/national simulcast, then switch back afterwards
    * a new PI is only believed after it has been seen piConfirmCount times in a row
* TP: identifies that the station provides traffic reporting
* TA: set to 1 when an actual traffic bulletin is broadcast
* PTY (program type): current program material being broadcast, codes 0..31
*/

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

const (
	psLength     = 8
	ptynLength   = 8
	rtLength     = 64
	longPSLength = 32

	piConfirmCount = 4
)

// Options configure a Decoder. The zero value is usable.
type Options struct {
	// RBDS selects the North American PTY table and call sign derivation.
	RBDS bool
	// Logger receives debug output for station changes and ODA registrations.
	Logger *log.Logger
	// Now replaces time.Now, for tests.
	Now func() time.Time
	// OnGroup, when set, is called with the group code of every counted group.
	OnGroup func(code int)
}

// Decoder owns the decoding state for a single RDS stream.
type Decoder struct {
	rbds    bool
	logger  *log.Logger
	now     func() time.Time
	onGroup func(code int)

	piChanges int
	s         *state
}

// state is everything that is wiped when the station changes.
type state struct {
	pi          uint16
	hasPI       bool
	piCandidate uint16
	piCounter   int
	piSince     time.Time
	lastUpdate  time.Time

	pty int
	tp  bool
	ta  bool
	ms  bool

	diStereo         bool
	diArtificialHead bool
	diCompressed     bool
	diDynamicPTY     bool

	ps       textGrid
	ptyn     textGrid
	ptynFlag int
	ptynSeen bool
	lps      [longPSLength]byte
	rt       [2]textGrid
	rtFlag   int
	rtSeen   bool

	psStability   stability
	ptynStability stability
	rtStability   stability

	ecc    byte
	hasECC bool
	lic    byte
	hasLIC bool
	pin    uint16
	tmc    bool

	clock  clockState
	af     afEngine
	oda    odaRegistry
	rtPlus rtPlusState
	eon    eonTracker
	stats  statistics
}

func newState() *state {
	return &state{
		ps:     newTextGrid(psLength),
		ptyn:   newTextGrid(ptynLength),
		rt:     [2]textGrid{newTextGrid(rtLength), newTextGrid(rtLength)},
		af:     newAFEngine(),
		oda:    newODARegistry(),
		rtPlus: newRTPlusState(),
		eon:    newEONTracker(),
	}
}

// New returns a Decoder with no station established.
func New(opts Options) *Decoder {
	d := &Decoder{
		rbds:    opts.RBDS,
		logger:  opts.Logger,
		now:     opts.Now,
		onGroup: opts.OnGroup,
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	if d.now == nil {
		d.now = time.Now
	}
	d.s = newState()
	return d
}

// Reset drops all decoded state, including the established PI.
func (d *Decoder) Reset() {
	d.s = newState()
}

// PIChanges counts confirmed station changes over the Decoder's lifetime.
func (d *Decoder) PIChanges() int {
	return d.piChanges
}

// PI returns the confirmed PI code.
func (d *Decoder) PI() (uint16, bool) {
	return d.s.pi, d.s.hasPI
}

// Update advances the decoder by one group.
func (d *Decoder) Update(rdsa, rdsb, rdsc, rdsd uint16) {
	var now = d.now()
	var code = GroupCode(rdsb)

	if d.onGroup != nil {
		d.onGroup(code)
	}
	if !d.trackPI(rdsa, now) {
		// unconfirmed PI: another station or garbage, keep it out of the buffers
		d.s.stats.count(code)
		return
	}

	s := d.s
	s.lastUpdate = now
	s.stats.count(code)
	s.tp = trafficProgram(rdsb)
	s.pty = programType(rdsb)

	if s.oda.rtPlusGroup == code {
		d.updateRTPlus(rdsb, rdsc, rdsd, now)
	}

	switch code {
	case 0, 1:
		// 0A, 0B : "Basic Tuning and Switching Information only"
		d.updatePS(rdsb, rdsd, now)
		if code == 0 {
			s.af.update(rdsc)
		}
	case 2, 3:
		// 1A, 1B : "Program Item Number and slow labeling codes"
		d.updateSlowLabels(rdsc, rdsd)
	case 4, 5:
		// 2A, 2B : "Radio Text only"
		d.updateRT(rdsb, rdsc, rdsd, code == 5, now)
	case 6:
		// 3A : "Applications Identification for ODA only"
		d.updateODA(rdsb, rdsc, rdsd, now)
	case 8:
		// 4A : "Clock Time and Date only"
		s.clock.update(rdsb, rdsc, rdsd)
	case 16:
		// 8A : "Traffic Message Channel or ODA", unless an ODA claimed it
		if s.oda.rtPlusGroup != code {
			s.tmc = true
		}
	case 20:
		// 10A : "Program Type Name"
		d.updatePTYN(rdsb, rdsc, rdsd, now)
	case 28:
		// 14A : "Enhanced Other Networks Information Only"
		s.eon.update(rdsb, rdsc, rdsd, now)
	case 29:
		// 14B : EON, TA burst of the other network
		s.eon.updateTA(rdsb, rdsd, now)
	case 30:
		// 15A : long PS
		d.updateLongPS(rdsb, rdsc, rdsd)
	case 31:
		// 15B : "Fast Switching Information only"
		d.updateFastTuning(rdsb)
	}
}

// trackPI debounces the PI and reports whether the group belongs to the
// confirmed station.
func (d *Decoder) trackPI(pi uint16, now time.Time) bool {
	var s = d.s

	if !s.hasPI {
		s.pi = pi
		s.hasPI = true
		s.piSince = now
		s.piCandidate = pi
		s.piCounter = 0
		d.logger.Debug("PI established", "pi", hex4(pi))
		return true
	}
	if pi == s.pi {
		s.piCandidate = pi
		s.piCounter = 0
		return true
	}

	if pi == s.piCandidate {
		s.piCounter++
	} else {
		s.piCandidate = pi
		s.piCounter = 1
	}
	if s.piCounter < piConfirmCount {
		return false
	}

	d.logger.Debug("PI changed", "from", hex4(s.pi), "to", hex4(pi))
	d.piChanges++
	d.s = newState()
	d.s.pi = pi
	d.s.hasPI = true
	d.s.piSince = now
	d.s.piCandidate = pi
	return true
}

// 1A/1B: block 3 is read as slow labelling and block 4 as PIN on both
// versions; consumers rely on 1B updating ECC/LIC as well.
func (d *Decoder) updateSlowLabels(c, dd uint16) {
	var s = d.s

	switch slcVariant(c) {
	case 0:
		s.ecc = loByte(c)
		s.hasECC = true
	case 3:
		s.lic = loByte(c)
		s.hasLIC = true
	}
	if day, _, _ := pinFields(dd); day != 0 {
		s.pin = dd
	}
}
