package rds

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot is a read-only projection of the decoder state. Field names
// follow the worker "data" message.
type Snapshot struct {
	PI               string              `json:"pi"`
	CallSign         string              `json:"callsign,omitempty"`
	PTY              int                 `json:"pty"`
	PTYName          string              `json:"ptyName"`
	PS               string              `json:"ps"`
	PSStable         bool                `json:"psStable"`
	LongPS           string              `json:"longPs"`
	PTYN             string              `json:"ptyn"`
	RT               string              `json:"rt"`
	RTA              string              `json:"rtA"`
	RTB              string              `json:"rtB"`
	RTABFlag         int                 `json:"rtAbFlag"`
	RTStable         bool                `json:"rtStable"`
	AFList           []float64           `json:"afList"`
	AFType           string              `json:"afType"`
	ECC              string              `json:"ecc"`
	LIC              string              `json:"lic"`
	PIN              string              `json:"pin"`
	LocalTime        string              `json:"localTime"`
	LocalOffset      string              `json:"localOffset,omitempty"`
	UTCTime          string              `json:"utcTime"`
	TP               bool                `json:"tp"`
	TA               bool                `json:"ta"`
	MS               bool                `json:"ms"`
	DIStereo         bool                `json:"diStereo"`
	DIArtificialHead bool                `json:"diArtificialHead"`
	DICompressed     bool                `json:"diCompressed"`
	DIDynamicPTY     bool                `json:"diDynamicPty"`
	HasRTPlus        bool                `json:"hasRtPlus"`
	HasEON           bool                `json:"hasEon"`
	HasTMC           bool                `json:"hasTmc"`
	HasODA           bool                `json:"hasOda"`
	EONData          map[string]EONEntry `json:"eonData"`
	ODAList          []ODAEntry          `json:"odaList"`
	RTPlusData       []RTPlusEntry       `json:"rtPlusData"`
	RTPlusToggle     int                 `json:"rtPlusItemToggle"`
	RTPlusRunning    bool                `json:"rtPlusItemRunning"`
	GroupStats       []GroupStat         `json:"groupStats"`
	GroupTotal       int                 `json:"groupTotal"`
	BER              float64             `json:"ber"`
	StableFlags      map[string]bool     `json:"stableFlags"`
	LastUpdate       time.Time           `json:"lastUpdate"`
}

// EONEntry describes one other network.
type EONEntry struct {
	PI         string    `json:"pi"`
	PS         string    `json:"ps"`
	AF         []float64 `json:"af"`
	Mapped     []string  `json:"mappedFreqs"`
	Linkage    string    `json:"linkage"`
	PTY        int       `json:"pty"`
	TP         bool      `json:"tp"`
	TA         bool      `json:"ta"`
	PIN        string    `json:"pin"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// ODAEntry is a registered open data application.
type ODAEntry struct {
	AID      string    `json:"aid"`
	Name     string    `json:"name"`
	Group    string    `json:"group"`
	Message  string    `json:"message"`
	LastSeen time.Time `json:"lastSeen"`
}

// RTPlusEntry is one RadioText+ tag.
type RTPlusEntry struct {
	ContentType int       `json:"contentType"`
	Label       string    `json:"label"`
	Start       int       `json:"start"`
	Length      int       `json:"length"`
	Text        string    `json:"text"`
	Stale       bool      `json:"stale"`
	Updated     time.Time `json:"timestamp"`
}

// Snapshot derives the presentation view of the current state.
func (d *Decoder) Snapshot() *Snapshot {
	var s = d.s
	var snap = &Snapshot{
		PTY:              s.pty,
		PTYName:          PTYName(s.pty, d.rbds),
		PS:               s.ps.String(),
		PSStable:         s.psStability.stable(d.now()),
		LongPS:           s.longPS(),
		PTYN:             strings.TrimRight(s.ptyn.String(), " "),
		RTA:              strings.TrimRight(s.rt[0].rtString(), " "),
		RTB:              strings.TrimRight(s.rt[1].rtString(), " "),
		RTABFlag:         s.rtFlag,
		RTStable:         s.rtStability.stable(d.now()),
		AFList:           s.af.frequencies(),
		AFType:           s.af.kind.String(),
		TP:               s.tp,
		TA:               s.ta,
		MS:               s.ms,
		DIStereo:         s.diStereo,
		DIArtificialHead: s.diArtificialHead,
		DICompressed:     s.diCompressed,
		DIDynamicPTY:     s.diDynamicPTY,
		HasRTPlus:        s.oda.rtPlusGroup >= 0,
		HasEON:           len(s.eon.nets) > 0,
		HasTMC:           s.tmc || s.oda.tmc(),
		HasODA:           len(s.oda.list) > 0,
		EONData:          map[string]EONEntry{},
		RTPlusToggle:     s.rtPlus.itemToggle,
		RTPlusRunning:    s.rtPlus.itemRunning,
		GroupStats:       d.GroupStats(),
		GroupTotal:       s.stats.total,
		BER:              d.BER(),
		StableFlags:      d.StableFlags(),
		LastUpdate:       s.lastUpdate,
	}

	if s.hasPI {
		snap.PI = hex4(s.pi)
		if d.rbds {
			snap.CallSign = CallSign(s.pi)
		}
	}
	if s.rtFlag == 0 {
		snap.RT = snap.RTA
	} else {
		snap.RT = snap.RTB
	}
	if s.hasECC {
		snap.ECC = fmt.Sprintf("%02X", s.ecc)
	}
	if s.hasLIC {
		snap.LIC = fmt.Sprintf("%02X", s.lic)
	}
	if s.pin != 0 {
		snap.PIN = hex4(s.pin)
	}
	if s.clock.valid {
		local := s.clock.local()
		snap.UTCTime = clockFormat.FormatString(s.clock.utc)
		snap.LocalTime = clockFormat.FormatString(local)
		snap.LocalOffset = local.Format("-07:00")
	}

	for key, n := range s.eon.nets {
		entry := EONEntry{
			PI:         key,
			PS:         n.ps.String(),
			AF:         make([]float64, len(n.af)),
			Mapped:     append([]string(nil), n.mapped...),
			Linkage:    n.linkage,
			PTY:        n.pty,
			TP:         n.tp,
			TA:         n.ta,
			LastUpdate: n.lastUpdate,
		}
		for i, c := range n.af {
			entry.AF[i] = AFFrequency(c)
		}
		if n.pin != 0 {
			entry.PIN = hex4(n.pin)
		}
		snap.EONData[key] = entry
	}

	for _, rec := range s.oda.list {
		snap.ODAList = append(snap.ODAList, ODAEntry{
			AID:      hex4(rec.aid),
			Name:     ODAName(rec.aid),
			Group:    GroupLabel(rec.groupCode),
			Message:  hex4(rec.message),
			LastSeen: rec.lastSeen,
		})
	}

	for _, tag := range s.rtPlus.sorted() {
		snap.RTPlusData = append(snap.RTPlusData, RTPlusEntry{
			ContentType: tag.contentType,
			Label:       rtPlusClasses[tag.contentType],
			Start:       tag.start,
			Length:      tag.length,
			Text:        tag.text,
			Stale:       tag.stale,
			Updated:     tag.updated,
		})
	}
	return snap
}
