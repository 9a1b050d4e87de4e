package rds

import (
	"math"
	"time"
)

const (
	// BERWindow is the number of records the bit error rate is computed over.
	BERWindow = 40
	// BERUnknown is reported while there is nothing meaningful to say.
	BERUnknown = -1.0

	// GracePeriod follows a PI change; flags and BER read as unknown/unstable.
	GracePeriod = 3000 * time.Millisecond
	// StableAfter is how long PS/PTYN/RT must be unchanged to count as stable.
	StableAfter = 2000 * time.Millisecond
)

type statistics struct {
	counts [32]int
	total  int
	ber    []uint8
}

func (s *statistics) count(code int) {
	s.counts[code&0x1f]++
	s.total++
}

func (s *statistics) sample(bad bool) {
	var v uint8

	if bad {
		v = 1
	}
	s.ber = append(s.ber, v)
	if len(s.ber) > BERWindow {
		s.ber = s.ber[len(s.ber)-BERWindow:]
	}
}

// GroupStat is one row of the group histogram.
type GroupStat struct {
	Group   string  `json:"group"`
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// GroupStats returns seen group types in code order (0A, 0B, 1A, ...),
// with their share of all groups rounded to one decimal.
func (d *Decoder) GroupStats() []GroupStat {
	var s = &d.s.stats
	var out []GroupStat

	for code, n := range s.counts {
		if n == 0 {
			continue
		}
		out = append(out, GroupStat{
			Group:   GroupLabel(code),
			Name:    GroupName(code),
			Count:   n,
			Percent: math.Round(float64(n)*1000/float64(s.total)) / 10,
		})
	}
	return out
}

// GroupTotal is the number of groups decoded since the last reset.
func (d *Decoder) GroupTotal() int {
	return d.s.stats.total
}

// BER returns the error percentage over the last BERWindow records, or
// BERUnknown without an established PI, inside the grace period or with
// nothing sampled yet.
func (d *Decoder) BER() float64 {
	var s = d.s
	var sum int

	if !s.hasPI || d.inGrace() || len(s.stats.ber) == 0 {
		return BERUnknown
	}
	for _, v := range s.stats.ber {
		sum += int(v)
	}
	return float64(sum) / float64(len(s.stats.ber)) * 100
}

func (d *Decoder) inGrace() bool {
	return !d.s.hasPI || d.now().Sub(d.s.piSince) < GracePeriod
}

// StableFlags reports, per field, whether its value can be trusted yet.
func (d *Decoder) StableFlags() map[string]bool {
	var s = d.s
	var now = d.now()
	var settled = !d.inGrace()

	return map[string]bool{
		"pi":               s.hasPI,
		"ps":               s.psStability.stable(now),
		"ptyn":             s.ptynStability.stable(now),
		"rt":               s.rtStability.stable(now),
		"pty":              settled,
		"tp":               settled,
		"ta":               settled,
		"ms":               settled,
		"diStereo":         settled,
		"diArtificialHead": settled,
		"diCompressed":     settled,
		"diDynamicPty":     settled,
	}
}
