package rds

/*
AF codes (0A block 3, two per group):

    0         not to be used
    1..204    87.6 .. 107.9 MHz
    205       filler
    224       no AF exists
    225..249  number of AFs that follow (code - 224)
    250       LF/MF frequency follows

Method A sends the header once, followed by the list two at a time.
Method B sends one list per transmitter: header + tuning frequency, then
pairs that each contain the tuning frequency. Nothing on the wire says which
method is in use, so it is inferred from how often pairs contain the head.
*/

// AFType is the inferred AF signalling method.
type AFType int

const (
	AFUnknown AFType = iota
	AFMethodA
	AFMethodB
)

func (t AFType) String() string {
	switch t {
	case AFMethodA:
		return "A"
	case AFMethodB:
		return "B"
	}
	return "Unknown"
}

const (
	afFirstHeader = 225
	afLastHeader  = 249

	afBCoverage   = 0.75
	afBMatchRatio = 0.35
)

type afCandidate struct {
	expected int
	observed map[uint8]struct{}
	matches  int
	pairs    int
}

// qualifies reports whether the list looks fully received.
func (c *afCandidate) qualifies() bool {
	var n = len(c.observed)

	if c.expected == 0 {
		return false
	}
	return float64(n) >= afBCoverage*float64(c.expected) ||
		(c.expected <= 2 && n == c.expected) ||
		(c.expected > 5 && n > 4)
}

type afEngine struct {
	set      []uint8
	head     uint8
	bmap     map[uint8]*afCandidate
	lastWord uint16
	seenWord bool
	kind     AFType
}

func newAFEngine() afEngine {
	return afEngine{bmap: map[uint8]*afCandidate{}}
}

// AFFrequency converts an AF code in 1..204 to MHz.
func AFFrequency(code uint8) float64 {
	return float64(875+int(code)) / 10
}

func validAF(code uint8) bool {
	return code >= 1 && code <= 204
}

func (e *afEngine) update(c uint16) {
	if e.seenWord && c == e.lastWord {
		return
	}
	e.lastWord = c
	e.seenWord = true

	first, second := hiByte(c), loByte(c)
	switch {
	case first >= afFirstHeader && first <= afLastHeader:
		if !validAF(second) {
			return
		}
		e.head = second
		e.moveToFront(second)
		cand, ok := e.bmap[second]
		if !ok {
			cand = &afCandidate{observed: map[uint8]struct{}{}}
			e.bmap[second] = cand
		}
		cand.expected = int(first) - 224
	case validAF(first) && validAF(second):
		e.add(first)
		e.add(second)
		if cand, ok := e.bmap[e.head]; ok && e.head != 0 {
			cand.observed[first] = struct{}{}
			cand.observed[second] = struct{}{}
			cand.pairs++
			if first == e.head || second == e.head {
				cand.matches++
			}
		}
	default:
		// filler or LF/MF next to a single usable code
		for _, code := range []uint8{first, second} {
			if validAF(code) {
				e.add(code)
			}
		}
	}
	e.classify()
}

func (e *afEngine) add(code uint8) {
	for _, f := range e.set {
		if f == code {
			return
		}
	}
	e.set = append(e.set, code)
}

func (e *afEngine) moveToFront(code uint8) {
	var out = make([]uint8, 0, len(e.set)+1)

	out = append(out, code)
	for _, f := range e.set {
		if f != code {
			out = append(out, f)
		}
	}
	e.set = out
}

func (e *afEngine) classify() {
	var qualifying int
	var last *afCandidate

	if len(e.set) == 0 {
		e.kind = AFUnknown
		return
	}
	for _, cand := range e.bmap {
		if cand.qualifies() {
			qualifying++
			last = cand
		}
	}
	switch {
	case qualifying > 1:
		e.kind = AFMethodB
	case qualifying == 1 && last.pairs > 0 && float64(last.matches)/float64(last.pairs) > afBMatchRatio:
		e.kind = AFMethodB
	default:
		e.kind = AFMethodA
	}
}

// list returns the AF codes in presentation order.
func (e *afEngine) list() []uint8 {
	var out = make([]uint8, 0, len(e.set))

	if e.kind == AFMethodB && e.head != 0 {
		out = append(out, e.head)
		for _, f := range e.set {
			if f != e.head {
				out = append(out, f)
			}
		}
		return out
	}
	return append(out, e.set...)
}

func (e *afEngine) frequencies() []float64 {
	var codes = e.list()
	var out = make([]float64, len(codes))

	for i, c := range codes {
		out[i] = AFFrequency(c)
	}
	return out
}
