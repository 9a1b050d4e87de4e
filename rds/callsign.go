package rds

// CallSign derives a North American call sign from a PI code.
// See: U.S. RBDS Standard - April 1998, annex D. Only the four letter
// K/W range is computable; anything else returns "".
func CallSign(pi uint16) string {
	var tmp uint16
	var cs [4]byte

	switch {
	case pi&0xff00 == 0xaf00:
		// AFxx was sent for xx00
		pi = (pi & 0x00ff) << 8
	case pi&0xf000 == 0xa000:
		// Annn was sent for n0nn
		pi = (pi&0x0f00)<<4 | (pi & 0x00ff)
	}

	if pi < 4096 || pi > 39247 {
		return ""
	}
	if pi < 21672 {
		cs[0] = 'K'
		tmp = pi - 4096
	} else {
		cs[0] = 'W'
		tmp = pi - 21672
	}
	cs[1] = 'A' + byte(tmp/676)
	tmp %= 676
	cs[2] = 'A' + byte(tmp/26)
	tmp %= 26
	cs[3] = 'A' + byte(tmp)
	return string(cs[:])
}
