package rds

import (
	"time"

	"github.com/lestrrat-go/strftime"
)

var clockFormat = mustPattern("%Y-%m-%d %H:%M")

func mustPattern(p string) *strftime.Strftime {
	f, err := strftime.New(p)
	if err != nil {
		panic(err)
	}
	return f
}

type clockState struct {
	valid  bool
	utc    time.Time
	offset int // minutes east of UTC
}

// MJDToDate converts a Modified Julian Day to a Gregorian date
// (EN 50067 annex G). Intermediate terms are truncated toward zero.
func MJDToDate(mjd int) (year, month, day int) {
	var fmjd = float64(mjd)

	yp := int((fmjd - 15078.2) / 365.25)
	mp := int((fmjd - 14956.1 - float64(int(float64(yp)*365.25))) / 30.6001)
	day = mjd - 14956 - int(float64(yp)*365.25) - int(float64(mp)*30.6001)

	k := 0
	if mp == 14 || mp == 15 {
		k = 1
	}
	year = yp + k + 1900
	month = mp - 1 - k*12
	return year, month, day
}

/*
4A:

	block 2: ...._...._...._..mm    MJD bits 16-15
	block 3: mmmm_mmmm_mmmm_mmmh    MJD bits 14-0, hour bit 4
	block 4: hhhh_mmmm_mmso_oooo    hour bits 3-0, minute, offset sign, offset (half hours)
*/
func (c *clockState) update(b, cc, dd uint16) {
	var mjd = int(b&0x3)<<15 | int(cc>>1)

	if mjd == 0 {
		return
	}
	hour := int(cc&0x1)<<4 | int(dd>>12)
	minute := int((dd >> 6) & 0x3f)
	if hour > 23 || minute > 59 {
		return
	}
	offset := int(dd&0x1f) * 30
	if (dd>>5)&0x1 == 1 {
		offset = -offset
	}

	year, month, day := MJDToDate(mjd)
	c.utc = time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	c.offset = offset
	c.valid = true
}

func (c *clockState) local() time.Time {
	return c.utc.In(time.FixedZone("", c.offset*60))
}
