package rds

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

const (
	odaHistory   = 5
	rtPlusMaxTag = 6
	// start+length beyond this means a corrupt descriptor
	rtPlusMaxLine = 69

	aidRTPlus    = 0x4bd7
	aidRTPlusERT = 0x4bd8
)

// Registered open data applications, by AID.
var odaNames = map[uint16]string{
	0x0093: "Cross referencing DAB within RDS",
	0x0bcb: "Leisure & Practical Info for Drivers",
	0x0c24: "ELECTRABEL-DSM 7",
	0x0cc1: "Wireless Playground broadcast control signal",
	0x0d45: "RDS-TMC: ALERT-C / EN ISO 14819-1 (for testing)",
	0x0d8b: "ELECTRABEL-DSM 18",
	0x0e2c: "ELECTRABEL-DSM 3",
	0x0e31: "ELECTRABEL-DSM 13",
	0x0f87: "ELECTRABEL-DSM 2",
	0x125f: "I-FM-RDS for fixed and mobile devices",
	0x1bda: "ELECTRABEL-DSM 1",
	0x1c5e: "ELECTRABEL-DSM 20",
	0x1c68: "ITIS In-vehicle data base",
	0x1cb1: "ELECTRABEL-DSM 10",
	0x1d47: "ELECTRABEL-DSM 4",
	0x1dc2: "CITIBUS 4",
	0x1dc5: "Encrypted TTI using ALERT-Plus",
	0x1e8f: "ELECTRABEL-DSM 17",
	0x4400: "RDS-Light",
	0x4aa1: "RASANT",
	0x4ab7: "ELECTRABEL-DSM 9",
	0x4ba2: "ELECTRABEL-DSM 5",
	0x4bd7: "RadioText+ (RT+)",
	0x4bd8: "RadioText+ for eRT",
	0x4c59: "CITIBUS 2",
	0x4d87: "Radio Commerce System (RCS)",
	0x4d95: "ELECTRABEL-DSM 16",
	0x4d9a: "ELECTRABEL-DSM 11",
	0x50dd: "Disaster warning",
	0x5757: "Personal weather station",
	0x6363: "Hybradio RDS-Net",
	0x6365: "RDS2 - 9 bit AF lists",
	0x6552: "Enhanced RadioText (eRT)",
	0x6a7a: "Warning receiver",
	0x7373: "Enhanced early warning system (EWS)",
	0xa112: "NL Alert system",
	0xa911: "Data FM Selective Multipoint Messaging",
	0xabce: "RF Power Monitoring",
	0xc350: "NRSC Song Title and Artist",
	0xc3a1: "Personal Radio Service",
	0xc3b0: "iTunes Tagging",
	0xc3c3: "NAVTEQ Traffic Plus",
	0xc4d4: "eMessage",
	0xc549: "Smart Grid Broadcast Channel",
	0xc563: "ID Logic",
	0xc6a7: "Veil Enabled Interactive Device",
	0xc737: "Utility Message Channel (UMC)",
	0xcb73: "CITIBUS 1",
	0xcb97: "ELECTRABEL-DSM 14",
	0xcc21: "CITIBUS 3",
	0xcd46: "RDS-TMC: ALERT-C",
	0xcd47: "RDS-TMC: ALERT-C",
	0xcd9e: "ELECTRABEL-DSM 8",
	0xce6b: "Encrypted TTI using ALERT-Plus",
	0xe123: "APS Gateway",
	0xe1c1: "Action code",
	0xe319: "ELECTRABEL-DSM 12",
	0xe411: "Beacon downlink",
	0xe440: "ELECTRABEL-DSM 15",
	0xe4a6: "ELECTRABEL-DSM 19",
	0xe5d7: "ELECTRABEL-DSM 6",
	0xe911: "EAS open protocol",
	0xff7f: "RFT: Station logo",
	0xff80: "RFT+ (work title)",
}

// ODAName returns the registered name of an application id.
func ODAName(aid uint16) string {
	if name, ok := odaNames[aid]; ok {
		return name
	}
	return "Unknown ODA"
}

func isTMC(aid uint16) bool {
	return aid == 0xcd46 || aid == 0xcd47 || aid == 0x0d45
}

type odaRecord struct {
	aid       uint16
	groupCode int
	message   uint16
	lastSeen  time.Time
}

type odaRegistry struct {
	list        []odaRecord // newest first
	rtPlusGroup int         // -1 until registered
}

func newODARegistry() odaRegistry {
	return odaRegistry{rtPlusGroup: -1}
}

func (r *odaRegistry) upsert(rec odaRecord) {
	for i := range r.list {
		if r.list[i].aid == rec.aid {
			r.list[i] = rec
			return
		}
	}
	r.list = append([]odaRecord{rec}, r.list...)
	if len(r.list) > odaHistory {
		r.list = r.list[:odaHistory]
	}
}

func (r *odaRegistry) tmc() bool {
	for _, rec := range r.list {
		if isTMC(rec.aid) {
			return true
		}
	}
	return false
}

// 3A: block 2 low bits name the group carrying the application, block 4 is the AID
func (d *Decoder) updateODA(b, c, dd uint16, now time.Time) {
	var s = d.s
	var rec = odaRecord{
		aid:       dd,
		groupCode: odaGroupCode(b),
		message:   c,
		lastSeen:  now,
	}

	s.oda.upsert(rec)
	if dd == aidRTPlus || dd == aidRTPlusERT {
		if s.oda.rtPlusGroup != rec.groupCode {
			d.logger.Debug("RT+ registered", "group", GroupLabel(rec.groupCode))
		}
		s.oda.rtPlusGroup = rec.groupCode
	}
}

// RT+ content types, indexed by class code.
var rtPlusClasses = [64]string{
	"DUMMY_CLASS", "ITEM.TITLE", "ITEM.ALBUM", "ITEM.TRACKNUMBER",
	"ITEM.ARTIST", "ITEM.COMPOSITION", "ITEM.MOVEMENT", "ITEM.CONDUCTOR",
	"ITEM.COMPOSER", "ITEM.BAND", "ITEM.COMMENT", "ITEM.GENRE",
	"INFO.NEWS", "INFO.NEWS.LOCAL", "INFO.STOCKMARKET", "INFO.SPORT",
	"INFO.LOTTERY", "INFO.HOROSCOPE", "INFO.DAILY_DIVERSION", "INFO.HEALTH",
	"INFO.EVENT", "INFO.SCENE", "INFO.CINEMA", "INFO.STUPIDITY_MACHINE",
	"INFO.DATE_TIME", "INFO.WEATHER", "INFO.TRAFFIC", "INFO.ALARM",
	"INFO.ADVERTISEMENT", "INFO.URL", "INFO.OTHER", "STATIONNAME.SHORT",
	"STATIONNAME.LONG", "PROGRAMME.NOW", "PROGRAMME.NEXT", "PROGRAMME.PART",
	"PROGRAMME.HOST", "PROGRAMME.EDITORIAL_STAFF", "PROGRAMME.FREQUENCY", "PROGRAMME.HOMEPAGE",
	"PROGRAMME.SUBCHANNEL", "PHONE.HOTLINE", "PHONE.STUDIO", "PHONE.OTHER",
	"SMS.STUDIO", "SMS.OTHER", "EMAIL.HOTLINE", "EMAIL.STUDIO",
	"EMAIL.OTHER", "MMS.OTHER", "CHAT", "CHAT.CENTRE",
	"VOTE.QUESTION", "VOTE.CENTRE", "RFU", "RFU",
	"PRIVATE", "PRIVATE", "PRIVATE", "PLACE",
	"APPOINTMENT", "IDENTIFIER", "PURCHASE", "GET_DATA",
}

type rtPlusTag struct {
	contentType int
	start       int
	length      int
	text        string
	updated     time.Time
	seq         uint64
	stale       bool
}

type rtPlusState struct {
	tags        map[int]*rtPlusTag
	seq         uint64
	itemToggle  int
	itemRunning bool
}

func newRTPlusState() rtPlusState {
	return rtPlusState{tags: map[int]*rtPlusTag{}}
}

func (r *rtPlusState) markStale() {
	for _, tag := range r.tags {
		tag.stale = true
	}
}

// evict drops the least recently updated tags until at most rtPlusMaxTag remain.
func (r *rtPlusState) evict() {
	for len(r.tags) > rtPlusMaxTag {
		var oldest *rtPlusTag
		for _, tag := range r.tags {
			if oldest == nil || tag.updated.Before(oldest.updated) ||
				(tag.updated.Equal(oldest.updated) && tag.seq < oldest.seq) {
				oldest = tag
			}
		}
		delete(r.tags, oldest.contentType)
	}
}

func (r *rtPlusState) sorted() []*rtPlusTag {
	var out = make([]*rtPlusTag, 0, len(r.tags))

	for _, tag := range r.tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].contentType < out[j].contentType })
	return out
}

/*
RT+ group:

	block 2: ...._...._...t_rccc    t: item toggle, r: item running, c: type 1 (msb)
	block 3: cccs_ssss_slll_lllc    type 1 (lsb), start 1, length 1, type 2 (msb)
	block 4: cccc_csss_sssl_llll    type 2 (lsb), start 2, length 2

Lengths are sent minus one.
*/
func (d *Decoder) updateRTPlus(b, c, dd uint16, now time.Time) {
	var r = &d.s.rtPlus

	r.itemToggle = textFlag(b)
	r.itemRunning = b&0x0008 == 0x0008

	ct1 := int(b&0x7)<<3 | int(c>>13)
	start1 := int((c >> 7) & 0x3f)
	len1 := int((c >> 1) & 0x3f)
	ct2 := int(c&0x1)<<5 | int(dd>>11)
	start2 := int((dd >> 5) & 0x3f)
	len2 := int(dd & 0x1f)

	d.storeRTPlusTag(ct1, start1, len1, now)
	d.storeRTPlusTag(ct2, start2, len2, now)
	r.evict()
}

func (d *Decoder) storeRTPlusTag(contentType, start, length int, now time.Time) {
	var s = d.s

	if contentType == 0 {
		return
	}
	text, ok := sliceRT(s.rt[s.rtFlag].String(), start, length)
	if !ok {
		return
	}

	s.rtPlus.seq++
	s.rtPlus.tags[contentType] = &rtPlusTag{
		contentType: contentType,
		start:       start,
		length:      length,
		text:        text,
		updated:     now,
		seq:         s.rtPlus.seq,
	}
}

// sliceRT cuts [start, start+length+1) out of the rendered RadioText.
func sliceRT(rt string, start, length int) (string, bool) {
	var runes = []rune(rt)
	var end = start + length + 1

	if end > rtPlusMaxLine || start >= len(runes) {
		return "", false
	}
	if end > len(runes) {
		end = len(runes)
	}
	text := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, string(runes[start:end]))
	text = strings.TrimSpace(text)
	return text, text != ""
}
