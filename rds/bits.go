package rds

import "fmt"

/*

* block 1 (a): 16 bit PI code
* block 2 (b):
    * Group Type      : xxxx_...._...._....
    * Version         : ...._x..._...._....
    * Traffic Program : ...._.x.._...._....
    * Program Type    : ...._..xx_xxx._....
    * GT-dependent    : ...._...._...x_xxxx
* block 3 (c): GT-dependent (version B groups repeat PI here)
* block 4 (d): GT-dependent

The group "code" used throughout this package is the 5 bit value (b>>11)&0x1f:
type in the upper four bits, version in the lowest bit (0 = A, 1 = B).

*/

// GroupCode returns the 5 bit group code carried in block 2.
func GroupCode(b uint16) int {
	return int((b >> 11) & 0x1f)
}

// GroupType splits a group code into its numeric type (0..15) and version ('A' or 'B').
func GroupType(code int) (int, byte) {
	if code&1 == 1 {
		return code >> 1, 'B'
	}
	return code >> 1, 'A'
}

// GroupLabel renders a group code as "0A", "2B", "15A"...
func GroupLabel(code int) string {
	t, v := GroupType(code)
	return fmt.Sprintf("%d%c", t, v)
}

func trafficProgram(b uint16) bool { return b&0x0400 == 0x0400 }

func programType(b uint16) int { return int((b >> 5) & 0x1f) }

// textFlag is the A/B toggle for RT (2A/2B) and PTYN (10A), and TA for 0A/0B/15B.
func textFlag(b uint16) int { return int((b >> 4) & 0x1) }

func musicSpeech(b uint16) bool { return b&0x0008 == 0x0008 }

func diBit(b uint16) bool { return b&0x0004 == 0x0004 }

// address bits of the segment: width is group-type dependent
func address(b uint16, mask uint16) int { return int(b & mask) }

func hiByte(w uint16) byte { return byte(w >> 8) }

func loByte(w uint16) byte { return byte(w & 0xff) }

// ODA application group type code (3A block 2, low five bits).
func odaGroupCode(b uint16) int { return int(b & 0x1f) }

// Slow labelling (1A/1B block 3).
func slcVariant(c uint16) int { return int((c >> 12) & 0x7) }

// EON variant (14A block 2, low four bits).
func eonVariant(b uint16) int { return int(b & 0xf) }

// PIN (1A/1B block 4, 14A variant 14 block 3): day, hour, minute.
func pinFields(w uint16) (day, hour, minute int) {
	return int((w >> 11) & 0x1f), int((w >> 6) & 0x1f), int(w & 0x3f)
}

func hex4(v uint16) string { return fmt.Sprintf("%04X", v) }
