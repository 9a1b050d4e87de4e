package rds

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var ErrShortLine = errors.New("rds: record shorter than one group")
var ErrMalformed = errors.New("rds: malformed group")
var ErrBitError = errors.New("rds: group marked as bit error")

const groupHexLen = 16

// ParseLine extracts the four blocks of one group from a text record such
// as "G:\r\n3F7C06158B2C41A0" or "G 3F7C 0615 8B2C 41A0". A tag up to the
// last ':' and any whitespace, ',' or ';' separators are ignored, and the
// group is read from the last 16 characters, so a bare leading tag is
// dropped too. A '-' anywhere in the payload marks a block the receiver
// could not correct.
func ParseLine(line string) ([4]uint16, error) {
	var blocks [4]uint16

	if i := strings.LastIndexByte(line, ':'); i >= 0 {
		line = line[i+1:]
	}
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' || r == ';' {
			return -1
		}
		return r
	}, line)

	if len(clean) < groupHexLen {
		return blocks, ErrShortLine
	}
	if strings.ContainsRune(clean, '-') {
		return blocks, ErrBitError
	}
	clean = clean[len(clean)-groupHexLen:]
	for i := range blocks {
		v, err := strconv.ParseUint(clean[i*4:i*4+4], 16, 16)
		if err != nil {
			return blocks, fmt.Errorf("%w: block %d: %v", ErrMalformed, i+1, err)
		}
		blocks[i] = uint16(v)
	}
	return blocks, nil
}

// IngestResult tallies what happened to a batch of records.
type IngestResult struct {
	Groups    int
	BitErrors int
	Ignored   int
}

// IngestLine decodes one text record. Bit-error records are sampled into
// the BER window, short and malformed records are dropped without a trace.
// The returned error only says which of those happened.
func (d *Decoder) IngestLine(line string) error {
	blocks, err := ParseLine(line)
	switch {
	case err == nil:
		// after Update: a confirmed station change starts a fresh window
		d.Update(blocks[0], blocks[1], blocks[2], blocks[3])
		d.s.stats.sample(false)
	case errors.Is(err, ErrBitError):
		d.s.stats.sample(true)
	}
	return err
}

// Ingest decodes a newline separated batch of records.
func (d *Decoder) Ingest(text string) IngestResult {
	var res IngestResult

	for _, line := range strings.Split(text, "\n") {
		err := d.IngestLine(line)
		switch {
		case err == nil:
			res.Groups++
		case errors.Is(err, ErrBitError):
			res.BitErrors++
		default:
			res.Ignored++
		}
	}
	return res
}
