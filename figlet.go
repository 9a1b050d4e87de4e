package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// See: figfont.txt

type FIGfont struct {
	Name      string
	Height    int
	hardblank byte
	comments  int
	chars     map[rune][]string
}

var ErrInvalidFont = errors.New("invalid FIGfont")
var ErrParse = errors.New("couldn't parse FIGfont")

// the required characters, in file order
var charorder string = ` !"#$%&'()*+,-./` + `0123456789:;<=>?` + `@ABCDEFGHIJKLMNO` +
	`PQRSTUVWXYZ[\]^_` + "`abcdefghijklmno" + "pqrstuvwxyz{|}~" +
	"ÄÖÜäöüß"

func (f *FIGfont) String() string {
	return f.Name
}

func LoadFIGfont(path string) (*FIGfont, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := NewFIGfont(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Name = path
	return f, nil
}

func NewFIGfont(r io.Reader) (*FIGfont, error) {
	var lines, header []string
	var params []int

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrInvalidFont
	}

	header = strings.Fields(lines[0])
	if len(header) < 2 || len(header[0]) < 6 || header[0][0:5] != "flf2a" {
		return nil, ErrParse
	}
	for _, s := range header[1:] {
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
		}
		params = append(params, i)
	}

	f := FIGfont{hardblank: header[0][5]}
	f.Height = params[0]
	if len(params) > 4 {
		f.comments = params[4]
	}
	if f.Height < 1 {
		return nil, ErrInvalidFont
	}

	f.chars = map[rune][]string{}
	var i int
	for _, c := range charorder {
		idx := 1 + f.comments + (i * f.Height)
		i++
		if idx+f.Height > len(lines) || lines[idx] == "" {
			return nil, fmt.Errorf("%w: truncated at %q", ErrInvalidFont, c)
		}
		endmark := lines[idx][len(lines[idx])-1:]
		for j := 0; j < f.Height; j++ {
			f.chars[c] = append(f.chars[c], strings.TrimRight(lines[idx+j], endmark))
		}
	}
	return &f, nil
}

// very stupid renderer that does _not_ respect FIGlet's rules
func (f *FIGfont) Render(s string) []string {
	var out = make([]string, f.Height)
	var hardblank = string([]byte{f.hardblank})

	for _, c := range s {
		if c == 0 {
			break
		}
		fig, ok := f.chars[c]
		if !ok {
			fig = f.chars[' ']
		}
		for i := 0; i < f.Height; i++ {
			out[i] += strings.Replace(fig[i], hardblank, " ", -1)
		}
	}

	// trim the common blank right edge so the banner centres
	var width int
	for i := range out {
		if n := len([]rune(strings.TrimRight(out[i], " "))); n > width {
			width = n
		}
	}
	for i := range out {
		r := []rune(out[i])
		if len(r) > width {
			out[i] = string(r[:width])
		}
	}
	return out
}
