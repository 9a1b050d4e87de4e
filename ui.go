package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell"

	"github.com/bartgrantham/gofm/rds"
	"github.com/bartgrantham/gofm/worker"
)

const eonRows = 6

var (
	black = tcell.Color(int32(232))
	white = tcell.Color(int32(255))

	headerStyle   = tcell.StyleDefault.Foreground(white).Background(black).Bold(true)
	stableStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	unstableStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	labelStyle    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	tagStyle      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

func Clear(scr tcell.Screen, x, y, h, w int, c rune, style tcell.Style) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			scr.SetContent(i, j, c, nil, style)
		}
	}
}

func DrawLines(scr tcell.Screen, x, y int, style tcell.Style, lines []string) {
	for j, line := range lines {
		var i int
		for _, c := range line {
			scr.SetContent(x+i, y+j, c, nil, style)
			i++
		}
	}
}

func styleFor(stable bool) tcell.Style {
	if stable {
		return stableStyle
	}
	return unstableStyle
}

func flag(on bool, name string) string {
	if on {
		return name
	}
	return strings.Repeat("-", len(name))
}

func musicSpeech(music bool) string {
	if music {
		return "Music "
	}
	return "Speech"
}

func sortedKeys(m map[string]rds.EONEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// statusScreen renders decoder snapshots on a terminal.
type statusScreen struct {
	scr    tcell.Screen
	banner *FIGfont
}

func newStatusScreen(scr tcell.Screen, banner *FIGfont) *statusScreen {
	return &statusScreen{scr: scr, banner: banner}
}

// Run redraws every refresh until ctx is done or the user quits.
// 'r' resets the decoder.
func (u *statusScreen) Run(ctx context.Context, w *worker.Worker, refresh time.Duration) error {
	var scr = u.scr
	var ticker = time.NewTicker(refresh)
	defer ticker.Stop()

	event := make(chan tcell.Event, 1)
	go func() {
		for {
			e := scr.PollEvent()
			if e == nil {
				// screen finalized
				return
			}
			event <- e
		}
	}()

	scr.Clear()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-event:
			switch e := e.(type) {
			case *tcell.EventKey:
				switch {
				case e.Key() == tcell.KeyCtrlC, e.Key() == tcell.KeyRune && e.Rune() == 'q':
					return nil
				case e.Key() == tcell.KeyRune && e.Rune() == 'r':
					if err := w.Reset(ctx); err != nil {
						return err
					}
				}
			case *tcell.EventResize:
				scr.Sync()
			}
		case <-ticker.C:
			snap, err := w.GetData(ctx)
			if err != nil {
				return err
			}
			u.draw(snap, time.Now())
		}
	}
}

func (u *statusScreen) draw(snap *rds.Snapshot, now time.Time) {
	var scr = u.scr
	var width, height = scr.Size()
	var y int

	scr.Clear()
	line := func(style tcell.Style, s string) {
		if y < height {
			DrawLines(scr, 0, y, style, []string{s})
		}
		y++
	}
	field := func(label string, style tcell.Style, s string) {
		if y < height {
			DrawLines(scr, 0, y, labelStyle, []string{label})
			DrawLines(scr, len(label)+1, y, style, []string{s})
		}
		y++
	}

	pi := snap.PI
	if pi == "" {
		pi = "----"
	}
	head := fmt.Sprintf(" PI %s %-4s  PTY %2d %-22s %s %s %s %s %s %s",
		pi, snap.CallSign, snap.PTY, snap.PTYName,
		flag(snap.TP, "TP"), flag(snap.TA, "TA"),
		musicSpeech(snap.MS),
		flag(snap.DIStereo, "Stereo"), flag(snap.HasRTPlus, "RT+"), flag(snap.HasTMC, "TMC"))
	Clear(scr, 0, 0, 1, width, ' ', headerStyle)
	DrawLines(scr, 0, 0, headerStyle, []string{head})
	y = 2

	psStyle := styleFor(snap.PSStable)
	if u.banner != nil {
		ps := u.banner.Render(snap.PS)
		x := 0
		if len(ps) > 0 && len([]rune(ps[0])) < width {
			x = (width - len([]rune(ps[0]))) / 2
		}
		DrawLines(scr, x, y, psStyle, ps)
		y += len(ps) + 1
	} else {
		field("PS", psStyle, fmt.Sprintf("[%s]", snap.PS))
	}
	if snap.LongPS != "" {
		field("Long PS", stableStyle, snap.LongPS)
	}
	if snap.PTYN != "" {
		field("PTYN", styleFor(snap.StableFlags["ptyn"]), snap.PTYN)
	}
	field(fmt.Sprintf("RT %c", 'A'+snap.RTABFlag), styleFor(snap.RTStable), snap.RT)
	for _, tag := range snap.RTPlusData {
		style := tagStyle
		if tag.Stale {
			style = unstableStyle
		}
		field("  "+tag.Label+":", style, tag.Text)
	}
	if snap.HasRTPlus {
		field("  item", stableStyle, fmt.Sprintf("toggle %d running %t", snap.RTPlusToggle, snap.RTPlusRunning))
	}
	y++

	afs := make([]string, len(snap.AFList))
	for i, f := range snap.AFList {
		afs[i] = fmt.Sprintf("%.1f", f)
	}
	field(fmt.Sprintf("AF (%s)", snap.AFType), stableStyle, strings.Join(afs, " "))
	if snap.UTCTime != "" {
		field("Time", stableStyle, fmt.Sprintf("%s (%s)  UTC %s", snap.LocalTime, snap.LocalOffset, snap.UTCTime))
	}
	field("ECC", stableStyle, fmt.Sprintf("%-3s LIC %-3s PIN %s", snap.ECC, snap.LIC, snap.PIN))
	for _, oda := range snap.ODAList {
		field("ODA", stableStyle, fmt.Sprintf("%s %-28s on %-3s  %s", oda.AID, oda.Name, oda.Group, humanize.RelTime(oda.LastSeen, now, "ago", "from now")))
	}
	y++

	if snap.HasEON {
		line(labelStyle, "EON     PS        PTY  TP TA  AF")
		for i, pi := range sortedKeys(snap.EONData) {
			if i == eonRows {
				line(unstableStyle, fmt.Sprintf("        ... %d more", len(snap.EONData)-eonRows))
				break
			}
			n := snap.EONData[pi]
			afs := make([]string, len(n.AF))
			for i, f := range n.AF {
				afs[i] = fmt.Sprintf("%.1f", f)
			}
			line(stableStyle, fmt.Sprintf("%-7s %-9s %3d  %-2s %-2s  %s",
				pi, n.PS, n.PTY, flag(n.TP, "TP"), flag(n.TA, "TA"), strings.Join(afs, " ")))
		}
		y++
	}

	line(labelStyle, "Group      Count      %")
	for _, g := range snap.GroupStats {
		line(stableStyle, fmt.Sprintf("%-5s %10s %6.1f  %s", g.Group, humanize.Comma(int64(g.Count)), g.Percent, g.Name))
	}

	ber := "unknown"
	if snap.BER != rds.BERUnknown {
		ber = fmt.Sprintf("%.1f%%", snap.BER)
	}
	updated := "never"
	if !snap.LastUpdate.IsZero() {
		updated = humanize.RelTime(snap.LastUpdate, now, "ago", "from now")
	}
	footer := fmt.Sprintf(" %s groups  BER %s  updated %s   [q]uit [r]eset",
		humanize.Comma(int64(snap.GroupTotal)), ber, updated)
	Clear(scr, 0, height-1, 1, width, ' ', headerStyle)
	DrawLines(scr, 0, height-1, headerStyle, []string{footer})

	scr.Show()
}
