package tracks

import (
	"fmt"
	"strconv"
	"strings"
)

// ASCIIArt draws the track as a timeline starting at global frame 0, one
// slot per frame index up to the track's end. Frames present in the track
// show their index, gaps are blank. For an object seen in frames 11, 12,
// 13 and 16:
//
//	[                                 11 12 13       16]
func (t *Track) ASCIIArt() string {
	width := 2
	if len(t.frames) > 0 {
		width = max(width, len(strconv.Itoa(t.EndTime())))
	}
	return t.ASCIIArtWidth(width)
}

// ASCIIArtWidth is ASCIIArt with an explicit slot width, so timelines of
// several tracks can share columns. Widths narrower than the largest
// index are widened to fit it.
func (t *Track) ASCIIArtWidth(width int) string {
	if len(t.frames) == 0 {
		return "[]"
	}
	width = max(width, len(strconv.Itoa(t.EndTime())))
	blank := strings.Repeat(" ", width)

	var b strings.Builder
	b.WriteByte('[')
	first := min(0, t.StartTime())
	next := 0
	for idx := first; idx <= t.EndTime(); idx++ {
		if idx > first {
			b.WriteByte(' ')
		}
		if next < len(t.frames) && t.frames[next].FrameIdx == idx {
			fmt.Fprintf(&b, "%*d", width, idx)
			next++
		} else {
			b.WriteString(blank)
		}
	}
	b.WriteByte(']')
	return b.String()
}
