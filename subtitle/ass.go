package subtitle

import (
	"fmt"
	"strings"
)

// Canvas resolution for rendered caption documents (9:16 vertical).
const (
	PlayResX = 1080
	PlayResY = 1920
)

// WriteASS renders segments as an ASS document with per-word highlight
// coloring. The header pins a 1080x1920 canvas and a single style record
// with BorderStyle=3 and a fully transparent BackColour, so text gets an
// outline but no background box. Chunk text is upper-cased and exactly one
// word per event is wrapped in a highlight color escape and reset to the
// primary color; an out-of-range highlight index leaves the event unstyled.
func WriteASS(segments []Segment, maxWords int, style Style) string {
	primary := ASSColor(style.PrimaryColor, "00")
	highlight := ASSColor(style.HighlightColor, "00")
	outline := ASSColor(style.OutlineColor, "00")

	bold := 0
	if style.Bold {
		bold = -1
	}

	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("Title: Subtitles\n")
	b.WriteString("ScriptType: v4.00+\n")
	b.WriteString("WrapStyle: 0\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", PlayResX)
	fmt.Fprintf(&b, "PlayResY: %d\n", PlayResY)
	b.WriteString("ScaledBorderAndShadow: yes\n")
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b, "Style: Default,%s,%d,%s,&H000000FF,%s,&H00000000,%d,0,0,0,100,100,0,0,3,%d,%d,2,40,40,%d,1\n",
		style.FontName, style.FontSize, primary, outline, bold,
		style.OutlineWidth, style.ShadowOffset, style.MarginV)
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, seg := range segments {
		seg.Text = strings.ToUpper(strings.TrimSpace(seg.Text))
		for _, c := range SplitSegment(seg, maxWords) {
			fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
				ASSTimestamp(c.Start), ASSTimestamp(c.End),
				highlightChunk(c.Text, style, highlight, primary))
		}
	}
	return b.String()
}

// highlightChunk wraps the word selected by the style's highlight position
// in a color escape, preserving word order and spacing.
func highlightChunk(text string, style Style, highlight, primary string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	idx := style.highlightIndex(len(words))
	if idx < 0 {
		return strings.Join(words, " ")
	}

	out := make([]string, len(words))
	for i, w := range words {
		if i == idx {
			out[i] = fmt.Sprintf("{\\c%s}%s{\\c%s}", highlight, w, primary)
		} else {
			out[i] = w
		}
	}
	return strings.Join(out, " ")
}
