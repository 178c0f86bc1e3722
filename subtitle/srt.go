package subtitle

import (
	"fmt"
	"strings"
)

// WriteSRT renders segments as an SRT document: numbered blocks with a
// single global 1-based counter across all segments' chunks, separated by
// blank lines. The output is a pure function of its inputs.
func WriteSRT(segments []Segment, maxWords int) string {
	var blocks []string
	counter := 1

	for _, seg := range segments {
		for _, c := range SplitSegment(seg, maxWords) {
			blocks = append(blocks, fmt.Sprintf("%d\n%s --> %s\n%s\n",
				counter, SRTTimestamp(c.Start), SRTTimestamp(c.End), c.Text))
			counter++
		}
	}
	return strings.Join(blocks, "\n")
}
