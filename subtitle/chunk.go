package subtitle

import "strings"

// Segment is one time-bounded unit of transcribed speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Chunk is a word-limited slice of a Segment with a proportionally
// allocated time sub-interval.
type Chunk struct {
	Text  string
	Start float64
	End   float64
}

// SplitSegment splits a segment's text on whitespace into groups of at most
// maxWords words and divides the segment's interval into equal-length
// sub-intervals, one per group. The chunk intervals tile the parent interval
// exactly; a segment with start == end yields zero-duration chunks rather
// than an error. Word limits below 1 are treated as 1.
func SplitSegment(seg Segment, maxWords int) []Chunk {
	if maxWords < 1 {
		maxWords = 1
	}
	text := strings.TrimSpace(seg.Text)
	words := strings.Fields(text)

	var texts []string
	if len(words) <= maxWords {
		texts = []string{text}
	} else {
		for i := 0; i < len(words); i += maxWords {
			end := i + maxWords
			if end > len(words) {
				end = len(words)
			}
			texts = append(texts, strings.Join(words[i:end], " "))
		}
	}

	duration := seg.End - seg.Start
	chunkDuration := duration / float64(len(texts))

	chunks := make([]Chunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, Chunk{
			Text:  t,
			Start: seg.Start + float64(i)*chunkDuration,
			End:   seg.Start + float64(i+1)*chunkDuration,
		})
	}
	return chunks
}
