package subtitle

import (
	"strings"
	"testing"
)

func TestWriteSRT(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2, Text: "hello world"},
		{Start: 2, End: 4, Text: "goodbye"},
	}

	got := WriteSRT(segments, 3)
	want := "1\n00:00:00,000 --> 00:00:02,000\nhello world\n" +
		"\n" +
		"2\n00:00:02,000 --> 00:00:04,000\ngoodbye\n"
	if got != want {
		t.Errorf("WriteSRT = %q, want %q", got, want)
	}
}

func TestWriteSRTCounterSpansSegments(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 4, Text: "a b c d e f"},
		{Start: 4, End: 6, Text: "g h"},
	}

	got := WriteSRT(segments, 3)

	// 6 words at 3 per block plus one trailing segment: blocks 1, 2, 3.
	for _, prefix := range []string{"1\n", "\n2\n", "\n3\n"} {
		if !strings.Contains(got, prefix) {
			t.Errorf("output missing block header %q:\n%s", prefix, got)
		}
	}
	if strings.Contains(got, "\n4\n") {
		t.Errorf("unexpected fourth block:\n%s", got)
	}
}

func TestWriteSRTEmpty(t *testing.T) {
	if got := WriteSRT(nil, 3); got != "" {
		t.Errorf("WriteSRT(nil) = %q, want empty", got)
	}
}
