package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/config"
)

// runStream compiles a filter graph to its argument vector and executes
// ffmpeg, capturing stderr so a non-zero exit surfaces the tool's own
// diagnostic text instead of a bare exit code.
func runStream(ctx context.Context, op string, stream *ffmpeg.Stream) error {
	args := stream.GetArgs()
	config.Log.WithField("op", op).Debugf("ffmpeg %v", args)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: ffmpeg failed: %w: %s", op, err, tail(stderr.String(), 1000))
	}
	return nil
}

// tail returns the last n bytes of s; ffmpeg buries the useful diagnostic at
// the end of a very chatty stderr.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// formatVolume renders a volume multiplier for a filter argument.
func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatSeconds renders a duration in seconds for -t and atrim arguments.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
