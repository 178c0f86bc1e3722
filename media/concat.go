package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/config"
)

// WriteConcatManifest writes the concat demuxer manifest listing the input
// paths, returning the manifest path. Single quotes in paths are escaped per
// the demuxer's quoting rules.
func WriteConcatManifest(dir string, taskID string, paths []string) (string, error) {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}

	manifest := filepath.Join(dir, fmt.Sprintf("%s_concat.txt", taskID))
	if err := os.WriteFile(manifest, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat manifest: %w", err)
	}
	return manifest, nil
}

// ConcatVideos stream-copies the manifest's inputs end to end. No filter
// graph and no re-encode: the only codec directive is copy.
func ConcatVideos(ctx context.Context, listPath, outputPath string) error {
	config.Log.WithField("list", listPath).Info("concatenating videos")
	return runStream(ctx, "concat", concatStream(listPath, outputPath))
}

func concatStream(listPath, outputPath string) *ffmpeg.Stream {
	return ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(outputPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput()
}
