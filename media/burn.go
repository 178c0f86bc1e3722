package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/config"
	"captionforge/subtitle"
)

// UseASSFormat reports whether the burn should take the styled ASS path.
// Any highlight position forces ASS since SRT cannot express per-word color.
func UseASSFormat(style subtitle.Style) bool {
	return style.UseASS || style.Highlight != ""
}

// BurnSubtitles writes the subtitle document to a temporary sidecar file
// beside the input and burns it into the video. The audio stream is copied
// unchanged; the sidecar is removed on every exit path.
func BurnSubtitles(ctx context.Context, videoPath, document, outputPath string, style subtitle.Style) error {
	useASS := UseASSFormat(style)

	sidecar := sidecarPath(videoPath, useASS)
	if err := os.WriteFile(sidecar, []byte(document), 0o644); err != nil {
		return fmt.Errorf("write subtitle sidecar: %w", err)
	}
	defer os.Remove(sidecar)

	config.Log.WithFields(map[string]interface{}{
		"video": videoPath,
		"ass":   useASS,
	}).Info("burning subtitles")

	return runStream(ctx, "subtitle burn", burnStream(videoPath, sidecar, outputPath, useASS, style))
}

func burnStream(videoPath, sidecar, outputPath string, useASS bool, style subtitle.Style) *ffmpeg.Stream {
	return ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"vf":      subtitlesFilter(sidecar, useASS, style),
			"c:v":     config.VideoCodec,
			"preset":  config.VideoPreset,
			"crf":     config.VideoCRF,
			"c:a":     "copy",
			"threads": 0,
		}).
		OverWriteOutput()
}

// sidecarPath derives the temp subtitle path by replacing the input's
// extension marker, keeping the sidecar beside the input file.
func sidecarPath(videoPath string, useASS bool) string {
	ext := "_temp.srt"
	if useASS {
		ext = "_temp.ass"
	}
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ext
}

// escapeFilterPath normalizes separators and escapes colons for ffmpeg's
// filter path syntax.
func escapeFilterPath(path string) string {
	path = filepath.ToSlash(path)
	return strings.ReplaceAll(path, ":", "\\:")
}

// subtitlesFilter builds the -vf expression. The ASS document carries its
// own styling; the SRT path applies the style through force_style.
func subtitlesFilter(sidecar string, useASS bool, style subtitle.Style) string {
	path := escapeFilterPath(sidecar)
	if useASS {
		return fmt.Sprintf("subtitles=%s", path)
	}

	forceStyle := fmt.Sprintf(
		"FontName=%s,FontSize=%d,Bold=1,PrimaryColour=%s,OutlineColour=%s,BackColour=%s,BorderStyle=1,Outline=%d,Shadow=%d,Alignment=2,MarginV=%d",
		style.FontName,
		style.FontSize,
		subtitle.ASSColor(style.PrimaryColor, "00"),
		subtitle.ASSColor(style.OutlineColor, "00"),
		subtitle.ASSColor(style.ShadowColor, "00"),
		style.OutlineWidth,
		style.ShadowOffset,
		style.MarginV,
	)
	return fmt.Sprintf("subtitles=%s:force_style='%s'", path, forceStyle)
}
