package worker

import (
	"context"

	"captionforge/media"
	"captionforge/subtitle"
)

// FFmpegEngine is the production Engine backed by the media package's
// filter-graph builders.
type FFmpegEngine struct{}

func (FFmpegEngine) Burn(ctx context.Context, videoPath, document, outputPath string, style subtitle.Style) error {
	return media.BurnSubtitles(ctx, videoPath, document, outputPath, style)
}

func (FFmpegEngine) Merge(ctx context.Context, videoPath, audioPath, outputPath string, opts media.MergeOptions) error {
	return media.MergeVideoAudio(ctx, videoPath, audioPath, outputPath, opts)
}

func (FFmpegEngine) Concat(ctx context.Context, listPath, outputPath string) error {
	return media.ConcatVideos(ctx, listPath, outputPath)
}

func (FFmpegEngine) AddMusic(ctx context.Context, videoPath, musicPath, outputPath string, opts media.MusicOptions) error {
	return media.AddBackgroundMusic(ctx, videoPath, musicPath, outputPath, opts)
}

func (FFmpegEngine) HasAudio(path string) bool {
	return media.HasAudio(path)
}

func (FFmpegEngine) Duration(path string) float64 {
	return media.Duration(path)
}
