package media

import (
	"context"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/config"
)

// MusicOptions controls the background-music mix.
type MusicOptions struct {
	MusicVolume float64
	VideoVolume float64
}

// AddBackgroundMusic loudness-normalizes the music track, loops it for the
// probed video duration, and mixes it under the video's own audio. The video
// stream is copied untouched and the output follows the shorter input.
func AddBackgroundMusic(ctx context.Context, videoPath, musicPath, outputPath string, opts MusicOptions) error {
	duration := Duration(videoPath)

	config.Log.WithFields(map[string]interface{}{
		"video":    videoPath,
		"music":    musicPath,
		"duration": duration,
	}).Info("adding background music")

	return runStream(ctx, "background music", musicStream(videoPath, musicPath, outputPath, duration, opts))
}

func musicStream(videoPath, musicPath, outputPath string, duration float64, opts MusicOptions) *ffmpeg.Stream {
	video := ffmpeg.Input(videoPath)
	music := ffmpeg.Input(musicPath)

	normalized := music.Audio().
		Filter("loudnorm", ffmpeg.Args{}, ffmpeg.KwArgs{
			"I":   config.LoudnormIntegrated,
			"TP":  config.LoudnormTruePeak,
			"LRA": config.LoudnormLoudnessRange,
		}).
		Filter("volume", ffmpeg.Args{formatVolume(opts.MusicVolume)}).
		Filter("aloop", ffmpeg.Args{}, ffmpeg.KwArgs{"loop": -1, "size": "2e+09"}).
		Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": formatSeconds(duration)})

	original := video.Audio().
		Filter("volume", ffmpeg.Args{formatVolume(opts.VideoVolume)})

	mixed := ffmpeg.Filter([]*ffmpeg.Stream{original, normalized}, "amix", ffmpeg.Args{},
		ffmpeg.KwArgs{"inputs": 2, "duration": "first", "dropout_transition": 2})

	return ffmpeg.Output([]*ffmpeg.Stream{video.Video(), mixed}, outputPath, ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      config.AudioCodec,
		"b:a":      config.MusicAudioBitrate,
		"ar":       config.AudioSampleRate,
		"shortest": "",
	}).OverWriteOutput()
}
