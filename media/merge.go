package media

import (
	"context"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/config"
)

// Resize modes for fitting source video into the target canvas.
const (
	ResizeCover   = "cover"   // scale up and center-crop
	ResizeContain = "contain" // scale down and pad
)

// MergeOptions controls the video+audio merge graph.
type MergeOptions struct {
	VideoVolume float64
	AudioVolume float64
	Duration    float64
	Width       int
	Height      int
	ResizeMode  string
	// HasAudio is the result of probing the input video; when false the
	// original audio stage is skipped entirely.
	HasAudio bool
}

// MergeVideoAudio scales the video to the target canvas and mixes (or
// replaces) its audio with a new track, trimming the output to
// opts.Duration.
func MergeVideoAudio(ctx context.Context, videoPath, audioPath, outputPath string, opts MergeOptions) error {
	config.Log.WithFields(map[string]interface{}{
		"video":     videoPath,
		"audio":     audioPath,
		"has_audio": opts.HasAudio,
	}).Info("merging video and audio")

	return runStream(ctx, "merge", mergeStream(videoPath, audioPath, outputPath, opts))
}

func mergeStream(videoPath, audioPath, outputPath string, opts MergeOptions) *ffmpeg.Stream {
	video := ffmpeg.Input(videoPath)
	audio := ffmpeg.Input(audioPath)

	scaled := scaleStream(video.Video(), opts)

	voiceover := audio.Audio().
		Filter("volume", ffmpeg.Args{formatVolume(opts.AudioVolume)}).
		Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": formatSeconds(opts.Duration)}).
		Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"})

	mixed := voiceover
	if opts.HasAudio {
		original := video.Audio().
			Filter("volume", ffmpeg.Args{formatVolume(opts.VideoVolume)})
		mixed = ffmpeg.Filter([]*ffmpeg.Stream{original, voiceover}, "amix", ffmpeg.Args{},
			ffmpeg.KwArgs{"inputs": 2, "duration": "first"})
	}

	return ffmpeg.Output([]*ffmpeg.Stream{scaled, mixed}, outputPath, ffmpeg.KwArgs{
		"t":       formatSeconds(opts.Duration),
		"c:v":     config.VideoCodec,
		"preset":  config.VideoPreset,
		"crf":     config.VideoCRF,
		"c:a":     config.AudioCodec,
		"b:a":     config.MergeAudioBitrate,
		"ar":      config.AudioSampleRate,
		"ac":      config.AudioChannels,
		"threads": 0,
	}).OverWriteOutput()
}

// scaleStream fits the video into the target canvas: cover scales up and
// center-crops, contain scales down and pads.
func scaleStream(video *ffmpeg.Stream, opts MergeOptions) *ffmpeg.Stream {
	size := fmt.Sprintf("%d:%d", opts.Width, opts.Height)

	if opts.ResizeMode == ResizeContain {
		return video.
			Filter("scale", ffmpeg.Args{size}, ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"}).
			Filter("pad", ffmpeg.Args{fmt.Sprintf("%d:%d:(ow-iw)/2:(oh-ih)/2", opts.Width, opts.Height)})
	}

	return video.
		Filter("scale", ffmpeg.Args{size}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{size})
}
