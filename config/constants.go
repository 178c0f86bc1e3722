package config

// Canvas and encode constants shared by the filter-graph builders.
const (
	// VideoWidth is the output canvas width (9:16 vertical)
	VideoWidth = 1080

	// VideoHeight is the output canvas height (9:16 vertical)
	VideoHeight = 1920

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "ultrafast"

	// VideoCRF is the constant-rate-factor quality setting
	VideoCRF = 23

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// MergeAudioBitrate is the audio bitrate for merged voiceover tracks
	MergeAudioBitrate = "128k"

	// MusicAudioBitrate is the audio bitrate for background-music mixes
	MusicAudioBitrate = "192k"

	// AudioSampleRate is the output audio sample rate in Hz
	AudioSampleRate = 48000

	// AudioChannels is the output channel count (stereo)
	AudioChannels = 2
)

// Loudness normalization targets for background music (EBU R128).
const (
	LoudnormIntegrated    = -16
	LoudnormTruePeak      = -1.5
	LoudnormLoudnessRange = 11
)

const (
	// FallbackDuration is the duration in seconds assumed when ffprobe
	// cannot determine one. Callers log the fallback so a probe failure is
	// distinguishable from a real five-second video.
	FallbackDuration = 5.0

	// DiskSpaceBuffer is extra headroom required beyond a task's estimated
	// footprint, in bytes.
	DiskSpaceBuffer = 100 * 1024 * 1024
)
