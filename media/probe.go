package media

import (
	"encoding/json"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/config"
)

// probeResult captures the ffprobe JSON fields the builders care about.
type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// HasAudio reports whether the file has at least one audio stream. A probe
// failure is treated as "no audio", never as an error.
func HasAudio(path string) bool {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		config.Log.WithField("path", path).Warnf("audio probe failed, assuming no audio: %v", err)
		return false
	}

	var result probeResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		config.Log.WithField("path", path).Warnf("audio probe unmarshal failed, assuming no audio: %v", err)
		return false
	}

	for _, s := range result.Streams {
		if s.CodecType == "audio" {
			return true
		}
	}
	return false
}

// Duration returns the file's duration in seconds. When ffprobe cannot
// determine one, the documented fallback of config.FallbackDuration seconds
// is returned and logged so it is distinguishable from a real short video.
func Duration(path string) float64 {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return fallbackDuration(path, err)
	}

	var result probeResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return fallbackDuration(path, err)
	}

	d, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return fallbackDuration(path, err)
	}
	return d
}

func fallbackDuration(path string, err error) float64 {
	config.Log.WithField("path", path).
		Warnf("duration probe failed, falling back to %.1fs: %v", config.FallbackDuration, err)
	return config.FallbackDuration
}
