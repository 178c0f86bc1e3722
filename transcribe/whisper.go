package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"captionforge/config"
	"captionforge/subtitle"
)

// Transcriber converts media into ordered, timed speech segments. An empty
// result means no speech was detected and is not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath, language string) ([]subtitle.Segment, error)
}

// WhisperCLI runs the whisper command-line tool. Inference is CPU-bound, so
// a bounded slot channel keeps concurrent tasks from stacking model runs;
// callers block here instead of on the worker's scheduling goroutine.
type WhisperCLI struct {
	ModelSize string
	ModelDir  string

	slots chan struct{}
}

// NewWhisperCLI creates a transcriber for one model size. maxConcurrent
// bounds simultaneous whisper processes; values below 1 are treated as 1.
func NewWhisperCLI(modelSize, modelDir string, maxConcurrent int) (*WhisperCLI, error) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &WhisperCLI{
		ModelSize: modelSize,
		ModelDir:  modelDir,
		slots:     make(chan struct{}, maxConcurrent),
	}, nil
}

// whisperOutput is the JSON document the whisper CLI writes.
type whisperOutput struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe runs whisper over the media file and parses its JSON output.
func (w *WhisperCLI) Transcribe(ctx context.Context, mediaPath, language string) ([]subtitle.Segment, error) {
	select {
	case w.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-w.slots }()

	outDir, err := os.MkdirTemp("", "transcribe-")
	if err != nil {
		return nil, fmt.Errorf("create transcription dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, "whisper", mediaPath,
		"--model", w.ModelSize,
		"--model_dir", w.ModelDir,
		"--language", language,
		"--output_format", "json",
		"--output_dir", outDir,
		"--fp16", "False",
		"--beam_size", "1",
		"--best_of", "1",
		"--verbose", "False",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	config.Log.WithFields(map[string]interface{}{
		"media": mediaPath,
		"model": w.ModelSize,
	}).Info("transcribing")

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]subtitle.Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		segments = append(segments, subtitle.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return segments, nil
}
