package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"captionforge/config"
	"captionforge/events"
	"captionforge/files"
	"captionforge/media"
	"captionforge/subtitle"
	"captionforge/task"
	"captionforge/transcribe"
)

// Default volumes when a task omits them, matching the builders' documented
// behavior: voiceover over quiet original audio, music doubled then mixed
// under the video's own track.
const (
	defaultMergeVideoVolume = 0.2
	defaultMergeAudioVolume = 2.0
	defaultMusicVolume      = 2.0
	defaultMusicVideoVolume = 1.0
)

// StatusStore is the slice of the task store the processor mutates task
// state through. Mutation happens nowhere else.
type StatusStore interface {
	GetTask(id string) (*task.Task, error)
	SetStatus(id string, status task.Status, resultURL, errMsg string) error
}

// EventPublisher pushes lifecycle events; nil disables publishing.
type EventPublisher interface {
	Publish(event events.TaskEvent) error
}

// ResultUploader copies finished videos to object storage; nil disables it.
type ResultUploader interface {
	UploadVideo(ctx context.Context, bucket, key, path string) error
}

// Engine is the external transform engine boundary: each method issues one
// tool invocation built from a filter graph.
type Engine interface {
	Burn(ctx context.Context, videoPath, document, outputPath string, style subtitle.Style) error
	Merge(ctx context.Context, videoPath, audioPath, outputPath string, opts media.MergeOptions) error
	Concat(ctx context.Context, listPath, outputPath string) error
	AddMusic(ctx context.Context, videoPath, musicPath, outputPath string, opts media.MusicOptions) error
	HasAudio(path string) bool
	Duration(path string) float64
}

// DownloadFunc fetches a remote file to a local path under a size limit.
type DownloadFunc func(ctx context.Context, url, path string, maxBytes int64) (int64, error)

// CheckDiskFunc verifies free space before any download happens.
type CheckDiskFunc func(dir string, required int64) error

// Processor executes one task end to end: status transitions, downloads,
// transcription, rendering, and the external-tool invocations. Every temp
// file is owned by exactly one task and released on every exit path.
type Processor struct {
	Settings config.Settings
	Store    StatusStore
	Models   *transcribe.ModelCache
	Engine   Engine
	Events   EventPublisher
	Uploader ResultUploader

	Download  DownloadFunc
	CheckDisk CheckDiskFunc
}

// Process runs the pipeline for t. PENDING -> RUNNING at entry; any step
// failure marks the task FAILED with the causing error's message and stops.
// Retry policy belongs to the scheduler, not this pipeline.
func (p *Processor) Process(ctx context.Context, t *task.Task) {
	log := config.Log.WithField("task_id", t.ID)
	log.Infof("starting %s task", t.Type)

	p.setStatus(log, t.ID, task.StatusRunning, "", "")

	var (
		result string
		err    error
	)
	switch t.Type {
	case task.TypeCaption:
		result, err = p.processCaption(ctx, log, t)
	case task.TypeMerge:
		result, err = p.processMerge(ctx, log, t)
	case task.TypeConcat:
		result, err = p.processConcat(ctx, log, t)
	case task.TypeBackgroundMusic:
		result, err = p.processMusic(ctx, log, t)
	default:
		err = fmt.Errorf("unknown task type: %s", t.Type)
	}

	if err != nil {
		log.Errorf("task failed: %v", err)
		p.setStatus(log, t.ID, task.StatusFailed, "", err.Error())
		p.publish(log, t.ID, task.StatusFailed, err.Error())
		return
	}

	p.setStatus(log, t.ID, task.StatusSucceeded, result, "")
	p.publish(log, t.ID, task.StatusSucceeded, "")
	log.Infof("task succeeded: %s", result)
}

// processCaption: disk check, download, transcribe, render, burn.
func (p *Processor) processCaption(ctx context.Context, log *logrus.Entry, t *task.Task) (string, error) {
	if err := p.CheckDisk(p.Settings.VideoOutputDir, p.Settings.MaxFileSizeBytes()*3); err != nil {
		return "", err
	}

	videoPath := p.tempPath(t.ID, "_input.mp4")
	defer files.Cleanup(videoPath)

	if _, err := p.Download(ctx, t.VideoURL, videoPath, p.Settings.MaxFileSizeBytes()); err != nil {
		return "", err
	}

	model, err := p.Models.Get(ctx, p.Settings.WhisperModelSize)
	if err != nil {
		return "", fmt.Errorf("load transcription model: %w", err)
	}

	segments, err := model.Transcribe(ctx, videoPath, p.Settings.Language)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		log.Warn("no speech detected in video")
	}

	style := subtitle.CaptionStyle()
	if t.Style != nil {
		style = *t.Style
	}

	var document string
	if media.UseASSFormat(style) {
		document = subtitle.WriteASS(segments, style.MaxWordsPerLine, style)
	} else {
		document = subtitle.WriteSRT(segments, style.MaxWordsPerLine)
	}

	outName := t.ID + t.Type.Suffix()
	outPath := filepath.Join(p.Settings.VideoOutputDir, outName)
	if err := p.Engine.Burn(ctx, videoPath, document, outPath, style); err != nil {
		return "", err
	}

	p.uploadResult(ctx, log, outName, outPath)
	return outName, nil
}

// processMerge: download both inputs, probe the video, build the merge graph.
func (p *Processor) processMerge(ctx context.Context, log *logrus.Entry, t *task.Task) (string, error) {
	if err := p.CheckDisk(p.Settings.VideoOutputDir, p.Settings.MaxFileSizeBytes()*3); err != nil {
		return "", err
	}

	videoPath := p.tempPath(t.ID, "_input.mp4")
	audioPath := p.tempPath(t.ID, "_audio.mp3")
	defer files.Cleanup(videoPath, audioPath)

	if _, err := p.Download(ctx, t.VideoURL, videoPath, p.Settings.MaxFileSizeBytes()); err != nil {
		return "", err
	}
	if _, err := p.Download(ctx, t.AudioURL, audioPath, p.Settings.MaxFileSizeBytes()); err != nil {
		return "", err
	}

	resizeMode := t.ResizeMode
	if resizeMode == "" {
		resizeMode = media.ResizeCover
	}

	opts := media.MergeOptions{
		VideoVolume: floatOr(t.VideoVolume, defaultMergeVideoVolume),
		AudioVolume: floatOr(t.AudioVolume, defaultMergeAudioVolume),
		Duration:    p.Engine.Duration(audioPath),
		Width:       intOr(t.Width, config.VideoWidth),
		Height:      intOr(t.Height, config.VideoHeight),
		ResizeMode:  resizeMode,
		HasAudio:    p.Engine.HasAudio(videoPath),
	}

	outName := t.ID + t.Type.Suffix()
	outPath := filepath.Join(p.Settings.VideoOutputDir, outName)
	if err := p.Engine.Merge(ctx, videoPath, audioPath, outPath, opts); err != nil {
		return "", err
	}

	p.uploadResult(ctx, log, outName, outPath)
	return outName, nil
}

// processConcat: download every part, write the manifest, stream-copy.
func (p *Processor) processConcat(ctx context.Context, log *logrus.Entry, t *task.Task) (string, error) {
	if len(t.VideoURLs) < 2 {
		return "", fmt.Errorf("concat requires at least 2 videos, got %d", len(t.VideoURLs))
	}

	required := p.Settings.MaxFileSizeBytes() * int64(len(t.VideoURLs)+1)
	if err := p.CheckDisk(p.Settings.VideoOutputDir, required); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(t.VideoURLs))
	defer func() { files.Cleanup(parts...) }()

	for i, url := range t.VideoURLs {
		part := p.tempPath(t.ID, fmt.Sprintf("_part%d.mp4", i))
		if _, err := p.Download(ctx, url, part, p.Settings.MaxFileSizeBytes()); err != nil {
			return "", err
		}
		parts = append(parts, part)
	}

	manifest, err := media.WriteConcatManifest(os.TempDir(), t.ID, parts)
	if err != nil {
		return "", err
	}
	defer files.Cleanup(manifest)

	outName := t.ID + t.Type.Suffix()
	outPath := filepath.Join(p.Settings.VideoOutputDir, outName)
	if err := p.Engine.Concat(ctx, manifest, outPath); err != nil {
		return "", err
	}

	p.uploadResult(ctx, log, outName, outPath)
	return outName, nil
}

// processMusic: download inputs, mix music under the video's own audio.
func (p *Processor) processMusic(ctx context.Context, log *logrus.Entry, t *task.Task) (string, error) {
	if err := p.CheckDisk(p.Settings.VideoOutputDir, p.Settings.MaxFileSizeBytes()*3); err != nil {
		return "", err
	}

	videoPath := p.tempPath(t.ID, "_input.mp4")
	musicPath := p.tempPath(t.ID, "_music.mp3")
	defer files.Cleanup(videoPath, musicPath)

	if _, err := p.Download(ctx, t.VideoURL, videoPath, p.Settings.MaxFileSizeBytes()); err != nil {
		return "", err
	}
	if _, err := p.Download(ctx, t.MusicURL, musicPath, p.Settings.MaxFileSizeBytes()); err != nil {
		return "", err
	}

	opts := media.MusicOptions{
		MusicVolume: floatOr(t.MusicVolume, defaultMusicVolume),
		VideoVolume: floatOr(t.VideoVolume, defaultMusicVideoVolume),
	}

	outName := t.ID + t.Type.Suffix()
	outPath := filepath.Join(p.Settings.VideoOutputDir, outName)
	if err := p.Engine.AddMusic(ctx, videoPath, musicPath, outPath, opts); err != nil {
		return "", err
	}

	p.uploadResult(ctx, log, outName, outPath)
	return outName, nil
}

// setStatus is best-effort: a status-store failure is logged, never retried,
// and never fails the pipeline itself.
func (p *Processor) setStatus(log *logrus.Entry, id string, status task.Status, resultURL, errMsg string) {
	if err := p.Store.SetStatus(id, status, resultURL, errMsg); err != nil {
		log.Errorf("failed to set status %s: %v", status, err)
	}
}

func (p *Processor) publish(log *logrus.Entry, id string, status task.Status, errMsg string) {
	if p.Events == nil {
		return
	}
	event := events.TaskEvent{TaskID: id, Status: status, Error: errMsg, At: time.Now().UTC()}
	if err := p.Events.Publish(event); err != nil {
		log.Warnf("failed to publish %s event: %v", status, err)
	}
}

// uploadResult pushes the finished video to object storage when configured.
// Upload failures don't fail the task; the file is still served locally.
func (p *Processor) uploadResult(ctx context.Context, log *logrus.Entry, name, path string) {
	if p.Uploader == nil || p.Settings.S3Bucket == "" {
		return
	}
	key := p.Settings.S3Prefix + "videos/" + name
	if err := p.Uploader.UploadVideo(ctx, p.Settings.S3Bucket, key, path); err != nil {
		log.Warnf("s3 upload failed: %v", err)
		return
	}
	log.Infof("uploaded result to s3://%s/%s", p.Settings.S3Bucket, key)
}

func (p *Processor) tempPath(id, suffix string) string {
	return filepath.Join(os.TempDir(), id+suffix)
}

func floatOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}
