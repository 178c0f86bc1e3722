package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captionforge/config"
	"captionforge/events"
	"captionforge/media"
	"captionforge/subtitle"
	"captionforge/task"
	"captionforge/transcribe"
)

type statusChange struct {
	status    task.Status
	resultURL string
	errMsg    string
}

type fakeStore struct {
	changes []statusChange
}

func (s *fakeStore) GetTask(id string) (*task.Task, error) { return nil, errors.New("not used") }

func (s *fakeStore) SetStatus(id string, status task.Status, resultURL, errMsg string) error {
	s.changes = append(s.changes, statusChange{status, resultURL, errMsg})
	return nil
}

type fakeEngine struct {
	burned   bool
	merged   bool
	concated bool
	mixed    bool

	burnDocument string
	burnStyle    subtitle.Style
	mergeOpts    media.MergeOptions
	musicOpts    media.MusicOptions

	hasAudio bool
	duration float64
	err      error
}

func (e *fakeEngine) Burn(ctx context.Context, videoPath, document, outputPath string, style subtitle.Style) error {
	e.burned = true
	e.burnDocument = document
	e.burnStyle = style
	return e.err
}

func (e *fakeEngine) Merge(ctx context.Context, videoPath, audioPath, outputPath string, opts media.MergeOptions) error {
	e.merged = true
	e.mergeOpts = opts
	return e.err
}

func (e *fakeEngine) Concat(ctx context.Context, listPath, outputPath string) error {
	e.concated = true
	return e.err
}

func (e *fakeEngine) AddMusic(ctx context.Context, videoPath, musicPath, outputPath string, opts media.MusicOptions) error {
	e.mixed = true
	e.musicOpts = opts
	return e.err
}

func (e *fakeEngine) HasAudio(path string) bool { return e.hasAudio }
func (e *fakeEngine) Duration(path string) float64 { return e.duration }

type fakePublisher struct {
	events []events.TaskEvent
}

func (p *fakePublisher) Publish(event events.TaskEvent) error {
	p.events = append(p.events, event)
	return nil
}

type fixedTranscriber struct {
	segments []subtitle.Segment
}

func (f *fixedTranscriber) Transcribe(ctx context.Context, mediaPath, language string) ([]subtitle.Segment, error) {
	return f.segments, nil
}

func okDownload(ctx context.Context, url, path string, maxBytes int64) (int64, error) {
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		return 0, err
	}
	return 5, nil
}

func okDisk(dir string, required int64) error { return nil }

func newTestProcessor(t *testing.T, engine *fakeEngine) (*Processor, *fakeStore, *fakePublisher) {
	t.Helper()
	store := &fakeStore{}
	pub := &fakePublisher{}

	settings := config.Load()
	settings.VideoOutputDir = t.TempDir()

	p := &Processor{
		Settings: settings,
		Store:    store,
		Models: transcribe.NewModelCache(func(ctx context.Context, size string) (transcribe.Transcriber, error) {
			return &fixedTranscriber{segments: []subtitle.Segment{{Start: 0, End: 1, Text: "hello world"}}}, nil
		}),
		Engine:    engine,
		Events:    pub,
		Download:  okDownload,
		CheckDisk: okDisk,
	}
	return p, store, pub
}

func TestProcessCaptionSucceeds(t *testing.T) {
	engine := &fakeEngine{}
	p, store, pub := newTestProcessor(t, engine)

	p.Process(context.Background(), &task.Task{ID: "t1", Type: task.TypeCaption, VideoURL: "http://example/v.mp4"})

	if !engine.burned {
		t.Fatal("burn never invoked")
	}
	if !strings.Contains(engine.burnDocument, "[Script Info]") {
		t.Errorf("burn document is not an ASS render:\n%s", engine.burnDocument)
	}
	if engine.burnStyle.FontSize != 70 {
		t.Errorf("burn style font size = %d, want the caption default 70", engine.burnStyle.FontSize)
	}

	if len(store.changes) != 2 {
		t.Fatalf("got %d status changes, want RUNNING then SUCCEEDED: %+v", len(store.changes), store.changes)
	}
	if store.changes[0].status != task.StatusRunning {
		t.Errorf("first transition = %s, want RUNNING", store.changes[0].status)
	}
	last := store.changes[1]
	if last.status != task.StatusSucceeded {
		t.Errorf("final transition = %s, want SUCCEEDED", last.status)
	}
	if last.resultURL != "t1_captioned.mp4" {
		t.Errorf("result = %q, want t1_captioned.mp4", last.resultURL)
	}

	if len(pub.events) != 1 || pub.events[0].Status != task.StatusSucceeded {
		t.Errorf("published events = %+v, want one SUCCEEDED", pub.events)
	}
}

func TestProcessCaptionStyleOverride(t *testing.T) {
	engine := &fakeEngine{}
	p, _, _ := newTestProcessor(t, engine)

	style := subtitle.DefaultStyle()
	style.FontSize = 44
	style.Highlight = subtitle.HighlightFirst

	p.Process(context.Background(), &task.Task{
		ID:       "t2",
		Type:     task.TypeCaption,
		VideoURL: "http://example/v.mp4",
		Style:    &style,
	})

	if engine.burnStyle.FontSize != 44 {
		t.Errorf("burn style font size = %d, want override 44", engine.burnStyle.FontSize)
	}
	if engine.burnStyle.Highlight != subtitle.HighlightFirst {
		t.Errorf("burn style highlight = %q, want first", engine.burnStyle.Highlight)
	}
}

func TestProcessFailureMarksTask(t *testing.T) {
	engine := &fakeEngine{err: errors.New("encode exploded")}
	p, store, pub := newTestProcessor(t, engine)

	p.Process(context.Background(), &task.Task{ID: "t3", Type: task.TypeCaption, VideoURL: "http://example/v.mp4"})

	last := store.changes[len(store.changes)-1]
	if last.status != task.StatusFailed {
		t.Fatalf("final transition = %s, want FAILED", last.status)
	}
	if !strings.Contains(last.errMsg, "encode exploded") {
		t.Errorf("error message = %q, want the engine error", last.errMsg)
	}
	if len(pub.events) != 1 || pub.events[0].Status != task.StatusFailed {
		t.Errorf("published events = %+v, want one FAILED", pub.events)
	}
}

func TestProcessMergeDefaults(t *testing.T) {
	engine := &fakeEngine{hasAudio: true, duration: 9}
	p, store, _ := newTestProcessor(t, engine)

	p.Process(context.Background(), &task.Task{
		ID:       "t4",
		Type:     task.TypeMerge,
		VideoURL: "http://example/v.mp4",
		AudioURL: "http://example/a.mp3",
	})

	if !engine.merged {
		t.Fatal("merge never invoked")
	}
	opts := engine.mergeOpts
	if opts.VideoVolume != defaultMergeVideoVolume || opts.AudioVolume != defaultMergeAudioVolume {
		t.Errorf("volumes = %v/%v, want defaults %v/%v",
			opts.VideoVolume, opts.AudioVolume, defaultMergeVideoVolume, defaultMergeAudioVolume)
	}
	if opts.Duration != 9 {
		t.Errorf("duration = %v, want the probed 9", opts.Duration)
	}
	if !opts.HasAudio {
		t.Error("probed audio flag not forwarded")
	}
	if opts.Width != config.VideoWidth || opts.Height != config.VideoHeight {
		t.Errorf("canvas = %dx%d, want %dx%d", opts.Width, opts.Height, config.VideoWidth, config.VideoHeight)
	}
	if opts.ResizeMode != media.ResizeCover {
		t.Errorf("resize mode = %q, want cover default", opts.ResizeMode)
	}

	last := store.changes[len(store.changes)-1]
	if last.status != task.StatusSucceeded || last.resultURL != "t4_merged.mp4" {
		t.Errorf("final transition = %+v", last)
	}
}

func TestProcessMergeExplicitOptions(t *testing.T) {
	engine := &fakeEngine{duration: 3}
	p, _, _ := newTestProcessor(t, engine)

	vv, av := 0.5, 1.5
	w, h := 720, 1280
	p.Process(context.Background(), &task.Task{
		ID:          "t5",
		Type:        task.TypeMerge,
		VideoURL:    "http://example/v.mp4",
		AudioURL:    "http://example/a.mp3",
		VideoVolume: &vv,
		AudioVolume: &av,
		Width:       &w,
		Height:      &h,
		ResizeMode:  media.ResizeContain,
	})

	opts := engine.mergeOpts
	if opts.VideoVolume != 0.5 || opts.AudioVolume != 1.5 {
		t.Errorf("volumes = %v/%v, want 0.5/1.5", opts.VideoVolume, opts.AudioVolume)
	}
	if opts.Width != 720 || opts.Height != 1280 {
		t.Errorf("canvas = %dx%d, want 720x1280", opts.Width, opts.Height)
	}
	if opts.ResizeMode != media.ResizeContain {
		t.Errorf("resize mode = %q, want contain", opts.ResizeMode)
	}
}

func TestProcessConcatRequiresTwoInputs(t *testing.T) {
	engine := &fakeEngine{}
	p, store, _ := newTestProcessor(t, engine)

	p.Process(context.Background(), &task.Task{
		ID:        "t6",
		Type:      task.TypeConcat,
		VideoURLs: []string{"http://example/only.mp4"},
	})

	last := store.changes[len(store.changes)-1]
	if last.status != task.StatusFailed {
		t.Fatalf("final transition = %s, want FAILED", last.status)
	}
	if !strings.Contains(last.errMsg, "at least 2") {
		t.Errorf("error message = %q", last.errMsg)
	}
	if engine.concated {
		t.Error("concat invoked despite invalid input")
	}
}

func TestProcessConcatSucceeds(t *testing.T) {
	engine := &fakeEngine{}
	p, store, _ := newTestProcessor(t, engine)

	p.Process(context.Background(), &task.Task{
		ID:        "t7",
		Type:      task.TypeConcat,
		VideoURLs: []string{"http://example/a.mp4", "http://example/b.mp4"},
	})

	if !engine.concated {
		t.Fatal("concat never invoked")
	}
	last := store.changes[len(store.changes)-1]
	if last.status != task.StatusSucceeded || last.resultURL != "t7_concat.mp4" {
		t.Errorf("final transition = %+v", last)
	}

	// Downloaded parts and the manifest are cleaned up.
	if _, err := os.Stat(filepath.Join(os.TempDir(), "t7_part0.mp4")); !os.IsNotExist(err) {
		t.Error("part file not cleaned up")
	}
	if _, err := os.Stat(filepath.Join(os.TempDir(), "t7_concat.txt")); !os.IsNotExist(err) {
		t.Error("manifest not cleaned up")
	}
}

func TestProcessMusicDefaults(t *testing.T) {
	engine := &fakeEngine{duration: 20}
	p, store, _ := newTestProcessor(t, engine)

	p.Process(context.Background(), &task.Task{
		ID:       "t8",
		Type:     task.TypeBackgroundMusic,
		VideoURL: "http://example/v.mp4",
		MusicURL: "http://example/m.mp3",
	})

	if !engine.mixed {
		t.Fatal("music mix never invoked")
	}
	opts := engine.musicOpts
	if opts.MusicVolume != defaultMusicVolume || opts.VideoVolume != defaultMusicVideoVolume {
		t.Errorf("volumes = %v/%v, want defaults %v/%v",
			opts.MusicVolume, opts.VideoVolume, defaultMusicVolume, defaultMusicVideoVolume)
	}
	last := store.changes[len(store.changes)-1]
	if last.status != task.StatusSucceeded || last.resultURL != "t8_with_music.mp4" {
		t.Errorf("final transition = %+v", last)
	}
}

func TestProcessUnknownType(t *testing.T) {
	engine := &fakeEngine{}
	p, store, _ := newTestProcessor(t, engine)

	p.Process(context.Background(), &task.Task{ID: "t9", Type: "transcode"})

	last := store.changes[len(store.changes)-1]
	if last.status != task.StatusFailed {
		t.Fatalf("final transition = %s, want FAILED", last.status)
	}
	if !strings.Contains(last.errMsg, "unknown task type") {
		t.Errorf("error message = %q", last.errMsg)
	}
}

func TestProcessDiskCheckFailureStopsEarly(t *testing.T) {
	engine := &fakeEngine{}
	p, store, _ := newTestProcessor(t, engine)
	p.CheckDisk = func(dir string, required int64) error {
		return errors.New("insufficient disk space")
	}
	downloaded := false
	p.Download = func(ctx context.Context, url, path string, maxBytes int64) (int64, error) {
		downloaded = true
		return 0, nil
	}

	p.Process(context.Background(), &task.Task{ID: "t10", Type: task.TypeCaption, VideoURL: "http://example/v.mp4"})

	if downloaded {
		t.Error("download attempted after disk check failure")
	}
	last := store.changes[len(store.changes)-1]
	if last.status != task.StatusFailed {
		t.Errorf("final transition = %s, want FAILED", last.status)
	}
}
