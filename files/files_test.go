package files

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFilename(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		want     bool
	}{
		{"captioned result", "abc_captioned.mp4", true},
		{"merged result", "abc_merged.mp4", true},
		{"concat result", "abc_concat.mp4", true},
		{"music result", "abc_with_music.mp4", true},
		{"wrong suffix", "abc.mp4", false},
		{"traversal", "../etc/passwd_captioned.mp4", false},
		{"embedded slash", "a/b_captioned.mp4", false},
		{"backslash", `a\b_captioned.mp4`, false},
		{"empty", "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ValidateFilename(c.filename); got != c.want {
				t.Errorf("ValidateFilename(%q) = %v, want %v", c.filename, got, c.want)
			}
		})
	}
}

func TestVideoPath(t *testing.T) {
	dir := t.TempDir()
	name := "abc_captioned.mp4"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := VideoPath(dir, name); got != filepath.Join(dir, name) {
		t.Errorf("VideoPath = %q", got)
	}
	if got := VideoPath(dir, "missing_captioned.mp4"); got != "" {
		t.Errorf("missing file resolved to %q", got)
	}
	if got := VideoPath(dir, "../"+name); got != "" {
		t.Errorf("traversal resolved to %q", got)
	}
}

func TestDownload(t *testing.T) {
	body := strings.Repeat("v", 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "in.mp4")
	n, err := Download(context.Background(), srv.URL, path, 2048)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if n != int64(len(body)) {
		t.Errorf("wrote %d bytes, want %d", n, len(body))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != body {
		t.Errorf("downloaded content differs")
	}
}

func TestDownloadRejectsAdvertisedSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "4096")
			return
		}
		w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "in.mp4")
	_, err := Download(context.Background(), srv.URL, path, 1024)
	if !errors.Is(err, ErrSizeLimitExceeded) {
		t.Fatalf("err = %v, want ErrSizeLimitExceeded", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("rejected download left a file behind")
	}
}

func TestDownloadRejectsOversizedStream(t *testing.T) {
	// No Content-Length on HEAD: only the streaming limit can catch it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return
		}
		w.(http.Flusher).Flush()
		w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "in.mp4")
	_, err := Download(context.Background(), srv.URL, path, 1024)
	if !errors.Is(err, ErrSizeLimitExceeded) {
		t.Fatalf("err = %v, want ErrSizeLimitExceeded", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("partial file not removed")
	}
}

func TestDownloadStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "in.mp4")
	if _, err := Download(context.Background(), srv.URL, path, 1024); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	if err := CheckDiskSpace(dir, 0); err != nil {
		t.Errorf("zero requirement should pass on any real volume: %v", err)
	}
	// An absurd requirement must fail with the sentinel.
	err := CheckDiskSpace(dir, 1<<60)
	if !errors.Is(err, ErrInsufficientDiskSpace) {
		t.Errorf("err = %v, want ErrInsufficientDiskSpace", err)
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tmp.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	Cleanup(path, "", filepath.Join(dir, "never-existed.mp4"))

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file not removed")
	}
}
