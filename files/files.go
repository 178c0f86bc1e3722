package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"captionforge/config"
)

// ErrSizeLimitExceeded marks a download rejected for exceeding the
// configured file size limit.
var ErrSizeLimitExceeded = errors.New("file size limit exceeded")

// ErrInsufficientDiskSpace marks a task aborted before download because the
// output volume lacks headroom.
var ErrInsufficientDiskSpace = errors.New("insufficient disk space")

// allowedSuffixes is the output filename allowlist; anything else is never
// served or cleaned up by name.
var allowedSuffixes = []string{"_captioned.mp4", "_merged.mp4", "_concat.mp4", "_with_music.mp4"}

// Download fetches url to path, enforcing maxBytes both from the advertised
// Content-Length and while streaming. Partial files are removed on failure.
func Download(ctx context.Context, url, path string, maxBytes int64) (int64, error) {
	if err := checkAdvertisedSize(ctx, url, maxBytes); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	written, err := io.Copy(out, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > maxBytes {
		err = ErrSizeLimitExceeded
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("download %s: %w", url, err)
	}

	config.Log.WithFields(map[string]interface{}{
		"url":   url,
		"path":  path,
		"bytes": written,
	}).Info("download complete")
	return written, nil
}

// checkAdvertisedSize rejects early using a HEAD request. A missing or
// unparsable Content-Length is not an error; the streaming limit still
// applies.
func checkAdvertisedSize(ctx context.Context, url string, maxBytes int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("build size check request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("size check for %s: %w", url, err)
	}
	resp.Body.Close()

	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if size, err := strconv.ParseInt(cl, 10, 64); err == nil && size > maxBytes {
			return fmt.Errorf("%w: %d bytes advertised, limit %d", ErrSizeLimitExceeded, size, maxBytes)
		}
	}
	return nil
}

// DiskSpaceAvailable reports free bytes on the volume holding dir.
func DiskSpaceAvailable(dir string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", dir, err)
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}

// CheckDiskSpace verifies dir's volume has required bytes free plus a fixed
// headroom buffer.
func CheckDiskSpace(dir string, required int64) error {
	available, err := DiskSpaceAvailable(dir)
	if err != nil {
		return err
	}

	needed := required + config.DiskSpaceBuffer
	if available < needed {
		return fmt.Errorf("%w: %dMB available, %dMB required",
			ErrInsufficientDiskSpace, available/(1024*1024), needed/(1024*1024))
	}
	return nil
}

// ValidateFilename rejects traversal attempts and anything outside the
// output filename allowlist.
func ValidateFilename(filename string) bool {
	if strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, `/\`) {
		return false
	}
	for _, suffix := range allowedSuffixes {
		if strings.HasSuffix(filename, suffix) {
			return true
		}
	}
	return false
}

// VideoPath resolves a served filename inside the output directory,
// returning "" when the name is invalid or the file is missing.
func VideoPath(outputDir, filename string) string {
	if !ValidateFilename(filename) {
		config.Log.Warnf("invalid video filename requested: %s", filename)
		return ""
	}

	path := filepath.Join(outputDir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

// Cleanup removes temp files best-effort; failures are logged, never fatal.
func Cleanup(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			config.Log.Warnf("failed to clean up %s: %v", path, err)
			continue
		}
	}
}
