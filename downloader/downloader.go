// Package downloader shells out to the yt-dlp binary to fetch a single
// merged MP4 per video. The binary, not a reimplementation, is the contract:
// the runtime image ships yt-dlp and ffmpeg alongside the service.
package downloader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shortcast/shortcast/apperr"
)

// Format asks for a single file that already carries both audio and video,
// so no ffmpeg merge step is needed afterwards.
const Format = "best[ext=mp4]"

const retryBackoff = 2 * time.Second

// Downloader drives the yt-dlp binary.
type Downloader struct {
	Bin         string
	ScratchDir  string
	CookiesFile string
	// FfmpegBin, when set to something other than the bare command name,
	// is handed to yt-dlp as --ffmpeg-location.
	FfmpegBin string
	Timeout   time.Duration
	Logger    *logrus.Logger
}

func New(bin, scratchDir, cookiesFile string, timeout time.Duration, logger *logrus.Logger) *Downloader {
	return &Downloader{
		Bin:         bin,
		ScratchDir:  scratchDir,
		CookiesFile: cookiesFile,
		Timeout:     timeout,
		Logger:      logger,
	}
}

// Args builds the yt-dlp invocation for one video. The output template keys
// files by video id so OutputFile can find them again.
func (d *Downloader) Args(videoURL string) []string {
	args := []string{
		"-f", Format,
		"-o", filepath.Join(d.ScratchDir, "%(id)s.%(ext)s"),
		"--no-playlist",
		"--no-warnings",
		"--quiet",
	}
	if d.CookiesFile != "" {
		if _, err := os.Stat(d.CookiesFile); err == nil {
			args = append(args, "--cookies", d.CookiesFile)
		}
	}
	if d.FfmpegBin != "" && d.FfmpegBin != "ffmpeg" {
		args = append(args, "--ffmpeg-location", d.FfmpegBin)
	}
	return append(args, videoURL)
}

// Fetch downloads one video and returns the path of the finished file. It
// retries once; a video with no merged format errors out and the caller
// moves on to the next candidate.
func (d *Downloader) Fetch(ctx context.Context, videoID, videoURL string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			d.Logger.WithFields(logrus.Fields{
				"video_id": videoID,
				"attempt":  attempt + 1,
			}).Info("retrying download")
		}
		if err := d.run(ctx, videoURL); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		return d.OutputFile(videoID)
	}
	return "", apperr.Wrap(lastErr, apperr.ErrDownload, fmt.Sprintf("yt-dlp failed for %s", videoID))
}

func (d *Downloader) run(ctx context.Context, videoURL string) error {
	runCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, d.Bin, d.Args(videoURL)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// OutputFile finds the downloaded file for a video id, skipping partials
// yt-dlp may have left behind.
func (d *Downloader) OutputFile(videoID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(d.ScratchDir, videoID+".*"))
	if err != nil {
		return "", err
	}
	for _, match := range matches {
		if strings.HasSuffix(match, ".part") || strings.HasSuffix(match, ".ytdl") {
			continue
		}
		return match, nil
	}
	return "", apperr.Wrap(os.ErrNotExist, apperr.ErrDownload, fmt.Sprintf("no finished file for %s", videoID))
}

// Cleanup removes every scratch file belonging to a video id, partials
// included. Errors are logged, not returned; leftover files only cost disk.
func (d *Downloader) Cleanup(videoID string) {
	matches, err := filepath.Glob(filepath.Join(d.ScratchDir, videoID+".*"))
	if err != nil {
		return
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			d.Logger.WithFields(logrus.Fields{
				"file":  match,
				"error": err.Error(),
			}).Info("could not remove scratch file")
		}
	}
}

// Version runs yt-dlp --version, the startup check that the binary the
// image promises is actually on PATH.
func (d *Downloader) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, d.Bin, "--version").Output()
	if err != nil {
		return "", apperr.Wrap(err, apperr.ErrToolMissing, "yt-dlp is not available")
	}
	return strings.TrimSpace(string(out)), nil
}
