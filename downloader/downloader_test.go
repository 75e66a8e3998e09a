package downloader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testDownloader(t *testing.T) *Downloader {
	t.Helper()
	return New("yt-dlp", t.TempDir(), "", time.Minute, logrus.New())
}

func TestDownloader_Args(t *testing.T) {
	d := testDownloader(t)
	url := "https://www.youtube.com/watch?v=abc123def45"
	args := d.Args(url)

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-f best[ext=mp4]") {
		t.Errorf("args missing format selector: %v", args)
	}
	if !strings.Contains(joined, "--no-playlist") {
		t.Errorf("args missing --no-playlist: %v", args)
	}
	if strings.Contains(joined, "--cookies") {
		t.Errorf("cookies flag present without a cookies file: %v", args)
	}
	if args[len(args)-1] != url {
		t.Errorf("url must be the last argument, got %q", args[len(args)-1])
	}
}

func TestDownloader_Args_Cookies(t *testing.T) {
	d := testDownloader(t)
	cookies := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(cookies, []byte("# Netscape HTTP Cookie File\n"), 0600); err != nil {
		t.Fatal(err)
	}
	d.CookiesFile = cookies

	joined := strings.Join(d.Args("https://example.com/v"), " ")
	if !strings.Contains(joined, "--cookies "+cookies) {
		t.Errorf("cookies flag missing: %v", joined)
	}

	// a configured but absent file must not be passed through
	d.CookiesFile = filepath.Join(t.TempDir(), "missing.txt")
	joined = strings.Join(d.Args("https://example.com/v"), " ")
	if strings.Contains(joined, "--cookies") {
		t.Errorf("cookies flag present for missing file: %v", joined)
	}
}

func TestDownloader_Args_FfmpegLocation(t *testing.T) {
	d := testDownloader(t)

	joined := strings.Join(d.Args("https://example.com/v"), " ")
	if strings.Contains(joined, "--ffmpeg-location") {
		t.Errorf("ffmpeg location passed without an override: %v", joined)
	}

	d.FfmpegBin = "ffmpeg"
	joined = strings.Join(d.Args("https://example.com/v"), " ")
	if strings.Contains(joined, "--ffmpeg-location") {
		t.Errorf("bare command name must not be passed as a location: %v", joined)
	}

	d.FfmpegBin = "/opt/ffmpeg/bin/ffmpeg"
	joined = strings.Join(d.Args("https://example.com/v"), " ")
	if !strings.Contains(joined, "--ffmpeg-location /opt/ffmpeg/bin/ffmpeg") {
		t.Errorf("ffmpeg location missing: %v", joined)
	}
}

func TestDownloader_OutputFile(t *testing.T) {
	d := testDownloader(t)

	tests := []struct {
		name    string
		files   []string
		want    string
		wantErr bool
	}{
		{"finished_mp4", []string{"vid001abcde.mp4"}, "vid001abcde.mp4", false},
		{"skips_partial", []string{"vid001abcde.mp4.part", "vid001abcde.mp4"}, "vid001abcde.mp4", false},
		{"only_partial", []string{"vid001abcde.mp4.part"}, "", true},
		{"nothing", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.ScratchDir = t.TempDir()
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(d.ScratchDir, f), []byte("x"), 0600); err != nil {
					t.Fatal(err)
				}
			}
			got, err := d.OutputFile("vid001abcde")
			if (err != nil) != tt.wantErr {
				t.Fatalf("OutputFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && got != filepath.Join(d.ScratchDir, tt.want) {
				t.Errorf("OutputFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownloader_Cleanup(t *testing.T) {
	d := testDownloader(t)
	for _, f := range []string{"vid001abcde.mp4", "vid001abcde.mp4.part", "other123456.mp4"} {
		if err := os.WriteFile(filepath.Join(d.ScratchDir, f), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	d.Cleanup("vid001abcde")

	if _, err := os.Stat(filepath.Join(d.ScratchDir, "vid001abcde.mp4")); !os.IsNotExist(err) {
		t.Error("finished file survived cleanup")
	}
	if _, err := os.Stat(filepath.Join(d.ScratchDir, "vid001abcde.mp4.part")); !os.IsNotExist(err) {
		t.Error("partial file survived cleanup")
	}
	if _, err := os.Stat(filepath.Join(d.ScratchDir, "other123456.mp4")); err != nil {
		t.Error("cleanup removed an unrelated video's file")
	}
}
