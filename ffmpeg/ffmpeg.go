// Package ffmpeg wraps the ffprobe binary the runtime image ships. The
// pipeline uses it as a gate before uploading: a file yt-dlp produced must
// actually contain a video stream and a believable duration.
package ffmpeg

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shortcast/shortcast/apperr"
)

// Prober runs ffprobe against local files.
type Prober struct {
	Bin string
}

func NewProber(bin string) *Prober {
	return &Prober{Bin: bin}
}

// ProbeResult is the subset of ffprobe output the pipeline cares about.
type ProbeResult struct {
	Duration time.Duration
	HasVideo bool
	HasAudio bool
}

// Playable reports whether the file is worth sending to the channel.
func (p ProbeResult) Playable() bool {
	return p.HasVideo && p.Duration > 0
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// Probe inspects path with ffprobe and reports streams and duration.
func (p *Prober) Probe(ctx context.Context, path string) (ProbeResult, error) {
	out, err := exec.CommandContext(ctx, p.Bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		return ProbeResult{}, apperr.Wrap(err, apperr.ErrProbe, "ffprobe failed for "+path)
	}
	return ParseProbeOutput(out)
}

// ParseProbeOutput decodes ffprobe's JSON report.
func ParseProbeOutput(data []byte) (ProbeResult, error) {
	var raw probeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return ProbeResult{}, apperr.Wrap(err, apperr.ErrProbe, "unparseable ffprobe output")
	}
	var result ProbeResult
	if raw.Format.Duration != "" {
		secs, err := strconv.ParseFloat(raw.Format.Duration, 64)
		if err == nil && secs > 0 {
			result.Duration = time.Duration(secs * float64(time.Second))
		}
	}
	for _, stream := range raw.Streams {
		switch stream.CodecType {
		case "video":
			result.HasVideo = true
		case "audio":
			result.HasAudio = true
		}
	}
	return result, nil
}

// Version runs ffprobe -version and returns the first line. Used by the
// startup and readiness checks.
func (p *Prober) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, p.Bin, "-version").Output()
	if err != nil {
		return "", apperr.Wrap(err, apperr.ErrToolMissing, "ffprobe is not available")
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}
