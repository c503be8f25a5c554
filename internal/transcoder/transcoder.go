package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/akbgmi35-maker/Vhist/internal/artifacts"
)

var ErrNoVideoStream = errors.New("input has no video stream")

// Transcoder turns one raw upload into a segmented HLS tree inside the
// job's artifact directory. Each invocation is independent; nothing is
// shared between concurrent runs because each writes only within its
// own subtree.
type Transcoder struct {
	FFmpegBin  string
	FFprobeBin string
	Namespace  *artifacts.Namespace
	Catalog    []Rendition
}

func New(ns *artifacts.Namespace, ffmpegBin, ffprobeBin string) *Transcoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &Transcoder{
		FFmpegBin:  ffmpegBin,
		FFprobeBin: ffprobeBin,
		Namespace:  ns,
		Catalog:    DefaultCatalog(),
	}
}

// Qualities returns the ladder's labels, persisted on the video
// record when the encode succeeds.
func (t *Transcoder) Qualities() []string {
	return Labels(t.Catalog)
}

// Probe rejects inputs ffmpeg would choke on before an encode is
// started: the file must parse and carry at least one video stream.
func (t *Transcoder) Probe(ctx context.Context, inputPath string) error {
	args := []string{
		"-v", "error",
		"-select_streams", "v",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		inputPath,
	}
	out, err := exec.CommandContext(ctx, t.FFprobeBin, args...).Output()
	if err != nil {
		return fmt.Errorf("probing %s: %w", inputPath, err)
	}
	if !strings.Contains(string(out), "video") {
		return ErrNoVideoStream
	}
	return nil
}

// BuildArgs assembles the full ffmpeg argument list for one job. All
// renditions share a keyframe cadence (-g 48, scene-cut detection off)
// so segment boundaries line up across the ladder, and playlists are
// never trimmed (-hls_list_size 0).
func (t *Transcoder) BuildArgs(inputPath, slug string) []string {
	args := []string{
		"-y",
		"-i", inputPath,
		"-preset", "veryfast",
		"-g", "48",
		"-sc_threshold", "0",
	}

	for range t.Catalog {
		args = append(args, "-map", "0:v:0", "-map", "0:a:0")
	}

	streamMap := make([]string, 0, len(t.Catalog))
	for i, r := range t.Catalog {
		args = append(args,
			fmt.Sprintf("-s:v:%d", i), fmt.Sprintf("%dx%d", r.Width, r.Height),
			fmt.Sprintf("-c:v:%d", i), r.VideoCodec,
			fmt.Sprintf("-b:v:%d", i), r.VideoBitrate,
		)
		streamMap = append(streamMap, fmt.Sprintf("v:%d,a:%d", i, i))
	}

	args = append(args,
		"-master_pl_name", artifacts.MasterPlaylistName,
		"-f", "hls",
		"-hls_time", "6",
		"-hls_list_size", "0",
		"-hls_segment_filename", t.Namespace.SegmentFile(slug),
		"-var_stream_map", strings.Join(streamMap, " "),
		t.Namespace.VariantPlaylist(slug),
	)
	return args
}

// Run executes the encode synchronously and returns once ffmpeg has
// exited. On success the master playlist, per-rendition playlists and
// segment files exist under the job directory.
func (t *Transcoder) Run(ctx context.Context, inputPath, slug string) error {
	if _, err := t.Namespace.Ensure(slug); err != nil {
		return err
	}
	if err := t.Probe(ctx, inputPath); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, t.FFmpegBin, t.BuildArgs(inputPath, slug)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String(), 512))
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
