package transcoder

import (
	"strings"
	"testing"

	"github.com/akbgmi35-maker/Vhist/internal/artifacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	require.Len(t, catalog, 3)
	assert.Equal(t, []string{"1080p", "720p", "480p"}, Labels(catalog))
	for _, r := range catalog {
		assert.Equal(t, "libx264", r.VideoCodec)
		assert.NotZero(t, r.Width)
		assert.NotZero(t, r.Height)
	}
}

func TestBuildArgs(t *testing.T) {
	ns := &artifacts.Namespace{Root: "/srv/uploads"}
	tr := New(ns, "", "")

	args := tr.BuildArgs("/srv/uploads/abc123de/raw-1-sample.mp4", "abc123de")
	joined := strings.Join(args, " ")

	// One video+audio map pair per rendition.
	assert.Equal(t, 3, strings.Count(joined, "-map 0:v:0"))
	assert.Equal(t, 3, strings.Count(joined, "-map 0:a:0"))

	assert.Contains(t, joined, "-s:v:0 1920x1080")
	assert.Contains(t, joined, "-b:v:0 4500k")
	assert.Contains(t, joined, "-s:v:1 1280x720")
	assert.Contains(t, joined, "-b:v:1 2500k")
	assert.Contains(t, joined, "-s:v:2 854x480")
	assert.Contains(t, joined, "-b:v:2 1000k")

	// Segmenting knobs that keep boundaries aligned across the ladder.
	assert.Contains(t, joined, "-g 48")
	assert.Contains(t, joined, "-sc_threshold 0")
	assert.Contains(t, joined, "-hls_time 6")
	assert.Contains(t, joined, "-hls_list_size 0")

	assert.Contains(t, joined, "-master_pl_name master.m3u8")
	assert.Contains(t, args, "v:0,a:0 v:1,a:1 v:2,a:2")

	// Output playlist is the final argument, inside the job subtree.
	assert.Equal(t, ns.VariantPlaylist("abc123de"), args[len(args)-1])
	assert.Contains(t, joined, ns.SegmentFile("abc123de"))
}

func TestBuildArgsStaysInOwnSubtree(t *testing.T) {
	ns := &artifacts.Namespace{Root: "/srv/uploads"}
	tr := New(ns, "", "")

	for _, arg := range tr.BuildArgs("/tmp/in.mp4", "jobaaaaa") {
		if strings.Contains(arg, "/srv/uploads") {
			assert.Contains(t, arg, "jobaaaaa")
		}
	}
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("  short \n", 512))
	long := strings.Repeat("x", 600)
	assert.Len(t, tail(long, 512), 512)
}
