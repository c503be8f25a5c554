package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Conventional file names inside one job's directory. The %v in the
// variant names is expanded by ffmpeg to the stream index, so every
// rendition gets its own playlist and segment series.
const (
	MasterPlaylistName     = "master.m3u8"
	VariantPlaylistPattern = "v%v.m3u8"
	SegmentPattern         = "v%v_seg%d.ts"
)

var ErrExists = errors.New("artifact directory already exists")

// Namespace maps a slug to an isolated directory subtree under Root.
// Two jobs never share a subtree, so concurrent transcodes need no
// coordination on disk.
type Namespace struct {
	Root string
}

func NewNamespace(root string) (*Namespace, error) {
	if root == "" {
		return nil, errors.New("artifact root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact root: %w", err)
	}
	return &Namespace{Root: root}, nil
}

// Dir returns the job directory for a slug without touching disk.
func (n *Namespace) Dir(slug string) string {
	return filepath.Join(n.Root, slug)
}

// Create makes the directory for a brand-new job. A pre-existing
// directory means the slug collided with an earlier job; callers
// should generate a fresh slug and retry rather than write into
// another job's subtree.
func (n *Namespace) Create(slug string) (string, error) {
	dir := n.Dir(slug)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return "", ErrExists
		}
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}
	return dir, nil
}

// Ensure is the idempotent variant used by the worker side.
func (n *Namespace) Ensure(slug string) (string, error) {
	dir := n.Dir(slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensuring artifact directory: %w", err)
	}
	return dir, nil
}

// RawPath names the location of the raw upload inside the job
// directory. The timestamp keeps retained failure inputs apart when a
// directory is ever reused for diagnosis.
func (n *Namespace) RawPath(slug, filename string) string {
	name := fmt.Sprintf("raw-%d-%s", time.Now().UnixMilli(), filepath.Base(filename))
	return filepath.Join(n.Dir(slug), name)
}

func (n *Namespace) MasterPlaylist(slug string) string {
	return filepath.Join(n.Dir(slug), MasterPlaylistName)
}

func (n *Namespace) VariantPlaylist(slug string) string {
	return filepath.Join(n.Dir(slug), VariantPlaylistPattern)
}

func (n *Namespace) SegmentFile(slug string) string {
	return filepath.Join(n.Dir(slug), SegmentPattern)
}
