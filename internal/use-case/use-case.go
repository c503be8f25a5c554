package use_case

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/akbgmi35-maker/Vhist/internal/artifacts"
	"github.com/akbgmi35-maker/Vhist/internal/entities"
	"github.com/akbgmi35-maker/Vhist/internal/queue"
	"github.com/akbgmi35-maker/Vhist/internal/slug"
	"github.com/akbgmi35-maker/Vhist/internal/transport/handler"
)

// ErrNotAvailable collapses absent, still-processing and errored jobs
// into one outcome so viewers cannot tell them apart.
var ErrNotAvailable = errors.New("video not available")

// slugAttempts bounds the retry loop around namespace collisions.
const slugAttempts = 4

type Storage interface {
	InsertVideo(ctx context.Context, v entities.Video) (entities.Video, error)
	GetVideoBySlug(ctx context.Context, slug string) (entities.Video, error)
	MarkFailed(ctx context.Context, slug string) error
}

type TranscodeQueue interface {
	EnqueueTranscode(ctx context.Context, job queue.TranscodeJob) error
}

type PlaybackCache interface {
	Get(ctx context.Context, key string) (string, error)
	Store(ctx context.Context, key string, ttl int, value interface{}) error
}

type useCase struct {
	storage   Storage
	namespace *artifacts.Namespace
	tqueue    TranscodeQueue
	cache     PlaybackCache
	cacheTTL  int
	domain    string
}

func New(storage Storage, ns *artifacts.Namespace, tqueue TranscodeQueue, playbackCache PlaybackCache, domain string, cacheTTL int) *useCase {
	return &useCase{
		storage:   storage,
		namespace: ns,
		tqueue:    tqueue,
		cache:     playbackCache,
		cacheTTL:  cacheTTL,
		domain:    strings.TrimRight(domain, "/"),
	}
}

// UploadVideo runs the intake sequence: slug, namespace, raw file,
// record, launch intent. The record exists before the handler responds
// and the enqueued job is what eventually flips it to a terminal
// state. Nothing here waits on the transcode itself.
func (c *useCase) UploadVideo(ctx context.Context, file multipart.File, fh *multipart.FileHeader, params handler.UploadVideoParams) (entities.Video, error) {
	s, dir, err := c.claimNamespace()
	if err != nil {
		return entities.Video{}, err
	}

	rawPath := c.namespace.RawPath(s, fh.Filename)
	if err := saveRaw(file, rawPath); err != nil {
		return entities.Video{}, err
	}

	title := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))

	v, err := c.storage.InsertVideo(ctx, entities.Video{
		UserID:     params.UserID,
		Title:      title,
		Slug:       s,
		FolderPath: dir,
	})
	if err != nil {
		// Abandon the namespace; nothing references it without a
		// record. The raw file is removed so the directory carries no
		// payload.
		_ = os.Remove(rawPath)
		return entities.Video{}, err
	}

	if err := c.tqueue.EnqueueTranscode(ctx, queue.TranscodeJob{Slug: s, InputPath: rawPath}); err != nil {
		// The record exists but no transcode will ever run for it.
		// Fail it now instead of leaving it in processing forever.
		if failErr := c.storage.MarkFailed(ctx, s); failErr != nil {
			log.Printf("mark failed after enqueue error %s: %v", s, failErr)
		}
		return entities.Video{}, fmt.Errorf("enqueueing transcode for %s: %w", s, err)
	}

	return v, nil
}

// claimNamespace pairs slug generation with directory creation, which
// doubles as the collision check: an existing directory means the slug
// is taken and a fresh one is drawn.
func (c *useCase) claimNamespace() (string, string, error) {
	for i := 0; i < slugAttempts; i++ {
		s := slug.New()
		dir, err := c.namespace.Create(s)
		if errors.Is(err, artifacts.ErrExists) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		return s, dir, nil
	}
	return "", "", fmt.Errorf("could not claim a slug after %d attempts", slugAttempts)
}

func saveRaw(file multipart.File, rawPath string) error {
	dst, err := os.Create(rawPath)
	if err != nil {
		return fmt.Errorf("creating raw file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return fmt.Errorf("writing raw file: %w", err)
	}
	return nil
}

// ResolvePlayback maps a slug to its playable manifest. Only ready
// videos resolve; everything else is ErrNotAvailable. Ready records
// are terminal so they are safe to cache.
func (c *useCase) ResolvePlayback(ctx context.Context, s string) (handler.Playback, error) {
	if cached, err := c.cache.Get(ctx, s); err == nil {
		var v entities.Video
		if err := json.Unmarshal([]byte(cached), &v); err == nil && v.Status == entities.StatusReady {
			return c.playback(v), nil
		}
	}

	v, err := c.storage.GetVideoBySlug(ctx, s)
	if err != nil {
		return handler.Playback{}, ErrNotAvailable
	}
	if v.Status != entities.StatusReady {
		return handler.Playback{}, ErrNotAvailable
	}

	if raw, err := json.Marshal(v); err == nil {
		if err := c.cache.Store(ctx, s, c.cacheTTL, string(raw)); err != nil {
			log.Printf("caching playback record %s: %v", s, err)
		}
	}

	return c.playback(v), nil
}

func (c *useCase) playback(v entities.Video) handler.Playback {
	return handler.Playback{
		Title:       v.Title,
		Qualities:   v.Qualities,
		ManifestURL: fmt.Sprintf("%s/videos/%s/%s", c.domain, v.Slug, artifacts.MasterPlaylistName),
	}
}
