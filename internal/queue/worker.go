package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

	"github.com/akbgmi35-maker/Vhist/internal/config"
)

// Lifecycle is the tracker side of the pipeline: exactly one of these
// is called per job once the encode reaches a terminal outcome. Both
// are idempotent no-ops on jobs already in a terminal state.
type Lifecycle interface {
	MarkReady(ctx context.Context, slug string, qualities []string) error
	MarkFailed(ctx context.Context, slug string) error
}

// Encoder runs one transcode to completion within the job's own
// artifact subtree.
type Encoder interface {
	Run(ctx context.Context, inputPath, slug string) error
	Qualities() []string
}

// Archiver mirrors a finished job's artifacts to remote storage.
// Optional; a nil Archiver disables mirroring.
type Archiver interface {
	ArchiveJob(ctx context.Context, slug string)
}

type Worker struct {
	rc        redis.UniversalClient
	cfg       config.TranscodeWorkerConfig
	lifecycle Lifecycle
	encoder   Encoder
	archiver  Archiver
}

func Init(ctx context.Context, rc redis.UniversalClient, cfg config.TranscodeWorkerConfig, lifecycle Lifecycle, encoder Encoder, archiver Archiver) *Producer {
	producer := NewProducer(rc, cfg.Stream, cfg.MaxLen)
	worker := NewWorker(rc, cfg, lifecycle, encoder, archiver)

	go func() {
		if err := worker.Start(ctx); err != nil {
			log.Printf("[transcode-worker] stopped: %v", err)
		}
	}()

	return producer
}

func NewWorker(rc redis.UniversalClient, cfg config.TranscodeWorkerConfig, lifecycle Lifecycle, encoder Encoder, archiver Archiver) *Worker {
	return &Worker{
		rc:        rc,
		cfg:       cfg,
		lifecycle: lifecycle,
		encoder:   encoder,
		archiver:  archiver,
	}
}

func (w *Worker) EnsureGroup(ctx context.Context) error {
	// Without MkStream, Redis would error out if you try to create a group before any messages exist in the stream.
	err := w.rc.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "0").Err()
	// Redis returns BUSYGROUP if the group already exists therefore we check for other errors
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (w *Worker) Start(ctx context.Context) error {
	if err := w.EnsureGroup(ctx); err != nil {
		return fmt.Errorf("failed to ensure Redis group: %w", err)
	}

	log.Printf("[transcode-worker] starting consumer group=%s stream=%s workers=%d",
		w.cfg.Group, w.cfg.Stream, w.cfg.Workers,
	)

	// Adopt orphaned pending messages
	w.autoClaim(ctx)
	log.Printf("[transcode-worker] auto-claim complete, entering loop...")

	errCh := make(chan error, w.cfg.Workers)
	for i := 0; i < w.cfg.Workers; i++ {
		id := i
		go func() {
			log.Printf("[transcode-worker] worker #%d started", id)
			err := w.loop(ctx)
			if err != nil {
				log.Printf("[transcode-worker] worker #%d stopped with error: %v", id, err)
			} else {
				log.Printf("[transcode-worker] worker #%d stopped gracefully", id)
			}
			errCh <- err
		}()
	}

	select {
	case <-ctx.Done():
		log.Printf("[transcode-worker] context canceled, stopping all workers")
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("worker loop exited with error: %w", err)
		}
		return nil
	}
}

// autoClaim scans the Redis Stream's consumer group for "stuck" messages
// that were previously delivered to other consumers but never acknowledged.
// This can happen if a worker crashes or is killed before XACK.
// Using XAUTOCLAIM, we take ownership of those idle messages so they can be retried.
//
// This ensures that incomplete transcodes are not lost and will eventually
// be picked up again after a restart or worker failure.
func (w *Worker) autoClaim(ctx context.Context) {
	next := "0-0"

	// Determine how long a message must have been idle before we reclaim it.
	// Default to 30 seconds minimum; increase proportionally to the block timeout
	// (so we don't steal messages still being processed by slow workers).
	minIdle := 30 * time.Second
	if w.cfg.BlockTimeout > 0 {
		t := w.cfg.BlockTimeout * 6
		if t > minIdle {
			minIdle = t
		}
	}

	for {
		// Try to claim up to 100 idle messages from other consumers
		// in the same group that have been pending longer than minIdle.
		msgs, start, err := w.rc.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   w.cfg.Stream,
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			MinIdle:  minIdle,
			Start:    next,
			Count:    100,
		}).Result()
		if err != nil || len(msgs) == 0 {
			return
		}
		next = start
	}
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		// XREADGROUP is where the actual "delivery" happens.
		// It reads messages from the Redis Stream as part of the specified consumer group.
		//
		// When Redis executes XREADGROUP GROUP <group> <consumer> STREAMS <stream> > :
		//   1. It finds new (undelivered) messages in <stream>.
		//   2. Marks them as *pending* for this consumer (adds to the group's PEL - Pending Entries List).
		//   3. Returns them to this worker for processing.
		//
		// The message stays in the PEL until we explicitly acknowledge it with XACK,
		// which happens at the end of handle() via a deferred call.
		//
		// If the worker crashes before XACK, the message remains pending and
		// will later be reclaimed by autoClaim() on startup.
		streams, err := w.rc.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			Streams:  []string{w.cfg.Stream, ">"},
			Count:    1,
			Block:    w.cfg.BlockTimeout,
		}).Result()
		if err != nil && err != redis.Nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		for _, s := range streams {
			for _, m := range s.Messages {
				_ = w.handle(ctx, m)
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, m redis.XMessage) error {
	// Ack must not run until handling is done, otherwise a crash
	// mid-encode would drop the message from the PEL and autoClaim
	// could never re-adopt it.
	defer func() {
		_ = w.rc.XAck(ctx, w.cfg.Stream, w.cfg.Group, m.ID).Err()
	}()

	raw, ok := m.Values["payload"].(string)
	if !ok {
		sentry.CaptureException(fmt.Errorf("transcode message %s has no payload", m.ID))
		return nil
	}
	var job TranscodeJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		sentry.CaptureException(fmt.Errorf("decoding transcode message %s: %w", m.ID, err))
		return nil
	}
	attempt := toInt(m.Values["attempt"])

	if err := w.process(ctx, job); err != nil {
		if attempt+1 >= w.cfg.MaxAttempts {
			w.fail(ctx, job, err)
			return nil
		}
		// simple exponential backoff requeue
		backoff := w.cfg.BackoffBase << attempt
		time.AfterFunc(backoff, func() {
			_ = w.rc.XAdd(context.Background(), &redis.XAddArgs{
				Stream: w.cfg.Stream,
				MaxLen: w.cfg.MaxLen,
				Values: map[string]any{
					"payload": raw,
					"attempt": attempt + 1,
				},
			}).Err()
		})
		return err
	}
	return nil
}

func (w *Worker) process(ctx context.Context, job TranscodeJob) error {
	if err := w.encoder.Run(ctx, job.InputPath, job.Slug); err != nil {
		return fmt.Errorf("transcoding %s: %w", job.Slug, err)
	}

	// Only a successful encode removes the raw input; on failure it is
	// retained for postmortem.
	if err := os.Remove(job.InputPath); err != nil {
		log.Printf("[transcode-worker] cleanup raw %s: %v", job.InputPath, err)
	}

	if err := w.lifecycle.MarkReady(ctx, job.Slug, w.encoder.Qualities()); err != nil {
		// The artifacts exist but the record still says processing.
		// Logged only; viewers keep seeing "not available" (no retry
		// loop here).
		log.Printf("[transcode-worker] mark ready %s: %v", job.Slug, err)
		sentry.CaptureException(err)
		return nil
	}
	log.Printf("[transcode-worker] transcoding finished for %s", job.Slug)

	if w.archiver != nil {
		w.archiver.ArchiveJob(ctx, job.Slug)
	}
	return nil
}

// fail records the terminal error state after the last attempt. The
// raw upload stays on disk.
func (w *Worker) fail(ctx context.Context, job TranscodeJob, cause error) {
	sentry.CaptureException(cause)
	log.Printf("[transcode-worker] transcoding error for %s: %v", job.Slug, cause)
	if err := w.lifecycle.MarkFailed(ctx, job.Slug); err != nil {
		log.Printf("[transcode-worker] mark failed %s: %v", job.Slug, err)
		sentry.CaptureException(err)
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case string:
		var x int
		fmt.Sscanf(t, "%d", &x)
		return x
	default:
		return 0
	}
}
