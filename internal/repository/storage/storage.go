package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akbgmi35-maker/Vhist/internal/entities"
)

var ErrNotFound = errors.New("video not found")

type dbStorage struct {
	dbpool *pgxpool.Pool
}

func New(ctx context.Context, databaseDSN string) (*dbStorage, error) {
	pool, err := pgxpool.New(ctx, databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &dbStorage{dbpool: pool}, nil
}

func (s *dbStorage) Ping(ctx context.Context) error {
	return s.dbpool.Ping(ctx)
}

func (s *dbStorage) Close() {
	s.dbpool.Close()
}

// InsertVideo creates the job record in its initial processing state.
// The artifact directory must already exist at this point; a failure
// here aborts the upload before any transcode is enqueued.
func (s *dbStorage) InsertVideo(ctx context.Context, v entities.Video) (entities.Video, error) {
	row := s.dbpool.QueryRow(ctx,
		`INSERT INTO videos (user_id, title, slug, status, folder_path)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_timestamp, updated_timestamp`,
		v.UserID, v.Title, v.Slug, string(entities.StatusProcessing), v.FolderPath,
	)
	v.Status = entities.StatusProcessing
	if err := row.Scan(&v.ID, &v.CreatedTimestamp, &v.UpdatedTimestamp); err != nil {
		return entities.Video{}, fmt.Errorf("inserting video %s: %w", v.Slug, err)
	}
	return v, nil
}

func (s *dbStorage) GetVideoBySlug(ctx context.Context, slug string) (entities.Video, error) {
	var v entities.Video
	row := s.dbpool.QueryRow(ctx,
		`SELECT id, user_id, title, slug, status, folder_path,
		        COALESCE(qualities, '{}'), created_timestamp, updated_timestamp
		 FROM videos WHERE slug = $1`,
		slug,
	)
	err := row.Scan(&v.ID, &v.UserID, &v.Title, &v.Slug, &v.Status,
		&v.FolderPath, &v.Qualities, &v.CreatedTimestamp, &v.UpdatedTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Video{}, ErrNotFound
	}
	if err != nil {
		return entities.Video{}, fmt.Errorf("selecting video %s: %w", slug, err)
	}
	return v, nil
}

// MarkReady moves a job from processing to ready and records the
// rendition labels. The status guard in the WHERE clause makes the
// transition one-directional: a job already in a terminal state is
// left untouched and the call is a no-op.
func (s *dbStorage) MarkReady(ctx context.Context, slug string, qualities []string) error {
	_, err := s.dbpool.Exec(ctx,
		`UPDATE videos SET status = $1, qualities = $2, updated_timestamp = now()
		 WHERE slug = $3 AND status = $4`,
		string(entities.StatusReady), qualities, slug, string(entities.StatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("marking video %s ready: %w", slug, err)
	}
	return nil
}

// MarkFailed moves a job from processing to error, same guard as
// MarkReady.
func (s *dbStorage) MarkFailed(ctx context.Context, slug string) error {
	_, err := s.dbpool.Exec(ctx,
		`UPDATE videos SET status = $1, updated_timestamp = now()
		 WHERE slug = $2 AND status = $3`,
		string(entities.StatusError), slug, string(entities.StatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("marking video %s failed: %w", slug, err)
	}
	return nil
}
