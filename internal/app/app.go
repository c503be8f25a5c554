package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/akbgmi35-maker/Vhist/cmd/migrate"
	"github.com/akbgmi35-maker/Vhist/internal/archive"
	"github.com/akbgmi35-maker/Vhist/internal/artifacts"
	"github.com/akbgmi35-maker/Vhist/internal/cache"
	"github.com/akbgmi35-maker/Vhist/internal/config"
	"github.com/akbgmi35-maker/Vhist/internal/queue"
	"github.com/akbgmi35-maker/Vhist/internal/redisholder"
	"github.com/akbgmi35-maker/Vhist/internal/repository/storage"
	"github.com/akbgmi35-maker/Vhist/internal/transcoder"
	"github.com/akbgmi35-maker/Vhist/internal/transport/handler"
	"github.com/akbgmi35-maker/Vhist/internal/transport/router"
	use_case "github.com/akbgmi35-maker/Vhist/internal/use-case"
)

type App struct {
	HttpServer *http.Server
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	err := migrate.Migrate(cfg.Database.DSN, migrate.Migrations)
	if err != nil {
		return nil, err
	}

	repo, err := storage.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	ns, err := artifacts.NewNamespace(cfg.Media.UploadDir)
	if err != nil {
		return nil, err
	}

	holder, err := redisholder.Build(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	rc := holder.Get()
	playbackCache := cache.NewCache("vhist:videos", rc)

	enc := transcoder.New(ns, cfg.Transcode.FFmpegBin, cfg.Transcode.FFprobeBin)

	var archiver queue.Archiver
	if cfg.Archive.Enabled {
		archiver = archive.NewStorage(&cfg.Archive, ns)
	}

	producer := queue.Init(ctx, rc, cfg.Transcode, repo, enc, archiver)

	uc := use_case.New(repo, ns, producer, playbackCache, cfg.Media.Domain, cfg.Media.CacheTTL)

	h := handler.New(uc, cfg)
	r := router.NewRouter(h, cfg.Media.UploadDir)

	s := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		HttpServer: s,
	}, nil
}

func (a *App) Run() error {
	log.Printf("starting server")
	return a.HttpServer.ListenAndServe()
}
