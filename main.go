package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/routes"
	"github.com/mbolis/quick-forms/scheduler"
	"github.com/mbolis/quick-forms/store"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatal("main.env:", err)
	}
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if err = log.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal("main.config.log:", err)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	st := store.New(db)

	cleanup, err := scheduler.StartTokenCleanup(st, cfg.TokenCleanup)
	if err != nil {
		log.Fatal("main.scheduler:", err)
	}
	defer cleanup.Stop()

	app := app.App{
		Forms:        st,
		Responses:    st,
		Users:        st,
		BearerServer: httpx.NewBearerServer(st, cfg.TokenSecret, cfg.TokenTTL),
		Config:       cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Error("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("Shutting down")
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("main.server.shutdown:", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
	}
	return err
}
