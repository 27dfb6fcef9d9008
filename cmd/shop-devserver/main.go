package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-cli/internal/devserver"
	"shop-cli/internal/logging"
	"shop-cli/internal/model"
)

// seedFile is the optional JSON layout accepted by -seed.
type seedFile struct {
	List       model.Snapshot             `json:"list"`
	Categories []model.CategoryDefinition `json:"categories"`
}

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	addrVar := flag.String("addr", "localhost:4000", "the address to listen on")
	seedVar := flag.String("seed", "", "JSON file with {\"list\": snapshot, \"categories\": [...]} to preload")
	levelVar := flag.String("log-level", "info", "debug|info|warn|error")
	jsonVar := flag.Bool("log-json", false, "log as JSON")
	flag.Parse()

	level, err := logging.ParseLevel(*levelVar)
	if err != nil {
		return err
	}
	log := logging.New(logging.Config{Level: level, Component: "devserver", Writer: os.Stderr, JSON: *jsonVar})

	ds := devserver.New(devserver.WithLogger(log))
	if *seedVar != "" {
		if err := seed(ds, *seedVar); err != nil {
			return err
		}
		log.Info("seeded", "file", *seedVar)
	}

	httpServer := &http.Server{
		Addr:              *addrVar,
		Handler:           ds.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", *addrVar)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-exit:
		log.Info("signal caught", "sig", sig)
	case err := <-errs:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func seed(ds *devserver.Server, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f seedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if f.List.ID == "" {
		return fmt.Errorf("parse %s: list.id is required", path)
	}
	if f.List.Title == "" {
		f.List.Title = f.List.ID
	}
	ds.Seed(f.List, f.Categories)
	return nil
}
