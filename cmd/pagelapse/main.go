package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/root4loot/goutils/log"

	"github.com/andsko/pagelapse/pkg/api"
	"github.com/andsko/pagelapse/pkg/capture"
	"github.com/andsko/pagelapse/pkg/controller"
	"github.com/andsko/pagelapse/pkg/state"
)

func init() {
	log.Init("pagelapse")
}

func main() {
	cli := newCLI()
	cli.parseFlags()

	if cli.Debug {
		log.SetLevel(log.DebugLevel)
	}

	store, err := state.Open(cli.StateDB)
	if err != nil {
		log.Fatalf("Could not open state database: %v", err)
	}
	defer store.Close()

	options := capture.NewOptions()
	options.Headless = !cli.NoHeadless

	capturer, err := capture.New(options)
	if err != nil {
		log.Fatalf("Could not start browser: %v", err)
	}
	defer capturer.Close()

	ctl := controller.New(capturer, controller.FolderSink{Dir: cli.OutFolder}, store, controller.Config{
		SkipSimilar:         cli.AvoidDuplicates,
		SimilarityThreshold: cli.DuplicateThreshold,
	})

	ctl.Resume()
	if cli.Autostart {
		ctl.Start()
	}

	srv := &http.Server{Addr: cli.Addr, Handler: api.NewRouter(ctl)}

	go func() {
		log.Infof("Control API listening on %s", cli.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Control API: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Control API shutdown: %v", err)
	}

	// Halt the schedule without clearing the persisted running flag so a
	// restart picks up where we left off.
	ctl.Shutdown()
}
