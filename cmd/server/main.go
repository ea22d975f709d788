package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamplane/internal/api"
	"streamplane/internal/config"
	"streamplane/internal/fetch"
	"streamplane/internal/logger"
	"streamplane/internal/models"
	"streamplane/internal/session"
)

func main() {
	listenAddr := flag.String("l", ":8080", "HTTP listen address")
	logLevel := flag.String("L", "info", "Log level (error, warn, info, debug)")
	configFile := flag.String("c", "streams.json", "Path to the stream config file")
	flag.Parse()

	log := logger.New(*logLevel)
	log.Infof("Starting streamplane data plane...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	log.Infof("Configuration loaded for: %s (%d streams)", cfg.Name, len(cfg.Streams))

	client := fetch.NewClient(log, cfg.UserAgent)
	sessionMgr, err := session.NewManager(log, cfg, client, rawCueDecoder)
	if err != nil {
		log.Errorf("Failed to initialize session manager: %v", err)
		os.Exit(1)
	}
	sessionMgr.Start()

	router := api.New(sessionMgr, log)
	server := &http.Server{
		Addr:    *listenAddr,
		Handler: router,
	}

	go func() {
		log.Infof("Server starting on %s", *listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Could not listen on %s: %v", *listenAddr, err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Infof("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionMgr.Stop()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
		os.Exit(1)
	}
	log.Infof("Server exited gracefully")
}

// rawCueDecoder is the built-in stand-in for the subtitle decoding
// collaborator: the whole payload becomes a single cue spanning the
// segment. Real deployments inject a format-aware decoder instead.
func rawCueDecoder(data []byte, start, end float64) ([]*models.Cue, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return []*models.Cue{{Start: start, End: end, Payload: data}}, nil
}
