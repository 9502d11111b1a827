package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chatbois/directory"
	"chatbois/httpapi"
	"chatbois/internal"
	"chatbois/moderation"
	"chatbois/repositories"
	"chatbois/runtime"
	"chatbois/runtime/workers"
	"chatbois/search"
	"chatbois/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer (database close, final snapshot)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	maskRune, err := internal.CharacterRune(config.MaskCharacter)
	if err != nil {
		return err
	}

	// 2. Durable store (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Restore the directory before accepting any call
	snapshots := repositories.NewSnapshotRepository(db, log)
	dir, err := restoreDirectory(snapshots, config.MaxUsers)
	if err != nil {
		return err
	}

	// 4. Moderation & search
	wordlist, err := moderation.LoadWordlist()
	if err != nil {
		return fmt.Errorf("wordlist loading failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(wordlist.Words), strings.Join(wordlist.Languages, ",")))

	moderator, err := moderation.NewModerator(wordlist.Words, maskRune)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}

	index, err := search.OpenIndex(config.SearchFilepath)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() { _ = index.Close() }()

	// 5. Engine & supervised workers
	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(log, dir, registry, snapshots, &moderator, config.BufferSize)

	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewAutosaveWorker(orchestrator, config.AutosaveInterval, log))
	sup.Add(workers.NewIndexerWorker(index, orchestrator.Accepted(), log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 6. HTTP server & operator page
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpEndpoint := fmt.Sprintf("http://%s", address)
	wsEndpoint := fmt.Sprintf("ws://%s/connect", address)

	chatService := services.NewChatService(orchestrator)
	api := httpapi.NewServer(log, chatService, index, httpEndpoint, wsEndpoint, config.ConnectionBufferSize)
	httpServer := &http.Server{Addr: address, Handler: api.Router()}

	internal.StartDebugServer(db, config.DebugPort, func() map[string]any {
		users, chats := dir.Counts()
		return map[string]any{
			"Users":  users,
			"Chats":  chats,
			"Online": registry.Online(),
		}
	})

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup: drain connections, stop workers, flush one last snapshot
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	sup.Stop()
	<-supDone

	if err := orchestrator.Flush(); err != nil {
		log.Error("Final snapshot failed", "error", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}

func restoreDirectory(snapshots repositories.SnapshotRepository, maxUsers int) (*directory.Directory, error) {
	snap, found, err := snapshots.Load()
	if err != nil {
		return nil, fmt.Errorf("snapshot loading failed: %w", err)
	}
	if !found {
		return directory.New(maxUsers), nil
	}
	dir, err := directory.Restore(maxUsers, snap)
	if err != nil {
		return nil, fmt.Errorf("snapshot restore failed: %w", err)
	}
	return dir, nil
}
